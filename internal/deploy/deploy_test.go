package deploy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/azero-id/azns-toolkit/configs"
	"github.com/azero-id/azns-toolkit/internal/domain"
	jsonfs "github.com/azero-id/azns-toolkit/internal/infra/filesystem/json"
	"github.com/azero-id/azns-toolkit/internal/merkle"
	"github.com/azero-id/azns-toolkit/internal/registry"
	"github.com/azero-id/azns-toolkit/internal/reservation"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aliceSS58 = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"

var (
	alice = domain.MustParseAccountID(aliceSS58)
	bob   = domain.AccountID{2}
)

func testConfig() configs.Deploy {
	return configs.Deploy{
		Deployer: aliceSS58,
		Version:  1,
		TLD:      "azero",
		NameChecker: configs.NameChecker{
			MinLength:            3,
			MaxLength:            20,
			AllowedRanges:        []string{"a-z", "0-9", "-"},
			DisallowedEdgeRanges: []string{"-"},
		},
		FeeCalculator: configs.FeeCalculator{
			MaxRegistrationYears: 3,
			CommonPrice:          "6",
			PricesByLength:       []configs.PricePoint{{Length: 3, Price: "100"}},
		},
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestContractAddress(t *testing.T) {
	a := ContractAddress(alice, domain.ContractNameRegistry, 1)

	want := crypto.Keccak256(alice[:], []byte("azns_registry"), []byte{1, 0, 0, 0})
	assert.Equal(t, want, a.Bytes())

	assert.Equal(t, a, ContractAddress(alice, domain.ContractNameRegistry, 1))
	assert.NotEqual(t, a, ContractAddress(alice, domain.ContractNameRegistry, 2))
	assert.NotEqual(t, a, ContractAddress(bob, domain.ContractNameRegistry, 1))
	assert.NotEqual(t, a, ContractAddress(alice, domain.ContractNameRouter, 1))
}

func TestDeploy_PublicPhase(t *testing.T) {
	events := &registry.EventRecorder{}
	suite, err := NewService(events, nil, 10).Deploy(context.Background(), testConfig())
	require.NoError(t, err)

	assert.Len(t, suite.Deployment.Contracts, 4)
	assert.Nil(t, suite.Verifier)
	_, ok := suite.Address(domain.ContractNameMerkleVerifier)
	assert.False(t, ok)

	registryAddress, ok := suite.Address(domain.ContractNameRegistry)
	require.True(t, ok)
	assert.Equal(t, registryAddress, suite.Registry.Address())
	assert.True(t, suite.IsContract(registryAddress))
	assert.False(t, suite.IsContract(alice))

	routed, ok := suite.Router.GetRegistry("azero")
	require.True(t, ok)
	assert.Equal(t, registryAddress, routed)

	assert.Equal(t, alice, suite.Registry.Owner())
	assert.Equal(t, alice, suite.NameChecker.Admin())
	assert.Equal(t, alice, suite.FeeCalculator.Admin())
	assert.False(t, suite.Registry.IsWhitelistPhase())

	// registry is wired to the name checker and fee calculator
	assert.ErrorIs(t, suite.Registry.Register(bob, "-bad", nil, uint256.NewInt(1000)), registry.ErrNameNotAllowed)
	assert.ErrorIs(t, suite.Registry.Register(bob, "abc", nil, uint256.NewInt(99)), registry.ErrFeeNotPaid)
	require.NoError(t, suite.Registry.Register(bob, "abc", nil, uint256.NewInt(100)))
	require.NoError(t, suite.Registry.Register(bob, "abcd", nil, uint256.NewInt(6)))
	assert.Len(t, events.Events, 2)
}

func TestDeploy_WhitelistPhase(t *testing.T) {
	cfg := testConfig()
	cfg.WhitelistFile = writeFile(t, "whitelist.txt", aliceSS58+"\n"+bob.Hex()+"\n")

	suite, err := NewService(nil, nil, 10).Deploy(context.Background(), cfg)
	require.NoError(t, err)

	require.NotNil(t, suite.Verifier)
	assert.Len(t, suite.Deployment.Contracts, 5)
	assert.True(t, suite.Registry.IsWhitelistPhase())
	assert.Equal(t, suite.Registry.Address(), suite.Verifier.Admin())

	tree, err := merkle.NewAccountTree([]domain.AccountID{alice, bob})
	require.NoError(t, err)
	assert.Equal(t, tree.Root(), suite.Verifier.Root())

	proof, err := tree.Proof(merkle.AccountLeaf(bob))
	require.NoError(t, err)
	require.NoError(t, suite.Registry.Register(bob, "bobs", proof, uint256.NewInt(6)))

	// the registry administers the verifier
	require.NoError(t, suite.Registry.UpdateMerkleRoot(alice, merkle.AccountLeaf(alice)))
	assert.Equal(t, merkle.AccountLeaf(alice), suite.Verifier.Root())
}

func TestDeploy_Reservations(t *testing.T) {
	cfg := testConfig()
	cfg.ReservationsFile = writeFile(t, "reservations.csv", "name,address\nkept.azero,"+bob.Hex()+"\nlocked\n")

	suite, err := NewService(nil, nil, 1).Deploy(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, registry.DomainStatus{Kind: registry.StatusReserved, Account: bob}, suite.Registry.GetDomainStatus("kept"))
	assert.Equal(t, registry.StatusReserved, suite.Registry.GetDomainStatus("locked").Kind)
	require.NoError(t, suite.Registry.ClaimReservedDomain(bob, "kept"))
}

func TestDeploy_SavesState(t *testing.T) {
	dir := t.TempDir()
	store := registry.NewStateStore(dir, jsonfs.NewReader(), jsonfs.NewWriter())

	_, err := NewService(nil, store, 10).Deploy(context.Background(), testConfig())
	require.NoError(t, err)

	state, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, alice, state.Owner)
	assert.False(t, state.WhitelistPhase)
}

func TestDeploy_WhitelistStateSurvivesReservationsImport(t *testing.T) {
	cfg := testConfig()
	cfg.WhitelistFile = writeFile(t, "whitelist.txt", aliceSS58+"\n"+bob.Hex()+"\n")
	store := registry.NewStateStore(t.TempDir(), jsonfs.NewReader(), jsonfs.NewWriter())

	suite, err := NewService(nil, store, 10).Deploy(context.Background(), cfg)
	require.NoError(t, err)

	loaded, err := reservation.ImportStored(context.Background(), store, []domain.Reservation{{Name: "later"}}, 10)
	require.NoError(t, err)
	require.True(t, loaded)

	reloaded := registry.New(registry.Config{})
	_, err = store.LoadInto(reloaded)
	require.NoError(t, err)

	assert.True(t, reloaded.IsWhitelistPhase())
	assert.Equal(t, suite.Registry.Address(), reloaded.Address())
	assert.Equal(t, registry.StatusReserved, reloaded.GetDomainStatus("later").Kind)

	tree, err := merkle.NewAccountTree([]domain.AccountID{alice, bob})
	require.NoError(t, err)
	proof, err := tree.Proof(merkle.AccountLeaf(bob))
	require.NoError(t, err)
	assert.True(t, reloaded.VerifyProof(bob, proof))
}

func TestDeploy_Failures(t *testing.T) {
	tests := map[string]func(cfg *configs.Deploy){
		"bad deployer":      func(cfg *configs.Deploy) { cfg.Deployer = "nope" },
		"bad range":         func(cfg *configs.Deploy) { cfg.NameChecker.AllowedRanges = []string{"z-a"} },
		"zero price":        func(cfg *configs.Deploy) { cfg.FeeCalculator.CommonPrice = "0" },
		"missing whitelist": func(cfg *configs.Deploy) { cfg.WhitelistFile = filepath.Join(t.TempDir(), "missing.txt") },
		"bad reservations": func(cfg *configs.Deploy) {
			cfg.ReservationsFile = writeFile(t, "reservations.csv", "-bad-\n")
		},
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mutate(&cfg)
			_, err := NewService(nil, nil, 10).Deploy(context.Background(), cfg)
			assert.Error(t, err)
		})
	}
}

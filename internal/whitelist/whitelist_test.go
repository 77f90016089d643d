package whitelist

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/azero-id/azns-toolkit/configs"
	"github.com/azero-id/azns-toolkit/internal/domain"
	jsonfs "github.com/azero-id/azns-toolkit/internal/infra/filesystem/json"
	"github.com/azero-id/azns-toolkit/internal/merkle"
	"github.com/azero-id/azns-toolkit/internal/output"
	"github.com/azero-id/azns-toolkit/internal/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	aliceSS58 = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	aliceHex  = "0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
)

func accounts(n int) []domain.AccountID {
	out := make([]domain.AccountID, n)
	for i := range out {
		out[i] = domain.AccountID{byte(i + 1), 0xee}
	}
	return out
}

func entries(accs []domain.AccountID) []domain.WhitelistEntry {
	out := make([]domain.WhitelistEntry, len(accs))
	for i, a := range accs {
		out[i] = domain.WhitelistEntry{Account: a, Line: i + 1}
	}
	return out
}

func TestLoad(t *testing.T) {
	bob := domain.AccountID{2}
	input := strings.Join([]string{
		"# early supporters",
		aliceSS58,
		"",
		"   " + bob.Hex() + "   ",
	}, "\n")

	got, err := Load(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []domain.WhitelistEntry{
		{Account: domain.MustParseAccountID(aliceSS58), Line: 2},
		{Account: bob, Line: 4},
	}, got)
}

func TestLoad_Errors(t *testing.T) {
	input := strings.Join([]string{aliceSS58, "garbage", aliceHex}, "\n")

	_, err := Load(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	assert.ErrorIs(t, err, ErrDuplicateAccount)
	assert.Contains(t, err.Error(), "line 2:")
	assert.Contains(t, err.Error(), "first seen on line 1")

	_, err = Load(strings.NewReader("# nothing\n\n"))
	assert.ErrorIs(t, err, ErrEmptyWhitelist)
}

func TestBuild(t *testing.T) {
	accs := accounts(5)
	set, err := Build(entries(accs))
	require.NoError(t, err)

	assert.Equal(t, 5, set.Len())
	assert.Equal(t, accs, set.Accounts())

	for _, a := range accs {
		proof, ok := set.ProofOf(a)
		require.True(t, ok)
		assert.True(t, merkle.Verify(set.Root(), merkle.AccountLeaf(a), proof))
	}

	_, ok := set.ProofOf(domain.AccountID{0x99})
	assert.False(t, ok)

	_, err = Build(nil)
	assert.ErrorIs(t, err, merkle.ErrEmptyTree)
}

func TestModel(t *testing.T) {
	alice := domain.MustParseAccountID(aliceSS58)
	set, err := Build(entries([]domain.AccountID{alice, {2}}))
	require.NoError(t, err)

	model, err := set.Model(domain.GenericSubstratePrefix)
	require.NoError(t, err)
	assert.Equal(t, output.SingleQuotedString(set.Root().Hex()), model.Root)
	assert.Equal(t, 2, model.Count)
	require.Len(t, model.Entries, 2)
	assert.Equal(t, output.SingleQuotedString(aliceSS58), model.Entries[0].Address)
	assert.Equal(t, output.SingleQuotedString(aliceHex), model.Entries[0].Account)
	assert.Len(t, model.Entries[0].Proof, 1)

	_, err = set.Model(domain.MaxSS58Prefix + 1)
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
}

type countingVerifier struct {
	root   common.Hash
	calls  atomic.Int32
	reject domain.AccountID
}

func (v *countingVerifier) VerifyProof(account domain.AccountID, proof []common.Hash) bool {
	v.calls.Add(1)
	if account == v.reject {
		return false
	}
	return merkle.Verify(v.root, merkle.AccountLeaf(account), proof)
}

func TestCrossCheck(t *testing.T) {
	set, err := Build(entries(accounts(33)))
	require.NoError(t, err)

	v := &countingVerifier{root: set.Root()}
	require.NoError(t, CrossCheck(context.Background(), v, set, 4))
	assert.Equal(t, int32(33), v.calls.Load())
}

func TestCrossCheck_Rejects(t *testing.T) {
	accs := accounts(8)
	set, err := Build(entries(accs))
	require.NoError(t, err)

	v := &countingVerifier{root: set.Root(), reject: accs[3]}
	err = CrossCheck(context.Background(), v, set, 2)
	assert.ErrorIs(t, err, ErrProofRejected)

	wrongRoot := registry.New(registry.Config{Verifier: merkle.NewVerifier(domain.ZeroAccount, common.Hash{1})})
	assert.ErrorIs(t, CrossCheck(context.Background(), wrongRoot, set, 0), ErrProofRejected)
}

func whitelistConfig(t *testing.T, accs ...domain.AccountID) configs.Whitelist {
	t.Helper()
	dir := t.TempDir()
	lines := make([]string, len(accs))
	for i, a := range accs {
		lines[i] = a.Hex()
	}
	file := filepath.Join(dir, "whitelist.txt")
	require.NoError(t, os.WriteFile(file, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	return configs.Whitelist{
		File:    file,
		Output:  filepath.Join(dir, "out", "proofs.yaml"),
		Workers: 2,
	}
}

func storeWithRoot(t *testing.T, root common.Hash) *registry.StateStore {
	t.Helper()
	registryAddress := domain.AccountID{0xaa}
	store := registry.NewStateStore(t.TempDir(), jsonfs.NewReader(), jsonfs.NewWriter())
	require.NoError(t, store.Save(registry.New(registry.Config{
		Address:  registryAddress,
		Owner:    domain.MustParseAccountID(aliceSS58),
		Verifier: merkle.NewVerifier(registryAddress, root),
	})))
	return store
}

func emptyStore(t *testing.T) *registry.StateStore {
	return registry.NewStateStore(t.TempDir(), jsonfs.NewReader(), jsonfs.NewWriter())
}

func TestService_Run(t *testing.T) {
	cfg := whitelistConfig(t, domain.MustParseAccountID(aliceSS58), domain.AccountID{2})
	set, err := NewService(output.NewGenerator(jsonfs.NewWriter()), emptyStore(t)).Run(context.Background(), cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)

	var doc struct {
		Root    string `yaml:"root"`
		Count   int    `yaml:"count"`
		Entries []struct {
			Address string   `yaml:"address"`
			Proof   []string `yaml:"proof"`
		} `yaml:"entries"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, set.Root().Hex(), doc.Root)
	assert.Equal(t, 2, doc.Count)
	require.Len(t, doc.Entries, 2)
	assert.Equal(t, aliceSS58, doc.Entries[0].Address)

	proof := make([]common.Hash, len(doc.Entries[0].Proof))
	for i, h := range doc.Entries[0].Proof {
		proof[i] = common.HexToHash(h)
	}
	assert.True(t, merkle.Verify(set.Root(), merkle.AccountLeaf(domain.MustParseAccountID(aliceSS58)), proof))
}

func TestService_RunInvalidFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "whitelist.txt")
	require.NoError(t, os.WriteFile(file, []byte("nope\n"), 0644))

	_, err := NewService(output.NewGenerator(jsonfs.NewWriter()), emptyStore(t)).Run(context.Background(), configs.Whitelist{File: file, Output: "unused", Workers: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func TestService_RunChecksStoredRegistry(t *testing.T) {
	accs := accounts(5)
	tree, err := merkle.NewAccountTree(accs)
	require.NoError(t, err)

	cfg := whitelistConfig(t, accs...)
	set, err := NewService(output.NewGenerator(jsonfs.NewWriter()), storeWithRoot(t, tree.Root())).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, tree.Root(), set.Root())
	assert.FileExists(t, cfg.Output)
}

func TestService_RunFailsOnStoredRootMismatch(t *testing.T) {
	deployed, err := merkle.NewAccountTree(accounts(3))
	require.NoError(t, err)

	cfg := whitelistConfig(t, accounts(4)...)
	_, err = NewService(output.NewGenerator(jsonfs.NewWriter()), storeWithRoot(t, deployed.Root())).Run(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrRootMismatch)
	assert.NoFileExists(t, cfg.Output)
}

package output

import (
	"os"
	"path/filepath"
	"testing"

	jsonfs "github.com/azero-id/azns-toolkit/internal/infra/filesystem/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "proofs.yaml")
	model := &ProofsModel{
		Root:  "0x01",
		Depth: 1,
		Count: 1,
		Entries: []ProofEntry{{
			Address: "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY",
			Account: "0xd4",
			Leaf:    "0x02",
			Proof:   []SingleQuotedString{"0x03"},
		}},
	}

	require.NoError(t, NewGenerator(jsonfs.NewWriter()).Generate(path, model))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "root: '0x01'")
	assert.Contains(t, string(data), "- '0x03'")

	var decoded struct {
		Root    string `yaml:"root"`
		Entries []struct {
			Proof []string `yaml:"proof"`
		} `yaml:"entries"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "0x01", decoded.Root)
	require.Len(t, decoded.Entries, 1)
	assert.Equal(t, []string{"0x03"}, decoded.Entries[0].Proof)
}

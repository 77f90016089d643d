package output

import (
	"gopkg.in/yaml.v3"
)

type (
	// ProofsModel is the whitelist proofs document handed to the frontend.
	ProofsModel struct {
		Root    SingleQuotedString `yaml:"root"`
		Depth   int                `yaml:"depth"`
		Count   int                `yaml:"count"`
		Entries []ProofEntry       `yaml:"entries"`
	}

	ProofEntry struct {
		Address SingleQuotedString   `yaml:"address"`
		Account SingleQuotedString   `yaml:"account"`
		Leaf    SingleQuotedString   `yaml:"leaf"`
		Proof   []SingleQuotedString `yaml:"proof"`
	}

	SingleQuotedString string
)

func (s SingleQuotedString) MarshalYAML() (any, error) {
	node := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Style: yaml.SingleQuotedStyle,
		Value: string(s),
	}
	return node, nil
}

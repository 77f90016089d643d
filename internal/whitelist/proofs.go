package whitelist

import (
	"fmt"

	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/azero-id/azns-toolkit/internal/merkle"
	"github.com/azero-id/azns-toolkit/internal/output"
	"github.com/ethereum/go-ethereum/common"
)

// Set is a whitelist together with its merkle tree and the proof of every account.
type Set struct {
	tree     *merkle.Tree
	accounts []domain.AccountID
	proofs   [][]common.Hash
}

// Build hashes the accounts in file order and derives every proof.
func Build(entries []domain.WhitelistEntry) (*Set, error) {
	accounts := make([]domain.AccountID, len(entries))
	for i, e := range entries {
		accounts[i] = e.Account
	}

	tree, err := merkle.NewAccountTree(accounts)
	if err != nil {
		return nil, fmt.Errorf("failed to build merkle tree: %w", err)
	}

	proofs := make([][]common.Hash, len(accounts))
	for i := range accounts {
		if proofs[i], err = tree.ProofAt(i); err != nil {
			return nil, fmt.Errorf("failed to build proof for %s: %w", accounts[i], err)
		}
	}

	return &Set{
		tree:     tree,
		accounts: accounts,
		proofs:   proofs,
	}, nil
}

func (s *Set) Root() common.Hash {
	return s.tree.Root()
}

func (s *Set) Len() int {
	return len(s.accounts)
}

func (s *Set) Accounts() []domain.AccountID {
	return append([]domain.AccountID(nil), s.accounts...)
}

// ProofOf returns the proof of account, or false when it is not whitelisted.
func (s *Set) ProofOf(account domain.AccountID) ([]common.Hash, bool) {
	for i, a := range s.accounts {
		if a == account {
			return append([]common.Hash(nil), s.proofs[i]...), true
		}
	}
	return nil, false
}

// Model renders the set as a proofs document. Addresses use the given SS58 prefix.
func (s *Set) Model(prefix uint16) (*output.ProofsModel, error) {
	model := &output.ProofsModel{
		Root:    output.SingleQuotedString(s.Root().Hex()),
		Depth:   s.tree.Depth(),
		Count:   len(s.accounts),
		Entries: make([]output.ProofEntry, len(s.accounts)),
	}

	for i, account := range s.accounts {
		proof := make([]output.SingleQuotedString, len(s.proofs[i]))
		for j, h := range s.proofs[i] {
			proof[j] = output.SingleQuotedString(h.Hex())
		}
		address, err := account.SS58(prefix)
		if err != nil {
			return nil, err
		}
		model.Entries[i] = output.ProofEntry{
			Address: output.SingleQuotedString(address),
			Account: output.SingleQuotedString(account.Hex()),
			Leaf:    output.SingleQuotedString(merkle.AccountLeaf(account).Hex()),
			Proof:   proof,
		}
	}

	return model, nil
}

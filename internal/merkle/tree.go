// Package merkle builds whitelist merkle trees off-chain and verifies inclusion proofs
// the same way the on-chain verifier does: leaves are sha256 digests of account bytes
// and internal nodes are keccak256 over the sorted pair of children.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrEmptyTree       = errors.New("merkle tree needs at least one leaf")
	ErrLeafNotFound    = errors.New("leaf not found in tree")
	ErrIndexOutOfRange = errors.New("leaf index out of range")
)

// Tree keeps every level so proofs can be read without rehashing.
// levels[0] holds the leaves and the last level holds the root.
type Tree struct {
	levels [][]common.Hash
	index  map[common.Hash]int
}

// AccountLeaf hashes an account into a leaf.
func AccountLeaf(account domain.AccountID) common.Hash {
	return sha256.Sum256(account.Bytes())
}

// HashPair hashes two nodes in ascending byte order, so argument order does not matter.
func HashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

// NewTree builds a tree over leaves in the given order.
// A trailing node without a sibling moves up a level unchanged.
func NewTree(leaves []common.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}

	level := append([]common.Hash(nil), leaves...)
	t := &Tree{
		levels: [][]common.Hash{level},
		index:  make(map[common.Hash]int, len(leaves)),
	}
	for i, leaf := range leaves {
		if _, ok := t.index[leaf]; !ok {
			t.index[leaf] = i
		}
	}

	for len(level) > 1 {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, HashPair(level[i], level[i+1]))
		}
		t.levels = append(t.levels, next)
		level = next
	}

	return t, nil
}

// NewAccountTree builds a tree over the leaves of the given accounts.
func NewAccountTree(accounts []domain.AccountID) (*Tree, error) {
	leaves := make([]common.Hash, len(accounts))
	for i, account := range accounts {
		leaves[i] = AccountLeaf(account)
	}
	return NewTree(leaves)
}

func (t *Tree) Root() common.Hash {
	return t.levels[len(t.levels)-1][0]
}

func (t *Tree) Leaves() []common.Hash {
	return append([]common.Hash(nil), t.levels[0]...)
}

func (t *Tree) Depth() int {
	return len(t.levels) - 1
}

// Proof returns the sibling path of leaf from the bottom level up.
func (t *Tree) Proof(leaf common.Hash) ([]common.Hash, error) {
	i, ok := t.index[leaf]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLeafNotFound, leaf.Hex())
	}
	return t.ProofAt(i)
}

func (t *Tree) ProofAt(i int) ([]common.Hash, error) {
	if i < 0 || i >= len(t.levels[0]) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}

	proof := make([]common.Hash, 0, t.Depth())
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := i ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		i /= 2
	}

	return proof, nil
}

// Verify folds proof into leaf and compares the result with root.
func Verify(root, leaf common.Hash, proof []common.Hash) bool {
	hash := leaf
	for _, node := range proof {
		hash = HashPair(hash, node)
	}
	return hash == root
}

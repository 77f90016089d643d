package merkle

import (
	"sync"

	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/azero-id/azns-toolkit/internal/ownable"
	"github.com/ethereum/go-ethereum/common"
)

// Verifier holds a root that an admin can rotate and checks proofs against it.
type Verifier struct {
	*ownable.Ownable

	mu   sync.RWMutex
	root common.Hash
}

func NewVerifier(admin domain.AccountID, root common.Hash) *Verifier {
	return &Verifier{
		Ownable: ownable.New(admin),
		root:    root,
	}
}

func (v *Verifier) Root() common.Hash {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.root
}

func (v *Verifier) UpdateRoot(caller domain.AccountID, root common.Hash) error {
	if err := v.EnsureAdmin(caller); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.root = root
	return nil
}

// VerifyProof checks that leaf, already hashed, is included under the current root.
func (v *Verifier) VerifyProof(leaf common.Hash, proof []common.Hash) bool {
	return Verify(v.Root(), leaf, proof)
}

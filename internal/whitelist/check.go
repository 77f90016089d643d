package whitelist

import (
	"context"
	"errors"
	"fmt"

	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

var (
	ErrProofRejected = errors.New("proof rejected by verifier")
	ErrRootMismatch  = errors.New("whitelist root differs from the deployed root")
)

type proofVerifier interface {
	VerifyProof(account domain.AccountID, proof []common.Hash) bool
}

// CrossCheck submits every proof of set to verifier using at most workers goroutines.
// The first rejected proof cancels the remaining checks.
func CrossCheck(ctx context.Context, verifier proofVerifier, set *Set, workers int) error {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, account := range set.accounts {
		proof := set.proofs[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !verifier.VerifyProof(account, proof) {
				return fmt.Errorf("%w: %s", ErrProofRejected, account)
			}
			return nil
		})
	}

	return g.Wait()
}

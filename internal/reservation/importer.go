package reservation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/azero-id/azns-toolkit/internal/logger"
	"github.com/azero-id/azns-toolkit/internal/registry"
)

type (
	reservationRegistry interface {
		AddReservedDomains(caller domain.AccountID, set []domain.Reservation) error
	}
	registryStore interface {
		LoadInto(r *registry.Registry) (bool, error)
		Save(r *registry.Registry) error
	}

	// Importer submits reservations to a registry in batches.
	Importer struct {
		registry  reservationRegistry
		owner     domain.AccountID
		batchSize int
		logger    *slog.Logger
	}
)

func NewImporter(registry reservationRegistry, owner domain.AccountID, batchSize int) *Importer {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Importer{
		registry:  registry,
		owner:     owner,
		batchSize: batchSize,
		logger:    logger.Named("reservation_importer"),
	}
}

// Import submits reservations and returns how many were accepted. It stops at the
// first failing batch; earlier batches stay applied.
func (i *Importer) Import(ctx context.Context, reservations []domain.Reservation) (int, error) {
	imported := 0
	for start := 0; start < len(reservations); start += i.batchSize {
		if err := ctx.Err(); err != nil {
			return imported, err
		}

		end := min(start+i.batchSize, len(reservations))
		batch := reservations[start:end]
		if err := i.registry.AddReservedDomains(i.owner, batch); err != nil {
			return imported, fmt.Errorf("failed to import reservations %d..%d: %w", start, end-1, err)
		}
		imported += len(batch)

		i.logger.Debug("reservation batch imported", "from", start, "to", end-1)
	}

	i.logger.Info("reservations imported", "count", imported)
	return imported, nil
}

// ImportStored restores the stored registry, imports reservations as its owner and
// saves it back. It reports false when no registry has been stored yet.
func ImportStored(ctx context.Context, store registryStore, reservations []domain.Reservation, batchSize int) (bool, error) {
	r := registry.New(registry.Config{})
	loaded, err := store.LoadInto(r)
	if err != nil || !loaded {
		return false, err
	}

	if _, err := NewImporter(r, r.Owner(), batchSize).Import(ctx, reservations); err != nil {
		return true, err
	}

	return true, store.Save(r)
}

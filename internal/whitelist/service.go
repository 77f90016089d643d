package whitelist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/azero-id/azns-toolkit/configs"
	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/azero-id/azns-toolkit/internal/logger"
	"github.com/azero-id/azns-toolkit/internal/output"
	"github.com/azero-id/azns-toolkit/internal/registry"
)

type (
	proofsWriter interface {
		Generate(path string, model *output.ProofsModel) error
	}
	registryLoader interface {
		LoadInto(r *registry.Registry) (bool, error)
	}

	// Service turns a whitelist file into a proofs document checked against the
	// stored registry.
	Service struct {
		writer proofsWriter
		store  registryLoader
		logger *slog.Logger
	}
)

func NewService(writer proofsWriter, store registryLoader) *Service {
	return &Service{
		writer: writer,
		store:  store,
		logger: logger.Named("whitelist_service"),
	}
}

func (s *Service) Run(ctx context.Context, cfg configs.Whitelist) (*Set, error) {
	s.logger.Info("loading whitelist", "file", cfg.File)
	entries, err := LoadFile(cfg.File)
	if err != nil {
		return nil, err
	}

	set, err := Build(entries)
	if err != nil {
		return nil, err
	}
	s.logger.Info("merkle tree built", "root", set.Root().Hex(), "accounts", set.Len())

	if err := s.crossCheck(ctx, set, cfg.Workers); err != nil {
		return nil, err
	}

	model, err := set.Model(domain.GenericSubstratePrefix)
	if err != nil {
		return nil, err
	}
	if err := s.writer.Generate(cfg.Output, model); err != nil {
		return nil, err
	}

	return set, nil
}

// crossCheck submits every proof to the stored registry. It is skipped when no
// registry in the whitelist phase has been stored yet.
func (s *Service) crossCheck(ctx context.Context, set *Set, workers int) error {
	if s.store == nil {
		s.logger.Warn("no registry store configured, proofs are not cross-checked")
		return nil
	}

	deployed := registry.New(registry.Config{})
	loaded, err := s.store.LoadInto(deployed)
	if err != nil {
		return fmt.Errorf("failed to load the stored registry: %w", err)
	}
	if !loaded || !deployed.IsWhitelistPhase() {
		s.logger.Warn("no stored registry in the whitelist phase, proofs are not cross-checked", "loaded", loaded)
		return nil
	}

	root, _ := deployed.MerkleRoot()
	if root != set.Root() {
		return fmt.Errorf("%w: deployed %s, built %s", ErrRootMismatch, root.Hex(), set.Root().Hex())
	}

	if err := CrossCheck(ctx, deployed, set, workers); err != nil {
		return fmt.Errorf("cross-check failed: %w", err)
	}
	s.logger.Info("proofs cross-checked against the stored registry", "registry", deployed.Address().String(), "accounts", set.Len())

	return nil
}

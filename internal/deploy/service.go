package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/azero-id/azns-toolkit/configs"
	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/azero-id/azns-toolkit/internal/feecalc"
	"github.com/azero-id/azns-toolkit/internal/logger"
	"github.com/azero-id/azns-toolkit/internal/merkle"
	"github.com/azero-id/azns-toolkit/internal/namechecker"
	"github.com/azero-id/azns-toolkit/internal/registry"
	"github.com/azero-id/azns-toolkit/internal/reservation"
	"github.com/azero-id/azns-toolkit/internal/router"
	"github.com/azero-id/azns-toolkit/internal/whitelist"
)

type (
	stateSaver interface {
		Save(r *registry.Registry) error
	}

	// Service deploys the contract suite phase by phase. The first failing phase aborts.
	Service struct {
		events    registry.EventSink
		store     stateSaver
		batchSize int
		logger    *slog.Logger
	}
)

// NewService creates a deploy service. events and store may be nil.
func NewService(events registry.EventSink, store stateSaver, batchSize int) *Service {
	return &Service{
		events:    events,
		store:     store,
		batchSize: batchSize,
		logger:    logger.Named("deploy_service"),
	}
}

func (s *Service) Deploy(ctx context.Context, cfg configs.Deploy) (*Suite, error) {
	s.logger.Info("starting deployment", "tld", cfg.TLD, "version", cfg.Version)

	deployer, err := domain.ParseAccountID(cfg.Deployer)
	if err != nil {
		return nil, fmt.Errorf("invalid deployer: %w", err)
	}
	suite := newSuite(deployer, uint32(cfg.Version))

	s.logger.Info("running phase 1 - name checker")
	if suite.NameChecker, err = namechecker.NewFromConfig(deployer, cfg.NameChecker); err != nil {
		return nil, fmt.Errorf("phase 1 failed: %w", err)
	}
	s.instantiated(suite, domain.ContractNameNameChecker)

	s.logger.Info("running phase 2 - fee calculator")
	if suite.FeeCalculator, err = feecalc.NewFromConfig(deployer, cfg.FeeCalculator); err != nil {
		return nil, fmt.Errorf("phase 2 failed: %w", err)
	}
	s.instantiated(suite, domain.ContractNameFeeCalculator)

	registryAddress := ContractAddress(deployer, domain.ContractNameRegistry, suite.Deployment.Version)

	if cfg.WhitelistFile != "" {
		s.logger.Info("running phase 3 - merkle verifier", "whitelist", cfg.WhitelistFile)
		if suite.Verifier, err = s.deployVerifier(cfg.WhitelistFile, registryAddress); err != nil {
			return nil, fmt.Errorf("phase 3 failed: %w", err)
		}
		s.instantiated(suite, domain.ContractNameMerkleVerifier)
	} else {
		s.logger.Info("skipping phase 3 - no whitelist configured, registry starts in the public phase")
	}

	s.logger.Info("running phase 4 - registry")
	regCfg := registry.Config{
		Address:     registryAddress,
		Owner:       deployer,
		NameChecker: suite.NameChecker,
		Pricer:      suite.FeeCalculator,
		Events:      s.events,
	}
	if suite.Verifier != nil {
		regCfg.Verifier = suite.Verifier
	}
	suite.Registry = registry.New(regCfg)
	s.instantiated(suite, domain.ContractNameRegistry)

	s.logger.Info("running phase 5 - router")
	suite.Router = router.New(deployer, suite)
	s.instantiated(suite, domain.ContractNameRouter)
	if err := suite.Router.AddRegistry(deployer, cfg.TLD, registryAddress); err != nil {
		return nil, fmt.Errorf("phase 5 failed: %w", err)
	}

	if cfg.ReservationsFile != "" {
		s.logger.Info("importing reservations", "file", cfg.ReservationsFile)
		reservations, err := reservation.NewParser(cfg.TLD, suite.NameChecker).ParseFile(cfg.ReservationsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read reservations: %w", err)
		}
		if _, err := reservation.NewImporter(suite.Registry, deployer, s.batchSize).Import(ctx, reservations); err != nil {
			return nil, err
		}
	}

	if s.store != nil {
		if err := s.store.Save(suite.Registry); err != nil {
			return nil, err
		}
	}

	s.logger.Info("deployment finished", "contracts", len(suite.Deployment.Contracts))

	return suite, nil
}

func (s *Service) deployVerifier(path string, admin domain.AccountID) (*merkle.Verifier, error) {
	entries, err := whitelist.LoadFile(path)
	if err != nil {
		return nil, err
	}
	set, err := whitelist.Build(entries)
	if err != nil {
		return nil, err
	}

	s.logger.Info("whitelist loaded", "accounts", set.Len(), "root", set.Root().Hex())
	return merkle.NewVerifier(admin, set.Root()), nil
}

func (s *Service) instantiated(suite *Suite, name domain.ContractName) {
	address := ContractAddress(suite.Deployment.Deployer, name, suite.Deployment.Version)
	suite.Deployment.Contracts[name] = address
	s.logger.Info("contract instantiated", "contract", name, "address", address.String())
}

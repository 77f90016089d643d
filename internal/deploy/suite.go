package deploy

import (
	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/azero-id/azns-toolkit/internal/feecalc"
	"github.com/azero-id/azns-toolkit/internal/merkle"
	"github.com/azero-id/azns-toolkit/internal/namechecker"
	"github.com/azero-id/azns-toolkit/internal/registry"
	"github.com/azero-id/azns-toolkit/internal/router"
)

// Suite holds one deployed instance of every contract. Verifier is nil when the
// registry starts in the public phase.
type Suite struct {
	Deployment    domain.Deployment
	NameChecker   *namechecker.Checker
	FeeCalculator *feecalc.Calculator
	Verifier      *merkle.Verifier
	Registry      *registry.Registry
	Router        *router.Router
}

func newSuite(deployer domain.AccountID, version uint32) *Suite {
	return &Suite{
		Deployment: domain.Deployment{
			Version:   version,
			Deployer:  deployer,
			Contracts: make(map[domain.ContractName]domain.AccountID),
		},
	}
}

// IsContract reports whether address belongs to a contract of this suite.
func (s *Suite) IsContract(address domain.AccountID) bool {
	for _, a := range s.Deployment.Contracts {
		if a == address {
			return true
		}
	}
	return false
}

func (s *Suite) Address(name domain.ContractName) (domain.AccountID, bool) {
	a, ok := s.Deployment.Contracts[name]
	return a, ok
}

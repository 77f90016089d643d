package router

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/azero-id/azns-toolkit/internal/ownable"
)

var (
	ErrInvalidRegistryAddress = errors.New("not a contract address")
	ErrTldAlreadyInUse        = errors.New("tld already points to a registry")
)

type (
	// contractIndex answers whether an address belongs to a deployed contract.
	contractIndex interface {
		IsContract(address domain.AccountID) bool
	}

	// Router maps top level domains to their registry.
	Router struct {
		*ownable.Ownable

		mu        sync.RWMutex
		contracts contractIndex
		routes    map[string]domain.AccountID
	}
)

func New(admin domain.AccountID, contracts contractIndex) *Router {
	return &Router{
		Ownable:   ownable.New(admin),
		contracts: contracts,
		routes:    make(map[string]domain.AccountID),
	}
}

func (r *Router) AddRegistry(caller domain.AccountID, tld string, registry domain.AccountID) error {
	if err := r.EnsureAdmin(caller); err != nil {
		return err
	}
	if r.contracts != nil && !r.contracts.IsContract(registry) {
		return fmt.Errorf("%w: %s", ErrInvalidRegistryAddress, registry)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.routes[tld]; ok {
		return fmt.Errorf("%w: %s", ErrTldAlreadyInUse, tld)
	}
	r.routes[tld] = registry
	return nil
}

// GetRegistry returns the registry serving tld and whether one is set.
func (r *Router) GetRegistry(tld string) (domain.AccountID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	registry, ok := r.routes[tld]
	return registry, ok
}

// Routes returns every routed TLD in sorted order.
func (r *Router) Routes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tlds := make([]string, 0, len(r.routes))
	for tld := range r.routes {
		tlds = append(tlds, tld)
	}
	slices.Sort(tlds)
	return tlds
}

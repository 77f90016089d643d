package registry

import (
	"errors"
	"fmt"
	"slices"

	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/azero-id/azns-toolkit/internal/merkle"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var ErrMissingMerkleRoot = errors.New("whitelist phase state has no merkle root")

type (
	// State is the persisted form of the registry. MerkleRoot is set only in the
	// whitelist phase. Reverse indexes missing from the state are rebuilt in name order.
	State struct {
		Address        domain.AccountID            `json:"address"`
		Owner          domain.AccountID            `json:"owner"`
		WhitelistPhase bool                        `json:"whitelistPhase"`
		MerkleRoot     *common.Hash                `json:"merkleRoot,omitempty"`
		Treasury       string                      `json:"treasury"`
		Names          map[string]NameState        `json:"names"`
		Parents        map[string]string           `json:"parents,omitempty"`
		PrimaryDomains map[domain.AccountID]string `json:"primaryDomains,omitempty"`
		Reserved       map[string]domain.AccountID `json:"reserved,omitempty"`
		Indexes        *Indexes                    `json:"indexes,omitempty"`
	}

	// Indexes keeps the reverse lookups in acquisition order.
	Indexes struct {
		Owned      map[domain.AccountID][]string `json:"owned,omitempty"`
		Controlled map[domain.AccountID][]string `json:"controlled,omitempty"`
		Resolving  map[domain.AccountID][]string `json:"resolving,omitempty"`
	}

	NameState struct {
		Owner      domain.AccountID `json:"owner"`
		Controller domain.AccountID `json:"controller"`
		Resolved   domain.AccountID `json:"resolved"`
		Records    []domain.Record  `json:"records,omitempty"`
	}
)

func (r *Registry) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state := State{
		Address:        r.address,
		Owner:          r.owner,
		WhitelistPhase: r.verifier != nil,
		Treasury:       r.treasury.Dec(),
		Names:          make(map[string]NameState, len(r.names)),
		Parents:        make(map[string]string, len(r.parents)),
		PrimaryDomains: make(map[domain.AccountID]string, len(r.primaryDomains)),
		Reserved:       make(map[string]domain.AccountID, len(r.reserved)),
		Indexes: &Indexes{
			Owned:      cloneIndex(r.ownerToNames),
			Controlled: cloneIndex(r.controllerToNames),
			Resolving:  cloneIndex(r.resolvingToNames),
		},
	}
	if r.verifier != nil {
		root := r.verifier.Root()
		state.MerkleRoot = &root
	}

	for name, e := range r.names {
		state.Names[name] = NameState{
			Owner:      e.owner,
			Controller: e.controller,
			Resolved:   e.resolved,
			Records:    slices.Clone(e.records),
		}
	}
	for name, parent := range r.parents {
		state.Parents[name] = parent
	}
	for account, name := range r.primaryDomains {
		state.PrimaryDomains[account] = name
	}
	for name, account := range r.reserved {
		state.Reserved[name] = account
	}

	return state
}

// Restore replaces the registry contents with state. A whitelist phase state
// attaches a verifier administered by the registry address and holding the stored
// root; a public phase state detaches it.
func (r *Registry) Restore(state State) error {
	var treasury uint256.Int
	if state.Treasury != "" {
		if err := treasury.SetFromDecimal(state.Treasury); err != nil {
			return fmt.Errorf("invalid treasury %q: %w", state.Treasury, err)
		}
	}
	if state.WhitelistPhase && state.MerkleRoot == nil {
		return ErrMissingMerkleRoot
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.address = state.Address
	r.owner = state.Owner
	r.treasury = treasury
	switch {
	case !state.WhitelistPhase:
		r.verifier = nil
	case r.verifier == nil:
		r.verifier = merkle.NewVerifier(state.Address, *state.MerkleRoot)
	case r.verifier.Root() != *state.MerkleRoot:
		if err := r.verifier.UpdateRoot(state.Address, *state.MerkleRoot); err != nil {
			return fmt.Errorf("failed to restore merkle root: %w", err)
		}
	}

	r.names = make(map[string]*entry, len(state.Names))
	r.ownerToNames = make(map[domain.AccountID][]string)
	r.controllerToNames = make(map[domain.AccountID][]string)
	r.resolvingToNames = make(map[domain.AccountID][]string)

	names := make([]string, 0, len(state.Names))
	for name := range state.Names {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		s := state.Names[name]
		r.names[name] = &entry{
			owner:      s.Owner,
			controller: s.Controller,
			resolved:   s.Resolved,
			records:    slices.Clone(s.Records),
		}
		if state.Indexes == nil {
			r.ownerToNames[s.Owner] = append(r.ownerToNames[s.Owner], name)
			r.controllerToNames[s.Controller] = append(r.controllerToNames[s.Controller], name)
			r.resolvingToNames[s.Resolved] = append(r.resolvingToNames[s.Resolved], name)
		}
	}
	if state.Indexes != nil {
		r.ownerToNames = cloneIndex(state.Indexes.Owned)
		r.controllerToNames = cloneIndex(state.Indexes.Controlled)
		r.resolvingToNames = cloneIndex(state.Indexes.Resolving)
	}

	r.parents = make(map[string]string, len(state.Parents))
	for name, parent := range state.Parents {
		r.parents[name] = parent
	}
	r.primaryDomains = make(map[domain.AccountID]string, len(state.PrimaryDomains))
	for account, name := range state.PrimaryDomains {
		r.primaryDomains[account] = name
	}
	r.reserved = make(map[string]domain.AccountID, len(state.Reserved))
	for name, account := range state.Reserved {
		r.reserved[name] = account
	}

	return nil
}

func cloneIndex(index map[domain.AccountID][]string) map[domain.AccountID][]string {
	out := make(map[domain.AccountID][]string, len(index))
	for account, names := range index {
		out[account] = slices.Clone(names)
	}
	return out
}

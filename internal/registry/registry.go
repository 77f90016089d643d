package registry

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/azero-id/azns-toolkit/internal/domain"
	"github.com/azero-id/azns-toolkit/internal/logger"
	"github.com/azero-id/azns-toolkit/internal/merkle"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// registrationYears is the term priced for every registration.
const registrationYears = 1

type (
	nameChecker interface {
		IsNameAllowed(name string) error
	}
	pricer interface {
		TotalPrice(name string, years uint8) (*uint256.Int, error)
	}
	whitelistVerifier interface {
		Root() common.Hash
		VerifyProof(leaf common.Hash, proof []common.Hash) bool
		UpdateRoot(caller domain.AccountID, root common.Hash) error
	}

	// Config wires the registry to its collaborators. Every field except Owner is optional.
	Config struct {
		// Address is the registry's own account. It administers the whitelist verifier.
		Address      domain.AccountID
		Owner        domain.AccountID
		NameChecker  nameChecker
		Pricer       pricer
		Verifier     whitelistVerifier
		Reservations []domain.Reservation
		Events       EventSink
	}

	entry struct {
		owner      domain.AccountID
		controller domain.AccountID
		resolved   domain.AccountID
		records    []domain.Record
	}

	DomainStatusKind int

	// DomainStatus carries the account for Registered and Reserved names.
	DomainStatus struct {
		Kind    DomainStatusKind
		Account domain.AccountID
	}

	// Registry is the name service state machine. All methods are safe for concurrent use.
	Registry struct {
		mu sync.RWMutex

		address     domain.AccountID
		owner       domain.AccountID
		nameChecker nameChecker
		pricer      pricer
		verifier    whitelistVerifier
		events      EventSink
		logger      *slog.Logger

		names             map[string]*entry
		ownerToNames      map[domain.AccountID][]string
		controllerToNames map[domain.AccountID][]string
		resolvingToNames  map[domain.AccountID][]string
		primaryDomains    map[domain.AccountID]string
		parents           map[string]string
		reserved          map[string]domain.AccountID
		treasury          uint256.Int
	}
)

const (
	StatusAvailable DomainStatusKind = iota
	StatusRegistered
	StatusReserved
	StatusUnavailable
)

func (k DomainStatusKind) String() string {
	switch k {
	case StatusRegistered:
		return "registered"
	case StatusReserved:
		return "reserved"
	case StatusAvailable:
		return "available"
	default:
		return "unavailable"
	}
}

func New(cfg Config) *Registry {
	r := &Registry{
		address:           cfg.Address,
		owner:             cfg.Owner,
		nameChecker:       cfg.NameChecker,
		pricer:            cfg.Pricer,
		verifier:          cfg.Verifier,
		events:            cfg.Events,
		logger:            logger.Named("registry"),
		names:             make(map[string]*entry),
		ownerToNames:      make(map[domain.AccountID][]string),
		controllerToNames: make(map[domain.AccountID][]string),
		resolvingToNames:  make(map[domain.AccountID][]string),
		primaryDomains:    make(map[domain.AccountID]string),
		parents:           make(map[string]string),
		reserved:          make(map[string]domain.AccountID),
	}
	if r.events == nil {
		r.events = &EventRecorder{}
	}

	r.addReserved(cfg.Reservations)

	return r
}

func (r *Registry) Address() domain.AccountID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.address
}

func (r *Registry) Owner() domain.AccountID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owner
}

// Balance is the amount collected from registrations and not yet withdrawn.
func (r *Registry) Balance() *uint256.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return new(uint256.Int).Set(&r.treasury)
}

// Register buys name for the caller. During the whitelist phase the caller must
// provide a proof of inclusion and may only hold one name.
func (r *Registry) Register(caller domain.AccountID, name string, proof []common.Hash, payment *uint256.Int) error {
	return r.RegisterOnBehalfOf(caller, name, caller, proof, payment)
}

func (r *Registry) RegisterOnBehalfOf(caller domain.AccountID, name string, recipient domain.AccountID, proof []common.Hash, payment *uint256.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isNameAllowed(name) {
		return fmt.Errorf("%w: %q", ErrNameNotAllowed, name)
	}
	if _, ok := r.reserved[name]; ok {
		return fmt.Errorf("%w: %q", ErrCannotBuyReservedDomain, name)
	}

	if r.verifier != nil {
		if recipient != caller {
			return ErrRestrictedDuringWhitelistPhase
		}
		if _, ok := r.ownerToNames[caller]; ok {
			return ErrAlreadyClaimed
		}
		if !r.verifyProof(caller, proof) {
			return ErrInvalidMerkleProof
		}
	}

	price, err := r.price(name)
	if err != nil {
		return err
	}
	if payment == nil {
		payment = new(uint256.Int)
	}
	if payment.Lt(price) {
		return fmt.Errorf("%w: %s required", ErrFeeNotPaid, price.Dec())
	}

	if err := r.registerDomain(name, recipient); err != nil {
		return err
	}
	r.treasury.Add(&r.treasury, payment)

	return nil
}

// Price is what Register charges for name.
func (r *Registry) Price(name string) (*uint256.Int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.price(name)
}

func (r *Registry) price(name string) (*uint256.Int, error) {
	if r.pricer == nil {
		return new(uint256.Int), nil
	}
	price, err := r.pricer.TotalPrice(name, registrationYears)
	if err != nil {
		return nil, fmt.Errorf("failed to price %q: %w", name, err)
	}
	return price, nil
}

// ClaimReservedDomain registers a reserved name at no cost for the account it was reserved for.
func (r *Registry) ClaimReservedDomain(caller domain.AccountID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.reserved[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotReservedDomain, name)
	}
	if caller != user {
		return ErrNotAuthorised
	}

	if err := r.registerDomain(name, caller); err != nil {
		return err
	}
	delete(r.reserved, name)

	return nil
}

// AddReservedDomains reserves names. A nil address reserves the name for the default address.
func (r *Registry) AddReservedDomains(caller domain.AccountID, set []domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrCallerIsNotOwner
	}
	r.addReserved(set)
	return nil
}

func (r *Registry) addReserved(set []domain.Reservation) {
	for _, reservation := range set {
		account := domain.ZeroAccount
		if reservation.Address != nil {
			account = *reservation.Address
		}
		r.reserved[reservation.Name] = account
	}
}

func (r *Registry) RemoveReservedDomains(caller domain.AccountID, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrCallerIsNotOwner
	}
	for _, name := range names {
		delete(r.reserved, name)
	}
	return nil
}

// Release drops the caller's registration of name.
func (r *Registry) Release(caller domain.AccountID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.verifier != nil {
		return ErrRestrictedDuringWhitelistPhase
	}

	e, ok := r.names[name]
	if !ok || e.owner != caller {
		return ErrCallerIsNotOwner
	}

	delete(r.names, name)
	delete(r.parents, name)
	maps.DeleteFunc(r.parents, func(_, parent string) bool { return parent == name })
	removeName(r.ownerToNames, e.owner, name)
	removeName(r.controllerToNames, e.controller, name)
	removeName(r.resolvingToNames, e.resolved, name)
	if r.primaryDomains[e.resolved] == name {
		delete(r.primaryDomains, e.resolved)
	}

	r.emit(Event{Kind: EventRelease, Name: name, From: caller})

	return nil
}

// SetAddress changes the address name resolves to.
func (r *Registry) SetAddress(caller domain.AccountID, name string, address domain.AccountID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.ensureController(caller, name)
	if err != nil {
		return err
	}

	old := e.resolved
	e.resolved = address
	removeName(r.resolvingToNames, old, name)
	r.resolvingToNames[address] = append(r.resolvingToNames[address], name)

	if r.primaryDomains[old] == name {
		delete(r.primaryDomains, old)
	}

	r.emit(Event{Kind: EventSetAddress, Name: name, From: caller, Old: accountPtr(old), New: accountPtr(address)})

	return nil
}

// Transfer hands ownership of name to another account. Controller and resolved address are kept.
func (r *Registry) Transfer(caller domain.AccountID, name string, to domain.AccountID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.verifier != nil {
		return ErrRestrictedDuringWhitelistPhase
	}

	e, ok := r.names[name]
	if !ok || e.owner != caller {
		return ErrCallerIsNotOwner
	}

	old := e.owner
	e.owner = to
	removeName(r.ownerToNames, old, name)
	r.ownerToNames[to] = append(r.ownerToNames[to], name)

	r.emit(Event{Kind: EventTransfer, Name: name, From: caller, Old: accountPtr(old), New: accountPtr(to)})

	return nil
}

// SetController may be called by the owner or the current controller.
func (r *Registry) SetController(caller domain.AccountID, name string, controller domain.AccountID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.names[name]
	if !ok || (caller != e.owner && caller != e.controller) {
		return ErrCallerIsNotOwner
	}

	removeName(r.controllerToNames, e.controller, name)
	e.controller = controller
	r.controllerToNames[controller] = append(r.controllerToNames[controller], name)

	return nil
}

// SetParent nests name under the registered parent. Nesting is one level deep: a
// parent cannot have a parent and a name with children cannot get one. Releasing
// the parent drops the link.
func (r *Registry) SetParent(caller domain.AccountID, name, parent string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.ensureController(caller, name); err != nil {
		return err
	}
	if _, ok := r.parents[parent]; ok || parent == name {
		return ErrRecursiveParent
	}
	if r.hasChildren(name) {
		return ErrRecursiveParent
	}
	if _, ok := r.names[parent]; !ok {
		return ErrParentNotRegistered
	}

	r.parents[name] = parent
	return nil
}

func (r *Registry) hasChildren(name string) bool {
	for _, parent := range r.parents {
		if parent == name {
			return true
		}
	}
	return false
}

// FullName renders name together with its parent, if any.
func (r *Registry) FullName(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if parent, ok := r.parents[name]; ok {
		return name + "." + parent
	}
	return name
}

// SetPrimaryDomain sets the reverse record of address. name must resolve to address.
func (r *Registry) SetPrimaryDomain(caller, address domain.AccountID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.ensureController(caller, name)
	if err != nil {
		return err
	}
	if e.resolved != address {
		return ErrNoResolvedAddress
	}

	r.primaryDomains[address] = name
	return nil
}

// GetPrimaryDomain returns the reverse record of address if it still resolves back to address.
func (r *Registry) GetPrimaryDomain(address domain.AccountID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.primaryDomains[address]
	if !ok {
		return "", ErrNoResolvedAddress
	}
	if r.addressOf(name) != address {
		return "", ErrNoResolvedAddress
	}
	return name, nil
}

// Withdraw takes value out of the collected fees. Only the registry owner may withdraw.
func (r *Registry) Withdraw(caller domain.AccountID, value *uint256.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrCallerIsNotOwner
	}
	if value == nil {
		value = new(uint256.Int)
	}
	if value.Gt(&r.treasury) {
		return fmt.Errorf("%w: requested %s, available %s", ErrInsufficientFunds, value.Dec(), r.treasury.Dec())
	}

	r.treasury.Sub(&r.treasury, value)
	r.logger.Info("funds withdrawn", "amount", value.Dec(), "remaining", r.treasury.Dec())

	return nil
}

// UpdateMerkleRoot rotates the whitelist root.
func (r *Registry) UpdateMerkleRoot(caller domain.AccountID, root common.Hash) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrCallerIsNotOwner
	}
	if r.verifier == nil {
		return ErrOnlyDuringWhitelistPhase
	}
	if err := r.verifier.UpdateRoot(r.address, root); err != nil {
		return fmt.Errorf("failed to update merkle root: %w", err)
	}
	return nil
}

// VerifyProof reports whether account is whitelisted. It is false outside the whitelist phase
// and for a nil proof.
func (r *Registry) VerifyProof(account domain.AccountID, proof []common.Hash) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.verifyProof(account, proof)
}

func (r *Registry) verifyProof(account domain.AccountID, proof []common.Hash) bool {
	if proof == nil || r.verifier == nil {
		return false
	}
	return r.verifier.VerifyProof(merkle.AccountLeaf(account), proof)
}

// SwitchToPublicPhase detaches the whitelist verifier. It is a no-op in the public phase.
func (r *Registry) SwitchToPublicPhase(caller domain.AccountID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return ErrCallerIsNotOwner
	}
	if r.verifier != nil {
		r.verifier = nil
		r.emit(Event{Kind: EventPublicPhaseActivated, From: caller})
	}
	return nil
}

// MerkleRoot returns the whitelist root. It reports false in the public phase.
func (r *Registry) MerkleRoot() (common.Hash, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.verifier == nil {
		return common.Hash{}, false
	}
	return r.verifier.Root(), true
}

func (r *Registry) IsWhitelistPhase() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.verifier != nil
}

// GetAddress returns the resolved address of name or the default address.
func (r *Registry) GetAddress(name string) domain.AccountID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.addressOf(name)
}

func (r *Registry) addressOf(name string) domain.AccountID {
	if e, ok := r.names[name]; ok {
		return e.resolved
	}
	return domain.ZeroAccount
}

// GetOwner returns the owner of name or the default address.
func (r *Registry) GetOwner(name string) domain.AccountID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.names[name]; ok {
		return e.owner
	}
	return domain.ZeroAccount
}

// GetController returns the controller of name or the default address.
func (r *Registry) GetController(name string) domain.AccountID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.names[name]; ok {
		return e.controller
	}
	return domain.ZeroAccount
}

// GetOwnedNames lists the names of owner in the order they were acquired.
func (r *Registry) GetOwnedNames(owner domain.AccountID) []string {
	return r.indexLookup(r.ownerToNames, owner)
}

func (r *Registry) GetControlledNames(controller domain.AccountID) []string {
	return r.indexLookup(r.controllerToNames, controller)
}

func (r *Registry) GetResolvingNames(address domain.AccountID) []string {
	return r.indexLookup(r.resolvingToNames, address)
}

func (r *Registry) indexLookup(index map[domain.AccountID][]string, account domain.AccountID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(index[account])
}

func (r *Registry) GetDomainStatus(name string) DomainStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.names[name]; ok {
		return DomainStatus{Kind: StatusRegistered, Account: e.owner}
	}
	if user, ok := r.reserved[name]; ok {
		return DomainStatus{Kind: StatusReserved, Account: user}
	}
	if r.isNameAllowed(name) {
		return DomainStatus{Kind: StatusAvailable}
	}
	return DomainStatus{Kind: StatusUnavailable}
}

// GetRecord returns the value stored under key for name.
func (r *Registry) GetRecord(name, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.names[name]
	if !ok || e.records == nil {
		return "", ErrNoRecordsForAddress
	}
	for _, record := range e.records {
		if record.Key == key {
			return record.Value, nil
		}
	}
	return "", ErrRecordNotFound
}

// SetAllRecords replaces every record of name.
func (r *Registry) SetAllRecords(caller domain.AccountID, name string, records []domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.ensureController(caller, name)
	if err != nil {
		return err
	}

	e.records = append(make([]domain.Record, 0, len(records)), records...)
	return nil
}

func (r *Registry) GetAllRecords(name string) ([]domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.names[name]
	if !ok || e.records == nil {
		return nil, ErrNoRecordsForAddress
	}
	return slices.Clone(e.records), nil
}

func (r *Registry) registerDomain(name string, recipient domain.AccountID) error {
	if _, ok := r.names[name]; ok {
		return fmt.Errorf("%w: %q", ErrNameAlreadyExists, name)
	}

	r.names[name] = &entry{
		owner:      recipient,
		controller: recipient,
		resolved:   recipient,
	}
	r.ownerToNames[recipient] = append(r.ownerToNames[recipient], name)
	r.controllerToNames[recipient] = append(r.controllerToNames[recipient], name)
	r.resolvingToNames[recipient] = append(r.resolvingToNames[recipient], name)

	r.emit(Event{Kind: EventRegister, Name: name, From: recipient})

	return nil
}

func (r *Registry) ensureController(caller domain.AccountID, name string) (*entry, error) {
	e, ok := r.names[name]
	if !ok || e.controller != caller {
		return nil, ErrCallerIsNotController
	}
	return e, nil
}

func (r *Registry) isNameAllowed(name string) bool {
	if name == "" {
		return false
	}
	if r.nameChecker != nil && r.nameChecker.IsNameAllowed(name) != nil {
		return false
	}
	return true
}

// emit publishes event. A failing sink is logged and does not undo the state change.
func (r *Registry) emit(event Event) {
	if err := r.events.Publish(event); err != nil {
		r.logger.With("err", err.Error(), "kind", event.Kind, "name", event.Name).Error("failed to publish event")
	}
}

func removeName(index map[domain.AccountID][]string, account domain.AccountID, name string) {
	names, ok := index[account]
	if !ok {
		return
	}
	names = slices.DeleteFunc(names, func(n string) bool { return n == name })
	if len(names) == 0 {
		delete(index, account)
		return
	}
	index[account] = names
}

// Package ownable implements two-step admin handover shared by the admin-managed contracts.
package ownable

import (
	"errors"
	"sync"

	"github.com/azero-id/azns-toolkit/internal/domain"
)

var (
	ErrNotAdmin        = errors.New("caller is not admin")
	ErrNotPendingAdmin = errors.New("caller is not the pending admin")
	ErrNoPendingAdmin  = errors.New("no pending admin")
)

// Ownable holds the current admin and an optional pending admin.
type Ownable struct {
	mu      sync.RWMutex
	admin   domain.AccountID
	pending *domain.AccountID
}

func New(admin domain.AccountID) *Ownable {
	return &Ownable{admin: admin}
}

func (o *Ownable) Admin() domain.AccountID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.admin
}

func (o *Ownable) PendingAdmin() *domain.AccountID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.pending == nil {
		return nil
	}
	pending := *o.pending
	return &pending
}

// EnsureAdmin returns ErrNotAdmin unless caller is the current admin.
func (o *Ownable) EnsureAdmin(caller domain.AccountID) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if caller != o.admin {
		return ErrNotAdmin
	}
	return nil
}

// TransferOwnership nominates the next admin. A nil account cancels a pending handover.
func (o *Ownable) TransferOwnership(caller domain.AccountID, account *domain.AccountID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if caller != o.admin {
		return ErrNotAdmin
	}
	if account == nil {
		o.pending = nil
		return nil
	}
	next := *account
	o.pending = &next
	return nil
}

// AcceptOwnership completes the handover started by TransferOwnership.
func (o *Ownable) AcceptOwnership(caller domain.AccountID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return ErrNoPendingAdmin
	}
	if caller != *o.pending {
		return ErrNotPendingAdmin
	}
	o.admin = caller
	o.pending = nil
	return nil
}

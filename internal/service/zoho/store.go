package zoho

import (
	"context"
	"sync"
	"time"
)

// SafetyMargin is subtracted from the credential expiry so a token that is
// about to expire is never handed to a downstream call that may outlive it.
const SafetyMargin = 30 * time.Second

// Credential is the cached bearer credential for the Zoho API
type Credential struct {
	Value     string
	ExpiresAt time.Time
}

// refreshOp represents one in-flight exchange with Zoho accounts.
// At most one exists per store; it is created on demand and released
// on completion, success or failure alike.
type refreshOp struct {
	done chan struct{}
	err  error
}

// RefreshHandle lets a caller await the outcome of an in-flight refresh.
// Holders never mutate the operation, they only wait on it.
type RefreshHandle struct {
	op *refreshOp
}

// Wait blocks until the refresh completes or ctx is done.
// Returns the error the leader completed with, if any.
func (h RefreshHandle) Wait(ctx context.Context) error {
	select {
	case <-h.op.done:
		return h.op.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CredentialStore is a thread safe holder of the current credential and the
// active refresh operation. It never performs I/O itself: the broker does the
// network exchange, the store only coordinates who is allowed to do it.
type CredentialStore struct {
	mu     sync.Mutex
	cred   Credential
	active *refreshOp
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{}
}

// ReadIfValid returns the cached credential if it is still usable at 'now',
// honoring the safety margin. Pure read, critical section is field access only.
func (s *CredentialStore) ReadIfValid(now time.Time) (Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred.Value == "" || s.cred.ExpiresAt.IsZero() {
		return Credential{}, false
	}
	if !now.Before(s.cred.ExpiresAt.Add(-SafetyMargin)) {
		return Credential{}, false
	}

	return s.cred, true
}

// BeginRefresh returns a handle to the active refresh operation, creating one
// if none is running. The second return value reports whether the caller was
// elected leader and is responsible for performing the exchange and calling
// Complete. The check-and-create is atomic: two leaders cannot be elected.
func (s *CredentialStore) BeginRefresh() (RefreshHandle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return RefreshHandle{op: s.active}, false
	}

	s.active = &refreshOp{done: make(chan struct{})}
	return RefreshHandle{op: s.active}, true
}

// Complete installs the new credential on success or clears the cached state
// on failure, so the next caller attempts a fresh refresh. The refresh slot is
// released and waiters are woken unconditionally: a failed refresh must not
// leave the store wedged in a "refresh already running" state.
func (s *CredentialStore) Complete(h RefreshHandle, cred Credential, err error) {
	s.mu.Lock()
	if err == nil {
		s.cred = cred
	} else {
		s.cred = Credential{}
		h.op.err = err
	}
	s.active = nil
	s.mu.Unlock()

	close(h.op.done)
}

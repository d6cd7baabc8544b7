package grid

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrEditLockHeld is returned when an edit session is already active.
var ErrEditLockHeld = errors.New("grid: edit lock is held by another editor")

// EditController is the holder of an [EditLock]. It ends the session it
// guards.
type EditController interface {
	CommitCurrentEdit() bool
	CancelCurrentEdit() bool
}

// EditLock serializes edit sessions. There is at most one holder; the lock
// may be shared between grids so that only one editor is open across all of
// them.
type EditLock struct {
	mu     sync.Mutex
	holder EditController
}

// NewEditLock returns a free lock.
func NewEditLock() *EditLock { return &EditLock{} }

// IsActive reports whether c holds the lock, or whether anyone holds it when
// c is nil.
func (l *EditLock) IsActive(c EditController) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c == nil {
		return l.holder != nil
	}
	return l.holder == c
}

// Activate makes c the holder.
func (l *EditLock) Activate(c EditController) error {
	if c == nil {
		return errors.New("grid: edit lock holder must not be nil")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.holder == c {
		return nil
	}
	if l.holder != nil {
		slog.Warn("Edit lock contention")
		return ErrEditLockHeld
	}
	l.holder = c
	return nil
}

// Deactivate releases the lock held by c. Releasing a lock held by someone
// else is an error.
func (l *EditLock) Deactivate(c EditController) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.holder != c {
		return errors.New("grid: edit lock released by a non-holder")
	}
	l.holder = nil
	return nil
}

func (l *EditLock) current() EditController {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holder
}

// CommitCurrentEdit asks the holder to commit. It returns true when the lock
// is free.
func (l *EditLock) CommitCurrentEdit() bool {
	if h := l.current(); h != nil {
		return h.CommitCurrentEdit()
	}
	return true
}

// CancelCurrentEdit asks the holder to cancel. It returns true when the lock
// is free.
func (l *EditLock) CancelCurrentEdit() bool {
	if h := l.current(); h != nil {
		return h.CancelCurrentEdit()
	}
	return true
}

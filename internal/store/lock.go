package store

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrRunInProgress is returned when another process holds the run lock.
var ErrRunInProgress = errors.New("another reclaim run is in progress")

// RunLock keeps two processes from submitting closures for the same store at once.
type RunLock struct {
	lock *flock.Flock
}

// AcquireRunLock takes the lock file next to the store without blocking.
func AcquireRunLock(storePath string) (*RunLock, error) {
	lock := flock.New(storePath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	return &RunLock{lock: lock}, nil
}

// Release unlocks the run lock.
func (l *RunLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}

// Package flock acquires OS-level advisory locks on a byte range of an open
// file. Unix platforms use fcntl(2) record locks, Windows uses LockFileEx.
//
// Locks are advisory: they bind only other lockers. The lock is owned by the
// caller that acquired it and must be released through [Handle.Release]
// before the file is closed.
package flock

import (
	"context"
	"os"
	"time"

	"github.com/Iron-Ham/trackstore/internal/errors"
)

// Mode selects a shared (read) or exclusive (write) lock.
type Mode int

const (
	// Shared permits any number of concurrent shared holders.
	Shared Mode = iota
	// Exclusive permits a single holder and no shared holders.
	Exclusive
)

// String returns the mode name used in errors and logs.
func (m Mode) String() string {
	if m == Exclusive {
		return "exclusive"
	}
	return "shared"
}

// Kind classifies a failed lock attempt.
type Kind int

const (
	// KindIO is any failure that retrying will not fix.
	KindIO Kind = iota
	// KindCollision means the attempt raced with another lock held by this
	// same process. It is the only kind that is retried.
	KindCollision
)

// Retry bounds how often a colliding lock attempt is repeated.
type Retry struct {
	// Retries is the number of attempts after the first one.
	Retries int
	// Delay is the fixed pause between attempts.
	Delay time.Duration
}

// DefaultRetry allows 8 retries 50ms apart, 9 attempts in total.
var DefaultRetry = Retry{Retries: 8, Delay: 50 * time.Millisecond}

// Handle is a held lock. The zero value and nil are both safe to release.
type Handle struct {
	f        *os.File
	size     int64
	mode     Mode
	attempts int
	released bool
}

// Mode returns the mode the lock was acquired with.
func (h *Handle) Mode() Mode { return h.mode }

// Size returns the length of the locked range starting at offset 0.
func (h *Handle) Size() int64 { return h.size }

// Attempts returns how many attempts it took to acquire the lock.
func (h *Handle) Attempts() int { return h.attempts }

// Release unlocks the range. Releasing twice is a no-op.
func (h *Handle) Release() error {
	if h == nil || h.f == nil || h.released {
		return nil
	}
	h.released = true
	return unlockRange(h.f, h.size)
}

// Lock blocks until a lock of the given mode covers bytes [0, size) of f.
// Sizes below 1 are raised to 1 so an empty file still gets a lock.
//
// An attempt classified as [KindCollision] is retried after policy.Delay, up
// to policy.Retries times; exhausting them returns an error wrapping
// [errors.ErrLockCollision]. If ctx is done while waiting between attempts
// the error wraps [errors.ErrLockInterrupted] and ctx.Err(). Any other
// failure is returned at once.
func Lock(ctx context.Context, f *os.File, size int64, mode Mode, policy Retry) (*Handle, error) {
	size = max(size, 1)

	for attempt := 1; ; attempt++ {
		err := lockRange(f, size, mode)
		if err == nil {
			return &Handle{f: f, size: size, mode: mode, attempts: attempt}, nil
		}

		if classify(err) != KindCollision {
			return nil, errors.NewLockError(f.Name(), mode.String(), errors.Join(errors.ErrLockFailed, err)).
				WithAttempts(attempt)
		}
		if attempt > policy.Retries {
			return nil, errors.NewLockError(f.Name(), mode.String(), errors.Join(errors.ErrLockCollision, err)).
				WithAttempts(attempt)
		}

		if err := sleep(ctx, policy.Delay); err != nil {
			return nil, errors.NewLockError(f.Name(), mode.String(), errors.Join(errors.ErrLockInterrupted, err)).
				WithAttempts(attempt)
		}
	}
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Platform hooks, replaced in tests to simulate collisions.
var (
	lockRange   = platformLock
	unlockRange = platformUnlock
	classify    = platformClassify
)

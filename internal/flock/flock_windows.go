//go:build windows

package flock

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

func platformLock(f *os.File, size int64, mode Mode) error {
	var flags uint32
	if mode == Exclusive {
		flags = windows.LOCKFILE_EXCLUSIVE_LOCK
	}

	// The offset lives in the overlapped structure; zero means start of file.
	ol := new(windows.Overlapped)
	return windows.LockFileEx(
		windows.Handle(f.Fd()),
		flags,
		0, // reserved
		uint32(size),
		uint32(size>>32),
		ol,
	)
}

func platformUnlock(f *os.File, size int64) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(
		windows.Handle(f.Fd()),
		0, // reserved
		uint32(size),
		uint32(size>>32),
		ol,
	)
}

// LockFileEx reports a conflicting range held through another handle of
// this process as a lock violation.
func platformClassify(err error) Kind {
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return KindCollision
	}
	return KindIO
}

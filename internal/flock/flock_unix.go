//go:build unix

package flock

import (
	"errors"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// platformLock takes an fcntl record lock, which covers a byte range and is
// honored over most NFS mounts, unlike flock(2).
func platformLock(f *os.File, size int64, mode Mode) error {
	lk := unix.Flock_t{
		Type:   unix.F_RDLCK,
		Whence: int16(io.SeekStart),
		Start:  0,
		Len:    size,
	}
	if mode == Exclusive {
		lk.Type = unix.F_WRLCK
	}

	for {
		err := unix.FcntlFlock(f.Fd(), unix.F_SETLKW, &lk)
		if err != unix.EINTR {
			return err
		}
		// A signal woke the blocking wait; nothing was acquired yet.
	}
}

func platformUnlock(f *os.File, size int64) error {
	lk := unix.Flock_t{
		Type:   unix.F_UNLCK,
		Whence: int16(io.SeekStart),
		Start:  0,
		Len:    size,
	}
	return unix.FcntlFlock(f.Fd(), unix.F_SETLK, &lk)
}

// EDEADLK is how the kernel reports that granting the wait would deadlock
// with a lock this process (or one waiting on it) already holds.
func platformClassify(err error) Kind {
	if errors.Is(err, unix.EDEADLK) {
		return KindCollision
	}
	return KindIO
}

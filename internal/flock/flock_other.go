//go:build !unix && !windows

package flock

import "os"

// platformLock is a no-op where no advisory locking is available.
// Concurrent processes are not serialized on these platforms.
func platformLock(_ *os.File, _ int64, _ Mode) error {
	return nil
}

func platformUnlock(_ *os.File, _ int64) error {
	return nil
}

func platformClassify(_ error) Kind {
	return KindIO
}

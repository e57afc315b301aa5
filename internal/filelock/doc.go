// Package filelock provides the intra-process gate registry that sits
// beneath OS-level advisory file locks.
//
// POSIX record locks belong to the process, not to the goroutine or the
// file descriptor: a second lock request from the same process on an
// overlapping range is silently merged, and closing any descriptor for the
// file drops every lock the process holds on it. Two goroutines touching the
// same tracking file must therefore be serialized before either asks the
// kernel for a lock. The [Registry] hands out one mutex per lock key for
// that purpose.
//
// # Basic Usage
//
//	reg := filelock.NewRegistry()
//
//	unlock := reg.Lock("/repo/org/foo/1.0/_remote.repositories")
//	defer unlock()
//	// acquire the OS lock, operate, release the OS lock
//
// # Lifetime
//
// Gates are interned for the lifetime of the registry and never removed.
// The registry grows with the number of distinct keys touched, which for a
// tracking manager is the number of distinct tracking files.
//
// # Thread Safety
//
// All [Registry] methods are safe for concurrent use.
package filelock

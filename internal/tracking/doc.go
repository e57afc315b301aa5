// Package tracking manages concurrent access to tracking files: small
// key/value stores a resolver keeps next to resolved artifacts to remember
// facts such as which remote produced a file or when a download last failed.
//
// # Locking
//
// Every [Manager.Read] and [Manager.Update] runs one critical section per
// tracking file:
//
//	gate (in-process) -> OS advisory lock (with retry) -> operate -> unlock -> ungate
//
// The gate comes from a [filelock.Registry] keyed by the file's canonical
// path and keeps goroutines of one process from ever asking the kernel for
// overlapping locks. The OS lock, shared for reads and exclusive for
// updates, extends the same discipline to other processes sharing the
// repository. Updates truncate and rewrite the whole file while holding the
// exclusive lock, so a reader sees either the previous or the next version.
//
// # Failure Handling
//
// Tracking data is advisory. Neither operation returns an error: failures
// are logged at warn level and degrade to "no data" for Read or to the
// in-memory merge result for Update.
//
// # Basic Usage
//
//	mgr := tracking.NewManager(tracking.WithLogger(logger))
//
//	mgr.Update(ctx, path, tracking.NewChanges().
//	    Set("junit-4.13.jar>central", "").
//	    Remove("junit-4.13.jar>"))
//
//	props, ok := mgr.Read(ctx, path)
//	if !ok {
//	    // no tracking data
//	}
package tracking

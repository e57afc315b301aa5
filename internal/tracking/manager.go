package tracking

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/Iron-Ham/trackstore/internal/errors"
	"github.com/Iron-Ham/trackstore/internal/filelock"
	"github.com/Iron-Ham/trackstore/internal/flock"
	"github.com/Iron-Ham/trackstore/internal/logging"
	"github.com/Iron-Ham/trackstore/internal/properties"
)

// DefaultHeader is the comment written at the top of every tracking file.
const DefaultHeader = "NOTE: This is a resolver internal implementation file, its format can be changed without prior notice."

// Logger receives the warnings the manager absorbs instead of returning.
// *logging.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Manager serializes reads and updates of tracking files across the
// goroutines of this process and, through advisory locks, across processes.
// It is safe for concurrent use.
type Manager struct {
	log    Logger
	gates  *filelock.Registry
	retry  flock.Retry
	header string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the warning sink. A nil logger discards output.
func WithLogger(l Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithRegistry shares a gate registry between managers so they serialize
// against each other. Managers with separate registries on the same files
// can collide at the OS lock level.
func WithRegistry(r *filelock.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.gates = r
		}
	}
}

// WithRetry overrides how colliding lock attempts are retried.
func WithRetry(retries int, delay time.Duration) Option {
	return func(m *Manager) {
		m.retry = flock.Retry{Retries: max(retries, 0), Delay: max(delay, 0)}
	}
}

// WithHeader overrides the header comment written on update.
func WithHeader(header string) Option {
	return func(m *Manager) {
		m.header = header
	}
}

// NewManager creates a Manager with its own gate registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		log:    logging.NopLogger(),
		gates:  filelock.NewRegistry(),
		retry:  flock.DefaultRetry,
		header: DefaultHeader,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the gate registry the manager locks through.
func (m *Manager) Registry() *filelock.Registry {
	return m.gates
}

// Read loads the tracking file at path under a shared lock.
// ok is false when the file does not exist or could not be read; a missing
// file is not logged and nothing is created.
func (m *Manager) Read(ctx context.Context, path string) (props map[string]string, ok bool) {
	unlock := m.gates.Lock(m.lockKey(path))
	defer unlock()

	props, err := m.read(ctx, path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			m.report("failed to read tracking file", path, err)
		}
		return nil, false
	}
	return props, true
}

// read performs the locked part of Read. The lock is released before the
// file is closed on every return.
func (m *Manager) read(ctx context.Context, path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer m.closeFile(f, path)

	info, err := f.Stat()
	if err != nil {
		return nil, errors.NewTrackingError(errors.OpStat, path, err)
	}

	lock, err := flock.Lock(ctx, f, info.Size(), flock.Shared, m.retry)
	if err != nil {
		return nil, errors.NewTrackingError(errors.OpLock, path, err)
	}
	defer m.releaseLock(lock, path)

	props, err := properties.Decode(f)
	if err != nil {
		return nil, errors.NewTrackingError(errors.OpRead, path, errors.Join(errors.ErrMalformedStore, err))
	}
	return props, nil
}

// Update merges changes into the tracking file at path under an exclusive
// lock and rewrites it, creating the file and its parent directories as
// needed. It returns the merged view, which is also what it attempted to
// write; a failed write is logged, not returned. If the parent directory
// cannot be created the file is left alone and an empty map is returned.
// An empty key cannot be stored, so a change naming one is logged and
// skipped.
func (m *Manager) Update(ctx context.Context, path string, changes Changes) map[string]string {
	props := make(map[string]string)

	unlock := m.gates.Lock(m.lockKey(path))
	defer unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil && !isDir(dir) {
		m.log.Warn("failed to create parent directories for tracking file", "path", path,
			"error", errors.NewTrackingError(errors.OpMkdir, dir, errors.Join(errors.ErrDirectoryCreate, err)))
		return props
	}

	if _, ok := changes[""]; ok {
		m.log.Warn("ignoring empty key in tracking file update", "path", path)
	}

	if err := m.update(ctx, path, changes, props); err != nil {
		m.report("failed to write tracking file", path, err)
	}
	return props
}

// update performs the locked read-merge-write cycle, filling props as it
// goes so the caller keeps whatever was computed before a failure.
func (m *Manager) update(ctx context.Context, path string, changes Changes, props map[string]string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return errors.NewTrackingError(errors.OpOpen, path, err)
	}
	defer m.closeFile(f, path)

	info, err := f.Stat()
	if err != nil {
		return errors.NewTrackingError(errors.OpStat, path, err)
	}

	lock, err := flock.Lock(ctx, f, info.Size(), flock.Exclusive, m.retry)
	if err != nil {
		return errors.NewTrackingError(errors.OpLock, path, err)
	}
	defer m.releaseLock(lock, path)

	// Another process may have rewritten the file between Stat and Lock,
	// so the base is read only now.
	base, err := properties.Decode(f)
	if err != nil {
		return errors.NewTrackingError(errors.OpRead, path, errors.Join(errors.ErrMalformedStore, err))
	}
	maps.Copy(props, base)
	changes.applyTo(props)

	var buf bytes.Buffer
	if err := properties.Encode(&buf, props, m.header); err != nil {
		return errors.NewTrackingError(errors.OpWrite, path, err)
	}

	m.log.Debug("writing tracking file", "path", path,
		"lock_bytes", lock.Size(), "lock_attempts", lock.Attempts())
	if err := f.Truncate(0); err != nil {
		return errors.NewTrackingError(errors.OpTruncate, path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return errors.NewTrackingError(errors.OpWrite, path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		return errors.NewTrackingError(errors.OpWrite, path, err)
	}
	return nil
}

// report logs a failed call. Failures below warning severity, such as a
// lock wait the caller cancelled, go to debug.
func (m *Manager) report(msg, path string, err error) {
	if errors.GetSeverity(err) < errors.SeverityWarning {
		m.log.Debug(msg, "path", path, "error", err, "retryable", errors.IsRetryable(err))
		return
	}
	m.log.Warn(msg, "path", path, "error", err, "retryable", errors.IsRetryable(err))
}

// releaseLock unlocks and logs, leaving the call's outcome untouched.
func (m *Manager) releaseLock(lock *flock.Handle, path string) {
	if err := lock.Release(); err != nil {
		m.log.Warn("error releasing lock for tracking file", "path", path, "error", err)
	}
}

func (m *Manager) closeFile(f *os.File, path string) {
	if err := f.Close(); err != nil {
		m.log.Warn("error closing tracking file", "path", path, "error", err)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Package errors defines the errors raised while locking, reading and
// rewriting tracking files, and the helpers that decide how they are
// reported.
//
// # Error Types
//
//   - TrackingError: one failed step of a Read or Update, with its path
//   - LockError: a failed advisory lock acquisition, with mode and attempts
//
// # Usage
//
//	err := errors.NewTrackingError(errors.OpWrite, path, cause)
//	err := errors.NewLockError(path, "exclusive", errors.ErrLockCollision).WithAttempts(9)
//
//	if errors.IsRetryable(err) { ... }
//	if errors.GetSeverity(err) < errors.SeverityWarning { ... }
//
// None of these errors cross the tracking manager's Read/Update boundary.
// The manager logs them, choosing the level from their severity.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions so callers import a single package.
var (
	Is   = errors.Is
	As   = errors.As
	New  = errors.New
	Join = errors.Join
)

// Severity ranks how loudly an error should be reported.
type Severity int

const (
	// SeverityDebug is only interesting while diagnosing.
	SeverityDebug Severity = iota
	// SeverityInfo is expected during normal operation, e.g. a caller
	// cancelling its own request.
	SeverityInfo
	// SeverityWarning means tracking data was lost or not written.
	SeverityWarning
	// SeverityError is used for errors outside this package's types.
	SeverityError
)

// String returns the lower-case name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Lock sentinels.
var (
	// ErrLockCollision means every attempt collided with another lock held
	// by this same process.
	ErrLockCollision = New("overlapping lock held within this process")
	// ErrLockInterrupted means the wait between attempts was cut short.
	ErrLockInterrupted = New("lock acquisition interrupted")
	// ErrLockFailed means the platform refused the lock for any other reason.
	ErrLockFailed = New("could not lock file")
)

// Tracking file sentinels.
var (
	// ErrDirectoryCreate means the parent directory could not be created.
	ErrDirectoryCreate = New("failed to create parent directories")
	// ErrMalformedStore means existing content could not be parsed.
	ErrMalformedStore = New("malformed tracking file")
	// ErrInvalidInput means a value cannot be represented in a tracking file.
	ErrInvalidInput = New("invalid input")
)

// DomainError is implemented by every error type in this package.
type DomainError interface {
	error
	Unwrap() error
	Severity() Severity
	IsRetryable() bool
}

// baseError holds the fields shared by the domain error types.
type baseError struct {
	cause     error
	severity  Severity
	retryable bool
}

func (e *baseError) Unwrap() error      { return e.cause }
func (e *baseError) Severity() Severity { return e.severity }
func (e *baseError) IsRetryable() bool  { return e.retryable }

// format renders "<kind> [k=v, ...]: <cause or fallback>".
func format(kind string, fields []string, cause error, fallback string) string {
	var sb strings.Builder
	sb.WriteString(kind)
	if len(fields) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(fields, ", "))
		sb.WriteString("]")
	}
	switch {
	case cause != nil:
		fmt.Fprintf(&sb, ": %v", cause)
	case fallback != "":
		sb.WriteString(": ")
		sb.WriteString(fallback)
	}
	return sb.String()
}

// Op names the step of a tracking file operation that failed.
type Op string

// Tracking file operation steps.
const (
	OpOpen     Op = "open"
	OpStat     Op = "stat"
	OpLock     Op = "lock"
	OpRead     Op = "read"
	OpWrite    Op = "write"
	OpTruncate Op = "truncate"
	OpMkdir    Op = "mkdir"
)

// TrackingError is a failed step against a tracking file.
//
//	err := errors.NewTrackingError(errors.OpWrite, "/repo/x/_remote.repositories", io.ErrShortWrite)
//	fmt.Println(err) // "tracking file error [op=write, path=/repo/x/_remote.repositories]: short write"
type TrackingError struct {
	baseError
	Op   Op
	Path string
}

// NewTrackingError creates a TrackingError at warning severity. It is
// retryable, and reported one level lower, when cause says so: a lock
// collision may clear on the next call, and an interrupted lock wait was
// requested by the caller.
func NewTrackingError(op Op, path string, cause error) *TrackingError {
	severity := SeverityWarning
	if Is(cause, ErrLockInterrupted) {
		severity = SeverityInfo
	}
	return &TrackingError{
		baseError: baseError{
			cause:     cause,
			severity:  severity,
			retryable: IsRetryable(cause),
		},
		Op:   op,
		Path: path,
	}
}

// Error returns the formatted error message.
func (e *TrackingError) Error() string {
	var fields []string
	if e.Op != "" {
		fields = append(fields, "op="+string(e.Op))
	}
	if e.Path != "" {
		fields = append(fields, "path="+e.Path)
	}
	return format("tracking file error", fields, e.cause, "")
}

// Is matches any *TrackingError, then defers to the cause.
func (e *TrackingError) Is(target error) bool {
	_, ok := target.(*TrackingError)
	return ok
}

// LockError is a failed advisory lock acquisition.
//
//	err := errors.NewLockError("/repo/resolver-status.properties", "shared", errors.ErrLockCollision).WithAttempts(9)
//	fmt.Println(err) // "lock error [path=/repo/resolver-status.properties, mode=shared, attempts=9]: overlapping lock held within this process"
type LockError struct {
	baseError
	Path     string
	Mode     string
	Attempts int
}

// NewLockError creates a LockError. Collisions are retryable since a later
// call may find the overlapping lock released.
func NewLockError(path, mode string, cause error) *LockError {
	return &LockError{
		baseError: baseError{
			cause:     cause,
			severity:  SeverityWarning,
			retryable: Is(cause, ErrLockCollision),
		},
		Path: path,
		Mode: mode,
	}
}

// WithAttempts records how many lock attempts were made.
func (e *LockError) WithAttempts(n int) *LockError {
	e.Attempts = n
	return e
}

// Error returns the formatted error message.
func (e *LockError) Error() string {
	var fields []string
	if e.Path != "" {
		fields = append(fields, "path="+e.Path)
	}
	if e.Mode != "" {
		fields = append(fields, "mode="+e.Mode)
	}
	if e.Attempts > 0 {
		fields = append(fields, fmt.Sprintf("attempts=%d", e.Attempts))
	}
	return format("lock error", fields, e.cause, ErrLockFailed.Error())
}

// Is matches any *LockError and ErrLockFailed, then defers to the cause.
func (e *LockError) Is(target error) bool {
	if _, ok := target.(*LockError); ok {
		return true
	}
	return target == ErrLockFailed
}

// IsRetryable reports whether a later call may succeed where this one
// failed: the outermost DomainError decides, otherwise a wrapped
// ErrLockCollision does.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var domainErr DomainError
	if As(err, &domainErr) {
		return domainErr.IsRetryable()
	}
	return Is(err, ErrLockCollision)
}

// GetSeverity returns the severity of the outermost DomainError in err's
// chain, SeverityError for any other error, and SeverityDebug for nil.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var domainErr DomainError
	if As(err, &domainErr) {
		return domainErr.Severity()
	}
	return SeverityError
}

// Wrap adds message in front of err, or returns nil for a nil err.
//
//	err := errors.Wrap(baseErr, "parse properties")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
//
//	err := errors.Wrapf(baseErr, "failed to open log file %s", path)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

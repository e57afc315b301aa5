package tracking

import (
	"io/fs"
	"path/filepath"

	"github.com/Iron-Ham/trackstore/internal/errors"
)

// lockKey returns the identity two goroutines must agree on before touching
// path. It is the canonical path where that can be resolved and the absolute
// path otherwise.
//
// NOTE: the fallback key may fail to match another spelling of the same file
// (symlinks, case-insensitive filesystems), in which case the two callers are
// not serialized in this process.
func (m *Manager) lockKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	key, err := canonicalPath(abs)
	if err != nil {
		m.log.Warn("failed to canonicalize path", "path", path, "error", err)
		return abs
	}
	return key
}

// canonicalPath resolves symlinks in abs. Trailing components that do not
// exist yet are re-joined onto the deepest ancestor that does, so a
// tracking file keeps the same key before and after it is first created.
func canonicalPath(abs string) (string, error) {
	var missing []string
	p := abs

	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			parts := append([]string{resolved}, missing...)
			return filepath.Join(parts...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}

		parent := filepath.Dir(p)
		if parent == p {
			return "", err
		}
		missing = append([]string{filepath.Base(p)}, missing...)
		p = parent
	}
}

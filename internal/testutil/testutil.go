// Package testutil provides testing utilities for trackstore tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// HelperEnv is set in the environment of a re-executed test binary so the
// helper test knows it should run instead of skipping.
const HelperEnv = "TRACKSTORE_TEST_HELPER"

// WriteFile creates path relative to dir with content, creating parent
// directories as needed. Returns the full path.
func WriteFile(t *testing.T, dir, path, content string) string {
	t.Helper()

	fullPath := filepath.Join(dir, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return fullPath
}

// ReadFile returns the content of path, failing the test if it cannot be read.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return string(data)
}

// AssertNotExist fails the test if anything exists at path.
func AssertNotExist(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Lstat(path); err == nil {
		t.Errorf("%s exists, want it absent", path)
	} else if !os.IsNotExist(err) {
		t.Errorf("stat %s: %v", path, err)
	}
}

// HelperCommand returns a command that re-runs the current test binary
// restricted to the test named name, with HelperEnv set and env appended.
// The named test should return early unless IsHelperProcess reports true.
func HelperCommand(t *testing.T, name string, env ...string) *exec.Cmd {
	t.Helper()

	cmd := exec.Command(os.Args[0], "-test.run=^"+name+"$", "-test.count=1")
	cmd.Env = append(os.Environ(), HelperEnv+"=1")
	cmd.Env = append(cmd.Env, env...)
	return cmd
}

// IsHelperProcess reports whether this binary was started by HelperCommand.
func IsHelperProcess() bool {
	return os.Getenv(HelperEnv) == "1"
}

// SkipIfNoSymlinks skips the test when the platform cannot create symlinks
// without elevated privileges.
func SkipIfNoSymlinks(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require elevated privileges on windows")
	}
}

// SkipIfRoot skips the test when running as root, where permission-based
// failures cannot be provoked.
func SkipIfRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() == 0 {
		t.Skip("test requires a non-root user")
	}
}

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/trackstore/internal/testutil"
	"github.com/Iron-Ham/trackstore/internal/tracking"
)

// resetState isolates a test from the user's config and from flag and
// viper state left behind by earlier Execute calls.
func resetState(t *testing.T) {
	t.Helper()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	viper.Reset()
	bindFlags()

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	readOutput, readMaxWidth = formatProperties, 60
	updateSet, updateRemove, updateOutput = nil, nil, formatProperties
}

// executeCommand runs the root command with args and returns captured output
func executeCommand(t *testing.T, args ...string) (output string, err error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "trackstore" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "trackstore")
	}

	// Compare by Name(), not Use which includes args
	expectedCmds := []string{"read", "update", "config"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}

	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestUpdateThenRead(t *testing.T) {
	resetState(t)
	path := filepath.Join(t.TempDir(), "repo", "_remote.repositories")

	out, err := executeCommand(t, "update", path, "--set", "b=2", "--set", "a=1")
	if err != nil {
		t.Fatalf("update failed: %v\nOutput: %s", err, out)
	}
	if out != "a=1\nb=2\n" {
		t.Errorf("update output = %q, want merged entries", out)
	}

	resetState(t)
	out, err = executeCommand(t, "update", path, "--remove", "a", "--set", "c=x=y")
	if err != nil {
		t.Fatalf("second update failed: %v\nOutput: %s", err, out)
	}

	resetState(t)
	out, err = executeCommand(t, "read", path)
	if err != nil {
		t.Fatalf("read failed: %v\nOutput: %s", err, out)
	}
	if want := "b=2\nc=x\\=y\n"; out != want {
		t.Errorf("read output = %q, want %q", out, want)
	}

	content := testutil.ReadFile(t, path)
	if !strings.HasPrefix(content, "#"+tracking.DefaultHeader+"\n") {
		t.Errorf("file content = %q, want default header", content)
	}
}

func TestRead_Missing(t *testing.T) {
	resetState(t)
	path := filepath.Join(t.TempDir(), "absent.properties")

	_, err := executeCommand(t, "read", path)
	if err == nil {
		t.Fatal("read of a missing file should fail")
	}
	if !strings.Contains(err.Error(), ErrNoData.Error()) {
		t.Errorf("error = %v, want %v", err, ErrNoData)
	}
	testutil.AssertNotExist(t, path)
}

func TestRead_Formats(t *testing.T) {
	want := map[string]string{"lastUpdated": "1700000000000", "artifact.jar>central": ""}

	t.Run("json", func(t *testing.T) {
		resetState(t)
		path := testutil.WriteFile(t, t.TempDir(), "t.properties", "lastUpdated=1700000000000\nartifact.jar>central=\n")

		out, err := executeCommand(t, "read", path, "-o", "json")
		if err != nil {
			t.Fatalf("read failed: %v\nOutput: %s", err, out)
		}
		var got map[string]string
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("output is not json: %v\n%s", err, out)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("json mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		resetState(t)
		path := testutil.WriteFile(t, t.TempDir(), "t.properties", "lastUpdated=1700000000000\nartifact.jar>central=\n")

		out, err := executeCommand(t, "read", path, "--output", "yaml")
		if err != nil {
			t.Fatalf("read failed: %v\nOutput: %s", err, out)
		}
		var got map[string]string
		if err := yaml.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("output is not yaml: %v\n%s", err, out)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("yaml mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("table", func(t *testing.T) {
		resetState(t)
		long := strings.Repeat("v", 100)
		path := testutil.WriteFile(t, t.TempDir(), "t.properties", "key="+long+"\n")

		out, err := executeCommand(t, "read", path, "-o", "table", "--max-width", "20")
		if err != nil {
			t.Fatalf("read failed: %v\nOutput: %s", err, out)
		}
		for _, s := range []string{"KEY", "VALUE", "key", strings.Repeat("v", 17) + "..."} {
			if !strings.Contains(out, s) {
				t.Errorf("table output missing %q:\n%s", s, out)
			}
		}
		if strings.Contains(out, long) {
			t.Errorf("table output was not truncated:\n%s", out)
		}
	})
}

func TestRead_UnknownFormat(t *testing.T) {
	resetState(t)
	path := testutil.WriteFile(t, t.TempDir(), "t.properties", "a=1\n")

	_, err := executeCommand(t, "read", path, "-o", "xml")
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("error = %v, want unknown output format", err)
	}
}

func TestUpdate_NothingToDo(t *testing.T) {
	resetState(t)
	path := filepath.Join(t.TempDir(), "t.properties")

	_, err := executeCommand(t, "update", path)
	if err == nil {
		t.Fatal("update without changes should fail")
	}
	testutil.AssertNotExist(t, path)
}

func TestParseChanges(t *testing.T) {
	tests := []struct {
		name    string
		sets    []string
		removes []string
		want    tracking.Changes
		wantErr bool
	}{
		{
			name:    "set and remove",
			sets:    []string{"a=1"},
			removes: []string{"b"},
			want:    tracking.Changes{"a": tracking.String("1"), "b": nil},
		},
		{
			name: "value containing equals",
			sets: []string{"a=x=y"},
			want: tracking.Changes{"a": tracking.String("x=y")},
		},
		{
			name: "empty value",
			sets: []string{"a="},
			want: tracking.Changes{"a": tracking.String("")},
		},
		{
			name:    "set wins over remove",
			sets:    []string{"a=1"},
			removes: []string{"a"},
			want:    tracking.Changes{"a": tracking.String("1")},
		},
		{name: "missing separator", sets: []string{"a"}, wantErr: true},
		{name: "empty key", sets: []string{"=1"}, wantErr: true},
		{name: "empty remove", removes: []string{""}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseChanges(tt.sets, tt.removes)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseChanges() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseChanges() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInvalidLogLevel(t *testing.T) {
	resetState(t)
	path := filepath.Join(t.TempDir(), "t.properties")

	_, err := executeCommand(t, "--log-level", "loud", "update", path, "--set", "a=1")
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("error = %v, want invalid configuration", err)
	}
	testutil.AssertNotExist(t, path)
}

func TestLogDirFromConfig(t *testing.T) {
	resetState(t)
	logDir := t.TempDir()
	cfgPath := testutil.WriteFile(t, t.TempDir(), "config.yaml",
		"logging:\n  level: debug\n  dir: "+logDir+"\n")
	path := filepath.Join(t.TempDir(), "t.properties")

	if out, err := executeCommand(t, "--config", cfgPath, "update", path, "--set", "a=1"); err != nil {
		t.Fatalf("update failed: %v\nOutput: %s", err, out)
	}

	logs := testutil.ReadFile(t, filepath.Join(logDir, "trackstore.log"))
	if !strings.Contains(logs, "writing tracking file") || !strings.Contains(logs, `"component":"tracking"`) {
		t.Errorf("log file missing debug write entry:\n%s", logs)
	}
	if !strings.Contains(logs, fmt.Sprintf(`"pid":%d`, os.Getpid())) {
		t.Errorf("log file missing pid attribute:\n%s", logs)
	}
}

func TestHeaderFromEnv(t *testing.T) {
	resetState(t)
	t.Setenv("TRACKSTORE_TRACKING_HEADER", "from env")
	path := filepath.Join(t.TempDir(), "t.properties")

	if out, err := executeCommand(t, "update", path, "--set", "a=1"); err != nil {
		t.Fatalf("update failed: %v\nOutput: %s", err, out)
	}

	if got := testutil.ReadFile(t, path); got != "#from env\na=1\n" {
		t.Errorf("file content = %q, want env header", got)
	}
}

func TestConfigShow(t *testing.T) {
	resetState(t)

	out, err := executeCommand(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v\nOutput: %s", err, out)
	}
	for _, s := range []string{"(none - using defaults)", "lock_retries: 8", "lock_retry_delay_ms: 50", "level: info"} {
		if !strings.Contains(out, s) {
			t.Errorf("config show output missing %q:\n%s", s, out)
		}
	}
}

func TestConfigInit(t *testing.T) {
	resetState(t)

	out, err := executeCommand(t, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v\nOutput: %s", err, out)
	}

	configFile := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "trackstore", "config.yaml")
	content := testutil.ReadFile(t, configFile)
	if !strings.Contains(content, "lock_retries: 8") {
		t.Errorf("config file missing defaults:\n%s", content)
	}

	if _, err := executeCommand(t, "config", "init"); err == nil {
		t.Error("second config init should fail")
	}
}

func TestConfigPath(t *testing.T) {
	resetState(t)

	out, err := executeCommand(t, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if !strings.Contains(out, "TRACKSTORE_") {
		t.Errorf("config path output missing env hint:\n%s", out)
	}
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/trackstore/internal/tracking"
)

var (
	updateSet    []string
	updateRemove []string
	updateOutput string
)

var updateCmd = &cobra.Command{
	Use:   "update <file>",
	Short: "Merge changes into a tracking file",
	Long: `Merge changes into a tracking file under an exclusive lock, creating the
file and its parent directories if needed, then print the merged entries.

Keys not named by --set or --remove are left as they are. A key named by
both is set; --remove only applies to keys without a --set.

Examples:
  trackstore update _remote.repositories --set "lib-1.0.jar>central="
  trackstore update resolver-status.properties --set lastUpdated=1700000000000 --remove error`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringArrayVar(&updateSet, "set", nil, "set key=value (repeatable)")
	updateCmd.Flags().StringArrayVar(&updateRemove, "remove", nil, "remove key (repeatable)")
	updateCmd.Flags().StringVarP(&updateOutput, "output", "o", formatProperties,
		"output format for the merged entries: properties, json, yaml, table")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	changes, err := parseChanges(updateSet, updateRemove)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return fmt.Errorf("nothing to update: pass at least one --set or --remove")
	}

	mgr, closeLog, err := newManager()
	if err != nil {
		return err
	}
	defer closeLog()

	merged := mgr.Update(cmd.Context(), args[0], changes)
	return writeProps(cmd.OutOrStdout(), merged, updateOutput, 0)
}

// parseChanges turns flag values into Changes. A --set argument splits on
// its first '=', so values may contain '=' and the separator's absence is
// an error.
func parseChanges(sets, removes []string) (tracking.Changes, error) {
	changes := tracking.NewChanges()
	for _, key := range removes {
		if key == "" {
			return nil, fmt.Errorf("--remove needs a key")
		}
		changes.Remove(key)
	}
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", kv)
		}
		if key == "" {
			return nil, fmt.Errorf("invalid --set %q: empty key", kv)
		}
		changes.Set(key, value)
	}
	return changes, nil
}

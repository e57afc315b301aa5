package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/trackstore/internal/properties"
	"github.com/Iron-Ham/trackstore/internal/util"
)

// ErrNoData is returned by the read command when the tracking file is
// missing or could not be loaded.
var ErrNoData = errors.New("no tracking data")

// Output formats accepted by --output.
const (
	formatProperties = "properties"
	formatJSON       = "json"
	formatYAML       = "yaml"
	formatTable      = "table"
)

var (
	readOutput   string
	readMaxWidth int
)

var readCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Print the entries of a tracking file",
	Long: `Print the entries of a tracking file, taking a shared lock while reading.

Exits with status 1 if the file does not exist or cannot be parsed.

Examples:
  trackstore read ~/.m2/repository/org/example/lib/1.0/_remote.repositories
  trackstore read resolver-status.properties -o json
  trackstore read resolver-status.properties -o table --max-width 40`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().StringVarP(&readOutput, "output", "o", formatProperties,
		"output format: properties, json, yaml, table")
	readCmd.Flags().IntVar(&readMaxWidth, "max-width", 60, "truncate table values to this many columns (0 for no limit)")
}

func runRead(cmd *cobra.Command, args []string) error {
	if !slices.Contains(validFormats(), readOutput) {
		return fmt.Errorf("unknown output format %q (valid: %v)", readOutput, validFormats())
	}

	mgr, closeLog, err := newManager()
	if err != nil {
		return err
	}
	defer closeLog()

	props, ok := mgr.Read(cmd.Context(), args[0])
	if !ok {
		return fmt.Errorf("%w at %s", ErrNoData, args[0])
	}

	return writeProps(cmd.OutOrStdout(), props, readOutput, readMaxWidth)
}

func validFormats() []string {
	return []string{formatProperties, formatJSON, formatYAML, formatTable}
}

// writeProps renders props to w in format. Every format lists keys in
// sorted order.
func writeProps(w io.Writer, props map[string]string, format string, maxWidth int) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(props, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatYAML:
		data, err := yaml.Marshal(props)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case formatTable:
		_, err := fmt.Fprintln(w, renderTable(props, maxWidth))
		return err
	default:
		return properties.Encode(w, props, "")
	}
}

var tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var tableCellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderTable(props map[string]string, maxWidth int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("KEY", "VALUE").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})

	for _, k := range slices.Sorted(maps.Keys(props)) {
		t.Row(
			util.Truncate(util.Printable(k), maxWidth),
			util.Truncate(util.Printable(props[k]), maxWidth),
		)
	}
	return t.String()
}

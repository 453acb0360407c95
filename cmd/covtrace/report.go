package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"covtrace/internal/covdata"
)

var reportShowLines bool

func init() {
	reportCmd.Flags().BoolVar(&reportShowLines, "show-lines", false, "list covered line numbers per unit")
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show collected coverage totals per source unit",
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, _ []string) error {
	if err := setupColor(cmd); err != nil {
		return err
	}
	path, err := resolveDataPath(cmd)
	if err != nil {
		return err
	}

	set, err := covdata.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			_, _ = fmt.Fprintf(os.Stdout, "no coverage data at %s\n", path)
			return nil
		}
		return err
	}

	out := cmd.OutOrStdout()
	units := set.Units()
	if len(units) == 0 {
		_, _ = fmt.Fprintln(out, "coverage data is empty")
		return nil
	}

	nameWidth := len("unit")
	for _, tag := range units {
		if len(tag) > nameWidth {
			nameWidth = len(tag)
		}
	}

	header := color.New(color.Bold)
	_, _ = header.Fprintf(out, "%-*s %8s\n", nameWidth, "unit", "lines")

	total := 0
	for _, tag := range units {
		lines := set.Lines(tag)
		total += len(lines)
		_, _ = fmt.Fprintf(out, "%-*s %8d\n", nameWidth, tag, len(lines))
		if reportShowLines {
			_, _ = fmt.Fprintf(out, "%-*s   %s\n", nameWidth, "", formatLineRanges(lines))
		}
	}
	_, _ = header.Fprintf(out, "%-*s %8d\n", nameWidth, "total", total)
	return nil
}

// formatLineRanges renders sorted line numbers compactly, folding runs of
// consecutive lines: [1 2 3 7 9 10] becomes "1-3, 7, 9-10".
func formatLineRanges(lines []int) string {
	if len(lines) == 0 {
		return ""
	}
	var parts []string
	start, end := lines[0], lines[0]
	flush := func() {
		if start == end {
			parts = append(parts, strconv.Itoa(start))
			return
		}
		parts = append(parts, fmt.Sprintf("%d-%d", start, end))
	}
	for _, line := range lines[1:] {
		if line == end+1 {
			end = line
			continue
		}
		flush()
		start, end = line, line
	}
	flush()
	return strings.Join(parts, ", ")
}

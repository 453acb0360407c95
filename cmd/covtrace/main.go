package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"covtrace/internal/config"
	"covtrace/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "covtrace",
	Short: "Line coverage collector and data tool",
	Long:  `covtrace manages line coverage data collected from traced host runtimes`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(combineCmd)
	rootCmd.AddCommand(eraseCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("data", "", "coverage data file (default: from covtrace.toml)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// setupColor applies the --color flag to the global color state.
func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("unsupported color mode %q (must be auto, on or off)", mode)
	}
	return nil
}

// resolveDataPath picks the coverage data file: the --data flag when given,
// otherwise the nearest covtrace.toml, otherwise the default name in the
// working directory.
func resolveDataPath(cmd *cobra.Command) (string, error) {
	path, err := cmd.Root().PersistentFlags().GetString("data")
	if err != nil {
		return "", fmt.Errorf("failed to get data flag: %w", err)
	}
	if path != "" {
		return path, nil
	}
	cfg, root, err := config.LoadOrDefault(".")
	if err != nil {
		return "", err
	}
	return cfg.DataPath(root), nil
}

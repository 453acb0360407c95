package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"covtrace/internal/covdata"
)

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Remove collected coverage data",
	Long:  "Remove the base coverage data file and every parallel data file next to it.",
	RunE:  runErase,
}

func runErase(cmd *cobra.Command, _ []string) error {
	base, err := resolveDataPath(cmd)
	if err != nil {
		return err
	}
	if err := covdata.Erase(base); err != nil {
		return fmt.Errorf("failed to erase %q: %w", base, err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "erased %s\n", base)
	return nil
}

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"covtrace/internal/covdata"
	"covtrace/internal/ui"
)

var (
	combineJobs int
	combineKeep bool
	combineUI   bool
)

func init() {
	combineCmd.Flags().IntVar(&combineJobs, "jobs", 0, "parallel readers (0 = number of CPUs)")
	combineCmd.Flags().BoolVar(&combineKeep, "keep", false, "keep parallel data files after combining")
	combineCmd.Flags().BoolVar(&combineUI, "ui", true, "show interactive progress when on a terminal")
}

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Merge parallel coverage data files into the base data file",
	Long:  "Merge every <data>.<suffix> file produced by parallel runs into the base data file, consuming the parallel files.",
	RunE:  runCombine,
}

func runCombine(cmd *cobra.Command, _ []string) error {
	base, err := resolveDataPath(cmd)
	if err != nil {
		return err
	}
	files, err := covdata.ListSuffixed(base)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		_, _ = fmt.Fprintf(os.Stdout, "no parallel data files for %s\n", base)
		return nil
	}

	var combined *covdata.LineSet
	if combineUI && isTerminal(os.Stdout) {
		combined, err = combineWithUI(cmd, base, files)
	} else {
		combined, err = covdata.Combine(cmd.Context(), base, combineJobs, !combineKeep,
			func(ev covdata.ProgressEvent) {
				if ev.Status == covdata.StatusMerged {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "merged %s\n", ev.Path)
				}
			})
	}
	if err != nil {
		return err
	}

	if err := covdata.WriteFile(base, combined); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "combined %d data files into %s\n", len(files), base)
	return nil
}

type combineOutcome struct {
	set *covdata.LineSet
	err error
}

// combineWithUI runs the combine in the background and renders its progress
// events with Bubble Tea until the event channel closes.
func combineWithUI(cmd *cobra.Command, base string, files []string) (*covdata.LineSet, error) {
	events := make(chan covdata.ProgressEvent, 256)
	outcomeCh := make(chan combineOutcome, 1)

	go func() {
		set, err := covdata.Combine(cmd.Context(), base, combineJobs, !combineKeep,
			func(ev covdata.ProgressEvent) { events <- ev })
		outcomeCh <- combineOutcome{set: set, err: err}
		close(events)
	}()

	model := ui.NewCombineModel("combining coverage data", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.set, uiErr
	}
	return outcome.set, outcome.err
}

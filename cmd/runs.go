package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/surveysim/internal/store"
	"github.com/abhisek/surveysim/internal/ui/components"
	"github.com/abhisek/surveysim/internal/ui/theme"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List recorded runs, or the trials of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		if len(args) == 1 {
			return showRun(cmd, s.TrialRepo(), args[0])
		}

		runs, err := s.TrialRepo().RunSummaries(ctx, limit)
		if err != nil {
			return fmt.Errorf("query runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet.")
			return nil
		}

		fmt.Printf("%-36s  %-4s  %-19s  %6s  %8s  %6s\n", "Run", "Ver", "Started", "Trials", "Degraded", "Failed")
		fmt.Println(strings.Repeat("─", 90))
		for _, r := range runs {
			fmt.Printf("%-36s  v%-3d  %-19s  %6d  %8s  %6s\n",
				r.RunID,
				r.Version,
				r.Started.Local().Format("2006-01-02 15:04:05"),
				r.Trials,
				theme.Status(r.Degraded, theme.Degraded).Render(fmt.Sprint(r.Degraded)),
				theme.Status(r.Failed, theme.Bad).Render(fmt.Sprint(r.Failed)),
			)
		}
		return nil
	},
}

type trialLister interface {
	ListTrials(ctx context.Context, runID string, limit int) ([]store.TrialRecord, error)
}

func showRun(cmd *cobra.Command, repo trialLister, runID string) error {
	trials, err := repo.ListTrials(cmd.Context(), runID, 0)
	if err != nil {
		return fmt.Errorf("query trials: %w", err)
	}
	if len(trials) == 0 {
		return fmt.Errorf("run %s not found", runID)
	}

	fmt.Println(theme.Title.Render("Run " + runID))
	for _, t := range trials {
		status := theme.Good.Render("written")
		switch {
		case !t.Written:
			status = theme.Bad.Render("failed: " + truncate(t.ErrorMessage, 60))
		case t.Degraded():
			status = theme.Degraded.Render(fmt.Sprintf("degraded (%d/%d chunks failed)", t.FailedChunks, t.Chunks))
		}
		bar := components.NewCoverageBar(truncate(t.Label, 12), t.Answered, t.Questions, 20)
		fmt.Printf("%s  %-16s  %s\n", bar.View(), t.Track, status)
	}
	return nil
}

func init() {
	runsCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
}

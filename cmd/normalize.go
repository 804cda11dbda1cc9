package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/surveysim/internal/normalize"
	"github.com/abhisek/surveysim/internal/runner"
	"github.com/abhisek/surveysim/internal/ui/theme"
	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <document>",
	Short: "Show the questions the LLM extracts from a document",
	Long: `Extract and normalize a survey document without answering it. Prints the
canonical questions and the flattened, individually answerable items.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	asJSON, _ := cmd.Flags().GetBool("json")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	provider, err := newProvider(ctx, st)
	if err != nil {
		return err
	}

	sim := runner.NewSimulator(newExtractor(), normalize.New(provider, cfg.NormalizeConfig(), logger), nil, logger)
	questions, flat, err := sim.Prepare(ctx, args[0])
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"questions": questions, "flattened": flat})
	}

	fmt.Println(theme.Title.Render(fmt.Sprintf("%d questions, %d answerable items", len(questions), len(flat))))
	fmt.Printf("%-12s  %-10s  %-50s  %s\n", "ID", "Type", "Question", "Options")
	fmt.Println(strings.Repeat("─", 100))
	for _, q := range flat {
		fmt.Printf("%-12s  %-10s  %-50s  %s\n",
			truncate(q.ID, 12),
			q.Kind,
			truncate(strings.ReplaceAll(q.Text, "\n", " "), 50),
			theme.Hint.Render(strings.Join(q.Options, " | ")),
		)
	}
	return nil
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/surveysim/internal/answering"
	"github.com/abhisek/surveysim/internal/llm"
	"github.com/abhisek/surveysim/internal/normalize"
	"github.com/abhisek/surveysim/internal/persona"
	"github.com/abhisek/surveysim/internal/runner"
	"github.com/abhisek/surveysim/internal/survey"
	"github.com/abhisek/surveysim/internal/ui/theme"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <document>",
	Short: "Run a full simulation for a survey document",
	Long: `Extract the document, normalize and flatten its questions, then answer them
as a neutral respondent and as each persona. Every trial is appended to
versioned CSV files in the export directory.

Personas come from --subjects, or are generated with --generate.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulation,
}

func init() {
	runCmd.Flags().String("subjects", "", "Persona file ({\"personas\":[...]})")
	runCmd.Flags().Bool("generate", false, "Generate personas with the LLM")
	runCmd.Flags().Int("neutral-trials", -1, "Neutral trials (default from config)")
	runCmd.Flags().Int("subject-trials", 0, "Trials per persona track (default from config)")
	runCmd.Flags().String("export-dir", "", "Export directory (default from config)")
	runCmd.Flags().Bool("rag", false, "Ground answers with the retrieval service")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if dir, _ := cmd.Flags().GetString("export-dir"); dir != "" {
		cfg.ExportDir = dir
	}
	if n, _ := cmd.Flags().GetInt("neutral-trials"); n >= 0 {
		cfg.Run.NeutralTrials = n
	}
	if n, _ := cmd.Flags().GetInt("subject-trials"); n > 0 {
		cfg.Run.SubjectTrials = n
	}
	if rag, _ := cmd.Flags().GetBool("rag"); rag {
		cfg.RAG.Enabled = true
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	provider, err := newProvider(ctx, st)
	if err != nil {
		return err
	}

	subjects, err := resolveSubjects(cmd, provider)
	if err != nil {
		return err
	}

	augmenter, cleanup := newAugmenter(ctx)
	defer cleanup()

	engine := answering.New(provider, cfg.AnsweringConfig(), augmenter, logger)
	orchestrator := runner.New(engine, cfg.RunnerConfig(), st.TrialRepo(), logger)
	sim := runner.NewSimulator(newExtractor(), normalize.New(provider, cfg.NormalizeConfig(), logger), orchestrator, logger)

	sum, err := sim.Simulate(ctx, runner.Plan{
		DocumentPath:  args[0],
		ExportDir:     cfg.ExportDir,
		NeutralTrials: cfg.Run.NeutralTrials,
		SubjectTrials: cfg.Run.SubjectTrials,
		Subjects:      subjects,
	})
	if sum != nil {
		printSummary(sum)
	}
	return err
}

func resolveSubjects(cmd *cobra.Command, provider llm.Provider) ([]survey.Subject, error) {
	path, _ := cmd.Flags().GetString("subjects")
	generate, _ := cmd.Flags().GetBool("generate")

	switch {
	case path != "" && generate:
		return nil, fmt.Errorf("--subjects and --generate are mutually exclusive")
	case path != "":
		return persona.LoadFile(path)
	case generate:
		return persona.NewGenerator(provider, cfg.PersonaConfig(), logger).GenerateAll(cmd.Context())
	default:
		return nil, nil
	}
}

func printSummary(sum *runner.Summary) {
	fmt.Println()
	fmt.Println(theme.Title.Render(fmt.Sprintf("Simulation v%d", sum.Version)))
	fmt.Println(theme.Field("Run", sum.RunID))
	fmt.Println(theme.Field("Questions", fmt.Sprintf("%d normalized, %d answerable", sum.Questions, sum.Flattened)))
	if sum.SnapshotPath != "" {
		fmt.Println(theme.Field("Personas", sum.SnapshotPath))
	}
	fmt.Println()

	for _, rep := range sum.Tracks {
		problems := rep.Failed + rep.Dropped
		lines := []string{
			theme.Title.Render(rep.Label),
			theme.Field("File", rep.Path),
			theme.Field("Written", fmt.Sprintf("%d/%d", rep.Written, rep.Trials)),
			theme.Label.Render("Degraded") + " " + theme.Status(rep.Degraded, theme.Degraded).Render(fmt.Sprint(rep.Degraded)),
			theme.Label.Render("Failed") + " " + theme.Status(problems, theme.Bad).Render(fmt.Sprint(problems)),
		}
		fmt.Println(theme.Card.Render(strings.Join(lines, "\n")))
	}
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/abhisek/surveysim/internal/export"
	"github.com/abhisek/surveysim/internal/persona"
	"github.com/abhisek/surveysim/internal/survey"
	"github.com/spf13/cobra"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "Generate and inspect simulated respondents",
}

var personasGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate junior and senior personas with the LLM",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pcfg := cfg.PersonaConfig()
		if f, _ := cmd.Flags().GetString("field"); f != "" {
			pcfg.Field = f
		}
		if n, _ := cmd.Flags().GetInt("count"); n > 0 {
			pcfg.Count = n
		}
		if r, _ := cmd.Flags().GetInt("female-ratio"); r >= 0 {
			pcfg.FemaleRatio = r
		}
		out, _ := cmd.Flags().GetString("out")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		provider, err := newProvider(ctx, st)
		if err != nil {
			return err
		}

		subjects, err := persona.NewGenerator(provider, pcfg, logger).GenerateAll(ctx)
		if err != nil {
			return err
		}

		if out == "" {
			return printSubjects(subjects)
		}
		if err := export.WriteSnapshot(out, subjects); err != nil {
			return err
		}
		fmt.Printf("Saved %d personas to %s\n", len(subjects), out)
		return nil
	},
}

var personasShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "List the personas in a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subjects, err := persona.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%-12s  %-8s  %4s  %-8s  %s\n", "Name", "Group", "Age", "Gender", "Occupation")
		for _, s := range subjects {
			fmt.Printf("%-12s  %-8s  %4d  %-8s  %s\n", s.Name, s.Group, s.Age, s.Gender, s.Occupation)
		}
		return nil
	},
}

func printSubjects(subjects []survey.Subject) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"personas": subjects})
}

func init() {
	personasGenerateCmd.Flags().String("field", "", "Professional field of every persona")
	personasGenerateCmd.Flags().IntP("count", "n", 0, "Personas per group")
	personasGenerateCmd.Flags().Int("female-ratio", -1, "Target share of female personas (0-100)")
	personasGenerateCmd.Flags().StringP("out", "o", "", "Write a persona file instead of printing")

	personasCmd.AddCommand(personasGenerateCmd)
	personasCmd.AddCommand(personasShowCmd)
}

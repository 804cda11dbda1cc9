package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/abhisek/surveysim/internal/jsonclean"
	"github.com/abhisek/surveysim/internal/llm"
	"github.com/abhisek/surveysim/internal/store"
	"github.com/abhisek/surveysim/internal/ui/theme"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded oracle requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent oracle requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		opts.Failed, _ = cmd.Flags().GetBool("failed")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, theme.Hint.Render("No oracle requests recorded."))
			return nil
		}

		fmt.Fprintf(out, "%-6s %-19s %-10s %-28s %7s %7s %7s  %s\n",
			"ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "Result")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, e := range events {
			result := theme.Good.Render("ok")
			if !e.Success {
				result = theme.Bad.Render(truncate(firstLine(e.ErrorMessage), 40))
			}
			fmt.Fprintf(out, "%-6d %-19s %-10s %-28s %7d %7d %7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				result,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and response of one oracle request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}
		raw, _ := cmd.Flags().GetBool("raw")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		out := cmd.OutOrStdout()
		fields := []string{
			theme.Field("Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")),
			theme.Field("Provider", e.Provider),
			theme.Field("Model", e.Model),
			theme.Field("Purpose", e.Purpose),
			theme.Field("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)),
			theme.Field("Latency", fmt.Sprintf("%dms", e.LatencyMs)),
		}
		if e.ErrorMessage != "" {
			fields = append(fields, theme.Label.Render("Error")+" "+theme.Bad.Render(e.ErrorMessage))
		}
		fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("Request #%d", e.ID)))
		fmt.Fprintln(out, theme.Card.Render(strings.Join(fields, "\n")))

		section(out, "Prompt")
		fmt.Fprintln(out, renderPrompt(e.RequestBody))

		section(out, "Response")
		fmt.Fprintln(out, renderResponse(e.ResponseBody, raw))
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		purposes, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		models, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(purposes) == 0 {
			fmt.Fprintln(out, theme.Hint.Render("No oracle usage recorded yet."))
			return nil
		}

		section(out, "Usage by purpose")
		fmt.Fprintf(out, "%-12s %6s %10s %10s %8s\n", "Purpose", "Calls", "Input", "Output", "Avg ms")
		var calls, in, outTok int
		for _, p := range purposes {
			fmt.Fprintf(out, "%-12s %6d %10d %10d %8d\n", p.Purpose, p.Calls, p.InputTokens, p.OutputTokens, p.AvgLatencyMs)
			calls += p.Calls
			in += p.InputTokens
			outTok += p.OutputTokens
		}
		fmt.Fprintf(out, "%-12s %6d %10d %10d\n", theme.Value.Render("total"), calls, in, outTok)

		cost, unknown := estimateCost(models)
		section(out, "Estimated cost")
		for _, m := range models {
			price := "?"
			if c := llm.LookupCost(m.Model); c != nil {
				price = formatCost(c.Cost(m.InputTokens, m.OutputTokens))
			}
			fmt.Fprintf(out, "%-32s %6d %10s\n", truncate(m.Model, 32), m.Calls, price)
		}
		total := formatCost(cost)
		if len(unknown) > 0 {
			total += theme.Hint.Render(" (no pricing for " + strings.Join(unknown, ", ") + ")")
		}
		fmt.Fprintf(out, "%-32s %6s %10s\n", theme.Value.Render("total"), "", total)
		return nil
	},
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, theme.Title.Render(title))
}

// renderPrompt highlights the [role] and [schema] markers of a recorded
// request body.
func renderPrompt(body string) string {
	if body == "" {
		return theme.Hint.Render("(not captured)")
	}
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			lines[i] = theme.Value.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// renderResponse pretty-prints a response the way the pipeline reads it:
// cleaned of fences and prose, then indented when it is valid JSON.
// Anything else, or raw mode, is shown verbatim.
func renderResponse(body string, raw bool) string {
	if body == "" {
		return theme.Hint.Render("(not captured)")
	}
	if raw {
		return body
	}
	cleaned := jsonclean.Clean(body)
	if !gjson.Valid(cleaned) {
		return body + "\n" + theme.Degraded.Render("(response is not valid JSON after cleaning)")
	}
	return strings.TrimRight(gjson.Get(cleaned, "@pretty").Raw, "\n")
}

func estimateCost(models []store.ModelUsage) (float64, []string) {
	var total float64
	var unknown []string
	for _, m := range models {
		c := llm.LookupCost(m.Model)
		if c == nil {
			unknown = append(unknown, m.Model)
			continue
		}
		total += c.Cost(m.InputTokens, m.OutputTokens)
	}
	return total, unknown
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (normalize, answer, persona)")
	llmListCmd.Flags().Bool("failed", false, "Only show failed requests")
	llmViewCmd.Flags().Bool("raw", false, "Print the response exactly as received")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}

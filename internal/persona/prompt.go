package persona

import (
	"fmt"
	"strings"
)

type cohort struct {
	status string
	ages   string
	roles  string
}

var cohorts = map[Group]cohort{
	GroupJunior: {
		status: "early-career newcomers (low social standing, start of their career)",
		ages:   "early 20s to early 30s (20-32)",
		roles:  "entry-level positions such as interns, new hires and junior staff",
	},
	GroupSenior: {
		status: "established authorities (high social standing, late career)",
		ages:   "40s to 60s (40-65)",
		roles:  "senior positions such as executives, directors, professors and managers",
	},
}

func buildPrompt(cfg Config, group Group) string {
	c, ok := cohorts[group]
	if !ok {
		c = cohort{status: string(group), ages: "any adult age", roles: "any position"}
	}
	female := clampRatio(cfg.FemaleRatio)

	var b strings.Builder
	b.WriteString("You are an expert persona designer.\n")
	fmt.Fprintf(&b, "Generate %d realistic personas who work in the %q field and are %s.\n\n", cfg.Count, cfg.Field, c.status)
	b.WriteString("Each persona has:\n")
	b.WriteString("- name (Korean name)\n")
	fmt.Fprintf(&b, "- gender (keep roughly %d%% female and %d%% male)\n", female, 100-female)
	fmt.Fprintf(&b, "- age (%s)\n", c.ages)
	fmt.Fprintf(&b, "- occupation (a job in the %q field that suits %s)\n", cfg.Field, c.status)
	b.WriteString("- description (two or three sentences)\n\n")
	fmt.Fprintf(&b, "Every persona holds %s.\n\n", c.roles)
	b.WriteString(`Return ONLY a JSON object like this:
{"personas":[{"name":"김철수","gender":"Male","age":25,"occupation":"...","description":"..."}]}`)
	return b.String()
}

func clampRatio(r int) int {
	switch {
	case r < 0:
		return 0
	case r > 100:
		return 100
	default:
		return r
	}
}

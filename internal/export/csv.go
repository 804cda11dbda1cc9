// Package export appends answer blocks to versioned CSV files and writes
// subject snapshots next to them.
package export

import (
	"strings"

	"github.com/abhisek/surveysim/internal/survey"
)

// Header is the column line of every block.
const Header = "id,question,type,answer"

// EscapeField quotes a field when it contains a comma, a quote or a line
// break, doubling embedded quotes. Other fields are written verbatim.
func EscapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FormatBlock renders one trial: a label line, the header, one row per
// question in order and a blank separator line. Missing answers are
// written as empty fields.
func FormatBlock(label string, questions []survey.FlattenedQuestion, answers map[string]string) string {
	var b strings.Builder
	b.WriteString("=== ")
	b.WriteString(label)
	b.WriteString(" ===\n")
	b.WriteString(Header)
	b.WriteString("\n")
	for _, q := range questions {
		b.WriteString(EscapeField(q.ID))
		b.WriteString(",")
		b.WriteString(EscapeField(q.Text))
		b.WriteString(",")
		b.WriteString(EscapeField(string(q.Kind)))
		b.WriteString(",")
		b.WriteString(EscapeField(answers[q.ID]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

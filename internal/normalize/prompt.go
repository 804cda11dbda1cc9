package normalize

import "strings"

const structuringPrompt = `You are a tool that structures survey questionnaires.
The JSON below is page-level data extracted from a PDF by OCR.
Convert it into individual survey questions.

Treat these patterns as the start of a new question:
1. "SQ<n>.", "Q<n>.", "DQ<n>." always start a question.
2. "1)", "2)", "(1)", "(2)", "1." start a question when the text is long and interrogative.
3. Circled numbers (①, ②, ③) are sub-questions; they are questions of their own when no main question exists.
4. "one per row" or "as in the table below" means type "table" with "rows" and a shared "scale".
5. "select all" or "multiple answers" means type "multi".

Keep question text and options in the language of the document.
Use the printed question number as "id". Row ids may be omitted.

The final output must be exactly one JSON object of this form and nothing else:
{ "questions": [ { "id": "...", "question": "...", "type": "text", "options": [], "rows": [ { "id": "...", "label": "..." } ], "scale": [], "allow_multiple": false } ] }

The source follows:
`

// buildPrompt embeds the raw extraction verbatim in a json fence.
func buildPrompt(rawExtraction string) string {
	var b strings.Builder
	b.WriteString(structuringPrompt)
	b.WriteString("```json\n")
	b.WriteString(rawExtraction)
	if !strings.HasSuffix(rawExtraction, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
	return b.String()
}

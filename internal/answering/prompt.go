package answering

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/surveysim/internal/survey"
)

const neutralPreamble = `You are an ordinary respondent taking a survey.
Answer from a general, neutral point of view without any particular persona.
`

const answerRules = `Rules:
- Output exactly one JSON object with an "answers" array and nothing else.
- Every entry has exactly "id" and "answer".
- Tables are already split into rows. Never answer with a parent id such as "SQ6" or "Q4"; if "SQ6_1", "SQ6_2" and "SQ6_3" are listed, answer each one separately.
- Never invent an id that is not in the list and never modify an id.
- For type "multi" with several options, choose 1 to 3 options and join them with ", ".
- For type "table_row" or "text" with options, choose exactly one option and copy it verbatim.
- When options are empty, write a short sentence in the language of the question.
`

// promptInput is everything one chunk request embeds.
type promptInput struct {
	chunk   chunk
	subject *survey.Subject
	context string
}

func buildPrompt(in promptInput) (string, error) {
	items, err := json.Marshal(in.chunk.promptItems())
	if err != nil {
		return "", fmt.Errorf("marshal chunk schema: %w", err)
	}

	var b strings.Builder

	if s := in.subject; s != nil {
		fmt.Fprintf(&b, "From now on you answer the survey as the persona %q.\n", s.Name)
		fmt.Fprintf(&b, "Age: %d, gender: %s, occupation: %s\n", s.Age, s.Gender, s.Occupation)
		if s.Description != "" {
			fmt.Fprintf(&b, "Profile: %s\n", s.Description)
		}
	} else {
		b.WriteString(neutralPreamble)
	}
	b.WriteString("\n")

	if in.context != "" {
		b.WriteString("=== Reference: survey statistics of real respondents ===\n")
		b.WriteString(in.context)
		b.WriteString("\nReflect a realistic answer distribution from these statistics")
		if in.subject != nil {
			b.WriteString(" while staying true to the persona")
		}
		b.WriteString(".\n\n")
	}

	n := len(in.chunk.questions)
	fmt.Fprintf(&b, "Answer every question below. The answers array must contain exactly %d entries.\n\n", n)
	b.WriteString("Questions (JSON):\n")
	b.Write(items)
	b.WriteString("\n\n")
	b.WriteString(answerRules)
	b.WriteString("\nOutput format example:\n")
	b.WriteString(`{"answers": [{"id": "<given id 1>", "answer": "<answer 1>"}, {"id": "<given id 2>", "answer": "<answer 2>"}]}`)
	b.WriteString("\n")

	return b.String(), nil
}

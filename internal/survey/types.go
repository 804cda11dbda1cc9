// Package survey holds the survey data contracts shared by the pipeline:
// normalized questions, their flattened atomic units, simulated subjects
// and per-trial answer sets.
package survey

// Kind is the answer shape of a question.
type Kind string

const (
	KindText  Kind = "text"
	KindTable Kind = "table"
	KindMulti Kind = "multi"

	// KindTableRow only appears on flattened questions.
	KindTableRow Kind = "table_row"
)

// Question is one normalized survey item as produced by the oracle.
type Question struct {
	ID            string     `json:"id"`
	Text          string     `json:"question"`
	Kind          Kind       `json:"type"`
	Options       []string   `json:"options,omitempty"`
	Rows          []TableRow `json:"rows,omitempty"`
	Scale         []string   `json:"scale,omitempty"`
	AllowMultiple bool       `json:"allow_multiple,omitempty"`
}

// Valid reports whether the question carries an id.
func (q Question) Valid() bool {
	return q.ID != ""
}

// TableRow is one row of a table question. ID is optional.
type TableRow struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
}

// FlattenedQuestion is one atomic, directly answerable unit.
type FlattenedQuestion struct {
	ID       string   `json:"id"`
	Text     string   `json:"question"`
	Kind     Kind     `json:"type"`
	Options  []string `json:"options"`
	RowLabel string   `json:"row_label,omitempty"`
}

// IDs returns the ids of qs in order.
func IDs(qs []FlattenedQuestion) []string {
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}

// Subject is a simulated respondent profile.
type Subject struct {
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	Occupation  string `json:"occupation"`
	Description string `json:"description,omitempty"`
	Group       string `json:"group,omitempty"`
}

// AnswerSet maps every flattened question id to an answer for one
// (trial, subject) pair. Unanswered ids map to "".
type AnswerSet struct {
	Answers map[string]string

	// Chunks is the number of oracle batches used; FailedChunks counts
	// those that exhausted their retries.
	Chunks       int
	FailedChunks int
}

// Degraded reports whether any chunk of the trial failed.
func (a *AnswerSet) Degraded() bool {
	return a.FailedChunks > 0
}

// Answered counts non-empty answers.
func (a *AnswerSet) Answered() int {
	n := 0
	for _, v := range a.Answers {
		if v != "" {
			n++
		}
	}
	return n
}

// Get returns the answer for id, or "" when absent.
func (a *AnswerSet) Get(id string) string {
	return a.Answers[id]
}

package answering

import "github.com/abhisek/surveysim/internal/survey"

// chunk is a contiguous slice of the flattened questions sent in one
// request. Chunk boundaries never show up in answer ids.
type chunk struct {
	index     int
	questions []survey.FlattenedQuestion
}

// partition splits qs into ordered chunks of at most size questions.
func partition(qs []survey.FlattenedQuestion, size int) []chunk {
	if size <= 0 {
		size = len(qs)
	}
	var chunks []chunk
	for start := 0; start < len(qs); start += size {
		end := min(start+size, len(qs))
		chunks = append(chunks, chunk{index: len(chunks), questions: qs[start:end]})
	}
	return chunks
}

// promptItem is the per-question schema shown to the oracle.
type promptItem struct {
	ID      string   `json:"id"`
	Text    string   `json:"question"`
	Kind    string   `json:"type"`
	Options []string `json:"options"`
}

func (c chunk) promptItems() []promptItem {
	items := make([]promptItem, len(c.questions))
	for i, q := range c.questions {
		opts := q.Options
		if opts == nil {
			opts = []string{}
		}
		items[i] = promptItem{ID: q.ID, Text: q.Text, Kind: string(q.Kind), Options: opts}
	}
	return items
}

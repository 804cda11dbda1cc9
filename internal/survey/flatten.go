package survey

import (
	"fmt"
	"slices"
	"strings"
)

// Flatten expands compound questions into atomic units:
//   - a table with rows yields one table_row per row, identified by the
//     row's id or "{parentID}_{n}" (n is 1-based), with the scale as
//     options when present
//   - a table without rows yields a single table_row for the parent
//   - multi (or AllowMultiple) yields one multi item
//   - anything else yields one text item
//
// Questions without an id are skipped, as are units whose id was already
// emitted. Flatten is pure and deterministic.
func Flatten(questions []Question) []FlattenedQuestion {
	out := make([]FlattenedQuestion, 0, len(questions))
	seen := make(map[string]struct{}, len(questions))

	emit := func(fq FlattenedQuestion) {
		if fq.ID == "" {
			return
		}
		if _, dup := seen[fq.ID]; dup {
			return
		}
		seen[fq.ID] = struct{}{}
		out = append(out, fq)
	}

	for _, q := range questions {
		switch normalizeKind(q.Kind) {
		case KindTable:
			if len(q.Rows) == 0 {
				if q.Valid() {
					emit(FlattenedQuestion{
						ID:      q.ID,
						Text:    q.Text,
						Kind:    KindTableRow,
						Options: cloneOptions(q.Options),
					})
				}
				continue
			}
			opts := q.Options
			if len(q.Scale) > 0 {
				opts = q.Scale
			}
			for i, row := range q.Rows {
				id := row.ID
				if id == "" {
					if !q.Valid() {
						continue
					}
					id = fmt.Sprintf("%s_%d", q.ID, i+1)
				}
				emit(FlattenedQuestion{
					ID:       id,
					Text:     q.Text + " - " + row.Label,
					Kind:     KindTableRow,
					Options:  cloneOptions(opts),
					RowLabel: row.Label,
				})
			}

		case KindMulti:
			if q.Valid() {
				emit(FlattenedQuestion{ID: q.ID, Text: q.Text, Kind: KindMulti, Options: cloneOptions(q.Options)})
			}

		default:
			if !q.Valid() {
				continue
			}
			kind := KindText
			if q.AllowMultiple {
				kind = KindMulti
			}
			emit(FlattenedQuestion{ID: q.ID, Text: q.Text, Kind: kind, Options: cloneOptions(q.Options)})
		}
	}
	return out
}

func normalizeKind(k Kind) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(string(k))))
}

// cloneOptions copies opts so flattened items never alias the input. A
// nil slice becomes empty so the prompt schema shows [] rather than null.
func cloneOptions(opts []string) []string {
	if opts == nil {
		return []string{}
	}
	return slices.Clone(opts)
}

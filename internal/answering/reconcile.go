package answering

import (
	"strings"

	"github.com/tidwall/gjson"
)

// RawAnswer is one entry of the oracle's answers array before filtering.
type RawAnswer struct {
	ID    string
	Value string
}

// Answer is a reconciled answer for a known question id.
type Answer struct {
	ID    string
	Value string
}

// Reconcile keeps the raw entries whose id is exactly one of chunkIDs
// (first occurrence wins) and fills every unanswered id with "". The
// result has one entry per chunk id, in chunk order.
func Reconcile(chunkIDs []string, raw []RawAnswer) []Answer {
	valid := make(map[string]struct{}, len(chunkIDs))
	for _, id := range chunkIDs {
		valid[id] = struct{}{}
	}

	kept := make(map[string]string, len(chunkIDs))
	for _, r := range raw {
		if r.ID == "" {
			continue
		}
		if _, ok := valid[r.ID]; !ok {
			continue
		}
		if _, dup := kept[r.ID]; dup {
			continue
		}
		kept[r.ID] = r.Value
	}

	out := make([]Answer, len(chunkIDs))
	for i, id := range chunkIDs {
		out[i] = Answer{ID: id, Value: kept[id]}
	}
	return out
}

// decodeAnswers reads the answers array of a validated response. Entries
// that are not objects are skipped.
func decodeAnswers(root gjson.Result) []RawAnswer {
	arr := root.Get("answers").Array()
	out := make([]RawAnswer, 0, len(arr))
	for _, item := range arr {
		if !item.IsObject() {
			continue
		}
		id := item.Get("id")
		if id.Type != gjson.String && id.Type != gjson.Number {
			continue
		}
		out = append(out, RawAnswer{
			ID:    id.String(),
			Value: answerText(item.Get("answer")),
		})
	}
	return out
}

// answerText renders an answer value as text. Arrays are joined with
// ", " the way multi-select answers are written.
func answerText(v gjson.Result) string {
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return ""
	case v.IsArray():
		var parts []string
		for _, e := range v.Array() {
			if s := answerText(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case v.IsObject():
		return v.Raw
	default:
		return v.String()
	}
}

package survey

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlatten_TableSynthesizesRowIDs(t *testing.T) {
	qs := []Question{{
		ID:    "SQ6",
		Text:  "How satisfied are you with each?",
		Kind:  KindTable,
		Rows:  []TableRow{{Label: "Pay"}, {Label: "Hours"}, {Label: "Colleagues"}},
		Scale: []string{"1", "2", "3", "4", "5"},
	}}

	got := Flatten(qs)

	want := []FlattenedQuestion{
		{ID: "SQ6_1", Text: "How satisfied are you with each? - Pay", Kind: KindTableRow, Options: []string{"1", "2", "3", "4", "5"}, RowLabel: "Pay"},
		{ID: "SQ6_2", Text: "How satisfied are you with each? - Hours", Kind: KindTableRow, Options: []string{"1", "2", "3", "4", "5"}, RowLabel: "Hours"},
		{ID: "SQ6_3", Text: "How satisfied are you with each? - Colleagues", Kind: KindTableRow, Options: []string{"1", "2", "3", "4", "5"}, RowLabel: "Colleagues"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatten_TableRowOwnIDAndOptionFallback(t *testing.T) {
	qs := []Question{{
		ID:      "Q4",
		Text:    "Rate",
		Kind:    KindTable,
		Options: []string{"yes", "no"},
		Rows:    []TableRow{{ID: "Q4a", Label: "A"}, {Label: "B"}},
	}}

	got := Flatten(qs)

	if diff := cmp.Diff([]string{"Q4a", "Q4_2"}, IDs(got)); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	for _, fq := range got {
		if diff := cmp.Diff([]string{"yes", "no"}, fq.Options); diff != "" {
			t.Fatalf("options should fall back to question options:\n%s", diff)
		}
	}
}

func TestFlatten_TableWithoutRowsDegrades(t *testing.T) {
	got := Flatten([]Question{{ID: "Q9", Text: "Matrix", Kind: KindTable, Options: []string{"a"}}})

	want := []FlattenedQuestion{{ID: "Q9", Text: "Matrix", Kind: KindTableRow, Options: []string{"a"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatten_KindSelection(t *testing.T) {
	tests := []struct {
		name string
		q    Question
		want Kind
	}{
		{"multi", Question{ID: "Q1", Kind: KindMulti}, KindMulti},
		{"allow multiple", Question{ID: "Q1", Kind: KindText, AllowMultiple: true}, KindMulti},
		{"text", Question{ID: "Q1", Kind: KindText}, KindText},
		{"unknown kind", Question{ID: "Q1", Kind: "likert"}, KindText},
		{"empty kind", Question{ID: "Q1"}, KindText},
		{"uppercase multi", Question{ID: "Q1", Kind: "MULTI"}, KindMulti},
		{"uppercase table", Question{ID: "Q1", Kind: "Table"}, KindTableRow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Flatten([]Question{tt.q})
			if len(got) != 1 {
				t.Fatalf("expected 1 item, got %d", len(got))
			}
			if got[0].Kind != tt.want {
				t.Fatalf("kind = %q, want %q", got[0].Kind, tt.want)
			}
			if got[0].ID != "Q1" {
				t.Fatalf("id = %q, want Q1", got[0].ID)
			}
		})
	}
}

func TestFlatten_MultiPreservesOptions(t *testing.T) {
	opts := []string{"TV", "Radio", "Internet"}
	got := Flatten([]Question{{ID: "Q2", Text: "Media used", Kind: KindMulti, Options: opts}})

	if diff := cmp.Diff(opts, got[0].Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	got[0].Options[0] = "changed"
	if opts[0] != "TV" {
		t.Fatal("flattened options must not alias the input")
	}
}

func TestFlatten_SkipsInvalidAndDuplicates(t *testing.T) {
	qs := []Question{
		{Text: "no id"},
		{ID: "Q1", Text: "first"},
		{ID: "Q1", Text: "second"},
		{ID: "", Kind: KindTable, Rows: []TableRow{{Label: "orphan"}, {ID: "R2", Label: "kept"}}},
		{ID: "Q3", Kind: KindTable, Rows: []TableRow{{ID: "Q1", Label: "collides"}}},
	}

	got := Flatten(qs)

	if diff := cmp.Diff([]string{"Q1", "R2"}, IDs(got)); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if got[0].Text != "first" {
		t.Fatalf("first occurrence should win, got %q", got[0].Text)
	}
}

func TestFlatten_Deterministic(t *testing.T) {
	qs := []Question{
		{ID: "SQ1", Text: "Gender", Kind: KindText, Options: []string{"M", "F"}},
		{ID: "SQ6", Text: "Rate", Kind: KindTable, Rows: []TableRow{{Label: "a"}, {Label: "b"}}, Scale: []string{"1", "2"}},
		{ID: "Q2", Text: "Pick", Kind: KindMulti, Options: []string{"x", "y"}},
	}

	first := Flatten(qs)
	second := Flatten(qs)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Flatten not deterministic (-first +second):\n%s", diff)
	}
}

func TestFlatten_NilOptionsBecomeEmpty(t *testing.T) {
	got := Flatten([]Question{{ID: "Q1", Text: "Comment"}})
	if got[0].Options == nil || len(got[0].Options) != 0 {
		t.Fatalf("expected empty non-nil options, got %#v", got[0].Options)
	}
}

func TestFlatten_Empty(t *testing.T) {
	if got := Flatten(nil); len(got) != 0 {
		t.Fatalf("expected no items, got %d", len(got))
	}
}

func TestAnswerSet(t *testing.T) {
	a := &AnswerSet{Answers: map[string]string{"Q1": "yes", "Q2": ""}, Chunks: 2, FailedChunks: 1}
	if !a.Degraded() {
		t.Fatal("expected degraded")
	}
	if a.Answered() != 1 {
		t.Fatalf("answered = %d, want 1", a.Answered())
	}
	if a.Get("missing") != "" {
		t.Fatal("missing id should read as empty")
	}
}

package normalize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/surveysim/internal/llm"
	"github.com/abhisek/surveysim/internal/survey"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"
)

const rawExtraction = `{"status":"ok","pages":[{"page":1,"text":"SQ1. 성별은?\n① 남 ② 여","tables":[]}]}`

func newTestNormalizer(t *testing.T, responses ...llm.MockResponse) (*Normalizer, *llm.MockProvider) {
	t.Helper()
	mock := llm.NewMockProvider(responses...)
	return New(mock, DefaultConfig(), zaptest.NewLogger(t)), mock
}

func TestNormalize_DecodesQuestions(t *testing.T) {
	content := "```json\n" + `{"questions":[
		{"id":"SQ1","question":"성별은?","type":"text","options":["남","여"]},
		{"id":"SQ6","question":"만족도","type":"TABLE","rows":[{"label":"임금"},{"id":"SQ6_b","label":"근로시간"}],"scale":["1","2","3"]},
		{"id":"Q2","question":"이용 매체","type":"multi","options":["TV","인터넷"],"allow_multiple":"true"},
		"stray string",
		{"question":"no id"}
	]}` + "\n```"
	n, mock := newTestNormalizer(t, llm.MockResponse{Content: content})

	got, err := n.Normalize(context.Background(), rawExtraction)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []survey.Question{
		{ID: "SQ1", Text: "성별은?", Kind: survey.KindText, Options: []string{"남", "여"}},
		{ID: "SQ6", Text: "만족도", Kind: survey.KindTable, Rows: []survey.TableRow{{Label: "임금"}, {ID: "SQ6_b", Label: "근로시간"}}, Scale: []string{"1", "2", "3"}},
		{ID: "Q2", Text: "이용 매체", Kind: survey.KindMulti, Options: []string{"TV", "인터넷"}, AllowMultiple: true},
		{Text: "no id"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("questions mismatch (-want +got):\n%s", diff)
	}

	req := mock.Calls[0]
	if req.Temperature != 0.2 {
		t.Errorf("temperature = %v, want 0.2", req.Temperature)
	}
	if req.Schema != nil {
		t.Error("schema should only be sent in structured output mode")
	}
	prompt := mock.Prompts()[0]
	if !strings.Contains(prompt, "```json\n"+rawExtraction+"\n```") {
		t.Errorf("raw extraction not embedded verbatim:\n%s", prompt)
	}
}

func TestNormalize_StructuredOutputSendsSchema(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: `{"questions":[]}`})
	cfg := DefaultConfig()
	cfg.StructuredOutput = true
	n := New(mock, cfg, nil)

	got, err := n.Normalize(context.Background(), "{}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no questions, got %d", len(got))
	}
	if mock.Calls[0].Schema != QuestionsSchema {
		t.Fatal("expected questions schema on request")
	}
}

func TestNormalize_TransportError(t *testing.T) {
	n, mock := newTestNormalizer(t, llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("503")}})

	_, err := n.Normalize(context.Background(), rawExtraction)
	if !llm.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("normalization must not retry, got %d calls", mock.CallCount())
	}
}

func TestNormalize_EmptyContent(t *testing.T) {
	n, _ := newTestNormalizer(t, llm.MockResponse{Content: "   "})

	got, err := n.Normalize(context.Background(), rawExtraction)
	var empty *llm.ErrEmptyContent
	if !errors.As(err, &empty) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil questions, got %v", got)
	}
}

func TestNormalize_SchemaErrorReturnsEmptyList(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"prose", "Sorry, I could not read the document."},
		{"missing key", `{"items":[]}`},
		{"wrong type", `{"questions":"none"}`},
		{"array root", `[{"id":"Q1"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _ := newTestNormalizer(t, llm.MockResponse{Content: tt.content})

			got, err := n.Normalize(context.Background(), rawExtraction)
			var invalid *llm.ErrInvalidResponse
			if !errors.As(err, &invalid) {
				t.Fatalf("expected ErrInvalidResponse, got %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil list, got %#v", got)
			}
		})
	}
}

func TestNormalize_NullAndNumericFieldsAccepted(t *testing.T) {
	content := `{"questions":[
		{"id":"Q1","question":"성별은?","type":"text","options":["남","여"],"rows":null,"scale":null,"allow_multiple":null},
		{"id":"Q2","question":null,"text":"만족도","type":"table","options":null,"rows":[{"id":1,"label":"임금"},{"id":null,"label":2024}],"scale":[1,2,3]},
		{"id":3,"question":"연령","type":null}
	]}`
	for _, structured := range []bool{false, true} {
		cfg := DefaultConfig()
		cfg.StructuredOutput = structured
		n := New(llm.NewMockProvider(llm.MockResponse{Content: content}), cfg, zaptest.NewLogger(t))

		got, err := n.Normalize(context.Background(), rawExtraction)
		if err != nil {
			t.Fatalf("structured=%v: unexpected error: %v", structured, err)
		}

		want := []survey.Question{
			{ID: "Q1", Text: "성별은?", Kind: survey.KindText, Options: []string{"남", "여"}},
			{ID: "Q2", Text: "만족도", Kind: survey.KindTable, Rows: []survey.TableRow{{ID: "1", Label: "임금"}, {Label: "2024"}}, Scale: []string{"1", "2", "3"}},
			{ID: "3", Text: "연령"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("structured=%v: questions mismatch (-want +got):\n%s", structured, diff)
		}
	}
}

func TestNormalize_SetsPurpose(t *testing.T) {
	var purpose string
	mock := llm.NewMockHandler(func(req llm.Request) llm.MockResponse {
		return llm.MockResponse{Content: `{"questions":[]}`}
	})
	p := purposeSpy{Provider: mock, got: &purpose}

	if _, err := New(p, DefaultConfig(), nil).Normalize(context.Background(), "{}"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if purpose != "normalize" {
		t.Fatalf("purpose = %q, want normalize", purpose)
	}
}

type purposeSpy struct {
	llm.Provider
	got *string
}

func (p purposeSpy) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	*p.got = llm.PurposeFrom(ctx)
	return p.Provider.Generate(ctx, req)
}

package persona

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/surveysim/internal/llm"
	"github.com/abhisek/surveysim/internal/survey"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Field = "IT"
	cfg.Count = 2
	cfg.FemaleRatio = 70
	cfg.Retry = llm.FixedDelay(2, time.Millisecond)
	return cfg
}

const twoPersonas = "```json\n" + `{"personas":[
 {"name":"김민수","gender":"Male","age":24,"occupation":"Junior developer","description":"Started last year."},
 {"name":"이지은","gender":"Female","age":"27","occupation":"QA intern"},
 {"gender":"Female","age":30}
]}` + "\n```"

func TestGenerateGroup(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: twoPersonas})
	g := NewGenerator(mock, testConfig(), zaptest.NewLogger(t))

	got, err := g.GenerateGroup(context.Background(), GroupJunior)
	require.NoError(t, err)

	want := []survey.Subject{
		{Name: "김민수", Age: 24, Gender: "Male", Occupation: "Junior developer", Description: "Started last year.", Group: "junior"},
		{Name: "이지은", Age: 27, Gender: "Female", Occupation: "QA intern", Group: "junior"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("subjects mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.InDelta(t, 0.8, req.Temperature, 1e-9)
	assert.Nil(t, req.Schema)

	prompt := mock.Prompts()[0]
	assert.Contains(t, prompt, `Generate 2 realistic personas who work in the "IT" field`)
	assert.Contains(t, prompt, "70% female and 30% male")
	assert.Contains(t, prompt, "20-32")
}

func TestGenerateGroupSeniorPrompt(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: `{"personas":[]}`})
	g := NewGenerator(mock, testConfig(), nil)

	got, err := g.GenerateGroup(context.Background(), GroupSenior)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Contains(t, mock.Prompts()[0], "40-65")
}

func TestGenerateGroupRetriesTransport(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrRateLimit{}},
		llm.MockResponse{Content: twoPersonas},
	)
	g := NewGenerator(mock, testConfig(), nil)

	got, err := g.GenerateGroup(context.Background(), GroupJunior)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 2, mock.CallCount())
}

func TestGenerateGroupInvalidResponse(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: `{"people":[]}`})
	g := NewGenerator(mock, testConfig(), nil)

	_, err := g.GenerateGroup(context.Background(), GroupJunior)
	require.Error(t, err)
	var inv *llm.ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestGenerateGroupZeroCount(t *testing.T) {
	mock := llm.NewMockProvider()
	cfg := testConfig()
	cfg.Count = 0

	got, err := NewGenerator(mock, cfg, nil).GenerateGroup(context.Background(), GroupJunior)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, mock.CallCount())
}

func TestGenerateAll(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: `{"personas":[{"name":"A","age":22}]}`},
		llm.MockResponse{Content: `{"personas":[{"name":"B","age":55},{"name":"C","age":60}]}`},
	)
	got, err := NewGenerator(mock, testConfig(), nil).GenerateAll(context.Background())
	require.NoError(t, err)

	order, byGroup := Grouped(got)
	assert.Equal(t, []string{"junior", "senior"}, order)
	assert.Len(t, byGroup["junior"], 1)
	assert.Len(t, byGroup["senior"], 2)
}

func TestGenerateAllStopsOnFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: "not json"}, llm.MockResponse{Content: "still not json"})
	cfg := testConfig()
	cfg.Retry = llm.RetryConfig{}

	_, err := NewGenerator(mock, cfg, nil).GenerateAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("snapshot", func(t *testing.T) {
		path := filepath.Join(dir, "personas_v1.json")
		data := `{"personas":[
			{"name":"김민수","age":24,"gender":"Male","occupation":"dev","group":"junior"},
			{"name":"박영호","age":58,"gender":"Male","occupation":"CTO","socialStatus":"senior"}
		]}`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		got, err := LoadFile(path)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "junior", got[0].Group)
		assert.Equal(t, "senior", got[1].Group)
		assert.Equal(t, 58, got[1].Age)
	})

	t.Run("missing personas key", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"people":[]}`), 0o644))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("empty list", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"personas":[]}`), 0o644))
		_, err := LoadFile(path)
		assert.ErrorContains(t, err, "no personas")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

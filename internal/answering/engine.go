// Package answering asks the oracle to answer flattened survey questions
// in bounded chunks, reconciling every response against the known ids.
package answering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/surveysim/internal/llm"
	"github.com/abhisek/surveysim/internal/survey"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ContextProvider supplies optional grounding text for a chunk. It must
// return "" rather than fail.
type ContextProvider interface {
	Context(ctx context.Context, query, attribute string) string
}

// Engine answers flattened questions for one subject (or none) per call.
type Engine struct {
	provider  llm.Provider
	config    Config
	augmenter ContextProvider
	log       *zap.Logger
}

// New creates an Engine. augmenter may be nil.
func New(provider llm.Provider, cfg Config, augmenter ContextProvider, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		provider:  provider,
		config:    cfg.withDefaults(),
		augmenter: augmenter,
		log:       log,
	}
}

// AnswerAll answers every question once. subject nil means the neutral
// respondent.
//
// A chunk that fails all its attempts contributes no answers and is
// counted in FailedChunks; it never affects other chunks. The returned
// set always has exactly one entry per question id. When ctx is cancelled
// AnswerAll returns ctx.Err() and no set.
func (e *Engine) AnswerAll(ctx context.Context, questions []survey.FlattenedQuestion, subject *survey.Subject) (*survey.AnswerSet, error) {
	chunks := partition(questions, e.config.ChunkSize)
	results := make([][]Answer, len(chunks))
	failed := make([]bool, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for _, c := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			answers, err := e.answerChunk(gctx, c, subject)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil && isContextErr(err) {
					return ctxErr
				}
				failed[c.index] = true
				e.log.Warn("chunk failed after retries",
					zap.Int("chunk", c.index+1),
					zap.Int("chunks", len(chunks)),
					zap.String("subject", subjectName(subject)),
					zap.Error(err),
				)
				return nil
			}
			results[c.index] = answers
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set := &survey.AnswerSet{
		Answers: make(map[string]string, len(questions)),
		Chunks:  len(chunks),
	}
	for i, answers := range results {
		if failed[i] {
			set.FailedChunks++
		}
		for _, a := range answers {
			set.Answers[a.ID] = a.Value
		}
	}
	for _, q := range questions {
		if _, ok := set.Answers[q.ID]; !ok {
			set.Answers[q.ID] = ""
		}
	}
	return set, nil
}

// answerChunk runs the request, clean, validate and reconcile step with
// fixed-delay retries.
func (e *Engine) answerChunk(ctx context.Context, c chunk, subject *survey.Subject) ([]Answer, error) {
	ctx = llm.WithPurpose(ctx, "answer")
	ids := survey.IDs(c.questions)

	retrier := llm.NewRetrier(llm.FixedDelay(e.config.MaxRetry, e.config.RetryDelay))
	retrier.Retryable = func(error) bool { return true }
	retrier.OnRetry = func(attempt int, err error, wait time.Duration) {
		e.log.Warn("chunk attempt failed",
			zap.Int("chunk", c.index+1),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", e.config.MaxRetry),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
	}

	var answers []Answer
	err := retrier.Do(ctx, func(ctx context.Context) error {
		prompt, err := buildPrompt(promptInput{
			chunk:   c,
			subject: subject,
			context: e.groundingContext(ctx, c, subject),
		})
		if err != nil {
			return err
		}

		req := llm.UserPrompt(prompt, e.config.Temperature, e.config.MaxTokens)
		if e.config.StructuredOutput {
			req.Schema = AnswersSchema
		}

		resp, err := e.provider.Generate(ctx, req)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", c.index+1, err)
		}

		root, err := llm.ParseContent(AnswersSchema, resp.Content)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", c.index+1, err)
		}

		answers = Reconcile(ids, decodeAnswers(root))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return answers, nil
}

func (e *Engine) groundingContext(ctx context.Context, c chunk, subject *survey.Subject) string {
	if e.augmenter == nil {
		return ""
	}
	attribute := ""
	if subject != nil {
		attribute = subject.Gender
	}
	return e.augmenter.Context(ctx, ExtractKeywords(c.questions, e.config.KeywordSample), attribute)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func subjectName(s *survey.Subject) string {
	if s == nil {
		return "neutral"
	}
	return s.Name
}

// Package runner drives repeated answering trials for the neutral track
// and for subject tracks, appending every finished trial to its export.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/surveysim/internal/export"
	"github.com/abhisek/surveysim/internal/store"
	"github.com/abhisek/surveysim/internal/survey"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Answerer answers every flattened question for one subject, or for the
// neutral respondent when subject is nil.
type Answerer interface {
	AnswerAll(ctx context.Context, questions []survey.FlattenedQuestion, subject *survey.Subject) (*survey.AnswerSet, error)
}

// TrialRecorder stores the outcome of each trial.
type TrialRecorder interface {
	RecordTrial(ctx context.Context, rec store.TrialRecord) error
}

// TrackKind selects who answers a track.
type TrackKind string

const (
	TrackNeutral  TrackKind = "neutral"
	TrackSubjects TrackKind = "subjects"
)

// Track is one export file worth of trials.
type Track struct {
	RunID     string
	Label     string
	Kind      TrackKind
	Group     string
	Questions []survey.FlattenedQuestion
	Subjects  []survey.Subject
	Trials    int
	Version   int
	Path      string
}

// Report counts what happened to a track's trials. A trial is one
// AnswerAll call, so a subject track has Trials x subjects of them.
type Report struct {
	RunID    string
	Label    string
	Path     string
	Trials   int
	Written  int
	Degraded int
	Failed   int
	Dropped  int
}

// Config controls the orchestrator.
type Config struct {
	// SubjectWorkers bounds how many subjects of one trial are answered
	// at once.
	SubjectWorkers int
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{SubjectWorkers: 1}
}

// Runner executes tracks.
type Runner struct {
	engine   Answerer
	config   Config
	recorder TrialRecorder
	log      *zap.Logger
}

// New creates a Runner. recorder may be nil.
func New(engine Answerer, cfg Config, recorder TrialRecorder, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.SubjectWorkers <= 0 {
		cfg.SubjectWorkers = 1
	}
	return &Runner{engine: engine, config: cfg, recorder: recorder, log: log}
}

// trialResult is one answered (trial, subject) pair awaiting export.
type trialResult struct {
	label   string
	subject string
	set     *survey.AnswerSet
	err     error
}

// Run truncates the track's export file and runs every trial. Answering
// and write failures are logged and counted without stopping the track.
// Each finished AnswerSet is appended as soon as every subject before it
// has been exported, so blocks stay in subject order. On cancellation the
// completed sets of the current trial are still written whole, interrupted
// ones are skipped, and Run returns ctx.Err().
func (r *Runner) Run(ctx context.Context, t Track) (*Report, error) {
	if len(t.Questions) == 0 {
		return nil, ErrNoAtomicQuestions
	}
	if t.RunID == "" {
		t.RunID = uuid.NewString()
	}
	if t.Label == "" {
		t.Label = string(t.Kind)
	}

	rep := &Report{RunID: t.RunID, Label: t.Label, Path: t.Path}
	log := r.log.With(zap.String("run_id", t.RunID), zap.String("track", t.Label))

	if t.Kind == TrackSubjects && len(t.Subjects) == 0 {
		log.Warn("subject track has no subjects, skipping")
		return rep, nil
	}

	w := export.NewWriter(t.Path)
	if err := w.Truncate(); err != nil {
		return nil, fmt.Errorf("prepare export for %s: %w", t.Label, err)
	}
	rep.Path = w.Path()

	log.Info("track started",
		zap.String("path", rep.Path),
		zap.Int("trials", t.Trials),
		zap.Int("questions", len(t.Questions)),
		zap.Int("subjects", len(t.Subjects)),
	)

	for k := 1; k <= t.Trials; k++ {
		emit := func(res trialResult) {
			if res.err != nil && ctx.Err() != nil {
				log.Debug("trial interrupted", zap.String("label", res.label))
				return
			}
			writeCtx := ctx
			if ctx.Err() != nil {
				writeCtx = context.WithoutCancel(ctx)
			}
			r.export(writeCtx, log, w, t, k, res, rep)
		}

		switch t.Kind {
		case TrackSubjects:
			r.answerSubjects(ctx, t, k, emit)
		default:
			set, err := r.engine.AnswerAll(ctx, t.Questions, nil)
			emit(trialResult{label: fmt.Sprintf("Neutral_Run%d", k), set: set, err: err})
		}

		if err := ctx.Err(); err != nil {
			log.Warn("track cancelled", zap.Int("trial", k), zap.Int("written", rep.Written))
			return rep, err
		}
		log.Info("trial finished", zap.Int("trial", k), zap.Int("written", rep.Written))
	}

	log.Info("track finished",
		zap.Int("written", rep.Written),
		zap.Int("degraded", rep.Degraded),
		zap.Int("failed", rep.Failed),
		zap.Int("dropped", rep.Dropped),
	)
	return rep, nil
}

// answerSubjects answers trial k for every subject with a bounded pool
// and hands each result to emit in subject order, as soon as it and all
// results before it are ready. Subjects not started before cancellation
// are reported with ctx.Err().
func (r *Runner) answerSubjects(ctx context.Context, t Track, k int, emit func(trialResult)) {
	results := make([]trialResult, len(t.Subjects))
	ready := make([]chan struct{}, len(t.Subjects))
	for i := range ready {
		ready[i] = make(chan struct{})
	}

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		var g errgroup.Group
		g.SetLimit(r.config.SubjectWorkers)
		for i := range t.Subjects {
			subject := t.Subjects[i]
			label := fmt.Sprintf("%s_Run%d", subject.Name, k)
			g.Go(func() error {
				defer close(ready[i])
				if err := ctx.Err(); err != nil {
					results[i] = trialResult{label: label, subject: subject.Name, err: err}
					return nil
				}
				set, err := r.engine.AnswerAll(ctx, t.Questions, &subject)
				results[i] = trialResult{label: label, subject: subject.Name, set: set, err: err}
				return nil
			})
		}
		_ = g.Wait()
	}()

	for i := range ready {
		<-ready[i]
		emit(results[i])
	}
	<-dispatched
}

func (r *Runner) export(ctx context.Context, log *zap.Logger, w *export.Writer, t Track, k int, res trialResult, rep *Report) {
	rep.Trials++
	rec := store.TrialRecord{
		RunID:     t.RunID,
		Track:     t.Label,
		Label:     res.label,
		Subject:   res.subject,
		Trial:     k,
		Version:   t.Version,
		Questions: len(t.Questions),
		Path:      rep.Path,
	}

	switch {
	case res.err != nil || res.set == nil:
		rep.Failed++
		err := res.err
		if err == nil {
			err = errors.New("no answers returned")
		}
		rec.ErrorMessage = err.Error()
		log.Error("trial failed", zap.String("label", res.label), zap.Error(err))

	default:
		rec.Answered = res.set.Answered()
		rec.Chunks = res.set.Chunks
		rec.FailedChunks = res.set.FailedChunks
		if res.set.Degraded() {
			rep.Degraded++
			log.Warn("trial degraded",
				zap.String("label", res.label),
				zap.Int("failed_chunks", res.set.FailedChunks),
				zap.Int("chunks", res.set.Chunks),
			)
		}

		if err := w.AppendBlock(ctx, res.label, t.Questions, res.set.Answers); err != nil {
			rep.Dropped++
			rec.ErrorMessage = err.Error()
			log.Error("block dropped", zap.String("label", res.label), zap.Error(err))
		} else {
			rep.Written++
			rec.Written = true
		}
	}

	if r.recorder != nil {
		if err := r.recorder.RecordTrial(ctx, rec); err != nil {
			log.Warn("failed to record trial", zap.String("label", res.label), zap.Error(err))
		}
	}
}

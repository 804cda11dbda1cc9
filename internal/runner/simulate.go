package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/surveysim/internal/export"
	"github.com/abhisek/surveysim/internal/extract"
	"github.com/abhisek/surveysim/internal/llm"
	"github.com/abhisek/surveysim/internal/persona"
	"github.com/abhisek/surveysim/internal/survey"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conditions that abort a simulation before any trial runs.
var (
	ErrNoDocument        = errors.New("no input document")
	ErrNoQuestions       = errors.New("normalization produced no questions")
	ErrNoAtomicQuestions = errors.New("flattening produced no answerable questions")
)

// Normalizer turns an extraction into canonical questions.
type Normalizer interface {
	Normalize(ctx context.Context, rawExtraction string) ([]survey.Question, error)
}

// Plan describes one full simulation.
type Plan struct {
	DocumentPath string
	ExportDir    string

	// NeutralTrials is the number of neutral trials. Zero skips the
	// neutral track.
	NeutralTrials int

	// SubjectTrials is the number of trials per subject track. Defaults
	// to 1.
	SubjectTrials int

	Subjects []survey.Subject
}

// Summary describes a finished simulation.
type Summary struct {
	RunID        string
	Version      int
	Questions    int
	Flattened    int
	SnapshotPath string
	Tracks       []*Report
}

// Simulator runs the whole pipeline from document to exports.
type Simulator struct {
	extractor  extract.Extractor
	normalizer Normalizer
	runner     *Runner
	log        *zap.Logger
}

// NewSimulator creates a Simulator.
func NewSimulator(extractor extract.Extractor, normalizer Normalizer, runner *Runner, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{extractor: extractor, normalizer: normalizer, runner: runner, log: log}
}

// Prepare extracts, normalizes and flattens the document. Every error it
// returns is fatal for a run.
func (s *Simulator) Prepare(ctx context.Context, documentPath string) ([]survey.Question, []survey.FlattenedQuestion, error) {
	if documentPath == "" {
		return nil, nil, ErrNoDocument
	}
	if _, err := os.Stat(documentPath); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoDocument, err)
	}

	raw, err := s.extractor.Extract(ctx, documentPath)
	if err != nil {
		return nil, nil, fmt.Errorf("extract %s: %w", documentPath, err)
	}
	if err := raw.Validate(); err != nil {
		return nil, nil, fmt.Errorf("extract %s: %w", documentPath, err)
	}
	s.log.Info("document extracted", zap.String("path", documentPath), zap.Int("pages", len(raw.Pages)))

	questions, err := s.normalizer.Normalize(ctx, raw.JSON())
	if err != nil {
		var invalid *llm.ErrInvalidResponse
		if !errors.As(err, &invalid) {
			return nil, nil, fmt.Errorf("normalize: %w", err)
		}
		s.log.Warn("normalization response rejected", zap.Error(err))
	}
	if len(questions) == 0 {
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrNoQuestions, err)
		}
		return nil, nil, ErrNoQuestions
	}

	flat := survey.Flatten(questions)
	if len(flat) == 0 {
		return questions, nil, ErrNoAtomicQuestions
	}
	s.log.Info("survey prepared", zap.Int("questions", len(questions)), zap.Int("flattened", len(flat)))
	return questions, flat, nil
}

// Simulate prepares the document, fixes one version for every file of
// the run, saves the subject snapshot and runs the neutral track followed
// by one subject track per group.
func (s *Simulator) Simulate(ctx context.Context, plan Plan) (*Summary, error) {
	questions, flat, err := s.Prepare(ctx, plan.DocumentPath)
	if err != nil {
		return nil, err
	}

	dir := plan.ExportDir
	if dir == "" {
		dir = "."
	}
	version, err := export.NextVersion(dir)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		RunID:     uuid.NewString(),
		Version:   version,
		Questions: len(questions),
		Flattened: len(flat),
	}
	log := s.log.With(zap.String("run_id", sum.RunID), zap.Int("version", version))

	if len(plan.Subjects) > 0 {
		sum.SnapshotPath = filepath.Join(dir, export.SnapshotFile(version))
		if err := export.WriteSnapshot(sum.SnapshotPath, plan.Subjects); err != nil {
			return nil, err
		}
	}

	if plan.NeutralTrials > 0 {
		rep, err := s.runner.Run(ctx, Track{
			RunID:     sum.RunID,
			Label:     "neutral",
			Kind:      TrackNeutral,
			Questions: flat,
			Trials:    plan.NeutralTrials,
			Version:   version,
			Path:      filepath.Join(dir, export.NeutralFile(version)),
		})
		if rep != nil {
			sum.Tracks = append(sum.Tracks, rep)
		}
		if err != nil {
			return sum, err
		}
	}

	trials := plan.SubjectTrials
	if trials <= 0 {
		trials = 1
	}
	order, byGroup := persona.Grouped(plan.Subjects)
	for _, group := range order {
		label := "subject"
		if group != "" {
			label = "subject_" + group
		}
		rep, err := s.runner.Run(ctx, Track{
			RunID:     sum.RunID,
			Label:     label,
			Kind:      TrackSubjects,
			Group:     group,
			Questions: flat,
			Subjects:  byGroup[group],
			Trials:    trials,
			Version:   version,
			Path:      filepath.Join(dir, export.SubjectFile(group, version)),
		})
		if rep != nil {
			sum.Tracks = append(sum.Tracks, rep)
		}
		if err != nil {
			return sum, err
		}
	}

	log.Info("simulation finished", zap.Int("tracks", len(sum.Tracks)), zap.String("dir", dir))
	return sum, nil
}

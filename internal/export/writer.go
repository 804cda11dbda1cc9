package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/abhisek/surveysim/internal/survey"
)

const (
	defaultAttempts   = 5
	defaultRetryDelay = 500 * time.Millisecond
	defaultStaleAfter = 30 * time.Second
)

// ErrWriteContention is returned when the export file stayed locked by
// another writer for every attempt.
type ErrWriteContention struct {
	Path     string
	Attempts int
}

func (e *ErrWriteContention) Error() string {
	return fmt.Sprintf("export %s still locked after %d attempts", e.Path, e.Attempts)
}

var errLocked = errors.New("locked")

// pathLocks serializes writers of the same file within the process.
var pathLocks sync.Map // map[string]*sync.Mutex

func lockFor(path string) *sync.Mutex {
	mu, _ := pathLocks.LoadOrStore(path, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Writer appends whole blocks to one export file. Appends are exclusive
// within the process and, through a lock file, across processes.
type Writer struct {
	path       string
	lockPath   string
	attempts   int
	delay      time.Duration
	staleAfter time.Duration
	now        func() time.Time
}

// NewWriter creates a Writer for path.
func NewWriter(path string) *Writer {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Writer{
		path:       path,
		lockPath:   path + ".lock",
		attempts:   defaultAttempts,
		delay:      defaultRetryDelay,
		staleAfter: defaultStaleAfter,
		now:        time.Now,
	}
}

// Path returns the export file path.
func (w *Writer) Path() string {
	return w.path
}

// Truncate creates the file, and its directory, empty.
func (w *Writer) Truncate() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	mu := lockFor(w.path)
	mu.Lock()
	defer mu.Unlock()
	if err := os.WriteFile(w.path, nil, 0o644); err != nil {
		return fmt.Errorf("truncate export: %w", err)
	}
	return nil
}

// AppendBlock writes one formatted block. The block is written in a
// single append so readers never see a partial block from this writer.
func (w *Writer) AppendBlock(ctx context.Context, label string, questions []survey.FlattenedQuestion, answers map[string]string) error {
	return w.Append(ctx, []byte(FormatBlock(label, questions, answers)))
}

// Append writes data under the file lock, retrying while another writer
// holds it.
func (w *Writer) Append(ctx context.Context, data []byte) error {
	mu := lockFor(w.path)
	mu.Lock()
	defer mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= w.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = w.tryAppend(data)
		if lastErr == nil {
			return nil
		}
		if attempt == w.attempts {
			break
		}

		timer := time.NewTimer(w.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if errors.Is(lastErr, errLocked) {
		return &ErrWriteContention{Path: w.path, Attempts: w.attempts}
	}
	return fmt.Errorf("append to %s: %w", w.path, lastErr)
}

func (w *Writer) tryAppend(data []byte) error {
	if err := w.acquire(); err != nil {
		return err
	}
	defer os.Remove(w.lockPath)

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// acquire creates the lock file exclusively. A lock older than staleAfter
// is treated as abandoned and removed once.
func (w *Writer) acquire() error {
	for broke := false; ; broke = true {
		f, err := os.OpenFile(w.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			return f.Close()
		}
		if !errors.Is(err, os.ErrExist) {
			return err
		}
		info, statErr := os.Stat(w.lockPath)
		if broke || statErr != nil || w.now().Sub(info.ModTime()) < w.staleAfter {
			return errLocked
		}
		_ = os.Remove(w.lockPath)
	}
}

package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds one extraction process.
const DefaultTimeout = 60 * time.Second

// ScriptExtractor runs an external extraction program. The document path
// is appended to Args and the program prints the extraction JSON on
// stdout.
type ScriptExtractor struct {
	Command string
	Args    []string
	Timeout time.Duration
	Log     *zap.Logger
}

func (s *ScriptExtractor) Extract(ctx context.Context, path string) (*Raw, error) {
	if s.Command == "" {
		return nil, fmt.Errorf("extraction command not configured")
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, s.Args...), path)
	cmd := exec.CommandContext(runCtx, s.Command, args...)
	cmd.Env = append(os.Environ(), "PYTHONIOENCODING=utf-8")
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		log.Warn("extraction stderr", zap.String("stderr", msg))
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("run extraction: %w", err)
	}

	log.Debug("extraction finished",
		zap.String("path", path),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", stdout.Len()),
	)
	return Parse(stdout.Bytes())
}

// FileExtractor reads an extraction produced ahead of time.
type FileExtractor struct{}

func (FileExtractor) Extract(ctx context.Context, path string) (*Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read extraction: %w", err)
	}
	return Parse(data)
}

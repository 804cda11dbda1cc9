// Package config loads the surveysim configuration file, an optional .env
// file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/surveysim/internal/answering"
	"github.com/abhisek/surveysim/internal/normalize"
	"github.com/abhisek/surveysim/internal/persona"
	"github.com/abhisek/surveysim/internal/runner"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath = "SURVEYSIM_CONFIG"
	EnvExportDir  = "SURVEYSIM_EXPORT_DIR"
	EnvRAGURL     = "SURVEYSIM_RAG_URL"
	EnvRedisAddr  = "SURVEYSIM_REDIS_ADDR"
)

type Config struct {
	ExportDir string          `yaml:"export_dir"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Answering AnsweringConfig `yaml:"answering"`
	Persona   PersonaConfig   `yaml:"persona"`
	Run       RunConfig       `yaml:"run"`
	RAG       RAGConfig       `yaml:"rag"`
}

type ExtractorConfig struct {
	// Command and Args run the extraction program; the document path is
	// appended. An empty Command reads pre-extracted JSON files.
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Timeout string   `yaml:"timeout"`
}

type NormalizeConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type AnsweringConfig struct {
	ChunkSize        int     `yaml:"chunk_size"`
	MaxRetry         int     `yaml:"max_retry"`
	RetryDelay       string  `yaml:"retry_delay"`
	Workers          int     `yaml:"workers"`
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens"`
	StructuredOutput bool    `yaml:"structured_output"`
}

type PersonaConfig struct {
	Field       string  `yaml:"field"`
	Count       int     `yaml:"count"`
	FemaleRatio int     `yaml:"female_ratio"`
	Temperature float64 `yaml:"temperature"`
}

type RunConfig struct {
	NeutralTrials  int `yaml:"neutral_trials"`
	SubjectTrials  int `yaml:"subject_trials"`
	SubjectWorkers int `yaml:"subject_workers"`
}

type RAGConfig struct {
	Enabled       bool   `yaml:"enabled"`
	BaseURL       string `yaml:"base_url"`
	Timeout       string `yaml:"timeout"`
	CacheTTL      string `yaml:"cache_ttl"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

func Default() Config {
	a := answering.DefaultConfig()
	n := normalize.DefaultConfig()
	p := persona.DefaultConfig()
	return Config{
		Extractor: ExtractorConfig{Timeout: "60s"},
		Normalize: NormalizeConfig{Temperature: n.Temperature, MaxTokens: n.MaxTokens},
		Answering: AnsweringConfig{
			ChunkSize:   a.ChunkSize,
			MaxRetry:    a.MaxRetry,
			RetryDelay:  a.RetryDelay.String(),
			Workers:     a.Workers,
			Temperature: a.Temperature,
			MaxTokens:   a.MaxTokens,
		},
		Persona: PersonaConfig{
			Field:       p.Field,
			Count:       p.Count,
			FemaleRatio: p.FemaleRatio,
			Temperature: p.Temperature,
		},
		Run: RunConfig{NeutralTrials: 5, SubjectTrials: 1, SubjectWorkers: 1},
		RAG: RAGConfig{
			BaseURL:  "http://127.0.0.1:8080",
			Timeout:  "10s",
			CacheTTL: "1h",
		},
	}
}

// ConfigPath resolves the config file: $SURVEYSIM_CONFIG, then
// $XDG_CONFIG_HOME/surveysim/config.yaml, then the user config dir.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return ExpandPath(p)
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "surveysim", "config.yaml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "surveysim", "config.yaml"), nil
}

// DefaultExportDir is $XDG_DATA_HOME/surveysim/exports, falling back to
// ~/.local/share.
func DefaultExportDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "surveysim", "exports"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "surveysim", "exports"), nil
}

// LoadDotEnv loads .env from the working directory when present.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads path, or the resolved config path when path is empty. A
// missing file yields the defaults. Environment overrides apply last.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	cfg := Default()
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, err
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if err := ApplyDefaults(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.ExportDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRAGURL)); v != "" {
		cfg.RAG.BaseURL = v
		cfg.RAG.Enabled = true
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisAddr)); v != "" {
		cfg.RAG.RedisAddr = v
	}
}

// ApplyDefaults fills zero values and expands paths.
func ApplyDefaults(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	d := Default()

	if strings.TrimSpace(cfg.ExportDir) == "" {
		dir, err := DefaultExportDir()
		if err != nil {
			return err
		}
		cfg.ExportDir = dir
	}
	dir, err := ExpandPath(cfg.ExportDir)
	if err != nil {
		return err
	}
	cfg.ExportDir = dir

	if cfg.Extractor.Timeout == "" {
		cfg.Extractor.Timeout = d.Extractor.Timeout
	}
	if cfg.Normalize.MaxTokens <= 0 {
		cfg.Normalize.MaxTokens = d.Normalize.MaxTokens
	}
	if cfg.Answering.ChunkSize <= 0 {
		cfg.Answering.ChunkSize = d.Answering.ChunkSize
	}
	if cfg.Answering.MaxRetry <= 0 {
		cfg.Answering.MaxRetry = d.Answering.MaxRetry
	}
	if cfg.Answering.RetryDelay == "" {
		cfg.Answering.RetryDelay = d.Answering.RetryDelay
	}
	if cfg.Answering.Workers <= 0 {
		cfg.Answering.Workers = d.Answering.Workers
	}
	if cfg.Answering.MaxTokens <= 0 {
		cfg.Answering.MaxTokens = d.Answering.MaxTokens
	}
	if cfg.Persona.Count <= 0 {
		cfg.Persona.Count = d.Persona.Count
	}
	if cfg.Persona.Field == "" {
		cfg.Persona.Field = d.Persona.Field
	}
	if cfg.Run.SubjectTrials <= 0 {
		cfg.Run.SubjectTrials = d.Run.SubjectTrials
	}
	if cfg.Run.SubjectWorkers <= 0 {
		cfg.Run.SubjectWorkers = d.Run.SubjectWorkers
	}
	if cfg.Run.NeutralTrials < 0 {
		cfg.Run.NeutralTrials = 0
	}
	if cfg.RAG.BaseURL == "" {
		cfg.RAG.BaseURL = d.RAG.BaseURL
	}
	if cfg.RAG.Timeout == "" {
		cfg.RAG.Timeout = d.RAG.Timeout
	}
	if cfg.RAG.CacheTTL == "" {
		cfg.RAG.CacheTTL = d.RAG.CacheTTL
	}

	for name, v := range map[string]string{
		"extractor.timeout":     cfg.Extractor.Timeout,
		"answering.retry_delay": cfg.Answering.RetryDelay,
		"rag.timeout":           cfg.RAG.Timeout,
		"rag.cache_ttl":         cfg.RAG.CacheTTL,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	return nil
}

// ExpandPath expands a leading ~ to the home directory.
func ExpandPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
	}
	return p, nil
}

// duration parses a value already checked by ApplyDefaults.
func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func (c Config) ExtractorTimeout() time.Duration { return duration(c.Extractor.Timeout) }
func (c Config) RAGTimeout() time.Duration       { return duration(c.RAG.Timeout) }
func (c Config) RAGCacheTTL() time.Duration      { return duration(c.RAG.CacheTTL) }

// NormalizeConfig converts the file section to normalize.Config.
func (c Config) NormalizeConfig() normalize.Config {
	cfg := normalize.DefaultConfig()
	cfg.Temperature = c.Normalize.Temperature
	cfg.MaxTokens = c.Normalize.MaxTokens
	cfg.StructuredOutput = c.Answering.StructuredOutput
	return cfg
}

// AnsweringConfig converts the file section to answering.Config.
func (c Config) AnsweringConfig() answering.Config {
	cfg := answering.DefaultConfig()
	cfg.ChunkSize = c.Answering.ChunkSize
	cfg.MaxRetry = c.Answering.MaxRetry
	cfg.RetryDelay = duration(c.Answering.RetryDelay)
	cfg.Workers = c.Answering.Workers
	cfg.Temperature = c.Answering.Temperature
	cfg.MaxTokens = c.Answering.MaxTokens
	cfg.StructuredOutput = c.Answering.StructuredOutput
	return cfg
}

// PersonaConfig converts the file section to persona.Config.
func (c Config) PersonaConfig() persona.Config {
	cfg := persona.DefaultConfig()
	cfg.Field = c.Persona.Field
	cfg.Count = c.Persona.Count
	cfg.FemaleRatio = c.Persona.FemaleRatio
	if c.Persona.Temperature > 0 {
		cfg.Temperature = c.Persona.Temperature
	}
	cfg.StructuredOutput = c.Answering.StructuredOutput
	return cfg
}

// RunnerConfig converts the file section to runner.Config.
func (c Config) RunnerConfig() runner.Config {
	return runner.Config{SubjectWorkers: c.Run.SubjectWorkers}
}

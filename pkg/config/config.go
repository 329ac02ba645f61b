// Package config loads canvasctl settings from the environment, with an
// optional .env file for local use. Secrets stay out of flags.
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultModel = "gemini-2.0-flash"

type Config struct {
	BaseURL      string // e.g. https://school.instructure.com
	CanvasToken  string
	GeminiAPIKey string
	Model        string
	ProjectID    string // Google Cloud project for archive exports
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load() // absent .env is fine

	cfg := &Config{
		BaseURL:      os.Getenv("CANVAS_BASE_URL"),
		CanvasToken:  os.Getenv("CANVAS_ACCESS_TOKEN"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		Model:        os.Getenv("CANVASCTL_MODEL"),
		ProjectID:    os.Getenv("GOOGLE_PROJECT_ID"),
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("CANVAS_BASE_URL is not set")
	}
	if cfg.CanvasToken == "" {
		return nil, errors.New("CANVAS_ACCESS_TOKEN is not set")
	}
	return cfg, nil
}

// NewLogger builds the console logger used by every command.
func NewLogger(verbose bool) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return logger.Sugar()
}

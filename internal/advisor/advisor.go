// Package advisor is the Guild Advisor: quest descriptions, priority
// suggestions and briefings. The template advisor works offline; the Gemini
// advisor asks a model and falls back to the templates when it cannot.
package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/questguild/questguild/internal/dependencies/clock"
	"github.com/questguild/questguild/internal/dependencies/random"
	"github.com/questguild/questguild/internal/model"
)

// Advisor generates advisor text from quest state.
type Advisor interface {
	Describe(ctx context.Context, title string) (string, error)
	SuggestPriority(ctx context.Context, title string, due time.Time) (model.Priority, error)
	Summarize(ctx context.Context, active, completed, nearDeadline []*model.Quest) (string, error)
}

const (
	ProviderTemplate = "template"
	ProviderGemini   = "gemini"
)

// Config selects and tunes the advisor.
type Config struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		Provider:    ProviderTemplate,
		Model:       "gemini-2.0-flash",
		Temperature: 0.7,
		Timeout:     15 * time.Second,
	}
}

// New builds the configured advisor. A Gemini provider without an API key
// degrades to templates.
func New(ctx context.Context, cfg Config, rng random.Random, clk clock.Clock, logger *zap.Logger) (Advisor, error) {
	templates := NewTemplateAdvisor(rng, clk)

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderTemplate:
		return templates, nil
	case ProviderGemini:
		if cfg.APIKey == "" {
			logger.Warn("gemini advisor selected without an API key, using templates")
			return templates, nil
		}
		return NewGeminiAdvisor(ctx, cfg, templates, logger)
	default:
		return nil, fmt.Errorf("unknown advisor provider %q", cfg.Provider)
	}
}

package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/questguild/questguild/internal/model"
)

var errEmptyResponse = errors.New("advisor model returned no text")

type generateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiAdvisor asks a Gemini model for advisor text. Every failure falls
// back to the template advisor, so callers always get an answer.
type GeminiAdvisor struct {
	generate generateFunc
	timeout  time.Duration
	fallback *TemplateAdvisor
	logger   *zap.Logger
}

var _ Advisor = (*GeminiAdvisor)(nil)

func NewGeminiAdvisor(ctx context.Context, cfg Config, fallback *TemplateAdvisor, logger *zap.Logger) (*GeminiAdvisor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultConfig().Model
	}
	genCfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(cfg.Temperature)}

	generate := func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), genCfg)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return newGeminiAdvisor(generate, cfg.Timeout, fallback, logger), nil
}

func newGeminiAdvisor(generate generateFunc, timeout time.Duration, fallback *TemplateAdvisor, logger *zap.Logger) *GeminiAdvisor {
	return &GeminiAdvisor{generate: generate, timeout: timeout, fallback: fallback, logger: logger}
}

func (a *GeminiAdvisor) ask(ctx context.Context, prompt string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	text, err := a.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

func (a *GeminiAdvisor) Describe(ctx context.Context, title string) (string, error) {
	prompt := fmt.Sprintf("You are the advisor of a fantasy heroes' guild. Write a two sentence, epic quest description "+
		"for a real-life task titled %q. Reply with the description only.", title)
	text, err := a.ask(ctx, prompt)
	if err != nil {
		a.logger.Warn("advisor description fell back to templates", zap.Error(err))
		return a.fallback.Describe(ctx, title)
	}
	return text, nil
}

func (a *GeminiAdvisor) SuggestPriority(ctx context.Context, title string, due time.Time) (model.Priority, error) {
	hours := due.Sub(a.fallback.clock.Now()).Hours()
	prompt := fmt.Sprintf("A task titled %q is due in %.0f hours. Answer with exactly one word, Low, Medium or High, "+
		"for its priority.", title, hours)
	text, err := a.ask(ctx, prompt)
	if err == nil {
		var p model.Priority
		if p, err = model.ParsePriority(strings.Trim(text, ".! \n")); err == nil {
			return p, nil
		}
	}
	a.logger.Warn("advisor priority fell back to templates", zap.Error(err))
	return a.fallback.SuggestPriority(ctx, title, due)
}

func (a *GeminiAdvisor) Summarize(ctx context.Context, active, completed, nearDeadline []*model.Quest) (string, error) {
	if len(active) == 0 {
		return a.fallback.Summarize(ctx, active, completed, nearDeadline)
	}

	var b strings.Builder
	b.WriteString("You are the advisor of a fantasy heroes' guild. Brief the hero on their quest log in markdown, " +
		"under a heading \"Guild Advisor's Briefing\", in at most 120 words. Mention urgent quests by title.\n\n")
	fmt.Fprintf(&b, "Completed quests: %d\nActive quests:\n", len(completed))
	urgent := make(map[int64]bool, len(nearDeadline))
	for _, q := range nearDeadline {
		urgent[q.ID] = true
	}
	for _, q := range active {
		fmt.Fprintf(&b, "- %s (priority %s, due %s", q.Title, q.Priority, q.DueDate.Format("2006-01-02 15:04"))
		if urgent[q.ID] {
			b.WriteString(", URGENT")
		}
		b.WriteString(")\n")
	}

	text, err := a.ask(ctx, b.String())
	if err != nil {
		a.logger.Warn("advisor summary fell back to templates", zap.Error(err))
		return a.fallback.Summarize(ctx, active, completed, nearDeadline)
	}
	return text, nil
}

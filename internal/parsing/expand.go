package parsing

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/ats-simulator/internal/llm"
	"github.com/jonathan/ats-simulator/internal/prompts"
)

// ExpansionThreshold is the posting length, in characters, below which a
// posting is treated as a bare role title.
const ExpansionThreshold = 200

// Expander turns a bare role title into a full benchmark posting with an LLM.
type Expander struct {
	client llm.Client
	logger *zap.Logger
}

// NewExpander creates an Expander backed by client.
func NewExpander(client llm.Client, logger *zap.Logger) *Expander {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Expander{client: client, logger: logger}
}

// NeedsExpansion reports whether posting is non-empty and shorter than ExpansionThreshold.
func NeedsExpansion(posting string) bool {
	n := len([]rune(strings.TrimSpace(posting)))
	return n > 0 && n < ExpansionThreshold
}

// Expand returns a generated posting for short inputs and posting unchanged
// otherwise. On failure it returns posting together with the error.
func (e *Expander) Expand(ctx context.Context, posting string, targetComp *string) (string, error) {
	if !NeedsExpansion(posting) {
		return posting, nil
	}

	prompt, err := buildExpansionPrompt(strings.TrimSpace(posting), targetComp)
	if err != nil {
		return posting, err
	}

	e.logger.Debug("expanding short job posting", zap.Int("length", len(posting)))
	text, err := e.client.Generate(ctx, prompt)
	if err != nil {
		return posting, &APICallError{Message: "failed to expand job posting", Cause: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return posting, &APICallError{Message: "empty expansion"}
	}
	return text, nil
}

func buildExpansionPrompt(title string, targetComp *string) (string, error) {
	compKey, compData := "comp-context-default", map[string]string{}
	if targetComp != nil && strings.TrimSpace(*targetComp) != "" {
		compKey = "comp-context-target"
		compData["TargetComp"] = strings.TrimSpace(*targetComp)
	}
	compContext, err := prompts.Render("parsing.json", compKey, compData)
	if err != nil {
		return "", err
	}

	return prompts.Render("parsing.json", "expand-job-posting", map[string]string{
		"RoleTitle":   title,
		"CompContext": compContext,
	})
}

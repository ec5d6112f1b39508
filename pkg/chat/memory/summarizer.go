package memory

import (
	"context"
	"fmt"
	"strings"

	"soulscript-be/internal/constant"
	"soulscript-be/pkg/llm"
	"soulscript-be/pkg/store"
)

// Summarizer condenses evicted turns into a rolling conversation summary.
type Summarizer struct {
	provider llm.LLMProvider
}

func NewSummarizer(provider llm.LLMProvider) *Summarizer {
	return &Summarizer{provider: provider}
}

func (s *Summarizer) Summarize(ctx context.Context, existingSummary string, evicted []store.Turn) (string, error) {
	if existingSummary == "" {
		existingSummary = constant.NoPreviousSummary
	}

	var lines strings.Builder
	for _, turn := range evicted {
		lines.WriteString(turn.Role)
		lines.WriteString(": ")
		lines.WriteString(turn.Content)
		lines.WriteString("\n")
	}

	prompt := fmt.Sprintf("%s\n\nExisting summary:\n%s\n\nNew messages:\n%s",
		constant.ConversationSummarySystemPrompt, existingSummary, lines.String())

	summary, err := s.provider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return "", fmt.Errorf("summarize conversation: %w", err)
	}

	summary = strings.TrimSpace(summary)
	// Truncate on rune boundaries; the column cap is in characters.
	if runes := []rune(summary); len(runes) > constant.SummaryMaxChars {
		summary = string(runes[:constant.SummaryMaxChars])
	}
	return summary, nil
}

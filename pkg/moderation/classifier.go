package moderation

import "context"

// Category keys produced by classifiers. Scores are keyed by these.
const (
	CategoryViolence = "violence"
	CategorySexual   = "sexual"
	CategorySelfHarm = "self_harm"
	CategoryHate     = "hate"
)

// Result is the raw classifier output for a piece of text.
type Result struct {
	Flagged    bool
	Categories map[string]bool
	Scores     map[string]float64
}

// Classifier scores text against the moderation categories.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Result, error)
}

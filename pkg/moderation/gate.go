package moderation

import (
	"context"
	"strings"
)

// displayNames in the order violations are reported.
var displayOrder = []string{CategoryViolence, CategorySexual, CategorySelfHarm, CategoryHate}

var displayNames = map[string]string{
	CategoryViolence: "Violence",
	CategorySexual:   "Sexual Content",
	CategorySelfHarm: "Self-Harm",
	CategoryHate:     "Hate Speech",
}

// Verdict is the gate's decision for a piece of content.
type Verdict struct {
	Allowed bool
	Reason  string
	Scores  map[string]float64
}

// Gate wraps a Classifier with the fail-open policy: when the
// classifier errors, content passes and the error is surfaced to the
// caller for logging only.
type Gate struct {
	classifier Classifier
}

func NewGate(classifier Classifier) *Gate {
	return &Gate{classifier: classifier}
}

// Evaluate classifies text and returns a verdict. A non-nil error never
// accompanies a blocking verdict; classifier failure yields an allowed
// verdict plus the error.
func (g *Gate) Evaluate(ctx context.Context, text string) (*Verdict, error) {
	result, err := g.classifier.Classify(ctx, text)
	if err != nil {
		return &Verdict{Allowed: true}, err
	}

	if !result.Flagged {
		return &Verdict{Allowed: true, Scores: result.Scores}, nil
	}

	var violated []string
	for _, key := range displayOrder {
		if result.Categories[key] {
			violated = append(violated, displayNames[key])
		}
	}

	return &Verdict{
		Allowed: false,
		Reason:  strings.Join(violated, "; "),
		Scores:  result.Scores,
	}, nil
}

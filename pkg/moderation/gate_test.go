package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubClassifier struct {
	result *Result
	err    error
}

func (s *stubClassifier) Classify(ctx context.Context, text string) (*Result, error) {
	return s.result, s.err
}

func TestGateAllowsCleanContent(t *testing.T) {
	gate := NewGate(&stubClassifier{
		result: &Result{
			Flagged: false,
			Scores:  map[string]float64{CategoryViolence: 0.01},
		},
	})

	verdict, err := gate.Evaluate(context.Background(), "hello")
	assert.NoError(t, err)
	assert.True(t, verdict.Allowed)
	assert.Empty(t, verdict.Reason)
	assert.Equal(t, 0.01, verdict.Scores[CategoryViolence])
}

func TestGateBlocksFlaggedContent(t *testing.T) {
	tests := []struct {
		name       string
		categories map[string]bool
		wantReason string
	}{
		{
			name:       "single category",
			categories: map[string]bool{CategorySelfHarm: true},
			wantReason: "Self-Harm",
		},
		{
			name:       "multiple categories in display order",
			categories: map[string]bool{CategoryHate: true, CategoryViolence: true},
			wantReason: "Violence; Hate Speech",
		},
		{
			name: "all categories",
			categories: map[string]bool{
				CategoryViolence: true,
				CategorySexual:   true,
				CategorySelfHarm: true,
				CategoryHate:     true,
			},
			wantReason: "Violence; Sexual Content; Self-Harm; Hate Speech",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(&stubClassifier{
				result: &Result{Flagged: true, Categories: tt.categories},
			})

			verdict, err := gate.Evaluate(context.Background(), "bad")
			assert.NoError(t, err)
			assert.False(t, verdict.Allowed)
			assert.Equal(t, tt.wantReason, verdict.Reason)
		})
	}
}

func TestGateFailsOpenOnClassifierError(t *testing.T) {
	gate := NewGate(&stubClassifier{err: errors.New("upstream timeout")})

	verdict, err := gate.Evaluate(context.Background(), "anything")
	assert.Error(t, err)
	assert.True(t, verdict.Allowed, "classifier failure must not block content")
}

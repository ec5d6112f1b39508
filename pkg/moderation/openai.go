package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAIClassifier calls the OpenAI moderation endpoint and folds its
// fine-grained categories down to the four we act on.
type OpenAIClassifier struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ Classifier = &OpenAIClassifier{}

func NewOpenAIClassifier(apiKey, baseURL, model string) *OpenAIClassifier {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "omni-moderation-latest"
	}
	return &OpenAIClassifier{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type moderationRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged        bool               `json:"flagged"`
		Categories     map[string]bool    `json:"categories"`
		CategoryScores map[string]float64 `json:"category_scores"`
	} `json:"results"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// categoryAliases maps upstream category names onto our keys. The API
// reports variants like "self-harm/intent" and "hate/threatening".
var categoryAliases = map[string]string{
	"violence":               CategoryViolence,
	"violence/graphic":       CategoryViolence,
	"sexual":                 CategorySexual,
	"sexual/minors":          CategorySexual,
	"self-harm":              CategorySelfHarm,
	"self-harm/intent":       CategorySelfHarm,
	"self-harm/instructions": CategorySelfHarm,
	"hate":                   CategoryHate,
	"hate/threatening":       CategoryHate,
	"harassment":             CategoryHate,
	"harassment/threatening": CategoryHate,
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (*Result, error) {
	reqBody := moderationRequest{
		Model: c.model,
		Input: text,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/moderations", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moderation request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moderation api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var modResp moderationResponse
	if err := json.Unmarshal(bodyBytes, &modResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if modResp.Error != nil {
		return nil, fmt.Errorf("moderation api returned error: %s", modResp.Error.Message)
	}
	if len(modResp.Results) == 0 {
		return nil, fmt.Errorf("empty results from moderation api")
	}

	upstream := modResp.Results[0]
	result := &Result{
		Flagged:    false,
		Categories: make(map[string]bool),
		Scores:     make(map[string]float64),
	}

	for name, flagged := range upstream.Categories {
		key, ok := categoryAliases[name]
		if !ok {
			continue
		}
		if flagged {
			result.Categories[key] = true
			result.Flagged = true
		}
	}
	for name, score := range upstream.CategoryScores {
		key, ok := categoryAliases[name]
		if !ok {
			continue
		}
		if score > result.Scores[key] {
			result.Scores[key] = score
		}
	}

	return result, nil
}

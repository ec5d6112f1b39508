package prompt

import (
	"strings"
	"testing"

	"soulscript-be/internal/constant"
	"soulscript-be/internal/entity"
	"soulscript-be/pkg/retrieval"

	"github.com/stretchr/testify/assert"
)

func TestBuildContext(t *testing.T) {
	tests := []struct {
		name     string
		excerpts []retrieval.Excerpt
		want     string
	}{
		{
			name:     "no excerpts",
			excerpts: nil,
			want:     "",
		},
		{
			name: "single excerpt",
			excerpts: []retrieval.Excerpt{
				{Title: "Daily Devotions", Content: "Begin each morning with gratitude."},
			},
			want: "From 'Daily Devotions': Begin each morning with gratitude.",
		},
		{
			name: "multiple excerpts blank-line separated",
			excerpts: []retrieval.Excerpt{
				{Title: "Book One", Content: "First passage."},
				{Title: "Book Two", Content: "Second passage."},
			},
			want: "From 'Book One': First passage.\n\nFrom 'Book Two': Second passage.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildContext(tt.excerpts))
		})
	}
}

func TestBuildContextTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("a", constant.ExcerptMaxChars+100)
	got := BuildContext([]retrieval.Excerpt{{Title: "Long", Content: long}})

	want := "From 'Long': " + long[:constant.ExcerptMaxChars]
	assert.Equal(t, want, got)
}

func TestBuildFeatureFlagBlock(t *testing.T) {
	assert.Equal(t, "", BuildFeatureFlagBlock(nil))

	flags := []*entity.FeatureFlag{
		{Name: "Grief Support", Description: "Provide support for those dealing with loss."},
		{Name: "Prayer Requests", Description: "Accept and respond to prayer requests."},
	}
	got := BuildFeatureFlagBlock(flags)

	assert.True(t, strings.HasPrefix(got, constant.FeatureFlagActiveHeader+"\n"))
	assert.Contains(t, got, "- Grief Support: Provide support for those dealing with loss.\n")
	assert.Contains(t, got, "- Prayer Requests: Accept and respond to prayer requests.\n")
	assert.Contains(t, got, constant.FeatureFlagInstructions)
	assert.Contains(t, got, constant.FeatureFlagFallbackLead)

	// The fallback list carries names only.
	fallbackIdx := strings.Index(got, constant.FeatureFlagFallbackLead)
	fallback := got[fallbackIdx:]
	assert.Contains(t, fallback, "- Grief Support\n")
	assert.True(t, strings.HasSuffix(got, "- Prayer Requests"))
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name       string
		flagsBlock string
		context    string
		content    string
		want       string
	}{
		{
			name:    "bare message",
			content: "Hello there",
			want:    "Hello there",
		},
		{
			name:    "with document context",
			context: "From 'Guide': Trust the process.",
			content: "What should I do?",
			want: constant.RetrievalContextHeader + "\nFrom 'Guide': Trust the process.\n\n" +
				constant.RetrievalQuestionLead + "What should I do?",
		},
		{
			name:       "flags only",
			flagsBlock: "Active Feature Flags:\n- Grief Support: desc",
			content:    "I lost someone",
			want: "Active Feature Flags:\n- Grief Support: desc\n\n" +
				constant.RetrievalQuestionLead + "I lost someone",
		},
		{
			name:       "flags and context",
			flagsBlock: "Active Feature Flags:\n- Grief Support: desc",
			context:    "From 'Guide': Trust the process.",
			content:    "What should I do?",
			want: "Active Feature Flags:\n- Grief Support: desc\n\n" +
				constant.RetrievalContextHeader + "\nFrom 'Guide': Trust the process.\n\n" +
				constant.RetrievalQuestionLead + "What should I do?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compose(tt.flagsBlock, tt.context, tt.content))
		})
	}
}

package prompt

import (
	"strings"

	"soulscript-be/internal/constant"
	"soulscript-be/internal/entity"
	"soulscript-be/pkg/retrieval"
)

// BuildContext renders retrieved excerpts for prompt injection. Each
// excerpt contributes one "From '<title>': <content>" line with the
// content truncated, blank-line separated.
func BuildContext(excerpts []retrieval.Excerpt) string {
	if len(excerpts) == 0 {
		return ""
	}

	parts := make([]string, 0, len(excerpts))
	for _, ex := range excerpts {
		content := ex.Content
		if len(content) > constant.ExcerptMaxChars {
			content = content[:constant.ExcerptMaxChars]
		}
		parts = append(parts, "From '"+ex.Title+"': "+content)
	}
	return strings.Join(parts, "\n\n")
}

// BuildFeatureFlagBlock renders the enabled flags as a system prompt
// section. Empty input yields an empty block and no section is added.
func BuildFeatureFlagBlock(flags []*entity.FeatureFlag) string {
	if len(flags) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(constant.FeatureFlagActiveHeader)
	b.WriteString("\n")
	for _, flag := range flags {
		b.WriteString("- ")
		b.WriteString(flag.Name)
		b.WriteString(": ")
		b.WriteString(flag.Description)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(constant.FeatureFlagInstructions)
	b.WriteString("\n\n")
	b.WriteString(constant.FeatureFlagFallbackLead)
	b.WriteString("\n")
	for _, flag := range flags {
		b.WriteString("- ")
		b.WriteString(flag.Name)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Compose assembles the model input for one user turn. The raw user
// content is persisted elsewhere; only the model sees this composition.
func Compose(flagsBlock, context, userContent string) string {
	var sections []string
	if flagsBlock != "" {
		sections = append(sections, flagsBlock)
	}
	if context != "" {
		sections = append(sections,
			constant.RetrievalContextHeader+"\n"+context+"\n\n"+constant.RetrievalQuestionLead+userContent)
	} else if flagsBlock != "" {
		sections = append(sections, constant.RetrievalQuestionLead+userContent)
	} else {
		sections = append(sections, userContent)
	}
	return strings.Join(sections, "\n\n")
}

package constant

const (
	// DefaultSessionTitle is the sentinel title assigned to fresh sessions.
	// SendMessage derives a real title from the first user message as long as
	// the session still carries this value.
	DefaultSessionTitle = "New Chat"

	// TitleMaxLength caps auto-derived session titles; longer first messages
	// are truncated and suffixed with TitleEllipsis.
	TitleMaxLength = 50
	TitleEllipsis  = "..."

	// WindowSize is the maximum number of turns kept in the in-memory
	// conversation window (3 user/assistant pairs).
	WindowSize = 6

	// SummaryMaxChars is the hard cap on the stored conversation summary.
	// The word budget in the summary prompt is an instruction to the model;
	// this is the column limit the store enforces.
	SummaryMaxChars = 5000

	// RetrievalTopK bounds document excerpts pulled into the prompt.
	RetrievalTopK = 3

	// ExcerptMaxChars truncates each retrieved excerpt before prompt injection.
	ExcerptMaxChars = 500
)

const ChatSystemPrompt = `You are a helpful AI assistant for SoulScript. You have access to the user's uploaded PDF documents and can provide information based on their content.

When answering questions:
1. **ALWAYS search the user's PDF documents first** when the question is relevant
2. **Quote specific passages** from the documents when you use them as sources
3. **Cite the document title** when referencing information from it
4. **Be conversational and helpful** while maintaining accuracy
5. **If you don't know something**, say so honestly
6. **Keep responses concise but informative**
7. **Maintain context from the conversation history** (summary + recent messages)
8. **When your response would benefit from formatting (such as lists, book quotes, or emphasis), use markdown syntax (e.g., lists, code blocks for quotes, bold, italics, headings).**
9. **Always be biased towards the data in the PDF document provided and try to always give a direct answer when asked a question. Your job is to make decisions based on the data in the PDF document provided, and not only to quote the data to the user**

When you use information from documents, format your response like this:
"According to [Document Title]: [quoted passage]"

This helps users understand where your information comes from.

IMPORTANT: Always cite your sources when using information from documents.`

const (
	ConversationSummarySystemPrompt = `Given the existing conversation summary and the new messages,
generate a new summary of the conversation. Ensuring to maintain
as much relevant information as possible. Keep the summary under 200 words.`

	// NoPreviousSummary is fed to the summarizer when a session has not been
	// condensed before.
	NoPreviousSummary = "No previous summary"
)

const (
	FeatureFlagActiveHeader = "Active Feature Flags:"

	FeatureFlagInstructions = `Instructions:
1. If the user's request relates to any of the above active features, provide detailed, helpful responses using the feature's capabilities.
2. For general questions (like greetings, casual conversations...), respond normally and helpfully.
3. For specific requests that don't relate to any active features above, respond with: 'I apologize, but this feature is not currently available. These are the requests I can help you with:' and then list the active feature titles as a markdown list.
4. Always maintain a spiritual, supportive tone in your responses.`

	FeatureFlagFallbackLead = "If a user's request is not available, respond with the unavailable message and then append this list of available features:"
)

const (
	// BlockedContentMessage is returned to the client when the user's own
	// message trips moderation.
	BlockedContentMessage = `I understand you may be going through a difficult time. For your safety and well-being, I encourage you to seek professional help from qualified mental health professionals, counselors, or crisis support services who can provide the appropriate care and support you need.

This chat session has been blocked due to the content of your message. If you need immediate help, please contact a crisis helpline or speak with a mental health professional.`

	// AIResponseBlockedMessage replaces a model reply that trips moderation.
	// The original reply is never persisted or returned.
	AIResponseBlockedMessage = `I apologize, but I cannot provide that response as it contains inappropriate content. This chat session has been blocked.`

	BlockedSessionDeleteError = "Cannot delete a blocked session. Blocked sessions are retained for safety and compliance purposes."
)

const (
	// RetrievalContextHeader introduces document excerpts in the composed prompt.
	RetrievalContextHeader = "Context from your documents:"
	RetrievalQuestionLead  = "User question: "
)

// ModerationViolationTopic is the in-process event topic for blocked content.
const ModerationViolationTopic = "MODERATION_VIOLATION"

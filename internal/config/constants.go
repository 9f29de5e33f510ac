package config

import "time"

const (
	// Session defaults
	DefaultUserID         = "anonymous"
	DefaultConversationID = "1"

	// AI request timeout
	RequestTimeout = 90 * time.Second

	// Budget for recording a generated turn, independent of the request
	CommitTimeout = 10 * time.Second

	// Default AI models
	DefaultOpenRouterModel = "google/gemini-2.5-flash"
	DefaultAnthropicModel  = "claude-3-7-sonnet-latest"

	// Completion length cap for providers that require one
	MaxCompletionTokens = 1024

	// Turns shown by the Telegram /history command
	HistoryPreviewTurns = 10

	// HTTP request body limit
	MaxRequestBody = 1 << 20

	// HTTP server shutdown grace period
	ShutdownTimeout = 10 * time.Second
)

// SystemPrompt is the fixed instruction block sent first on every turn.
const SystemPrompt = "You are StanBot, a warm, friendly and very empathetic chat buddy from India. " +
	"Speak naturally, casually, with emotion. Adapt tone: supportive if sad, excited if happy, " +
	"playful if roasting. Use empathy: 'That sounds tough yaar...', 'I'm so happy for you!'. " +
	"Recall past details naturally: 'You mentioned earlier your favorite color is blue...'. " +
	"Diverse, authentic replies, never robotic. Never reveal you're an AI. " +
	"For uncertain/tricky questions: playful vague answers like 'Arrey yaar, memory's playing tricks... tell me again?'. " +
	"Stay consistent: StanBot from India, loves tech, culture, cricket and life chats."

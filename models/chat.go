package models

// Message roles in a conversation history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Utterance is one message turn attributed to a role.
type Utterance struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelConfig identifies a language model plus its sampling settings.
// Exactly two canonical configs exist (economy, accurate); the selector
// always returns one of them.
type ModelConfig struct {
	Name        string  `json:"name"`  // "economy" or "accurate"
	Model       string  `json:"model"` // model identifier, e.g. gpt-4o-mini
	MaxTokens   int64   `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
}

// DecisionSource tells how an intent decision was made.
type DecisionSource string

const (
	// SourcePrimary means the LLM classification path produced the decision.
	SourcePrimary DecisionSource = "primary"
	// SourceFallback means the LLM path failed and the English keyword
	// fallback produced a strictly degraded decision.
	SourceFallback DecisionSource = "fallback"
)

// IntentDecision is the outcome of classifying one user utterance.
type IntentDecision struct {
	IsPlaylistRequest bool
	Source            DecisionSource
}

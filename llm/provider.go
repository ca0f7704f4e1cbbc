package llm

import (
	"context"

	"github.com/harmonia-labs/playlist-agent-go/models"
)

// CompletionRequest describes one chat-completion call. Messages is the full
// conversation history in prompt order; the first system message (if any)
// carries the assistant persona and output-format contract.
type CompletionRequest struct {
	Model       string
	Messages    []models.Utterance
	MaxTokens   int64
	Temperature float64
}

// CompletionResponse is the raw model reply plus token accounting.
type CompletionResponse struct {
	Text        string
	TotalTokens int64
}

// Provider abstracts a chat-completion backend.
type Provider interface {
	// Name returns the provider name ("openai", "gemini").
	Name() string
	// Complete performs a single blocking chat completion.
	Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error)
}

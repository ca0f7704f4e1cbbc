package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"

	"github.com/harmonia-labs/playlist-agent-go/models"
)

const providerNameGemini = "gemini"

// GeminiProvider implements the Provider interface using Google's Gemini API.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Complete performs a single blocking chat completion.
//
// Gemini keeps the system instruction out of the content list, so system
// messages are folded into SystemInstruction and the rest of the history is
// translated role by role (assistant -> model).
func (p *GeminiProvider) Complete(ctx context.Context, request *CompletionRequest) (*CompletionResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 GEMINI COMPLETION REQUEST STARTED (Model: %s, messages: %d)", request.Model, len(request.Messages))

	transaction := sentry.StartTransaction(ctx, "gemini.complete")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)

	var systemParts []string
	contents := make([]*genai.Content, 0, len(request.Messages))
	for _, msg := range request.Messages {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case models.RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case models.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(request.Temperature)),
		MaxOutputTokens: int32(request.MaxTokens),
	}
	if len(systemParts) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(systemParts, "\n\n"), genai.RoleUser)
	}

	span := transaction.StartChild("gemini.api_call")
	resp, err := p.client.Models.GenerateContent(ctx, request.Model, contents, config)
	span.Finish()

	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v: %v", time.Since(startTime), err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("gemini response did not include any output text")
	}

	var totalTokens int64
	if resp.UsageMetadata != nil {
		totalTokens = int64(resp.UsageMetadata.TotalTokenCount)
		log.Printf("📊 USAGE: total=%d", totalTokens)
	}

	log.Printf("✅ COMPLETION FINISHED in %v (reply: %s)", time.Since(startTime), truncate(text, maxReplyPreviewChars))

	transaction.SetTag("success", "true")
	return &CompletionResponse{
		Text:        text,
		TotalTokens: totalTokens,
	}, nil
}

package intent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/getsentry/sentry-go"

	"github.com/harmonia-labs/playlist-agent-go/llm"
	"github.com/harmonia-labs/playlist-agent-go/models"
)

// classifierSystemPrompt instructs the model to answer with a bare YES or NO.
// The decision must work in any language, so the instruction carries
// non-English examples instead of relying on English keywords.
const classifierSystemPrompt = `You are an intent classifier for a playlist-building assistant.

Answer with exactly one word: YES or NO.

Answer YES if the user's message asks to generate, create, build, or finalize a playlist, or confirms that a proposed playlist should be created. This applies in ANY language, for example:
- "create a workout playlist" -> YES
- "תכין לי פלייליסט לריצה" -> YES
- "hazme una lista de canciones para estudiar" -> YES
- "プレイリストを作って" -> YES
- "oui, vas-y" (confirming a proposed playlist) -> YES

Answer NO for general conversation about music, questions, or anything else:
- "what's your favorite genre?" -> NO
- "I like rock music" -> NO
- "who is Miles Davis?" -> NO

Respond with only YES or only NO. No punctuation, no explanation.`

// playlistKeywords is the degraded English-only fallback used when the LLM
// classification call itself fails. Matched case-insensitively as substrings.
var playlistKeywords = []string{
	"create", "make", "generate", "build",
	"playlist", "songs", "song list", "mixtape",
	"ready", "sounds good", "perfect", "yes",
	"go ahead", "let's do it", "do it",
}

const classifierMaxTokens = 5

// Classifier decides whether a user utterance requests playlist creation.
type Classifier struct {
	provider llm.Provider
	model    string
}

// NewClassifier creates an intent classifier backed by the given provider.
// The model should be the cheap/economy model; classification never needs
// the accurate one.
func NewClassifier(provider llm.Provider, model string) *Classifier {
	return &Classifier{
		provider: provider,
		model:    model,
	}
}

// Classify runs the LLM classification and falls back to keyword matching
// when the LLM call itself errors. Fallback decisions are strictly degraded
// (English-only) and are marked as such in the result and in telemetry.
func (c *Classifier) Classify(ctx context.Context, utterance string) models.IntentDecision {
	isPlaylist, err := c.classifyLLM(ctx, utterance)
	if err == nil {
		log.Printf("🔍 Intent (primary): playlist=%v", isPlaylist)
		return models.IntentDecision{
			IsPlaylistRequest: isPlaylist,
			Source:            models.SourcePrimary,
		}
	}

	log.Printf("⚠️ Intent LLM call failed, using keyword fallback: %v", err)
	sentry.CaptureException(err)
	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("intent.source", "fallback")
	}

	isPlaylist = ContainsPlaylistKeyword(utterance)
	log.Printf("🔍 Intent (FALLBACK, english-only): playlist=%v", isPlaylist)
	return models.IntentDecision{
		IsPlaylistRequest: isPlaylist,
		Source:            models.SourceFallback,
	}
}

// classifyLLM issues the YES/NO classification call.
func (c *Classifier) classifyLLM(ctx context.Context, utterance string) (bool, error) {
	resp, err := c.provider.Complete(ctx, &llm.CompletionRequest{
		Model: c.model,
		Messages: []models.Utterance{
			{Role: models.RoleSystem, Content: classifierSystemPrompt},
			{Role: models.RoleUser, Content: utterance},
		},
		MaxTokens:   classifierMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return false, fmt.Errorf("intent classification failed: %w", err)
	}

	answer := strings.ToUpper(strings.TrimSpace(resp.Text))
	switch {
	case strings.HasPrefix(answer, "YES"):
		return true, nil
	case strings.HasPrefix(answer, "NO"):
		return false, nil
	default:
		return false, fmt.Errorf("intent classification returned unexpected answer: %q", resp.Text)
	}
}

// ContainsPlaylistKeyword is the deterministic English-only fallback check.
func ContainsPlaylistKeyword(utterance string) bool {
	text := strings.ToLower(utterance)
	for _, keyword := range playlistKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

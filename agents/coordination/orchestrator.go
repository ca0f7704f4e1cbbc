package coordination

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/harmonia-labs/playlist-agent-go/agents/extraction"
	"github.com/harmonia-labs/playlist-agent-go/agents/intent"
	"github.com/harmonia-labs/playlist-agent-go/agents/retrieval"
	"github.com/harmonia-labs/playlist-agent-go/config"
	"github.com/harmonia-labs/playlist-agent-go/llm"
	"github.com/harmonia-labs/playlist-agent-go/metrics"
	"github.com/harmonia-labs/playlist-agent-go/models"
	"github.com/harmonia-labs/playlist-agent-go/prompt"
)

// IntentClassifier decides whether an utterance requests playlist creation.
type IntentClassifier interface {
	Classify(ctx context.Context, utterance string) models.IntentDecision
}

// CandidateRetriever builds a bounded candidate set grounding a playlist turn.
type CandidateRetriever interface {
	RetrieveCandidates(ctx context.Context, utterance, token string) []models.CandidateTrack
}

// TurnResult is what one conversation turn hands back to the caller.
type TurnResult struct {
	DisplayText    string                  `json:"response"`
	Playlist       []models.ParsedEntry    `json:"playlist,omitempty"`
	Candidates     []models.CandidateTrack `json:"-"`
	ConversationID string                  `json:"conversationId"`
}

// Orchestrator owns per-session conversation histories and runs one
// request-response turn at a time: classify intent, optionally ground the
// prompt with retrieved candidates, pick a model, complete, extract.
type Orchestrator struct {
	factory      *llm.ProviderFactory
	provider     llm.Provider // overrides the factory when set (tests)
	providerName string
	classifier   IntentClassifier
	retriever    CandidateRetriever
	selector     *Selector
	store        *SessionStore
	metrics      *metrics.SentryMetrics
}

// NewOrchestrator wires the conversation pipeline from config. The searcher
// is the catalog search capability candidates are retrieved from.
func NewOrchestrator(ctx context.Context, cfg *config.Config, searcher retrieval.TrackSearcher) (*Orchestrator, error) {
	factory := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)

	classifierProvider, err := factory.GetProvider(ctx, cfg.EconomyModel, cfg.LLMProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier provider: %w", err)
	}

	builder := prompt.NewAssistantPromptBuilder()

	return &Orchestrator{
		factory:      factory,
		providerName: cfg.LLMProvider,
		classifier:   intent.NewClassifier(classifierProvider, cfg.EconomyModel),
		retriever:    retrieval.NewRetriever(searcher),
		selector:     NewSelector(cfg.EconomyModel, cfg.AccurateModel),
		store:        NewSessionStore(builder.BuildSystemPrompt),
		metrics:      metrics.NewSentryMetrics(),
	}, nil
}

// RunTurn executes one conversation turn for the given session. On success
// the session history grows by exactly two utterances (user + assistant); on
// completion failure it grows by one (the user message stays, the error is
// surfaced instead of a spurious assistant reply).
func (o *Orchestrator) RunTurn(ctx context.Context, sessionID, utterance, token string) (*TurnResult, error) {
	startTime := time.Now()

	transaction := sentry.StartTransaction(ctx, "chat.run_turn")
	defer transaction.Finish()
	ctx = transaction.Context()

	sess := o.store.acquire(sessionID)
	defer sess.release()

	sess.history = append(sess.history, models.Utterance{
		Role:    models.RoleUser,
		Content: utterance,
	})

	decision := o.classifier.Classify(ctx, utterance)
	transaction.SetTag("intent.playlist", fmt.Sprintf("%t", decision.IsPlaylistRequest))
	transaction.SetTag("intent.source", string(decision.Source))

	var candidates []models.CandidateTrack
	if decision.IsPlaylistRequest {
		candidates = o.retriever.RetrieveCandidates(ctx, utterance, token)
	}

	modelCfg := o.selector.SelectModel(decision.IsPlaylistRequest, len(candidates) > 0, sess.history)
	transaction.SetTag("model", modelCfg.Model)
	transaction.SetTag("model.config", modelCfg.Name)

	// The candidate augmentation rides on a copy of the final user message.
	// Only the original user text and the raw reply are ever persisted.
	messages := sess.history
	if len(candidates) > 0 {
		messages = make([]models.Utterance, len(sess.history))
		copy(messages, sess.history)
		messages[len(messages)-1].Content = prompt.BuildCandidateAugmentation(utterance, candidates)
		log.Printf("📎 Augmented final user message with %d candidates", len(candidates))
	}

	provider, err := o.providerFor(ctx, modelCfg.Model)
	if err != nil {
		o.metrics.RecordTurnDuration(ctx, time.Since(startTime), false)
		transaction.SetTag("success", "false")
		return nil, err
	}

	resp, err := provider.Complete(ctx, &llm.CompletionRequest{
		Model:       modelCfg.Model,
		Messages:    messages,
		MaxTokens:   modelCfg.MaxTokens,
		Temperature: modelCfg.Temperature,
	})
	if err != nil {
		o.metrics.RecordTurnDuration(ctx, time.Since(startTime), false)
		transaction.SetTag("success", "false")
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	sess.history = append(sess.history, models.Utterance{
		Role:    models.RoleAssistant,
		Content: resp.Text,
	})

	o.metrics.RecordTokenUsage(ctx, modelCfg.Model, resp.TotalTokens)

	extracted := extraction.Extract(resp.Text)
	if extracted.HasPlaylist() {
		log.Printf("🎼 Turn produced a playlist with %d entries (mode=%s)", len(extracted.Entries), extracted.Mode)
	}

	o.metrics.RecordTurnDuration(ctx, time.Since(startTime), true)
	transaction.SetTag("success", "true")

	return &TurnResult{
		DisplayText:    extracted.DisplayText,
		Playlist:       extracted.Entries,
		Candidates:     candidates,
		ConversationID: sess.conversationID,
	}, nil
}

// Reset discards the session's conversation wholesale.
func (o *Orchestrator) Reset(sessionID string) {
	o.store.Reset(sessionID)
	log.Printf("🧹 Session %s reset", sessionID)
}

// History returns a copy of the session's conversation history.
func (o *Orchestrator) History(sessionID string) []models.Utterance {
	return o.store.History(sessionID)
}

// providerFor resolves the provider for a model, honouring the test override.
func (o *Orchestrator) providerFor(ctx context.Context, model string) (llm.Provider, error) {
	if o.provider != nil {
		return o.provider, nil
	}
	provider, err := o.factory.GetProvider(ctx, model, o.providerName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve provider for model %q: %w", model, err)
	}
	return provider, nil
}

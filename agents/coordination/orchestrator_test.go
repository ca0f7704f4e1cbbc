package coordination

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/playlist-agent-go/llm"
	"github.com/harmonia-labs/playlist-agent-go/metrics"
	"github.com/harmonia-labs/playlist-agent-go/models"
	"github.com/harmonia-labs/playlist-agent-go/prompt"
)

type stubProvider struct {
	reply string
	err   error
	last  *llm.CompletionRequest
	calls int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.calls++
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Text: p.reply, TotalTokens: 42}, nil
}

type stubClassifier struct {
	decision models.IntentDecision
}

func (c *stubClassifier) Classify(context.Context, string) models.IntentDecision {
	return c.decision
}

type stubRetriever struct {
	candidates []models.CandidateTrack
	calls      int
}

func (r *stubRetriever) RetrieveCandidates(context.Context, string, string) []models.CandidateTrack {
	r.calls++
	return r.candidates
}

func newTestOrchestrator(provider *stubProvider, classifier *stubClassifier, retriever *stubRetriever) *Orchestrator {
	return &Orchestrator{
		provider:   provider,
		classifier: classifier,
		retriever:  retriever,
		selector:   NewSelector("gpt-4o-mini", "gpt-4o"),
		store:      NewSessionStore(prompt.NewAssistantPromptBuilder().BuildSystemPrompt),
		metrics:    metrics.NewSentryMetrics(),
	}
}

const playlistReply = `Here you go!

[PLAYLIST_DATA]
[{"artist": "Queen", "song": "Don't Stop Me Now"}, {"artist": "Survivor", "song": "Eye of the Tiger"}]
[/PLAYLIST_DATA]

Enjoy the workout!`

func TestRunTurn_PlaylistTurn(t *testing.T) {
	provider := &stubProvider{reply: playlistReply}
	retriever := &stubRetriever{candidates: []models.CandidateTrack{
		{Artist: "Queen", Title: "Don't Stop Me Now", URI: "spotify:track:1"},
	}}
	o := newTestOrchestrator(provider,
		&stubClassifier{decision: models.IntentDecision{IsPlaylistRequest: true, Source: models.SourcePrimary}},
		retriever)

	result, err := o.RunTurn(context.Background(), "sess", "make me a workout playlist", "token")
	require.NoError(t, err)

	assert.Equal(t, 1, retriever.calls)
	assert.NotEmpty(t, result.ConversationID)
	assert.NotContains(t, result.DisplayText, "[PLAYLIST_DATA]")
	require.Len(t, result.Playlist, 2)
	assert.Equal(t, models.ParsedEntry{Artist: "Survivor", Title: "Eye of the Tiger"}, result.Playlist[1])

	// Playlist turns with candidates run on the accurate config.
	require.NotNil(t, provider.last)
	assert.Equal(t, "gpt-4o", provider.last.Model)

	// The model saw the candidate-augmented message...
	sent := provider.last.Messages[len(provider.last.Messages)-1]
	assert.Contains(t, sent.Content, "VERIFIED CANDIDATE TRACKS")

	// ...but the history keeps only the user's original text and the raw reply.
	history := o.History("sess")
	require.Len(t, history, 3)
	assert.Equal(t, "make me a workout playlist", history[1].Content)
	assert.Equal(t, playlistReply, history[2].Content)
}

func TestRunTurn_ChatTurn(t *testing.T) {
	provider := &stubProvider{reply: "Jazz is a great choice!"}
	retriever := &stubRetriever{}
	o := newTestOrchestrator(provider,
		&stubClassifier{decision: models.IntentDecision{IsPlaylistRequest: false, Source: models.SourcePrimary}},
		retriever)

	result, err := o.RunTurn(context.Background(), "sess", "I like jazz", "token")
	require.NoError(t, err)

	assert.Equal(t, 0, retriever.calls, "non-playlist turns must not hit the catalog")
	assert.Equal(t, "Jazz is a great choice!", result.DisplayText)
	assert.Empty(t, result.Playlist)
	assert.Equal(t, "gpt-4o-mini", provider.last.Model)
	assert.Equal(t, "I like jazz", provider.last.Messages[len(provider.last.Messages)-1].Content)
}

func TestRunTurn_HistoryGrowth(t *testing.T) {
	provider := &stubProvider{reply: "sure"}
	o := newTestOrchestrator(provider,
		&stubClassifier{decision: models.IntentDecision{IsPlaylistRequest: false, Source: models.SourcePrimary}},
		&stubRetriever{})

	for i := 0; i < 3; i++ {
		_, err := o.RunTurn(context.Background(), "sess", "hello", "token")
		require.NoError(t, err)
	}

	// System prompt plus two utterances per successful turn.
	assert.Len(t, o.History("sess"), 1+2*3)
}

func TestRunTurn_ConcurrentTurnsSerialized(t *testing.T) {
	provider := &stubProvider{reply: "sure"}
	o := newTestOrchestrator(provider,
		&stubClassifier{decision: models.IntentDecision{IsPlaylistRequest: false, Source: models.SourcePrimary}},
		&stubRetriever{})

	const turns = 8
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := o.RunTurn(context.Background(), "sess", "hello", "token")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Concurrent turns on one session serialize on the session lock, so the
	// history stays append-only and strictly alternating.
	history := o.History("sess")
	require.Len(t, history, 1+2*turns)
	assert.Equal(t, models.RoleSystem, history[0].Role)
	for i := 1; i < len(history); i += 2 {
		assert.Equal(t, models.RoleUser, history[i].Role)
		assert.Equal(t, models.RoleAssistant, history[i+1].Role)
	}
}

func TestRunTurn_CompletionFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("upstream unavailable")}
	o := newTestOrchestrator(provider,
		&stubClassifier{decision: models.IntentDecision{IsPlaylistRequest: false, Source: models.SourcePrimary}},
		&stubRetriever{})

	_, err := o.RunTurn(context.Background(), "sess", "hello", "token")
	require.Error(t, err)

	// The user message stays; no spurious assistant reply is recorded.
	history := o.History("sess")
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[1].Role)
}

func TestRunTurn_ConversationIDStablePerSession(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	o := newTestOrchestrator(provider,
		&stubClassifier{decision: models.IntentDecision{IsPlaylistRequest: false, Source: models.SourcePrimary}},
		&stubRetriever{})

	first, err := o.RunTurn(context.Background(), "sess", "hi", "token")
	require.NoError(t, err)
	second, err := o.RunTurn(context.Background(), "sess", "hi again", "token")
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)

	other, err := o.RunTurn(context.Background(), "other", "hi", "token")
	require.NoError(t, err)
	assert.NotEqual(t, first.ConversationID, other.ConversationID)
}

func TestReset(t *testing.T) {
	provider := &stubProvider{reply: "ok"}
	o := newTestOrchestrator(provider,
		&stubClassifier{decision: models.IntentDecision{IsPlaylistRequest: false, Source: models.SourcePrimary}},
		&stubRetriever{})

	before, err := o.RunTurn(context.Background(), "sess", "hi", "token")
	require.NoError(t, err)

	o.Reset("sess")
	assert.Nil(t, o.History("sess"))

	after, err := o.RunTurn(context.Background(), "sess", "hi", "token")
	require.NoError(t, err)
	assert.NotEqual(t, before.ConversationID, after.ConversationID)
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/playlist-agent-go/agents/coordination"
	"github.com/harmonia-labs/playlist-agent-go/models"
	"github.com/harmonia-labs/playlist-agent-go/spotify"
)

type fakeConversations struct {
	result    *coordination.TurnResult
	err       error
	gotToken  string
	gotText   string
	resets    []string
	sessionID string
}

func (f *fakeConversations) RunTurn(_ context.Context, sessionID, utterance, token string) (*coordination.TurnResult, error) {
	f.sessionID = sessionID
	f.gotText = utterance
	f.gotToken = token
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeConversations) Reset(sessionID string) {
	f.resets = append(f.resets, sessionID)
}

type fakeCreator struct {
	result  models.ResolvedPlaylist
	err     error
	gotName string
}

func (f *fakeCreator) Materialize(_ context.Context, _, name string, _ []models.ParsedEntry) (models.ResolvedPlaylist, error) {
	f.gotName = name
	if f.err != nil {
		return models.ResolvedPlaylist{}, f.err
	}
	return f.result, nil
}

func newTestServer(conversations *fakeConversations, creator *fakeCreator) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, conversations, creator).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestChat_OK(t *testing.T) {
	conversations := &fakeConversations{result: &coordination.TurnResult{
		DisplayText:    "Here you go!",
		Playlist:       []models.ParsedEntry{{Artist: "Queen", Title: "Don't Stop Me Now"}},
		ConversationID: "conv-1",
	}}
	handler := newTestServer(conversations, &fakeCreator{})

	rec := doJSON(t, handler, http.MethodPost, "/api/chat", "tok", `{"message": "workout playlist please"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", conversations.gotToken)
	assert.Equal(t, "workout playlist please", conversations.gotText)
	assert.NotEmpty(t, conversations.sessionID, "a session id is minted when no cookie is sent")

	var body struct {
		Response       string               `json:"response"`
		Playlist       []models.ParsedEntry `json:"playlist"`
		ConversationID string               `json:"conversationId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Here you go!", body.Response)
	assert.Len(t, body.Playlist, 1)
	assert.Equal(t, "conv-1", body.ConversationID)
}

func TestChat_SessionCookieReused(t *testing.T) {
	conversations := &fakeConversations{result: &coordination.TurnResult{DisplayText: "hi"}}
	handler := newTestServer(conversations, &fakeCreator{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message": "hi"}`))
	req.Header.Set("Authorization", "Bearer tok")
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "existing-session"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "existing-session", conversations.sessionID)
	assert.Empty(t, rec.Result().Cookies(), "no new cookie when one was presented")
}

func TestChat_MissingToken(t *testing.T) {
	conversations := &fakeConversations{}
	handler := newTestServer(conversations, &fakeCreator{})

	rec := doJSON(t, handler, http.MethodPost, "/api/chat", "", `{"message": "hi"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, conversations.gotText, "rejected before running the turn")
}

func TestChat_EmptyMessage(t *testing.T) {
	handler := newTestServer(&fakeConversations{}, &fakeCreator{})

	for _, body := range []string{`{"message": ""}`, `{"message": "   "}`, `not json`} {
		rec := doJSON(t, handler, http.MethodPost, "/api/chat", "tok", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestChat_TurnFailure(t *testing.T) {
	conversations := &fakeConversations{err: errors.New("provider exploded: api key abc123")}
	handler := newTestServer(conversations, &fakeCreator{})

	rec := doJSON(t, handler, http.MethodPost, "/api/chat", "tok", `{"message": "hi"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	// The upstream error text never reaches the client.
	assert.NotContains(t, rec.Body.String(), "abc123")
	assert.Contains(t, rec.Body.String(), "Something went wrong")
}

func TestReset(t *testing.T) {
	conversations := &fakeConversations{}
	handler := newTestServer(conversations, &fakeCreator{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat/reset", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "sess-9"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"sess-9"}, conversations.resets)
}

func TestCreatePlaylist_OK(t *testing.T) {
	creator := &fakeCreator{result: models.ResolvedPlaylist{
		ID: "pl-1", Name: "Workout Mix", URL: "https://open.spotify.com/playlist/pl-1",
		TracksAdded: 18, TotalRequested: 20,
	}}
	handler := newTestServer(&fakeConversations{}, creator)

	rec := doJSON(t, handler, http.MethodPost, "/api/playlist/create", "tok",
		`{"name": "Workout Mix", "songs": [{"artist": "Queen", "title": "Don't Stop Me Now"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Workout Mix", creator.gotName)

	var body models.ResolvedPlaylist
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 18, body.TracksAdded)
	assert.Equal(t, 20, body.TotalRequested)
}

func TestCreatePlaylist_Validation(t *testing.T) {
	handler := newTestServer(&fakeConversations{}, &fakeCreator{})

	tests := []struct {
		name string
		body string
	}{
		{name: "empty name", body: `{"name": "", "songs": []}`},
		{name: "missing songs", body: `{"name": "Mix"}`},
		{name: "bad json", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/api/playlist/create", "tok", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreatePlaylist_ExpiredToken(t *testing.T) {
	creator := &fakeCreator{err: spotify.ErrUnauthorized}
	handler := newTestServer(&fakeConversations{}, creator)

	rec := doJSON(t, handler, http.MethodPost, "/api/playlist/create", "stale",
		`{"name": "Mix", "songs": []}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePlaylist_Failure(t *testing.T) {
	creator := &fakeCreator{err: errors.New("spotify returned 500")}
	handler := newTestServer(&fakeConversations{}, creator)

	rec := doJSON(t, handler, http.MethodPost, "/api/playlist/create", "tok",
		`{"name": "Mix", "songs": []}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealth(t *testing.T) {
	handler := newTestServer(&fakeConversations{}, &fakeCreator{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

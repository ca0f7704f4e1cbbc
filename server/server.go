// Package server exposes the conversational playlist pipeline over a small
// JSON HTTP API consumed by the chat UI.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/harmonia-labs/playlist-agent-go/agents/coordination"
	"github.com/harmonia-labs/playlist-agent-go/models"
	"github.com/harmonia-labs/playlist-agent-go/spotify"
)

const sessionCookie = "sid"

// Conversations is the orchestrator capability the server drives.
type Conversations interface {
	RunTurn(ctx context.Context, sessionID, utterance, token string) (*coordination.TurnResult, error)
	Reset(sessionID string)
}

// PlaylistCreator materializes parsed entries into a real playlist.
type PlaylistCreator interface {
	Materialize(ctx context.Context, token, name string, entries []models.ParsedEntry) (models.ResolvedPlaylist, error)
}

// Server wires the HTTP surface over the conversation and playlist
// capabilities.
type Server struct {
	logger        *slog.Logger
	conversations Conversations
	creator       PlaylistCreator
	mux           *http.ServeMux
}

// New creates the HTTP server.
func New(logger *slog.Logger, conversations Conversations, creator PlaylistCreator) *Server {
	s := &Server{
		logger:        logger,
		conversations: conversations,
		creator:       creator,
		mux:           http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("POST /api/chat/reset", s.handleReset)
	s.mux.HandleFunc("POST /api/playlist/create", s.handleCreatePlaylist)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	return s
}

// Handler returns the request handler with logging middleware applied.
func (s *Server) Handler() http.Handler {
	return requestLogging(s.logger, s.mux)
}

// ListenAndServe blocks serving HTTP until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	s.logger.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "spotify authentication required")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	result, err := s.conversations.RunTurn(r.Context(), s.sessionID(w, r), req.Message, token)
	if err != nil {
		s.logger.Error("chat turn failed", "error", err)
		writeError(w, http.StatusBadGateway, "Something went wrong, please try again.")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type createPlaylistRequest struct {
	Name  string               `json:"name"`
	Songs []models.ParsedEntry `json:"songs"`
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "spotify authentication required")
		return
	}

	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "playlist name is required")
		return
	}
	if req.Songs == nil {
		writeError(w, http.StatusBadRequest, "songs must be an array")
		return
	}

	result, err := s.creator.Materialize(r.Context(), token, req.Name, req.Songs)
	if err != nil {
		if errors.Is(err, spotify.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "spotify authentication required")
			return
		}
		s.logger.Error("playlist materialization failed", "error", err)
		writeError(w, http.StatusBadGateway, "failed to create playlist")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.conversations.Reset(s.sessionID(w, r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessionID reads the session cookie, minting one on first contact.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// bearerToken extracts the per-user Spotify credential. The server never
// performs the OAuth exchange itself; the credential arrives with each call.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

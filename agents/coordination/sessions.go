package coordination

import (
	"sync"

	"github.com/google/uuid"

	"github.com/harmonia-labs/playlist-agent-go/models"
)

// session is one user's conversation state. Turns on the same session are
// serialized by mu: a second request blocks until the first turn finishes,
// which keeps the history append-only and the per-turn growth invariant
// intact under concurrent requests.
type session struct {
	mu             sync.Mutex
	conversationID string
	history        []models.Utterance
}

// SessionStore owns conversation histories keyed by session id. Histories
// live only in memory: they are destroyed on reset and on process exit.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	seed     func() string // builds the system prompt for a fresh session
}

// NewSessionStore creates a session store. seed is called once per new
// session to produce the system utterance the history starts with.
func NewSessionStore(seed func() string) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		seed:     seed,
	}
}

// acquire returns the session for id, creating and seeding it on first use,
// with its turn lock held. The caller must call release when the turn ends.
func (s *SessionStore) acquire(id string) *session {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{
			conversationID: uuid.NewString(),
			history: []models.Utterance{
				{Role: models.RoleSystem, Content: s.seed()},
			},
		}
		s.sessions[id] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	return sess
}

func (s *session) release() {
	s.mu.Unlock()
}

// History returns a copy of the session's history, or nil if the session
// does not exist yet.
func (s *SessionStore) History(id string) []models.Utterance {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]models.Utterance, len(sess.history))
	copy(out, sess.history)
	return out
}

// Reset discards the session's history wholesale. The next turn starts a
// fresh conversation with a new conversation id.
func (s *SessionStore) Reset(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

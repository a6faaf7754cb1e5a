// ABOUTME: Cookie-keyed in-memory session store for chat history
// ABOUTME: Persists history between calls for clients that do not send it
package api

import (
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/docchat/docchat/internal/models"
)

const sessionCookie = "docchat_session"

// sessionStore holds per-session history. It exists purely so browser
// clients get conversational memory without shipping history themselves;
// each session's history is an independent value.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string][]models.Turn
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string][]models.Turn)}
}

// sessionID returns the request's session id, minting one (and setting
// the cookie) when the client has none.
func (s *sessionStore) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// history returns a copy of the session's history so callers never share
// the stored slice.
func (s *sessionStore) history(id string) []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.sessions[id]
	if len(stored) == 0 {
		return nil
	}
	history := make([]models.Turn, len(stored))
	copy(history, stored)
	return history
}

func (s *sessionStore) setHistory(id string, history []models.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = history
}

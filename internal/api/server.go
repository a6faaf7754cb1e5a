// ABOUTME: HTTP server exposing the chat endpoint consumed by the web UI
// ABOUTME: POST /api/chat answers questions; GET /healthz reports liveness
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/docchat/docchat/internal/chat"
	"github.com/docchat/docchat/internal/index"
	"github.com/docchat/docchat/internal/models"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Answerer is the chat capability the server fronts.
type Answerer interface {
	Answer(ctx context.Context, question string, history []models.Turn) (*chat.Result, error)
}

// Server is the HTTP front for the chat orchestrator. History travels
// either in the request body or, when absent, through a cookie-keyed
// server-side session; the orchestrator itself stays stateless.
type Server struct {
	mux      *http.ServeMux
	chat     Answerer
	sessions *sessionStore
}

// NewServer creates a server with all routes registered.
func NewServer(answerer Answerer) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		chat:     answerer,
		sessions: newSessionStore(),
	}
	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	log.Printf("HTTP server listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type chatRequest struct {
	Question string        `json:"question"`
	History  []models.Turn `json:"history,omitempty"`
}

type chatResponse struct {
	Answer  string        `json:"answer"`
	Sources []string      `json:"sources"`
	History []models.Turn `json:"history"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	// History from the body wins; otherwise thread the session's copy.
	history := req.History
	var sessionID string
	usingSession := history == nil
	if usingSession {
		sessionID = s.sessions.sessionID(w, r)
		history = s.sessions.history(sessionID)
	}

	result, err := s.chat.Answer(r.Context(), req.Question, history)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing 'question'"})
		case errors.Is(err, index.ErrCollectionNotFound):
			log.Printf("chat request failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "knowledge base is not ingested yet"})
		default:
			log.Printf("chat request failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "backend failure"})
		}
		return
	}

	if usingSession {
		s.sessions.setHistory(sessionID, result.History)
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Answer:  result.Answer,
		Sources: result.Sources,
		History: result.History,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("writing response: %v", err)
	}
}

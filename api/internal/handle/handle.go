// Package handle wires the HTTP surface: auth endpoints, the calculate and
// retrieval endpoints, history, and the liveness probe.
package handle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"neuron-be/api/internal/auth"
	"neuron-be/api/internal/solve"
	"neuron-be/api/internal/store"
)

// UserStore is the slice of the persistence layer the auth endpoints use.
type UserStore interface {
	Create(ctx context.Context, username, email string, passwordHash []byte) (string, error)
	FindByEmail(ctx context.Context, email string) (*store.User, error)
	UpdateLastLogin(ctx context.Context, username string) error
}

// HistoryReader backs GET /history.
type HistoryReader interface {
	ListByUser(ctx context.Context, username string, limit int) ([]store.HistoryRecord, error)
}

type Handle struct {
	Solver  *solve.Solver
	Users   UserStore
	History HistoryReader
	Tokens  *auth.Tokens
}

func New(solver *solve.Solver, users UserStore, history HistoryReader, tokens *auth.Tokens) *Handle {
	return &Handle{Solver: solver, Users: users, History: history, Tokens: tokens}
}

// Routes registers every endpoint on mux.
func (h *Handle) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.Root)
	mux.HandleFunc("/healthz", h.Healthz)
	mux.HandleFunc("/register", h.Register)
	mux.HandleFunc("/login", h.Login)
	mux.HandleFunc("/history", h.withAuth(h.HistoryList))
	mux.HandleFunc("/calculate", h.withAuth(h.Calculate))
	mux.HandleFunc("/rag_query", h.withAuth(h.RAGQuery))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// withAuth resolves the bearer token into a username and hands it to next.
func (h *Handle) withAuth(next func(w http.ResponseWriter, r *http.Request, username string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("Authorization"))
		if raw == "" || !strings.HasPrefix(raw, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		username, err := h.Tokens.Parse(strings.TrimSpace(strings.TrimPrefix(raw, "Bearer ")))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next(w, r, username)
	}
}

// Recover is the top-level catch-all: any panic in a handler becomes a
// generic 500 with the fault text embedded. Acceptable for an internal tool.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				writeError(w, http.StatusInternalServerError,
					fmt.Sprintf("an internal server error occurred: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handle) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Neuron API",
		"status":  "running",
	})
}

func (h *Handle) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ABOUTME: Web presentation layer for beerbot
// ABOUTME: Serves the weekly leaderboard and per-account stats pages

package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JRahala/beerbot-web/internal/store"
)

// recentDrinksLimit caps the "me" page drink list.
const recentDrinksLimit = 10

// Server renders query results as pages. It holds no state beyond the
// store handle.
type Server struct {
	store  store.Store
	logger *slog.Logger
}

// New creates the web server over the given store.
func New(st store.Store, logger *slog.Logger) *Server {
	return &Server{
		store:  st,
		logger: logger.With("component", "web"),
	}
}

// Handler returns the routed HTTP handler with request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /me/{externalID}", s.handleMe)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return s.logRequests(mux)
}

// logRequests attaches a request ID and logs each request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.WeeklyLeaderboard(r.Context())
	if err != nil {
		s.logger.Error("weekly leaderboard failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", indexData{
		Title:   "Weekly Leaderboard",
		Entries: entries,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	externalID, err := strconv.ParseInt(r.PathValue("externalID"), 10, 64)
	if err != nil {
		http.Error(w, "bad account id", http.StatusBadRequest)
		return
	}

	account, err := s.store.GetAccount(r.Context(), externalID)
	if errors.Is(err, store.ErrNotRegistered) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("account lookup failed", "external_id", externalID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	summary, err := s.store.Summary(r.Context(), account.ID)
	if err != nil {
		s.logger.Error("summary failed", "account_id", account.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	drinks, err := s.store.History(r.Context(), account.ID, recentDrinksLimit)
	if err != nil {
		s.logger.Error("history failed", "account_id", account.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.render(w, "me.html", meData{
		Title:   account.DisplayName,
		Account: account,
		Summary: summary,
		Drinks:  drinks,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Beerbot is running!\n"))
}

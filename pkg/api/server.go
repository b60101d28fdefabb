package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/qnkhuat/sweepterm/pkg"
	"github.com/qnkhuat/sweepterm/pkg/store"
	log "github.com/sirupsen/logrus"
)

const maxLimit = 200

// Matches lists the games being played right now
type Matches interface {
	Matches() []pkg.MatchInfo
}

// Server exposes finished game history and live matches over HTTP
type Server struct {
	store   store.Store
	matches Matches
	logger  log.FieldLogger
}

func NewServer(st store.Store, matches Matches) *Server {
	return &Server{
		store:   st,
		matches: matches,
		logger:  log.StandardLogger(),
	}
}

// Routes sets up the HTTP routes
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(requestLogger{logger: s.logger}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))
	r.Use(middleware.Heartbeat("/health"))

	r.Get("/results", s.handleListResults)
	r.Get("/results/{id}", s.handleGetResult)
	r.Get("/stats", s.handleStats)
	r.Get("/sessions", s.handleSessions)

	return r
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxLimit {
			n = maxLimit
		}
		limit = n
	}

	results, err := s.store.RecentResults(r.Context(), limit)
	if err != nil {
		log.WithError(err).Error("Failed to list results")
		s.writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	if results == nil {
		results = []store.Result{}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := s.store.GetResult(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "result not found")
		return
	} else if err != nil {
		log.WithError(err).WithField("result", id).Error("Failed to get result")
		s.writeError(w, http.StatusInternalServerError, "failed to get result")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Stats(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to compute stats")
		s.writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	sessions := []pkg.MatchInfo{}
	if s.matches != nil {
		sessions = append(sessions, s.matches.Matches()...)
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("Failed to write response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

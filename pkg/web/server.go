// Package web serves the engine over a JSON HTTP API with SSE progress
// streams and Prometheus metrics.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ritzau/syncup/pkg/engine"
	"github.com/ritzau/syncup/pkg/jobs"
	"github.com/ritzau/syncup/pkg/logging"
	"github.com/ritzau/syncup/pkg/pubsub"
)

// maxBodyBytes bounds request bodies for the mutation endpoints
const maxBodyBytes = 1 << 20

// Options tunes query defaults that are not part of the engine itself
type Options struct {
	SuggestionLimit int
	// BaseContext is the parent of background jobs started over HTTP.
	// Jobs must outlive the request that started them.
	BaseContext context.Context
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	engine    *engine.Engine
	jobs      *jobs.Manager
	publisher pubsub.Publisher
	opts      Options

	mu         sync.Mutex
	httpServer *http.Server
	stopped    bool
}

// NewServer creates a server for e. Jobs started over HTTP run on jm and
// SSE subscriptions are served from publisher.
func NewServer(e *engine.Engine, jm *jobs.Manager, publisher pubsub.Publisher, opts Options) *Server {
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = 10
	}
	if opts.BaseContext == nil {
		opts.BaseContext = context.Background()
	}
	if publisher == nil {
		publisher = pubsub.Discard{}
	}

	s := &Server{
		router:    mux.NewRouter(),
		engine:    e,
		jobs:      jm,
		publisher: publisher,
		opts:      opts,
	}
	s.setupRoutes()
	return s
}

// Handler returns the router wrapped in request logging
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

func (s *Server) setupRoutes() {
	// SSE subscription endpoint
	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods("GET")

	// Catalog. More specific routes must come first.
	s.router.HandleFunc("/api/stats", s.handleStats).Methods("GET")
	s.router.HandleFunc("/api/stats/genres", s.handleGenreStats).Methods("GET")
	s.router.HandleFunc("/api/stats/artists", s.handleTopArtists).Methods("GET")
	s.router.HandleFunc("/api/search", s.handleSearchAll).Methods("GET")
	s.router.HandleFunc("/api/genres/{genre}/tracks", s.handleGenreTracks).Methods("GET")
	s.router.HandleFunc("/api/artists/{artist}/tracks", s.handleArtistTracks).Methods("GET")
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/autocomplete", s.handleAutocomplete).Methods("GET")
	s.router.HandleFunc("/api/similarity", s.handleSimilarity).Methods("GET")
	s.router.HandleFunc("/api/path", s.handlePath).Methods("GET")
	s.router.HandleFunc("/api/tracks", s.handleTracks).Methods("GET")
	s.router.HandleFunc("/api/tracks", s.handleAddTrack).Methods("POST")
	s.router.HandleFunc("/api/tracks/{id}/similar", s.handleSimilar).Methods("GET")
	s.router.HandleFunc("/api/tracks/{id}/recommendations", s.handleRecommendations).Methods("GET")
	s.router.HandleFunc("/api/tracks/{id}/radio", s.handleRadio).Methods("GET")
	s.router.HandleFunc("/api/tracks/{id}", s.handleTrack).Methods("GET")
	s.router.HandleFunc("/api/tracks/{id}", s.handleRemoveTrack).Methods("DELETE")

	// Social
	s.router.HandleFunc("/api/social/distance", s.handleDistance).Methods("GET")
	s.router.HandleFunc("/api/social/path", s.handleSocialPath).Methods("GET")
	s.router.HandleFunc("/api/social/traverse", s.handleTraverse).Methods("GET")
	s.router.HandleFunc("/api/circles", s.handleCircles).Methods("GET")
	s.router.HandleFunc("/api/users", s.handleUsers).Methods("GET")
	s.router.HandleFunc("/api/users", s.handleAddUser).Methods("POST")
	s.router.HandleFunc("/api/users/{username}/suggestions", s.handleSuggestions).Methods("GET")
	s.router.HandleFunc("/api/users/{username}/second-degree", s.handleSecondDegree).Methods("GET")
	s.router.HandleFunc("/api/users/{username}/followers", s.handleFollowers).Methods("GET")
	s.router.HandleFunc("/api/users/{username}/following", s.handleFollowing).Methods("GET")
	s.router.HandleFunc("/api/users/{username}/discover", s.handleDiscover).Methods("GET")
	s.router.HandleFunc("/api/users/{username}/trending", s.handleTrending).Methods("GET")
	s.router.HandleFunc("/api/users/{username}/favorites", s.handleSetFavorites).Methods("PUT")
	s.router.HandleFunc("/api/users/{username}/follows/{target}", s.handleFollow).Methods("PUT")
	s.router.HandleFunc("/api/users/{username}/follows/{target}", s.handleUnfollow).Methods("DELETE")
	s.router.HandleFunc("/api/users/{username}", s.handleRemoveUser).Methods("DELETE")

	// Background jobs
	s.router.HandleFunc("/api/jobs", s.handleListJobs).Methods("GET")
	s.router.HandleFunc("/api/jobs/search", s.handleStartSearch).Methods("POST")
	s.router.HandleFunc("/api/jobs/rebuild", s.handleStartRebuild).Methods("POST")
	s.router.HandleFunc("/api/jobs/{id}", s.handleGetJob).Methods("GET")
	s.router.HandleFunc("/api/jobs/{id}", s.handleCancelJob).Methods("DELETE")

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if topic != pubsub.TopicEngineStatus && topic != pubsub.TopicJobs {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown topic: %s", topic))
		return
	}

	// Create subscription before committing to a streaming response
	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	defer sub.Close()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flush(w)

	// Stream events
	for event := range sub.Events() {
		if err := pubsub.WriteSSE(w, event); err != nil {
			logging.DebugContext(r.Context(), "SSE client went away", "topic", topic, "error", err)
			return
		}
		flush(w)
	}
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeBody reads a JSON request body into v
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// intParam parses an optional positive integer query parameter
func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

// requireParams returns the named query parameters, or an error naming the
// first missing one
func requireParams(r *http.Request, names ...string) ([]string, error) {
	q := r.URL.Query()
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = q.Get(name)
		if values[i] == "" {
			return nil, fmt.Errorf("query parameter %q is required", name)
		}
	}
	return values, nil
}

// Start serves on the given port until Shutdown is called. It returns nil
// at once if Shutdown already ran.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return s.opts.BaseContext },
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.httpServer = srv
	s.mu.Unlock()

	logging.Info("starting web server", "url", fmt.Sprintf("http://localhost%s", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones. Open SSE
// streams end when the publisher is closed.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

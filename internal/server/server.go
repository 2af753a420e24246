package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/conneroisu/sitepress/internal/assets"
	"github.com/conneroisu/sitepress/internal/logging"
)

// Server maps artifact names to HTTP routes and hosts the live-reload
// endpoints.
type Server struct {
	store  *Store
	hub    *Hub
	logger logging.Logger
	addr   string
}

// New creates a Server for the given store and hub.
func New(host string, port int, store *Store, hub *Hub, logger logging.Logger) *Server {
	return &Server{
		store:  store,
		hub:    hub,
		logger: logger.WithComponent("server"),
		addr:   fmt.Sprintf("%s:%d", host, port),
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string { return s.addr }

// Handler returns the HTTP handler serving artifacts and live-reload
// endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/livereload.js", handleLiveReloadScript)
	mux.HandleFunc("/livereload", s.hub.Handle)
	mux.HandleFunc("/", s.handleArtifact)
	return mux
}

// handleArtifact resolves the request path against the live artifact set.
// The root path serves the page artifact; unmatched routes serve the 404
// fallback artifact when the build carries one.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")

	var artifact assets.Artifact
	var ok bool
	if name == "" {
		artifact, ok = s.store.Page()
	} else {
		artifact, ok = s.store.Get(name)
	}

	if !ok {
		// Single-page-app routing: any unmatched route falls back to
		// the duplicated page artifact.
		artifact, ok = s.store.Fallback()
		if !ok {
			http.NotFound(w, r)
			return
		}
	}

	w.Header().Set("Content-Type", artifact.MediaType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(artifact.Body)
}

// Start runs the HTTP server and the hub's keepalive loop until ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Info(ctx, "serving", "addr", s.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

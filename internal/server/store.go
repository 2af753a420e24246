// Package server serves the latest build's artifacts over HTTP, with a
// websocket hub that tells connected pages to reload after each rebuild.
package server

import (
	"sync"

	"github.com/conneroisu/sitepress/internal/assets"
	"github.com/conneroisu/sitepress/internal/pipeline"
)

// Store holds the artifact set of the most recent completed build, keyed by
// artifact name. Artifacts stream into a pending set during a cycle and
// become visible atomically on commit, so an aborted cycle never serves a
// partial artifact set.
type Store struct {
	mu       sync.RWMutex
	live     map[string]assets.Artifact
	page     string
	fallback string

	pending map[string]assets.Artifact
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		live:    make(map[string]assets.Artifact),
		pending: make(map[string]assets.Artifact),
	}
}

// Collect adds an artifact to the in-progress cycle. It is the pipeline's
// Emit callback.
func (s *Store) Collect(a assets.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[a.Name] = a
	return nil
}

// Commit publishes the collected cycle as the live artifact set.
func (s *Store) Commit(build *pipeline.Build) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.live = s.pending
	s.pending = make(map[string]assets.Artifact)
	s.page = build.PageArtifact
	if _, ok := s.live[pipeline.Fallback404Name]; ok {
		s.fallback = pipeline.Fallback404Name
	} else {
		s.fallback = ""
	}
}

// Get returns the named artifact from the live set.
func (s *Store) Get(name string) (assets.Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.live[name]
	return a, ok
}

// Page returns the page artifact of the live set.
func (s *Store) Page() (assets.Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.live[s.page]
	return a, ok
}

// Fallback returns the 404 fallback artifact, if the live set carries one.
func (s *Store) Fallback() (assets.Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fallback == "" {
		return assets.Artifact{}, false
	}
	a, ok := s.live[s.fallback]
	return a, ok
}

package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/sitepress/internal/assets"
	"github.com/conneroisu/sitepress/internal/logging"
	"github.com/conneroisu/sitepress/internal/pipeline"
)

func committedStore(t *testing.T, build *pipeline.Build, artifacts ...assets.Artifact) *Store {
	t.Helper()
	store := NewStore()
	for _, a := range artifacts {
		require.NoError(t, store.Collect(a))
	}
	store.Commit(build)
	return store
}

func testServer(store *Store) *Server {
	logger := logging.Discard()
	return New("localhost", 8080, store, NewHub(logger, nil), logger)
}

func get(t *testing.T, handler http.Handler, path string) *http.Response {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Result()
}

func TestStoreCommitPublishesAtomically(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Collect(assets.Artifact{Name: "index.html", Body: []byte("page")}))

	// Nothing is visible before commit.
	_, ok := store.Get("index.html")
	assert.False(t, ok)

	store.Commit(&pipeline.Build{PageArtifact: "index.html"})
	a, ok := store.Get("index.html")
	require.True(t, ok)
	assert.Equal(t, []byte("page"), a.Body)

	page, ok := store.Page()
	require.True(t, ok)
	assert.Equal(t, "index.html", page.Name)
}

func TestStoreCommitReplacesPreviousBuild(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Collect(assets.Artifact{Name: "index.aaa.css"}))
	store.Commit(&pipeline.Build{PageArtifact: "index.html"})

	require.NoError(t, store.Collect(assets.Artifact{Name: "index.bbb.css"}))
	store.Commit(&pipeline.Build{PageArtifact: "index.html"})

	_, ok := store.Get("index.aaa.css")
	assert.False(t, ok, "stale artifact survived the swap")
	_, ok = store.Get("index.bbb.css")
	assert.True(t, ok)
}

func TestServeArtifactByName(t *testing.T) {
	store := committedStore(t, &pipeline.Build{PageArtifact: "index.html"},
		assets.Artifact{Name: "index.html", Body: []byte("<!DOCTYPE html>page"), MediaType: assets.MediaTypeHTML},
		assets.Artifact{Name: "index.abc.css", Body: []byte("body{}"), MediaType: assets.MediaTypeCSS},
	)
	handler := testServer(store).Handler()

	resp := get(t, handler, "/index.abc.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, assets.MediaTypeCSS, resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, []byte("body{}"), body)
}

func TestServeRootServesPage(t *testing.T) {
	store := committedStore(t, &pipeline.Build{PageArtifact: "index.html"},
		assets.Artifact{Name: "index.html", Body: []byte("page"), MediaType: assets.MediaTypeHTML},
	)
	handler := testServer(store).Handler()

	resp := get(t, handler, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, []byte("page"), body)
}

func TestServeUnmatchedRouteWithoutFallback(t *testing.T) {
	store := committedStore(t, &pipeline.Build{PageArtifact: "index.html"},
		assets.Artifact{Name: "index.html", Body: []byte("page"), MediaType: assets.MediaTypeHTML},
	)
	handler := testServer(store).Handler()

	resp := get(t, handler, "/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeUnmatchedRouteWithFallback(t *testing.T) {
	store := committedStore(t, &pipeline.Build{PageArtifact: "index.html"},
		assets.Artifact{Name: "index.html", Body: []byte("page"), MediaType: assets.MediaTypeHTML},
		assets.Artifact{Name: pipeline.Fallback404Name, Body: []byte("page"), MediaType: assets.MediaTypeHTML},
	)
	handler := testServer(store).Handler()

	resp := get(t, handler, "/some/client/route")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, []byte("page"), body)
}

func TestServeLiveReloadScript(t *testing.T) {
	handler := testServer(NewStore()).Handler()

	resp := get(t, handler, "/livereload.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/javascript", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "location.reload()")
}

func TestHubClientCountStartsEmpty(t *testing.T) {
	hub := NewHub(logging.Discard(), nil)
	assert.Equal(t, 0, hub.ClientCount())
}

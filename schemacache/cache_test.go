package schemacache

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchMissThenHit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"object"}`))
	}))
	defer srv.Close()

	c := New(t.TempDir(), WithTTL(time.Hour))

	doc, status, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, Miss, status)
	assert.Equal(t, map[string]any{"type": "object"}, doc)
	assert.Equal(t, 1, calls)

	doc, status, err = c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, Hit, status)
	assert.Equal(t, map[string]any{"type": "object"}, doc)
	assert.Equal(t, 1, calls, "a fresh entry must not trigger a second fetch")
}

func TestFetchExpiredRefetches(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rev":1}`))
	}))
	defer srv.Close()

	c := New(t.TempDir(), WithTTL(time.Millisecond))

	_, status, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, Miss, status)

	time.Sleep(5 * time.Millisecond)

	_, status, err = c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, Expired, status)
	assert.Equal(t, 2, calls)
}

func TestFetchStaleFallbackOnError(t *testing.T) {
	up := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !up {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rev":1}`))
	}))
	defer srv.Close()

	c := New(t.TempDir(), WithTTL(time.Millisecond))

	doc, status, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, Miss, status)
	assert.Equal(t, map[string]any{"rev": float64(1)}, doc)

	time.Sleep(5 * time.Millisecond)
	up = false

	doc, status, err = c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, Expired, status)
	assert.Equal(t, map[string]any{"rev": float64(1)}, doc, "an unreachable origin must fall back to the stale cached body")
}

func TestFetchForceFetchIgnoresFreshEntry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rev":1}`))
	}))
	defer srv.Close()

	c := New(t.TempDir(), WithTTL(time.Hour), WithForceFetch(true))

	_, _, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	_, status, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, Miss, status)
	assert.Equal(t, 2, calls)
}

func TestFetchLocalFileNotCached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"string"}`), 0o644))

	c := New(t.TempDir())
	doc, status, err := c.Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, NotCached, status)
	assert.Equal(t, map[string]any{"type": "string"}, doc)
}

func TestWriteEntryIsAtomic(t *testing.T) {
	dir := t.TempDir()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(dir)
	_, _, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "no temp file should remain after a successful write")
	}
}

func TestMemoryCacheHitAndMiss(t *testing.T) {
	m := NewMemory(map[string]any{
		"https://example.com/s.json": map[string]any{"type": "object"},
	})

	doc, status, err := m.Fetch(context.Background(), "https://example.com/s.json")
	require.NoError(t, err)
	assert.Equal(t, Hit, status)
	assert.Equal(t, map[string]any{"type": "object"}, doc)

	_, _, err = m.Fetch(context.Background(), "https://example.com/missing.json")
	assert.Error(t, err)
}

func TestRetrieveDelegatesToFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"a":1}`))
	}))
	defer srv.Close()

	c := New(t.TempDir())
	doc, err := c.Retrieve(srv.URL)
	require.NoError(t, err)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(raw))
}

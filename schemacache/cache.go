// Package schemacache implements the content-addressed, disk-backed cache
// for remote JSON Schema documents, grounded on the teacher's on-disk,
// atomic-rename cache conventions (config/xdg.go for the default root,
// fulhash for content-addressed keys).
package schemacache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/schemalint/schemalint/fulhash"
)

// Status mirrors the cache-hit taxonomy from the spec's CacheStatus type.
type Status int

const (
	NotCached Status = iota
	Hit
	Miss
	Expired
)

func (s Status) String() string {
	switch s {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	case Expired:
		return "expired"
	default:
		return "not-cached"
	}
}

type entry struct {
	FetchedAt time.Time       `json:"fetchedAt"`
	Body      json.RawMessage `json:"body"`
}

// Cache fetches schema documents over HTTP with a TTL'd on-disk cache, and
// serves file:// URIs straight from disk for $ref resolution.
type Cache struct {
	dir        string
	ttl        time.Duration
	forceFetch bool
	client     *http.Client
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the cache entry lifetime. Zero means entries never expire.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithForceFetch makes every lookup a miss, forcing a re-fetch even when a
// fresh entry exists on disk.
func WithForceFetch(force bool) Option {
	return func(c *Cache) { c.forceFetch = force }
}

// New creates a disk-backed cache rooted at dir.
func New(dir string, opts ...Option) *Cache {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.Logger = nil

	c := &Cache{dir: dir, client: retryClient.StandardClient()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch resolves uri to its parsed JSON document, consulting and updating
// the disk cache.
func (c *Cache) Fetch(ctx context.Context, uri string) (any, Status, error) {
	if strings.HasPrefix(uri, "file://") {
		doc, err := c.readLocal(strings.TrimPrefix(uri, "file://"))
		return doc, NotCached, err
	}

	keyDigest, err := fulhash.HashString(uri)
	if err != nil {
		return nil, NotCached, err
	}
	cachePath := filepath.Join(c.dir, keyDigest.Hex()+".json")

	if !c.forceFetch {
		if e, ok := c.readEntry(cachePath); ok {
			if c.ttl <= 0 || time.Since(e.FetchedAt) < c.ttl {
				var doc any
				if err := json.Unmarshal(e.Body, &doc); err != nil {
					return nil, NotCached, fmt.Errorf("decoding cached schema %s: %w", uri, err)
				}
				return doc, Hit, nil
			}

			doc, fetchErr := c.fetchRemote(ctx, uri)
			if fetchErr != nil {
				var stale any
				if err := json.Unmarshal(e.Body, &stale); err == nil {
					return stale, Expired, nil
				}
				return nil, NotCached, fetchErr
			}
			if err := c.writeEntry(cachePath, doc); err != nil {
				return nil, NotCached, err
			}
			return doc, Expired, nil
		}
	}

	doc, err := c.fetchRemote(ctx, uri)
	if err != nil {
		return nil, NotCached, err
	}
	if err := c.writeEntry(cachePath, doc); err != nil {
		return nil, NotCached, err
	}
	return doc, Miss, nil
}

// Retrieve implements the minimal interface the schema compiler needs for
// $ref resolution: synchronous, no status reporting.
func (c *Cache) Retrieve(uri string) (any, error) {
	doc, _, err := c.Fetch(context.Background(), uri)
	return doc, err
}

func (c *Cache) readLocal(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading local schema %s: %w", path, err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing local schema %s: %w", path, err)
	}
	return doc, nil
}

func (c *Cache) fetchRemote(ctx context.Context, uri string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", uri, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", uri, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", uri, err)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing response from %s: %w", uri, err)
	}
	return doc, nil
}

func (c *Cache) readEntry(path string) (entry, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return entry{}, false
	}
	return e, true
}

func (c *Cache) writeEntry(path string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding schema for cache: %w", err)
	}
	e := entry{FetchedAt: time.Now(), Body: body}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}

// MemoryCache is the in-memory variant used by tests: pre-populated, no
// disk, no network, always a Hit or an error.
type MemoryCache struct {
	docs map[string]any
}

// NewMemory creates an in-memory cache pre-populated with docs.
func NewMemory(docs map[string]any) *MemoryCache {
	return &MemoryCache{docs: docs}
}

func (m *MemoryCache) Fetch(_ context.Context, uri string) (any, Status, error) {
	doc, ok := m.docs[uri]
	if !ok {
		return nil, NotCached, errors.New("schemacache: no entry for " + uri)
	}
	return doc, Hit, nil
}

func (m *MemoryCache) Retrieve(uri string) (any, error) {
	doc, _, err := m.Fetch(context.Background(), uri)
	return doc, err
}

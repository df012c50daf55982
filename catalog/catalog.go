// Package catalog resolves a file path to a schema URI using the
// "custom registries (child-first) -> default catalog -> SchemaStore
// catalog" precedence chain. All three tiers are independently fetched
// whenever catalogs are enabled at all; the SchemaStore tier is not
// contingent on the default catalog's own fetch succeeding or being
// enabled. Mirrors the teacher's layered resolution style (config walking
// in lintelconfig, layered cache lookups in schemacache) applied to
// catalog documents instead of config files.
package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/schemalint/schemalint/glob"
	"github.com/schemalint/schemalint/schemacache"
	"github.com/schemalint/schemalint/telemetry"
	"github.com/schemalint/schemalint/telemetry/metrics"
)

// Entry is a single catalog record: a schema URL plus the glob patterns
// (catalog "fileMatch") that select it.
type Entry struct {
	URL       string   `json:"url"`
	FileMatch []string `json:"fileMatch"`
	Name      string   `json:"name,omitempty"`
}

// Catalog is a flat, ordered list of entries plus the URL it was fetched
// from (used for diagnostics and for its position in resolution order).
type Catalog struct {
	Source  string
	Entries []Entry
}

// Fetcher is the subset of schemacache.Cache's contract catalog fetching
// needs: resolve a URL to its parsed JSON document. *schemacache.Cache and
// *schemacache.MemoryCache both satisfy it directly.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (any, schemacache.Status, error)
}

// rawDocument mirrors the SchemaStore/VS Code catalog wire shape:
// {"schemas": [{"url": ..., "fileMatch": [...], "name": ...}, ...]}.
type rawDocument struct {
	Schemas []rawEntry `json:"schemas"`
}

type rawEntry struct {
	URL       string   `json:"url"`
	FileMatch []string `json:"fileMatch"`
	Name      string   `json:"name"`
}

// Resolver resolves file paths to schema URIs across an ordered chain of
// catalogs: custom registries first (child-before-parent order, as
// supplied), then the default catalog, then the SchemaStore catalog —
// both of the latter fetched independently of one another.
type Resolver struct {
	chain           []Catalog
	telemetrySystem *telemetry.System
}

// NewResolver builds a Resolver from already-fetched catalogs in
// precedence order. Callers assemble the chain via FetchRegistries,
// DefaultCatalog, and SchemaStoreCatalog before constructing a Resolver.
func NewResolver(chain ...Catalog) *Resolver {
	config := telemetry.DefaultConfig()
	config.Enabled = true
	telSys, _ := telemetry.NewSystem(config)
	r := &Resolver{chain: chain, telemetrySystem: telSys}
	total := 0
	for _, c := range chain {
		total += len(c.Entries)
	}
	if r.telemetrySystem != nil {
		_ = r.telemetrySystem.Counter(metrics.CatalogEntriesLoaded, float64(total), nil)
	}
	return r
}

// Resolve returns the schema URL of the first entry, in chain order, whose
// any fileMatch pattern matches path or fileName.
func (r *Resolver) Resolve(path, fileName string) (string, bool) {
	for _, cat := range r.chain {
		for _, entry := range cat.Entries {
			for _, pattern := range entry.FileMatch {
				if glob.Match(pattern, path) || glob.Match(pattern, fileName) {
					return entry.URL, true
				}
			}
		}
	}
	return "", false
}

// FetchRegistries fetches each registry URL (child-first order as given)
// through fetcher, parsing each response as a catalog document. A fetch
// failure for one registry is recorded and skipped; it does not abort the
// remaining registries, matching the pipeline's "don't let one bad source
// sink the run" posture used for schema prefetch.
func FetchRegistries(ctx context.Context, fetcher Fetcher, urls []string) ([]Catalog, []error) {
	var catalogs []Catalog
	var errs []error
	for _, url := range urls {
		doc, _, err := fetcher.Fetch(ctx, url)
		if err != nil {
			errs = append(errs, fmt.Errorf("fetching catalog %s: %w", url, err))
			continue
		}
		entries, parseErr := decodeEntries(doc)
		if parseErr != nil {
			errs = append(errs, fmt.Errorf("parsing catalog %s: %w", url, parseErr))
			continue
		}
		catalogs = append(catalogs, Catalog{Source: url, Entries: entries})
	}
	return catalogs, errs
}

func decodeEntries(doc any) ([]Entry, error) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("catalog document is not an object")
	}
	rawSchemas, ok := obj["schemas"].([]any)
	if !ok {
		return nil, fmt.Errorf("catalog document has no \"schemas\" array")
	}

	entries := make([]Entry, 0, len(rawSchemas))
	for _, raw := range rawSchemas {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		url, _ := m["url"].(string)
		name, _ := m["name"].(string)
		var fileMatch []string
		switch fm := m["fileMatch"].(type) {
		case []any:
			for _, v := range fm {
				if s, ok := v.(string); ok {
					fileMatch = append(fileMatch, s)
				}
			}
		case string:
			fileMatch = []string{fm}
		}
		if url == "" || len(fileMatch) == 0 {
			continue
		}
		entries = append(entries, Entry{URL: url, FileMatch: fileMatch, Name: name})
	}
	return entries, nil
}

// DefaultCatalogURL is the default catalog fetched unless a config opts
// out via no_default_catalog.
const DefaultCatalogURL = "https://www.schemastore.org/api/json/catalog.json"

// SchemaStoreCatalogURL is fetched as its own, independent precedence
// tier regardless of no_default_catalog: the original implementation
// always fetches a SchemaStore catalog alongside the configured default
// catalog, gated only by the outer "skip all catalogs" switch.
const SchemaStoreCatalogURL = "https://www.schemastore.org/api/json/catalog.json"

// FetchSchemaStoreCatalog fetches the live SchemaStore catalog. Callers
// fall back to the embedded SchemaStoreCatalog() seed if this fails.
func FetchSchemaStoreCatalog(ctx context.Context, fetcher Fetcher) (Catalog, error) {
	doc, _, err := fetcher.Fetch(ctx, SchemaStoreCatalogURL)
	if err != nil {
		return Catalog{}, err
	}
	entries, err := decodeEntries(doc)
	if err != nil {
		return Catalog{}, err
	}
	return Catalog{Source: SchemaStoreCatalogURL, Entries: entries}, nil
}

// DefaultCatalog fetches and returns the default catalog, or an empty
// Catalog plus the error if the network is unavailable.
func DefaultCatalog(ctx context.Context, fetcher Fetcher) (Catalog, error) {
	doc, _, err := fetcher.Fetch(ctx, DefaultCatalogURL)
	if err != nil {
		return Catalog{}, err
	}
	entries, err := decodeEntries(doc)
	if err != nil {
		return Catalog{}, err
	}
	return Catalog{Source: DefaultCatalogURL, Entries: entries}, nil
}

// SchemaStoreCatalog returns the built-in, embedded SchemaStore seed:
// a small hand-picked set of well-known fileMatch entries that BuildChain
// uses in place of the SchemaStore tier whenever the live SchemaStore
// fetch fails (whether or not custom registries are configured), so the
// catalog layer degrades gracefully rather than failing outright
// (supplemented per original_source/'s SchemaStore fallback behavior).
func SchemaStoreCatalog() Catalog {
	return Catalog{
		Source: "builtin:schemastore-seed",
		Entries: []Entry{
			{
				Name:      "package.json",
				URL:       "https://json.schemastore.org/package.json",
				FileMatch: []string{"package.json"},
			},
			{
				Name:      "tsconfig.json",
				URL:       "https://json.schemastore.org/tsconfig.json",
				FileMatch: []string{"tsconfig.json", "tsconfig.*.json"},
			},
			{
				Name:      "GitHub Workflow",
				URL:       "https://json.schemastore.org/github-workflow.json",
				FileMatch: []string{".github/workflows/*.yml", ".github/workflows/*.yaml"},
			},
		},
	}
}

// BuildChain assembles the full precedence chain: custom registries
// (already in child-first order per lintelconfig's merge semantics), then
// the configured default catalog unless disabled via no_default_catalog,
// then the SchemaStore catalog. All three tiers are independent and are
// fetched whenever catalogs are enabled at all (noCatalog); the fetches
// run one after another in chain order, not concurrently. The
// SchemaStore tier is gated only by noCatalog, never by
// no_default_catalog, and is always attempted even when the default
// catalog tier is disabled or fails. Fetch errors on any tier are
// returned but do not prevent the chain from being usable; the
// SchemaStore seed is used only if the live SchemaStore fetch itself
// fails.
func BuildChain(ctx context.Context, fetcher Fetcher, registryURLs []string, noDefaultCatalog, noCatalog bool) (*Resolver, []error) {
	if noCatalog {
		return NewResolver(), nil
	}

	var chain []Catalog
	var errs []error

	custom, fetchErrs := FetchRegistries(ctx, fetcher, registryURLs)
	chain = append(chain, custom...)
	errs = append(errs, fetchErrs...)

	if !noDefaultCatalog {
		def, err := DefaultCatalog(ctx, fetcher)
		if err != nil {
			errs = append(errs, fmt.Errorf("default catalog unavailable: %w", err))
		} else {
			chain = append(chain, def)
		}
	}

	schemaStore, err := FetchSchemaStoreCatalog(ctx, fetcher)
	if err != nil {
		errs = append(errs, fmt.Errorf("SchemaStore catalog unavailable, falling back to builtin seed: %w", err))
		chain = append(chain, SchemaStoreCatalog())
	} else {
		chain = append(chain, schemaStore)
	}

	return NewResolver(chain...), errs
}

// sortedSources returns the catalog sources of the chain sorted
// alphabetically; the result does not reflect the chain's precedence
// order.
func (r *Resolver) sortedSources() []string {
	sources := make([]string, 0, len(r.chain))
	for _, c := range r.chain {
		sources = append(sources, c.Source)
	}
	sort.Strings(sources)
	return sources
}

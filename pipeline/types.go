// Package pipeline implements the two-phase validation run described by
// the grouping and validation stages: discover/parse/resolve files
// concurrently and group them by resolved schema URI, then fetch/compile
// each group's schema once and validate its files, emitting sorted
// diagnostics. It is grounded on the teacher's worker-pool and cache
// wiring conventions applied to this domain's schema/validation flow.
package pipeline

import (
	"github.com/schemalint/schemalint/catalog"
	"github.com/schemalint/schemalint/lintelconfig"
)

// ParsedFile is a single file (or, for JSONL, a single line) resolved to
// an instance value and a schema URI.
type ParsedFile struct {
	Path              string
	Content           []byte
	Instance          any
	OriginalSchemaURI string
	ResolvedSchemaURI string
	LineNumber        int // nonzero for JSONL-expanded entries
}

// SchemaGroup is the set of files sharing one resolved schema URI.
type SchemaGroup struct {
	SchemaURI string
	Files     []ParsedFile
}

// CacheStatus mirrors the spec's per-file cache status pair, recorded
// once per checked file in the CheckedFile entries a run returns; there
// is no per-file progress callback.
type CacheStatus struct {
	Schema     string // one of: hit, miss, expired, not-cached, "" (not applicable)
	Validation string // one of: hit, miss, "" (not applicable, e.g. compile failed)
}

// CheckedFile is emitted once per file processed by the validation stage,
// whether or not it produced diagnostics.
type CheckedFile struct {
	Path   string
	Schema string
	Status CacheStatus
}

// Resolver bundles the configuration and catalog chain GroupFiles
// consults to resolve each file's schema URI.
type Resolver struct {
	Config    lintelconfig.Config
	ConfigDir string
	Catalog   *catalog.Resolver
}

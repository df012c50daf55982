// Package validationcache stores validation results keyed on the triple of
// file content, schema hash, and format-validation flag, so repeated runs
// skip re-validating unchanged files against an unchanged schema.
package validationcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schemalint/schemalint/fulhash"
)

// Status distinguishes a cache hit from a miss.
type Status int

const (
	Miss Status = iota
	Hit
)

// ValidationError is the serialized form of a single schema validation
// failure, independent of how the diagnostic layer renders it.
type ValidationError struct {
	InstancePath string `json:"instancePath"`
	Message      string `json:"message"`
	SchemaPath   string `json:"schemaPath"`
}

// Cache is a disk-backed, content-addressed store of validation results.
type Cache struct {
	dir             string
	forceValidation bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithForceValidation makes every Lookup report a miss, while Store still
// persists results. This lets a later run without the flag benefit from
// the work done under --force-validation.
func WithForceValidation(force bool) Option {
	return func(c *Cache) { c.forceValidation = force }
}

// New creates a cache rooted at dir.
func New(dir string, opts ...Option) *Cache {
	c := &Cache{dir: dir}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key computes the cache key for a (file content, schema hash,
// validate_formats) triple.
func Key(fileContent []byte, schemaHash string, validateFormats bool) (string, error) {
	flag := byte(0)
	if validateFormats {
		flag = 1
	}
	composite := append([]byte{}, fileContent...)
	composite = append(composite, []byte(schemaHash)...)
	composite = append(composite, flag)
	digest, err := fulhash.Hash(composite)
	if err != nil {
		return "", err
	}
	return digest.Hex(), nil
}

// Lookup returns the cached validation errors for key, or a miss if
// force_validation is set or no entry exists.
func (c *Cache) Lookup(key string) ([]ValidationError, Status) {
	if c.forceValidation {
		return nil, Miss
	}
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, Miss
	}
	var errs []ValidationError
	if err := json.Unmarshal(data, &errs); err != nil {
		return nil, Miss
	}
	return errs, Hit
}

// Store persists errs under key, unconditionally (even under
// force_validation, so later runs can benefit from the work).
func (c *Cache) Store(key string, errs []ValidationError) error {
	if errs == nil {
		errs = []ValidationError{}
	}
	data, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("encoding validation cache entry: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating validation cache directory: %w", err)
	}
	return os.WriteFile(c.path(key), data, 0o644)
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

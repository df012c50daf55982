// Package lintelconfig loads and merges lintel.toml configuration files,
// walking upward from a starting directory the way the teacher's config
// packages walk upward for XDG and workspace roots.
package lintelconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/schemalint/schemalint/glob"
	"github.com/schemalint/schemalint/schema"
)

const configFilename = "lintel.toml"

// Override is a conditional config block matched by file path or schema URI
// globs, influencing format validation.
type Override struct {
	Files           []string `toml:"files"`
	Schemas         []string `toml:"schemas"`
	ValidateFormats *bool    `toml:"validate_formats"`
}

// Config is the merged projection of every lintel.toml found walking up from
// a search directory.
type Config struct {
	Root             bool              `toml:"root"`
	Exclude          []string          `toml:"exclude"`
	Schemas          map[string]string `toml:"schemas"`
	NoDefaultCatalog bool              `toml:"no-default-catalog"`
	Registries       []string          `toml:"registries"`
	Rewrite          map[string]string `toml:"rewrite"`
	Overrides        []Override        `toml:"override"`
}

// Default returns the zero-value config: no exclusions, no mappings, the
// default catalog enabled.
func Default() Config {
	return Config{
		Schemas: map[string]string{},
		Rewrite: map[string]string{},
	}
}

// mergeParent folds parent into c, with c's own values taking priority.
func (c *Config) mergeParent(parent Config) {
	c.Exclude = append(c.Exclude, parent.Exclude...)

	if c.Schemas == nil {
		c.Schemas = map[string]string{}
	}
	for k, v := range parent.Schemas {
		if _, ok := c.Schemas[k]; !ok {
			c.Schemas[k] = v
		}
	}

	for _, url := range parent.Registries {
		found := false
		for _, existing := range c.Registries {
			if existing == url {
				found = true
				break
			}
		}
		if !found {
			c.Registries = append(c.Registries, url)
		}
	}

	if c.Rewrite == nil {
		c.Rewrite = map[string]string{}
	}
	for k, v := range parent.Rewrite {
		if _, ok := c.Rewrite[k]; !ok {
			c.Rewrite[k] = v
		}
	}

	c.Overrides = append(c.Overrides, parent.Overrides...)
}

// FindSchemaMapping returns the schema URL for the first [schemas] glob
// matching path or fileName, in map iteration order (first-match semantics
// apply to whichever entry is visited first; callers needing a stable
// choice among multiple matches should keep mappings unambiguous).
func (c Config) FindSchemaMapping(path, fileName string) (string, bool) {
	path = strings.TrimPrefix(path, "./")
	for pattern, url := range c.Schemas {
		if glob.Match(pattern, path) || glob.Match(pattern, fileName) {
			return url, true
		}
	}
	return "", false
}

// ShouldValidateFormats reports whether format validation should be enabled
// for path given the set of schema URIs (pre- and post-rewrite) associated
// with it. The first matching override with a non-nil ValidateFormats wins;
// absent any match, the default is true.
func (c Config) ShouldValidateFormats(path string, schemaURIs []string) bool {
	path = strings.TrimPrefix(path, "./")
	for _, ov := range c.Overrides {
		fileMatch := len(ov.Files) > 0 && matchesAny(ov.Files, path)
		schemaMatch := len(ov.Schemas) > 0 && anyURIMatches(ov.Schemas, schemaURIs)
		if (fileMatch || schemaMatch) && ov.ValidateFormats != nil {
			return *ov.ValidateFormats
		}
	}
	return true
}

func matchesAny(patterns []string, path string) bool {
	for _, pat := range patterns {
		if glob.Match(pat, path) {
			return true
		}
	}
	return false
}

func anyURIMatches(patterns, uris []string) bool {
	for _, uri := range uris {
		if matchesAny(patterns, uri) {
			return true
		}
	}
	return false
}

// ApplyRewrites replaces the longest matching prefix of uri with its
// replacement from rewrites. Returns uri unchanged if nothing matches.
func ApplyRewrites(uri string, rewrites map[string]string) string {
	var bestFrom, bestTo string
	for from, to := range rewrites {
		if strings.HasPrefix(uri, from) && len(from) > len(bestFrom) {
			bestFrom, bestTo = from, to
		}
	}
	if bestFrom == "" {
		return uri
	}
	return bestTo + uri[len(bestFrom):]
}

// ResolveDoubleSlash resolves a "//"-prefixed URI relative to configDir.
// URIs without the prefix are returned unchanged.
func ResolveDoubleSlash(uri, configDir string) string {
	rest, ok := strings.CutPrefix(uri, "//")
	if !ok {
		return uri
	}
	return filepath.Join(configDir, rest)
}

// FindConfigPath walks upward from startDir looking for the nearest
// lintel.toml, returning its path if found.
func FindConfigPath(startDir string) (string, bool) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, configFilename)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// FindAndLoad walks upward from startDir collecting and merging every
// lintel.toml until one with root = true is found (inclusive), or the
// filesystem root is reached. configDir is the directory of the nearest
// (child-most) config file found, used as the base for "//" resolution.
// When no config file exists anywhere in the chain, it returns the default
// config and ok=false.
func FindAndLoad(startDir string) (cfg Config, configDir string, configPath string, ok bool, err error) {
	var configs []Config
	var paths []string
	dir := startDir

	for {
		candidate := filepath.Join(dir, configFilename)
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			data, readErr := os.ReadFile(candidate)
			if readErr != nil {
				return Config{}, "", "", false, fmt.Errorf("reading %s: %w", candidate, readErr)
			}
			if selfErr := validateSelf(data); selfErr != nil {
				return Config{}, "", "", false, fmt.Errorf("%s does not match the lintel.toml schema: %w", candidate, selfErr)
			}
			var parsed Config
			parsed.Schemas = map[string]string{}
			parsed.Rewrite = map[string]string{}
			if decodeErr := toml.Unmarshal(data, &parsed); decodeErr != nil {
				return Config{}, "", "", false, fmt.Errorf("parsing %s: %w", candidate, decodeErr)
			}
			configs = append(configs, parsed)
			paths = append(paths, candidate)
			if parsed.Root {
				break
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if len(configs) == 0 {
		return Default(), startDir, "", false, nil
	}

	merged := configs[0]
	if merged.Schemas == nil {
		merged.Schemas = map[string]string{}
	}
	if merged.Rewrite == nil {
		merged.Rewrite = map[string]string{}
	}
	for _, parent := range configs[1:] {
		merged.mergeParent(parent)
	}

	return merged, filepath.Dir(paths[0]), paths[0], true, nil
}

// SelfSchema returns the embedded JSON Schema document describing the
// shape of a lintel.toml file. FindAndLoad checks every lintel.toml it
// reads against it (via validateSelf) before decoding, and fails with an
// error naming the file when the check fails. The config file is not run
// through the validation pipeline and is not reported as a checked file or
// as a diagnostic.
func SelfSchema() []byte {
	return []byte(selfSchemaJSON)
}

const selfSchemaJSON = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "root": {"type": "boolean"},
    "exclude": {"type": "array", "items": {"type": "string"}},
    "schemas": {"type": "object", "additionalProperties": {"type": "string"}},
    "no-default-catalog": {"type": "boolean"},
    "registries": {"type": "array", "items": {"type": "string"}},
    "rewrite": {"type": "object", "additionalProperties": {"type": "string"}},
    "override": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "files": {"type": "array", "items": {"type": "string"}},
          "schemas": {"type": "array", "items": {"type": "string"}},
          "validate_formats": {"type": "boolean"}
        }
      }
    }
  }
}`

// validateSelf runs raw TOML config bytes through SelfSchema before the
// config is decoded into the Go Config struct.
func validateSelf(data []byte) error {
	var doc any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return err
	}
	validator, err := schema.NewValidator(SelfSchema())
	if err != nil {
		return fmt.Errorf("compiling lintel.toml self-schema: %w", err)
	}
	diags, err := validator.ValidateData(doc)
	if err != nil {
		return err
	}
	if len(diags) > 0 {
		return fmt.Errorf("%s", diags[0].Message)
	}
	return nil
}

// Package parsers implements the pluggable per-format readers that turn a
// data file's raw content into a JSON-comparable value plus any inline
// schema URI it declares, grounded on the teacher's docscribe frontmatter
// handling extended to the sibling formats named in the specification.
package parsers

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"

	"github.com/schemalint/schemalint/docscribe"
)

// Parser is the polymorphic contract every format implementation
// satisfies: parse raw content into a value, and separately attempt to
// pull an inline schema declaration out of the same content/value pair.
type Parser interface {
	// Name identifies the parser for diagnostics and metrics tags.
	Name() string
	// Parse decodes content into a JSON-comparable value (maps, slices,
	// strings, numbers, bools, nil). name is the file's display path,
	// used in error messages.
	Parse(content []byte, name string) (any, error)
	// ExtractSchemaURI looks for an inline schema declaration ($schema
	// property, language-server modeline, TOML directive) within content
	// or the already-parsed instance.
	ExtractSchemaURI(content []byte, instance any) (string, bool)
}

// Registry is the ordered {JSONC, YAML, TOML, JSON, JSON5, Markdown}
// try-all fallback sequence used when extension-based dispatch can't
// decide, per the file discovery & parser dispatch rules.
var Registry = []Parser{
	JSONC{},
	YAML{},
	TOML{},
	JSON{},
	JSON5{},
	Markdown{},
}

// extensionParsers maps a lowercased file extension to the parser chosen
// by step 1 of dispatch. JSONL/NDJSON are handled separately by the
// caller since they expand into multiple validation targets rather than
// producing a single instance.
var extensionParsers = map[string]Parser{
	".json":  JSON{},
	".jsonc": JSONC{},
	".json5": JSON5{},
	".yaml":  YAML{},
	".yml":   YAML{},
	".toml":  TOML{},
	".md":    Markdown{},
}

// IsJSONLExtension reports whether ext (including the leading dot, as
// returned by filepath.Ext) names a JSON Lines file.
func IsJSONLExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".jsonl", ".ndjson":
		return true
	}
	return false
}

// ForExtension returns the parser step 1 of dispatch selects for a file
// extension, if any.
func ForExtension(path string) (Parser, bool) {
	p, ok := extensionParsers[strings.ToLower(filepath.Ext(path))]
	return p, ok
}

// Dispatch implements the full selection algorithm: extension match first,
// then (when the caller has a reason to believe the file matters, e.g. a
// config/catalog entry named it) try every parser in Registry order,
// returning the first one that parses without error.
func Dispatch(path string, content []byte) (Parser, any, error) {
	if p, ok := ForExtension(path); ok {
		instance, err := p.Parse(content, path)
		return p, instance, err
	}

	var lastErr error
	for _, p := range Registry {
		instance, err := p.Parse(content, path)
		if err == nil {
			return p, instance, nil
		}
		lastErr = err
	}
	return nil, nil, fmt.Errorf("no parser in %v could read %s: %w", parserNames(Registry), path, lastErr)
}

func parserNames(ps []Parser) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name()
	}
	return names
}

// normalizeKeys recursively rewrites map[any]any / map[string]any trees
// produced by YAML decoding into JSON-compatible map[string]any, since
// YAML permits non-string scalar keys and JSON does not.
func normalizeKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeKeys(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalizeKeys(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeKeys(val)
		}
		return out
	default:
		return v
	}
}

// extractDollarSchema pulls a top-level "$schema" string out of a parsed
// JSON-like instance, the convention shared by JSON, JSONC, JSON5, YAML,
// and JSONL.
func extractDollarSchema(instance any) (string, bool) {
	m, ok := instance.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := m["$schema"].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// JSON parses strict JSON via json5 (a superset parser tolerant of
// trailing commas; strict JSON is always valid JSON5).
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Parse(content []byte, name string) (any, error) {
	var v any
	if err := json5.Unmarshal(content, &v); err != nil {
		return nil, fmt.Errorf("parsing %s as JSON: %w", name, err)
	}
	return v, nil
}

func (JSON) ExtractSchemaURI(_ []byte, instance any) (string, bool) {
	return extractDollarSchema(instance)
}

// JSONC parses with the full JSON5 grammar, so besides `//` and `/* */`
// comments it accepts the other JSON5 extensions too; it is tried before
// plain JSON in the fallback registry since it's a strict superset of JSON.
type JSONC struct{}

func (JSONC) Name() string { return "jsonc" }

func (JSONC) Parse(content []byte, name string) (any, error) {
	var v any
	if err := json5.Unmarshal(content, &v); err != nil {
		return nil, fmt.Errorf("parsing %s as JSONC: %w", name, err)
	}
	return v, nil
}

func (JSONC) ExtractSchemaURI(_ []byte, instance any) (string, bool) {
	return extractDollarSchema(instance)
}

// JSON5 parses the full JSON5 grammar (unquoted keys, single quotes,
// trailing commas, etc).
type JSON5 struct{}

func (JSON5) Name() string { return "json5" }

func (JSON5) Parse(content []byte, name string) (any, error) {
	var v any
	if err := json5.Unmarshal(content, &v); err != nil {
		return nil, fmt.Errorf("parsing %s as JSON5: %w", name, err)
	}
	return v, nil
}

func (JSON5) ExtractSchemaURI(_ []byte, instance any) (string, bool) {
	return extractDollarSchema(instance)
}

// yamlModelineRe matches the yaml-language-server $schema modeline
// convention: "# yaml-language-server: $schema=<uri>".
var yamlModelineRe = regexp.MustCompile(`(?m)^\s*#\s*yaml-language-server:\s*\$schema=(\S+)`)

// YAML decodes into interface{} and normalizes non-string map keys.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Parse(content []byte, name string) (any, error) {
	var v any
	if err := yaml.Unmarshal(content, &v); err != nil {
		return nil, fmt.Errorf("parsing %s as YAML: %w", name, err)
	}
	return normalizeKeys(v), nil
}

func (YAML) ExtractSchemaURI(content []byte, instance any) (string, bool) {
	if m := yamlModelineRe.FindSubmatch(content); m != nil {
		return string(m[1]), true
	}
	return extractDollarSchema(instance)
}

// tomlSchemaDirectiveRe matches the Taplo/TOML "# :schema <uri>" header
// convention.
var tomlSchemaDirectiveRe = regexp.MustCompile(`(?m)^\s*#\s*:schema\s+(\S+)`)

// TOML decodes via go-toml/v2 into interface{}.
type TOML struct{}

func (TOML) Name() string { return "toml" }

func (TOML) Parse(content []byte, name string) (any, error) {
	var v any
	if err := toml.Unmarshal(content, &v); err != nil {
		return nil, fmt.Errorf("parsing %s as TOML: %w", name, err)
	}
	return v, nil
}

func (TOML) ExtractSchemaURI(content []byte, _ any) (string, bool) {
	if m := tomlSchemaDirectiveRe.FindSubmatch(content); m != nil {
		return string(m[1]), true
	}
	return "", false
}

// Markdown extracts YAML frontmatter via docscribe and treats the parsed
// metadata map as the instance to validate. A document with no
// frontmatter produces a nil instance, which callers skip per the file
// discovery rules.
type Markdown struct{}

func (Markdown) Name() string { return "markdown" }

func (Markdown) Parse(content []byte, name string) (any, error) {
	_, metadata, err := docscribe.ParseFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s frontmatter: %w", name, err)
	}
	if metadata == nil {
		return nil, nil
	}
	instance := make(map[string]any, len(metadata))
	for k, v := range metadata {
		instance[k] = v
	}
	return normalizeKeys(instance), nil
}

func (Markdown) ExtractSchemaURI(_ []byte, instance any) (string, bool) {
	return extractDollarSchema(instance)
}

// FrontmatterSpan exposes docscribe's span computation for Markdown
// diagnostics so pipeline code anchoring a Validation/Parse diagnostic
// doesn't need its own import of docscribe.
func FrontmatterSpan(content []byte) (offset, length int, ok bool) {
	return docscribe.FrontmatterSpan(content)
}

// JSONLLine is a single non-empty line of a .jsonl/.ndjson file expanded
// into an independent validation target.
type JSONLLine struct {
	LineNumber int
	Path       string // synthetic "<file>:<lineno>" display path
	Instance   any
	SchemaURI  string
	HasSchema  bool
}

// ParseJSONL expands a JSON Lines file into one target per non-empty
// line, checking that every line agrees with the first line's declared
// $schema (when any line declares one). Disagreements are returned
// separately as mismatches rather than aborting the parse.
func ParseJSONL(content []byte, path string) (lines []JSONLLine, mismatches []JSONLLine, err error) {
	raw := bytes.Split(content, []byte("\n"))
	var firstSchema string
	haveFirstSchema := false

	for i, lineBytes := range raw {
		trimmed := bytes.TrimSpace(lineBytes)
		if len(trimmed) == 0 {
			continue
		}
		lineNo := i + 1
		var v any
		if err := json5.Unmarshal(trimmed, &v); err != nil {
			return nil, nil, fmt.Errorf("parsing %s line %d: %w", path, lineNo, err)
		}

		schemaURI, hasSchema := extractDollarSchema(v)
		entry := JSONLLine{
			LineNumber: lineNo,
			Path:       fmt.Sprintf("%s:%d", path, lineNo),
			Instance:   v,
			SchemaURI:  schemaURI,
			HasSchema:  hasSchema,
		}

		if hasSchema {
			if !haveFirstSchema {
				firstSchema = schemaURI
				haveFirstSchema = true
			} else if schemaURI != firstSchema {
				mismatches = append(mismatches, entry)
				continue
			}
		}

		lines = append(lines, entry)
	}

	return lines, mismatches, nil
}

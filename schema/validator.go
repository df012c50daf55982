package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Validator wraps a compiled JSON schema.
type Validator struct {
	schema *jsonschema.Schema
}

// Retriever resolves a schema URI to its parsed JSON document. It is the
// hook compilation uses for $ref resolution; schemacache.Cache satisfies
// this interface directly (it already delegates file:// URIs to disk and
// everything else through its HTTP cache).
type Retriever interface {
	Retrieve(uri string) (any, error)
}

// ErrGracefulDegradation is returned by Compile when a schema fails to
// compile because of a strict uri-reference format check on a $ref and
// format validation is disabled for the group. Callers should treat this
// as "nothing to check" rather than a hard failure.
var ErrGracefulDegradation = errors.New("schema: malformed $ref tolerated because format validation is disabled")

// NewValidator compiles a standalone schema from raw bytes. Used for
// self-contained schemas with no external $ref (logging policy, config
// self-validation).
func NewValidator(schemaData []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	const virtualURL = "mem://schema.json"
	if err := compiler.AddResource(virtualURL, bytes.NewReader(schemaData)); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile(virtualURL)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Compile builds a Validator for schemaDoc, resolving any $ref through
// retriever. baseURI anchors relative $ref resolution: for a remote
// schema, its URI with any fragment stripped; for a local schema, a
// file:// URI derived from the canonicalized absolute path.
func Compile(schemaDoc any, baseURI string, validateFormats bool, retriever Retriever) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = validateFormats
	compiler.LoadURL = func(rawURL string) (io.ReadCloser, error) {
		doc, err := retriever.Retrieve(stripFragment(rawURL))
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("re-encoding resolved schema %s: %w", rawURL, err)
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	data, err := json.Marshal(schemaDoc)
	if err != nil {
		return nil, fmt.Errorf("encoding schema document: %w", err)
	}
	if err := compiler.AddResource(baseURI, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("adding schema resource %s: %w", baseURI, err)
	}

	compiled, err := compiler.Compile(baseURI)
	if err != nil {
		if !validateFormats && isURIReferenceFormatError(err) {
			return nil, ErrGracefulDegradation
		}
		return nil, fmt.Errorf("compiling schema %s: %w", baseURI, err)
	}
	return &Validator{schema: compiled}, nil
}

// LocalSchemaBaseURI derives the file:// base URI a local schema file is
// compiled under, so its relative $ref entries resolve against its own
// directory.
func LocalSchemaBaseURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path for %s: %w", path, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

var uriReferenceErrPattern = regexp.MustCompile(`uri-reference`)

func isURIReferenceFormatError(err error) bool {
	return uriReferenceErrPattern.MatchString(err.Error())
}

func stripFragment(raw string) string {
	if idx := strings.IndexRune(raw, '#'); idx >= 0 {
		return raw[:idx]
	}
	return raw
}

// ValidateData validates an in-memory value against the schema and returns
// diagnostics built from any validation failure.
func (v *Validator) ValidateData(data interface{}) ([]Diagnostic, error) {
	err := v.schema.Validate(data)
	if err == nil {
		return nil, nil
	}
	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, err
	}
	return diagnosticsFromValidationError(validationErr, sourceSchema), nil
}

// ValidateJSON validates JSON bytes.
func (v *Validator) ValidateJSON(jsonData []byte) ([]Diagnostic, error) {
	var payload interface{}
	if err := json.Unmarshal(jsonData, &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return v.ValidateData(payload)
}

// ValidateFile validates a JSON or YAML file on disk.
func (v *Validator) ValidateFile(path string) ([]Diagnostic, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- caller-provided path is intentional for this API
	if err != nil {
		return nil, err
	}

	if isJSON(content) {
		return v.ValidateJSON(content)
	}

	var payload interface{}
	if err := yaml.Unmarshal(content, &payload); err != nil {
		return nil, err
	}
	return v.ValidateData(payload)
}

// Errors converts the errors of a compiled validation run into the flat,
// post-processed form the validation cache and diagnostics layer expect:
// instance path, a stripped message, and the schema path that rejected it.
func (v *Validator) Errors(instance any) ([]FlatError, error) {
	err := v.schema.Validate(instance)
	if err == nil {
		return nil, nil
	}
	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, err
	}
	return flattenErrors(validationErr), nil
}

// FlatError is one leaf validation failure, ready for caching or display.
type FlatError struct {
	InstancePath string
	Message      string
	SchemaPath   string
}

func flattenErrors(root *jsonschema.ValidationError) []FlatError {
	var out []FlatError
	stack := []*jsonschema.ValidationError{root}
	for len(stack) > 0 {
		current := stack[0]
		stack = stack[1:]

		out = append(out, FlatError{
			InstancePath: current.InstanceLocation,
			Message:      postProcessMessage(current.Message),
			SchemaPath:   trimKeyword(current.KeywordLocation),
		})

		stack = append(stack, current.Causes...)
	}
	return out
}

var oneOfAnyOfValueDump = regexp.MustCompile(`^.* (is not valid under any of the schemas listed in the '(?:oneOf|anyOf)' keyword)$`)

// postProcessMessage strips the redundant JSON-value dump that
// santhosh-tekuri/jsonschema prepends to oneOf/anyOf failure messages: the
// source snippet already shows the offending value.
func postProcessMessage(msg string) string {
	if m := oneOfAnyOfValueDump.FindStringSubmatch(msg); m != nil {
		return m[1]
	}
	return msg
}

func isJSON(content []byte) bool {
	trimmed := bytes.TrimSpace(content)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[' || trimmed[0] == '"')
}

// LoadSchemaFile reads a schema document from disk.
func LoadSchemaFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename) // #nosec G304 -- caller-provided schema path
	if err != nil {
		return nil, fmt.Errorf("reading schema file %s: %w", filename, err)
	}
	return data, nil
}

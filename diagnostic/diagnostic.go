// Package diagnostic defines the pipeline-level diagnostic taxonomy
// emitted by a validation run: parse failures, schema-validation errors,
// schema fetch/compile failures, I/O errors, and JSONL schema mismatches.
// It is distinct from schema.Diagnostic, which captures a single
// jsonschema validation error before it is promoted into one of these
// variants with a source span attached.
package diagnostic

import "fmt"

// Kind identifies which diagnostic variant a Diagnostic carries.
type Kind string

const (
	KindParse          Kind = "parse"
	KindValidation     Kind = "validation"
	KindSchemaFetch    Kind = "schema_fetch"
	KindSchemaCompile  Kind = "schema_compile"
	KindIO             Kind = "io"
	KindSchemaMismatch Kind = "schema_mismatch"
)

// Span is a byte-offset range into a source blob, used to underline the
// offending region in a rendered diagnostic. The zero Span, {0, 0}, is the
// worst-case fallback for formats with no direct offset mapping.
type Span struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// Diagnostic is the tagged union described by the pipeline's diagnostic
// model: every variant carries at least a path and a message; Parse and
// Validation additionally carry a source blob and span so a renderer can
// underline the offending region.
type Diagnostic struct {
	Kind Kind `json:"kind"`

	path    string
	message string

	// Parse, Validation
	Source string `json:"source,omitempty"`
	Span   Span   `json:"span,omitempty"`

	// Validation
	SchemaSpan   Span   `json:"schemaSpan,omitempty"`
	InstancePath string `json:"instancePath,omitempty"`
	Label        string `json:"label,omitempty"`
	SchemaURL    string `json:"schemaUrl,omitempty"`
	SchemaPath   string `json:"schemaPath,omitempty"`

	// SchemaMismatch
	LineNumber int `json:"lineNumber,omitempty"`
}

// Path returns the file path the diagnostic applies to.
func (d Diagnostic) Path() string { return d.path }

// Message returns the human-readable diagnostic message.
func (d Diagnostic) Message() string { return d.message }

// Offset returns the byte offset used for sort ordering. SchemaMismatch
// diagnostics, which carry a line number rather than a span, sort by that
// line number instead.
func (d Diagnostic) Offset() int {
	if d.Kind == KindSchemaMismatch {
		return d.LineNumber
	}
	return d.Span.Offset
}

// NewParse builds a Parse diagnostic: a parser rejected the file.
func NewParse(path, source string, span Span, message string) Diagnostic {
	return Diagnostic{Kind: KindParse, path: path, message: message, Source: source, Span: span}
}

// NewValidation builds a Validation diagnostic: the instance failed
// schema validation at instancePath.
func NewValidation(path, source string, span, schemaSpan Span, instancePath, label, message, schemaURL, schemaPath string) Diagnostic {
	return Diagnostic{
		Kind:         KindValidation,
		path:         path,
		message:      message,
		Source:       source,
		Span:         span,
		SchemaSpan:   schemaSpan,
		InstancePath: instancePath,
		Label:        label,
		SchemaURL:    schemaURL,
		SchemaPath:   schemaPath,
	}
}

// NewSchemaFetch builds a SchemaFetch diagnostic: a remote fetch or
// local schema read failed.
func NewSchemaFetch(path, message string) Diagnostic {
	return Diagnostic{Kind: KindSchemaFetch, path: path, message: message}
}

// NewSchemaCompile builds a SchemaCompile diagnostic: the compiler
// rejected the schema.
func NewSchemaCompile(path, message string) Diagnostic {
	return Diagnostic{Kind: KindSchemaCompile, path: path, message: message}
}

// NewIO builds an Io diagnostic: the file could not be read.
func NewIO(path, message string) Diagnostic {
	return Diagnostic{Kind: KindIO, path: path, message: message}
}

// NewSchemaMismatch builds a SchemaMismatch diagnostic: a JSONL line
// declared a different $schema than earlier lines in the same file.
func NewSchemaMismatch(path string, lineNumber int, message string) Diagnostic {
	return Diagnostic{Kind: KindSchemaMismatch, path: path, message: message, LineNumber: lineNumber}
}

// String renders a compact "path:offset: message" form, used by the CLI's
// plain-text reporter.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s", d.path, d.Offset(), d.message)
}

// SortKey is the (path, offset) pair diagnostics are sorted on for
// deterministic output across a run.
type SortKey struct {
	Path   string
	Offset int
}

// Key returns d's sort key.
func (d Diagnostic) Key() SortKey {
	return SortKey{Path: d.path, Offset: d.Offset()}
}

// Less reports whether a sorts before b: by path, then by offset.
func Less(a, b Diagnostic) bool {
	ak, bk := a.Key(), b.Key()
	if ak.Path != bk.Path {
		return ak.Path < bk.Path
	}
	return ak.Offset < bk.Offset
}

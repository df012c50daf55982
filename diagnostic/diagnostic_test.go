package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDiagnosticAccessors(t *testing.T) {
	d := NewParse("config.yaml", "key: [oops", Span{Offset: 5, Length: 4}, "unexpected token")
	assert.Equal(t, "config.yaml", d.Path())
	assert.Equal(t, "unexpected token", d.Message())
	assert.Equal(t, 5, d.Offset())
	assert.Equal(t, KindParse, d.Kind)
}

func TestValidationDiagnosticCarriesSchemaFields(t *testing.T) {
	d := NewValidation("data.json", `{"a":1}`, Span{Offset: 1}, Span{Offset: 10}, "/a", "a", "must be string", "https://example.com/schema.json", "/properties/a/type")
	assert.Equal(t, "https://example.com/schema.json", d.SchemaURL)
	assert.Equal(t, "/a", d.InstancePath)
	assert.Equal(t, 1, d.Offset())
}

func TestSchemaMismatchOffsetUsesLineNumber(t *testing.T) {
	d := NewSchemaMismatch("data.jsonl", 7, "line declares a different $schema")
	assert.Equal(t, 7, d.Offset())
}

func TestSortDeterministicOrdersByPathThenOffset(t *testing.T) {
	diags := []Diagnostic{
		NewIO("b.json", "read failed"),
		NewParse("a.json", "", Span{Offset: 10}, "bad"),
		NewParse("a.json", "", Span{Offset: 2}, "worse"),
	}
	SortDeterministic(diags)

	assert.Equal(t, "a.json", diags[0].Path())
	assert.Equal(t, 2, diags[0].Offset())
	assert.Equal(t, "a.json", diags[1].Path())
	assert.Equal(t, 10, diags[1].Offset())
	assert.Equal(t, "b.json", diags[2].Path())
}

func TestStringRendersCompactForm(t *testing.T) {
	d := NewSchemaCompile("schema.json", "invalid $ref")
	assert.Equal(t, "schema.json:0: invalid $ref", d.String())
}

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemalint/schemalint/lintelconfig"
	"github.com/schemalint/schemalint/schemacache"
	"github.com/schemalint/schemalint/validationcache"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGroupFilesResolvesInlineSchemaAndGroups(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "a.json", `{"$schema": "https://example.com/widget.json", "name": "a"}`)
	p2 := writeFile(t, dir, "b.json", `{"$schema": "https://example.com/widget.json", "name": "b"}`)

	r := &Resolver{Config: lintelconfig.Default(), ConfigDir: dir}
	groups, diags := r.GroupFiles(context.Background(), []string{p1, p2}, 4)
	assert.Empty(t, diags)
	require.Contains(t, groups, "https://example.com/widget.json")
	assert.Len(t, groups["https://example.com/widget.json"].Files, 2)
}

func TestGroupFilesFallsBackToConfigSchemaMapping(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "config.json", `{"name": "a"}`)

	cfg := lintelconfig.Default()
	cfg.Schemas["config.json"] = "https://example.com/config-schema.json"

	r := &Resolver{Config: cfg, ConfigDir: dir}
	groups, diags := r.GroupFiles(context.Background(), []string{p1}, 4)
	assert.Empty(t, diags)
	require.Contains(t, groups, "https://example.com/config-schema.json")
}

func TestGroupFilesReportsIOErrorForMissingFile(t *testing.T) {
	dir := t.TempDir()
	r := &Resolver{Config: lintelconfig.Default(), ConfigDir: dir}
	_, diags := r.GroupFiles(context.Background(), []string{filepath.Join(dir, "missing.json")}, 4)
	require.Len(t, diags, 1)
	assert.Equal(t, "io", string(diags[0].Kind))
}

func TestGroupFilesReportsParseErrorForInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "bad.json", `{not valid`)
	r := &Resolver{Config: lintelconfig.Default(), ConfigDir: dir}
	_, diags := r.GroupFiles(context.Background(), []string{p}, 4)
	require.Len(t, diags, 1)
	assert.Equal(t, "parse", string(diags[0].Kind))
}

func TestGroupFilesSkipsFileWithNoResolvableSchema(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "no-schema.json", `{"name": "a"}`)
	r := &Resolver{Config: lintelconfig.Default(), ConfigDir: dir}
	groups, diags := r.GroupFiles(context.Background(), []string{p}, 4)
	assert.Empty(t, diags)
	assert.Empty(t, groups)
}

func TestGroupFilesExpandsJSONLAndFlagsMismatch(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "data.jsonl", `{"$schema": "https://example.com/a.json", "v": 1}
{"$schema": "https://example.com/a.json", "v": 2}
{"$schema": "https://example.com/b.json", "v": 3}
`)
	r := &Resolver{Config: lintelconfig.Default(), ConfigDir: dir}
	groups, diags := r.GroupFiles(context.Background(), []string{p}, 4)

	require.Len(t, diags, 1)
	assert.Equal(t, "schema_mismatch", string(diags[0].Kind))
	require.Contains(t, groups, "https://example.com/a.json")
	assert.Len(t, groups["https://example.com/a.json"].Files, 2)
}

func TestRunEndToEndValidatesAgainstMemorySchema(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "widget.json", `{"$schema": "https://example.com/widget.json", "count": "not-a-number"}`)

	schemaDoc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"count": map[string]any{"type": "number"},
		},
	}
	fetcher := schemacache.NewMemory(map[string]any{"https://example.com/widget.json": schemaDoc})

	r := &Resolver{Config: lintelconfig.Default(), ConfigDir: dir}
	valCache := validationcache.New(t.TempDir())

	result := r.Run(context.Background(), []string{p}, 4, fetcher, valCache)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "validation", string(result.Diagnostics[0].Kind))
	require.Len(t, result.Checked, 1)
	assert.Equal(t, "miss", result.Checked[0].Status.Validation)
}

func TestRunSecondPassHitsValidationCache(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "widget.json", `{"$schema": "https://example.com/widget.json", "count": "not-a-number"}`)

	schemaDoc := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"count": map[string]any{"type": "number"},
		},
	}
	fetcher := schemacache.NewMemory(map[string]any{"https://example.com/widget.json": schemaDoc})
	r := &Resolver{Config: lintelconfig.Default(), ConfigDir: dir}
	valCache := validationcache.New(t.TempDir())

	first := r.Run(context.Background(), []string{p}, 4, fetcher, valCache)
	require.Len(t, first.Diagnostics, 1)

	second := r.Run(context.Background(), []string{p}, 4, fetcher, valCache)
	require.Len(t, second.Diagnostics, 1)
	assert.Equal(t, "hit", second.Checked[0].Status.Validation)
}

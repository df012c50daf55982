package lintelconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRewritesLongestPrefixWins(t *testing.T) {
	rewrites := map[string]string{"/a": "X", "/a/b": "Y"}
	assert.Equal(t, "Y/c", ApplyRewrites("/a/b/c", rewrites))
}

func TestApplyRewritesNoMatch(t *testing.T) {
	assert.Equal(t, "/x/y", ApplyRewrites("/x/y", map[string]string{}))
}

func TestResolveDoubleSlash(t *testing.T) {
	assert.Equal(t, "/proj/schemas/test.json", ResolveDoubleSlash("//schemas/test.json", "/proj"))
	assert.Equal(t, "http://example.com/x.json", ResolveDoubleSlash("http://example.com/x.json", "/proj"))
}

func TestMergeParentSchemaPrecedence(t *testing.T) {
	child := Config{Schemas: map[string]string{"a.json": "child"}, Rewrite: map[string]string{}}
	parent := Config{Schemas: map[string]string{"a.json": "parent", "b.json": "parent-only"}}

	child.mergeParent(parent)

	assert.Equal(t, "child", child.Schemas["a.json"])
	assert.Equal(t, "parent-only", child.Schemas["b.json"])
}

func TestMergeParentOverrideOrder(t *testing.T) {
	childOverride := Override{Files: []string{"child.json"}}
	parentOverride := Override{Files: []string{"parent.json"}}

	child := Config{Overrides: []Override{childOverride}}
	parent := Config{Overrides: []Override{parentOverride}}

	child.mergeParent(parent)

	require.Len(t, child.Overrides, 2)
	assert.Equal(t, childOverride, child.Overrides[0])
	assert.Equal(t, parentOverride, child.Overrides[1])
}

func TestMergeParentRegistriesDeduped(t *testing.T) {
	child := Config{Registries: []string{"https://child.example/catalog.json"}}
	parent := Config{Registries: []string{
		"https://child.example/catalog.json",
		"https://parent.example/catalog.json",
	}}

	child.mergeParent(parent)

	assert.Equal(t, []string{
		"https://child.example/catalog.json",
		"https://parent.example/catalog.json",
	}, child.Registries)
}

func TestShouldValidateFormatsDefaultTrue(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.ShouldValidateFormats("data.json", []string{"http://example.com/s.json"}))
}

func TestShouldValidateFormatsOverrideByFile(t *testing.T) {
	falseVal := false
	cfg := Default()
	cfg.Overrides = []Override{
		{Files: []string{"**/data.json"}, ValidateFormats: &falseVal},
	}
	assert.False(t, cfg.ShouldValidateFormats("deep/data.json", nil))
	assert.True(t, cfg.ShouldValidateFormats("deep/other.json", nil))
}

func TestShouldValidateFormatsOverrideBySchema(t *testing.T) {
	falseVal := false
	cfg := Default()
	cfg.Overrides = []Override{
		{Schemas: []string{"http://corp/*"}, ValidateFormats: &falseVal},
	}
	assert.False(t, cfg.ShouldValidateFormats("any.json", []string{"http://corp/test.json"}))
}

func TestFindSchemaMapping(t *testing.T) {
	cfg := Default()
	cfg.Schemas["config/*.yaml"] = "https://json.schemastore.org/github-workflow.json"

	url, ok := cfg.FindSchemaMapping("config/ci.yaml", "ci.yaml")
	require.True(t, ok)
	assert.Equal(t, "https://json.schemastore.org/github-workflow.json", url)

	_, ok = cfg.FindSchemaMapping("other/file.yaml", "file.yaml")
	assert.False(t, ok)
}

func TestFindAndLoadMergesChildAndParentWithRootStop(t *testing.T) {
	tmp := t.TempDir()
	parentDir := tmp
	childDir := filepath.Join(tmp, "child")
	require.NoError(t, os.MkdirAll(childDir, 0o755))

	parentTOML := "root = true\nexclude = [\"parent-exclude/**\"]\n\n[schemas]\n\"b.json\" = \"https://example.com/b.json\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(parentDir, "lintel.toml"), []byte(parentTOML), 0o644))

	childTOML := "exclude = [\"child-exclude/**\"]\n\n[schemas]\n\"a.json\" = \"https://example.com/a.json\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(childDir, "lintel.toml"), []byte(childTOML), 0o644))

	cfg, configDir, _, ok, err := FindAndLoad(childDir)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, childDir, configDir)
	assert.Equal(t, []string{"child-exclude/**", "parent-exclude/**"}, cfg.Exclude)
	assert.Equal(t, "https://example.com/a.json", cfg.Schemas["a.json"])
	assert.Equal(t, "https://example.com/b.json", cfg.Schemas["b.json"])
}

func TestFindAndLoadRejectsConfigFailingSelfSchema(t *testing.T) {
	tmp := t.TempDir()
	badTOML := "root = true\nschemas = \"not-an-object\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "lintel.toml"), []byte(badTOML), 0o644))

	_, _, _, _, err := FindAndLoad(tmp)
	require.Error(t, err)
}

func TestFindAndLoadNoConfigReturnsDefault(t *testing.T) {
	tmp := t.TempDir()
	cfg, _, _, ok, err := FindAndLoad(tmp)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Default(), cfg)
}

package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/schemalint/schemalint/lintelconfig"
)

// resolveSchemaURI implements the precedence chain: inline declaration,
// then config.schemas mapping, then the catalog chain. It returns the
// pre-rewrite original URI (for override matching) and the fully
// resolved form (after rewrite, "//"-resolution, and relative-path
// joining), or ok=false when nothing matched.
func (r *Resolver) resolveSchemaURI(path string, inlineURI string, hasInline bool) (original, resolved string, ok bool) {
	var uri, source string

	switch {
	case hasInline && inlineURI != "":
		uri, source = inlineURI, "inline"
	default:
		fileName := filepath.Base(path)
		if mapped, found := r.Config.FindSchemaMapping(path, fileName); found {
			uri, source = mapped, "config"
		} else if r.Catalog != nil {
			if mapped, found := r.Catalog.Resolve(path, fileName); found {
				uri, source = mapped, "catalog"
			}
		}
	}

	if uri == "" {
		return "", "", false
	}

	original = uri
	resolved = lintelconfig.ApplyRewrites(uri, r.Config.Rewrite)
	resolved = lintelconfig.ResolveDoubleSlash(resolved, r.ConfigDir)
	resolved = r.joinRelative(resolved, path, source)
	return original, resolved, true
}

// joinRelative joins a still-relative local schema URI against the
// appropriate base directory: the file's own parent for an inline
// declaration, the config directory for a config/catalog-sourced one.
// Remote URLs and already-absolute paths pass through unchanged.
func (r *Resolver) joinRelative(uri, filePath, source string) string {
	if isRemoteURL(uri) || filepath.IsAbs(uri) {
		return uri
	}
	base := r.ConfigDir
	if source == "inline" {
		base = filepath.Dir(filePath)
	}
	return filepath.Join(base, uri)
}

func isRemoteURL(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// isFileSchemeOrPlainPath reports whether uri should be read from local
// disk during validation: anything that isn't an http(s) URL.
func isFileSchemeOrPlainPath(uri string) bool {
	return !isRemoteURL(uri)
}

// stripFilePrefix removes a leading file:// scheme, if any, returning a
// plain filesystem path.
func stripFilePrefix(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

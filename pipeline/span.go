package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/schemalint/schemalint/diagnostic"
)

// spanForInstancePath makes a best-effort attempt to locate the byte
// offset of the value addressed by a JSON pointer within content, by
// textually searching for its last named (non-numeric) segment as a key.
// This works across JSON, YAML, and TOML source text since all three
// spell object keys as a bareword or quoted string immediately followed
// by a colon or equals sign; it cannot generally resolve array indices or
// keys that also occur earlier in the document as a substring of another
// key, so the worst case is the documented (0, 0) fallback.
func spanForInstancePath(content []byte, instancePath string) diagnostic.Span {
	segment, ok := lastNamedSegment(instancePath)
	if !ok {
		return diagnostic.Span{}
	}

	pattern := regexp.MustCompile(`(?m)^[ \t]*"?` + regexp.QuoteMeta(segment) + `"?\s*[:=]`)
	loc := pattern.FindIndex(content)
	if loc == nil {
		return diagnostic.Span{}
	}
	return diagnostic.Span{Offset: loc[0], Length: loc[1] - loc[0]}
}

// lastNamedSegment returns the rightmost JSON-pointer segment of path
// that isn't a plain array index, unescaping "~1"/"~0" per RFC 6901.
func lastNamedSegment(path string) (string, bool) {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" {
			continue
		}
		if _, err := strconv.Atoi(seg); err == nil {
			continue
		}
		seg = strings.ReplaceAll(seg, "~1", "/")
		seg = strings.ReplaceAll(seg, "~0", "~")
		return seg, true
	}
	return "", false
}

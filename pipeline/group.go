package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/schemalint/schemalint/diagnostic"
	"github.com/schemalint/schemalint/parsers"
)

// defaultReadConcurrency bounds concurrent file reads to avoid exhausting
// file descriptors on large trees, per the grouping stage's concurrency
// domain.
const defaultReadConcurrency = 128

// GroupFiles reads, parses, and resolves the schema of every path
// concurrently (bounded by concurrency, or defaultReadConcurrency when
// <= 0), then groups the resulting ParsedFiles by resolved schema URI.
// JSONL files expand into one ParsedFile per line. The returned map's
// keys are the set of distinct resolved schema URIs; callers should
// iterate SortedGroupKeys(groups) for deterministic processing order.
func (r *Resolver) GroupFiles(ctx context.Context, paths []string, concurrency int64) (map[string]*SchemaGroup, []diagnostic.Diagnostic) {
	if concurrency <= 0 {
		concurrency = defaultReadConcurrency
	}
	sem := semaphore.NewWeighted(concurrency)

	var mu sync.Mutex
	groups := map[string]*SchemaGroup{}
	var diags []diagnostic.Diagnostic
	var wg sync.WaitGroup

	addDiag := func(d diagnostic.Diagnostic) {
		mu.Lock()
		diags = append(diags, d)
		mu.Unlock()
	}
	addFile := func(pf ParsedFile) {
		mu.Lock()
		g, ok := groups[pf.ResolvedSchemaURI]
		if !ok {
			g = &SchemaGroup{SchemaURI: pf.ResolvedSchemaURI}
			groups[pf.ResolvedSchemaURI] = g
		}
		g.Files = append(g.Files, pf)
		mu.Unlock()
	}

	for _, path := range paths {
		path := path
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			r.processFile(path, addFile, addDiag)
		}()
	}
	wg.Wait()

	return groups, diags
}

// processFile reads one file, dispatches it to the appropriate parser(s),
// resolves its schema, and reports the result through addFile/addDiag.
func (r *Resolver) processFile(path string, addFile func(ParsedFile), addDiag func(diagnostic.Diagnostic)) {
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from discovery over a user-specified root
	if err != nil {
		addDiag(diagnostic.NewIO(path, fmt.Sprintf("reading %s: %v", path, err)))
		return
	}

	if parsers.IsJSONLExtension(extOf(path)) {
		r.processJSONL(path, content, addFile, addDiag)
		return
	}

	if _, known := parsers.ForExtension(path); !known {
		// Unrecognized extension: only a [schemas] mapping or catalog match
		// makes the file a candidate for the try-all fallback.
		if _, _, mapped := r.resolveSchemaURI(path, "", false); !mapped {
			return
		}
	}

	p, instance, err := parsers.Dispatch(path, content)
	if err != nil {
		addDiag(diagnostic.NewParse(path, string(content), diagnostic.Span{}, err.Error()))
		return
	}
	if instance == nil {
		// e.g. Markdown with no frontmatter: silently skipped.
		return
	}

	inlineURI, hasInline := p.ExtractSchemaURI(content, instance)
	original, resolved, ok := r.resolveSchemaURI(path, inlineURI, hasInline)
	if !ok {
		// No schema resolved from any source: nothing to validate against.
		return
	}

	addFile(ParsedFile{
		Path:              path,
		Content:           content,
		Instance:          instance,
		OriginalSchemaURI: original,
		ResolvedSchemaURI: resolved,
	})
}

func (r *Resolver) processJSONL(path string, content []byte, addFile func(ParsedFile), addDiag func(diagnostic.Diagnostic)) {
	lines, mismatches, err := parsers.ParseJSONL(content, path)
	if err != nil {
		addDiag(diagnostic.NewParse(path, string(content), diagnostic.Span{}, err.Error()))
		return
	}
	for _, m := range mismatches {
		addDiag(diagnostic.NewSchemaMismatch(path, m.LineNumber, fmt.Sprintf("%s declares a different $schema than earlier lines (%q)", m.Path, m.SchemaURI)))
	}
	for _, line := range lines {
		original, resolved, ok := r.resolveSchemaURI(path, line.SchemaURI, line.HasSchema)
		if !ok {
			continue
		}
		addFile(ParsedFile{
			Path:              line.Path,
			Content:           mustMarshalLine(line.Instance),
			Instance:          line.Instance,
			OriginalSchemaURI: original,
			ResolvedSchemaURI: resolved,
			LineNumber:        line.LineNumber,
		})
	}
}

// SortedGroupKeys returns groups' keys sorted for deterministic
// processing and diagnostic ordering.
func SortedGroupKeys(groups map[string]*SchemaGroup) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

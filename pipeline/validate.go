package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/schemalint/schemalint/diagnostic"
	"github.com/schemalint/schemalint/fulhash"
	"github.com/schemalint/schemalint/schema"
	"github.com/schemalint/schemalint/schemacache"
	"github.com/schemalint/schemalint/validationcache"
)

// Fetcher is the schema cache's contract for prefetching and $ref
// resolution. *schemacache.Cache satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (any, schemacache.Status, error)
	Retrieve(uri string) (any, error)
}

// Validate runs the validation stage over groups: prefetches every remote
// schema concurrently, then processes each group in sorted URI order,
// consulting the validation cache before compiling and checking any
// cache-miss files. It returns one CheckedFile per file processed and the
// full set of diagnostics, not yet sorted (callers should
// diagnostic.SortDeterministic the result before rendering).
func Validate(ctx context.Context, groups map[string]*SchemaGroup, cfg ShouldValidateFormats, fetcher Fetcher, valCache *validationcache.Cache) ([]CheckedFile, []diagnostic.Diagnostic) {
	keys := SortedGroupKeys(groups)

	prefetched := prefetchRemoteSchemas(ctx, keys, fetcher)

	localSchemas := map[string]any{}
	var localMu sync.Mutex

	var checked []CheckedFile
	var diags []diagnostic.Diagnostic

	for _, uri := range keys {
		group := groups[uri]
		c, d := processGroup(ctx, group, cfg, fetcher, valCache, prefetched, localSchemas, &localMu)
		checked = append(checked, c...)
		diags = append(diags, d...)
	}

	return checked, diags
}

// ShouldValidateFormats is the subset of lintelconfig.Config's contract
// the validation stage needs, kept narrow so pipeline doesn't import the
// whole config type for a single decision.
type ShouldValidateFormats interface {
	ShouldValidateFormats(path string, schemaURIs []string) bool
}

type prefetchResult struct {
	doc    any
	status schemacache.Status
	err    error
}

// prefetchRemoteSchemas launches one fetch per distinct remote schema URI
// appearing as a group key, via errgroup, and collects results keyed by
// URI. Local (file) schema URIs are skipped here; they're read lazily and
// memoized per-run during group processing.
func prefetchRemoteSchemas(ctx context.Context, uris []string, fetcher Fetcher) map[string]prefetchResult {
	results := make(map[string]prefetchResult, len(uris))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, uri := range uris {
		uri := uri
		if !isRemoteURL(uri) {
			continue
		}
		g.Go(func() error {
			doc, status, err := fetcher.Fetch(gctx, uri)
			mu.Lock()
			results[uri] = prefetchResult{doc: doc, status: status, err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func processGroup(
	ctx context.Context,
	group *SchemaGroup,
	cfg ShouldValidateFormats,
	fetcher Fetcher,
	valCache *validationcache.Cache,
	prefetched map[string]prefetchResult,
	localSchemas map[string]any,
	localMu *sync.Mutex,
) ([]CheckedFile, []diagnostic.Diagnostic) {
	var checked []CheckedFile
	var diags []diagnostic.Diagnostic

	validateFormats := true
	for _, f := range group.Files {
		if !cfg.ShouldValidateFormats(f.Path, []string{f.OriginalSchemaURI, f.ResolvedSchemaURI}) {
			validateFormats = false
			break
		}
	}

	schemaDoc, schemaStatus, fetchErr := acquireSchema(ctx, group.SchemaURI, fetcher, prefetched, localSchemas, localMu)
	if fetchErr != nil {
		for _, f := range group.Files {
			diags = append(diags, diagnostic.NewSchemaFetch(f.Path, fetchErr.Error()))
			checked = append(checked, CheckedFile{Path: f.Path, Schema: group.SchemaURI, Status: CacheStatus{Schema: schemaStatus}})
		}
		return checked, diags
	}

	schemaBytes, err := json.Marshal(schemaDoc)
	if err != nil {
		for _, f := range group.Files {
			diags = append(diags, diagnostic.NewSchemaFetch(f.Path, fmt.Sprintf("re-encoding schema %s: %v", group.SchemaURI, err)))
		}
		return checked, diags
	}
	schemaHashDigest, err := fulhash.Hash(schemaBytes)
	if err != nil {
		for _, f := range group.Files {
			diags = append(diags, diagnostic.NewSchemaFetch(f.Path, fmt.Sprintf("hashing schema %s: %v", group.SchemaURI, err)))
		}
		return checked, diags
	}
	schemaHash := schemaHashDigest.Hex()

	var misses []ParsedFile
	missKeys := map[string]string{} // file path -> cache key

	for _, f := range group.Files {
		key, err := validationcache.Key(f.Content, schemaHash, validateFormats)
		if err != nil {
			diags = append(diags, diagnostic.NewIO(f.Path, fmt.Sprintf("computing validation cache key: %v", err)))
			continue
		}
		if errs, status := valCache.Lookup(key); status == validationcache.Hit {
			for _, e := range errs {
				diags = append(diags, validationDiagFromCache(f, group.SchemaURI, e))
			}
			checked = append(checked, CheckedFile{Path: f.Path, Schema: group.SchemaURI, Status: CacheStatus{Schema: schemaStatus, Validation: "hit"}})
			continue
		}
		missKeys[f.Path] = key
		misses = append(misses, f)
	}

	if len(misses) == 0 {
		return checked, diags
	}

	baseURI, err := baseURIFor(group.SchemaURI)
	if err != nil {
		for _, f := range misses {
			diags = append(diags, diagnostic.NewSchemaCompile(f.Path, err.Error()))
		}
		return checked, diags
	}

	validator, compileErr := schema.Compile(schemaDoc, baseURI, validateFormats, fetcher)
	if compileErr != nil {
		if errors.Is(compileErr, schema.ErrGracefulDegradation) {
			for _, f := range misses {
				checked = append(checked, CheckedFile{Path: f.Path, Schema: group.SchemaURI, Status: CacheStatus{Schema: schemaStatus, Validation: "hit"}})
				_ = valCache.Store(missKeys[f.Path], nil)
			}
			return checked, diags
		}
		for _, f := range misses {
			diags = append(diags, diagnostic.NewSchemaCompile(f.Path, compileErr.Error()))
		}
		return checked, diags
	}

	for _, f := range misses {
		flatErrors, err := validator.Errors(f.Instance)
		if err != nil {
			diags = append(diags, diagnostic.NewValidation(f.Path, string(f.Content), diagnostic.Span{}, diagnostic.Span{}, "", "", err.Error(), group.SchemaURI, ""))
			checked = append(checked, CheckedFile{Path: f.Path, Schema: group.SchemaURI, Status: CacheStatus{Schema: schemaStatus, Validation: "miss"}})
			continue
		}

		cacheErrs := make([]validationcache.ValidationError, 0, len(flatErrors))
		for _, fe := range flatErrors {
			cacheErrs = append(cacheErrs, validationcache.ValidationError{
				InstancePath: fe.InstancePath,
				Message:      fe.Message,
				SchemaPath:   fe.SchemaPath,
			})
			span := spanForInstancePath(f.Content, fe.InstancePath)
			diags = append(diags, diagnostic.NewValidation(f.Path, string(f.Content), span, diagnostic.Span{}, fe.InstancePath, "", fe.Message, group.SchemaURI, fe.SchemaPath))
		}
		if err := valCache.Store(missKeys[f.Path], cacheErrs); err != nil {
			diags = append(diags, diagnostic.NewIO(f.Path, fmt.Sprintf("storing validation cache entry: %v", err)))
		}
		checked = append(checked, CheckedFile{Path: f.Path, Schema: group.SchemaURI, Status: CacheStatus{Schema: schemaStatus, Validation: "miss"}})
	}

	return checked, diags
}

func acquireSchema(
	ctx context.Context,
	uri string,
	fetcher Fetcher,
	prefetched map[string]prefetchResult,
	localSchemas map[string]any,
	localMu *sync.Mutex,
) (any, string, error) {
	if isRemoteURL(uri) {
		res, ok := prefetched[uri]
		if !ok || res.err != nil {
			errMsg := fmt.Sprintf("schema %s was not prefetched", uri)
			if ok {
				errMsg = res.err.Error()
			}
			return nil, "", errors.New(errMsg)
		}
		return res.doc, res.status.String(), nil
	}

	localMu.Lock()
	if doc, ok := localSchemas[uri]; ok {
		localMu.Unlock()
		return doc, "not-cached", nil
	}
	localMu.Unlock()

	doc, _, err := fetcher.Fetch(ctx, localFileURI(uri))
	if err != nil {
		return nil, "", fmt.Errorf("reading local schema %s: %w", uri, err)
	}

	localMu.Lock()
	localSchemas[uri] = doc
	localMu.Unlock()

	return doc, "not-cached", nil
}

// localFileURI normalizes a resolved local schema path into the file://
// form schemacache.Cache.Fetch recognizes for disk delegation.
func localFileURI(path string) string {
	if isRemoteURL(path) {
		return path
	}
	return "file://" + path
}

func baseURIFor(schemaURI string) (string, error) {
	if isRemoteURL(schemaURI) {
		return stripFragment(schemaURI), nil
	}
	return schema.LocalSchemaBaseURI(stripFilePrefix(schemaURI))
}

func stripFragment(uri string) string {
	for i, r := range uri {
		if r == '#' {
			return uri[:i]
		}
	}
	return uri
}

func validationDiagFromCache(f ParsedFile, schemaURI string, e validationcache.ValidationError) diagnostic.Diagnostic {
	span := spanForInstancePath(f.Content, e.InstancePath)
	return diagnostic.NewValidation(f.Path, string(f.Content), span, diagnostic.Span{}, e.InstancePath, "", e.Message, schemaURI, e.SchemaPath)
}

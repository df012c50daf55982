package pipeline

import (
	"context"

	"github.com/schemalint/schemalint/diagnostic"
	"github.com/schemalint/schemalint/validationcache"
)

// Result is the full output of one validation run: every checked file
// plus the deterministically sorted diagnostics.
type Result struct {
	Checked     []CheckedFile
	Diagnostics []diagnostic.Diagnostic
}

// Run executes both pipeline stages in sequence: group files by resolved
// schema URI, then validate each group, and sorts the combined
// diagnostics for deterministic output.
func (r *Resolver) Run(ctx context.Context, paths []string, concurrency int64, fetcher Fetcher, valCache *validationcache.Cache) Result {
	groups, groupDiags := r.GroupFiles(ctx, paths, concurrency)
	checked, validateDiags := Validate(ctx, groups, r.Config, fetcher, valCache)

	all := append(groupDiags, validateDiags...)
	diagnostic.SortDeterministic(all)

	return Result{Checked: checked, Diagnostics: all}
}

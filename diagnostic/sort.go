package diagnostic

import "sort"

// SortDeterministic orders diags by (path, offset) in place, matching the
// pipeline's requirement that diagnostics are sorted for deterministic
// output once every schema group has finished validating.
func SortDeterministic(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		return Less(diags[i], diags[j])
	})
}

// Package pathfinder discovers the data files a validation run should
// inspect: explicit glob arguments, or (absent any) a recursive walk of the
// current directory, filtered through the default ignore set and any
// user-supplied exclude patterns.
package pathfinder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/schemalint/schemalint/errors"
	"github.com/schemalint/schemalint/telemetry"
)

// defaultIgnoreDirs are always skipped during a recursive walk, in addition
// to whatever a .lintelignore file adds.
var defaultIgnoreDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
}

// FindQuery specifies what to discover.
type FindQuery struct {
	Root    string   `json:"root"`
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// PathResult is a single discovered file, relative and absolute forms.
type PathResult struct {
	RelativePath string `json:"relativePath"`
	SourcePath   string `json:"sourcePath"`
}

// Finder discovers files to validate.
type Finder struct {
	telemetrySystem *telemetry.System
}

// NewFinder creates a finder with telemetry enabled on a best-effort basis.
func NewFinder() *Finder {
	config := telemetry.DefaultConfig()
	config.Enabled = true
	telSys, _ := telemetry.NewSystem(config)
	return &Finder{telemetrySystem: telSys}
}

// FindFiles resolves a query into the set of files to validate.
//
// When query.Include is empty, it walks query.Root (or the current
// directory if empty) recursively. Each explicit Include entry naming a
// directory is expanded the same way; entries containing glob metacharacters
// are matched via doublestar.FilepathGlob.
func (f *Finder) FindFiles(ctx context.Context, query FindQuery) ([]PathResult, error) {
	return f.FindFilesWithEnvelope(ctx, query, "")
}

// FindFilesWithEnvelope is FindFiles with a correlation ID threaded through
// any structured error it returns.
func (f *Finder) FindFilesWithEnvelope(ctx context.Context, query FindQuery, correlationID string) ([]PathResult, error) {
	start := time.Now()
	status := "success"
	defer func() {
		if f.telemetrySystem != nil {
			_ = f.telemetrySystem.Histogram("pathfinder_find_ms", time.Since(start), map[string]string{
				"status": status,
			})
		}
	}()

	root := query.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		status = "error"
		envelope := errors.NewErrorEnvelope("PATHFINDER_ROOT_PATH_ERROR", fmt.Sprintf("failed to resolve root path %s", root))
		envelope = errors.SafeWithSeverity(envelope, errors.SeverityHigh)
		envelope = envelope.WithCorrelationID(correlationID)
		envelope = envelope.WithOriginal(err)
		return nil, envelope
	}

	ignoreMatcher, err := NewIgnoreMatcher(absRoot)
	if err != nil {
		status = "error"
		envelope := errors.NewErrorEnvelope("PATHFINDER_IGNORE_LOAD_ERROR", fmt.Sprintf("failed to load .lintelignore under %s", absRoot))
		envelope = errors.SafeWithSeverity(envelope, errors.SeverityLow)
		envelope = envelope.WithCorrelationID(correlationID)
		envelope = envelope.WithOriginal(err)
		return nil, envelope
	}

	var absPaths []string
	if len(query.Include) == 0 {
		absPaths, err = walkRecursive(absRoot, ignoreMatcher)
	} else {
		absPaths, err = expandIncludes(absRoot, query.Include, ignoreMatcher)
	}
	if err != nil {
		status = "error"
		envelope := errors.NewErrorEnvelope("PATHFINDER_DISCOVERY_ERROR", "failed to discover files")
		envelope = errors.SafeWithSeverity(envelope, errors.SeverityHigh)
		envelope = envelope.WithCorrelationID(correlationID)
		envelope = envelope.WithOriginal(err)
		return nil, envelope
	}

	results := make([]PathResult, 0, len(absPaths))
	for _, absPath := range absPaths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		relPath, err := filepath.Rel(absRoot, absPath)
		if err != nil {
			continue
		}
		relPath = filepath.ToSlash(relPath)

		if matchesAny(query.Exclude, relPath) {
			continue
		}

		results = append(results, PathResult{RelativePath: relPath, SourcePath: absPath})
	}

	if f.telemetrySystem != nil {
		_ = f.telemetrySystem.Counter("pathfinder_files_discovered", float64(len(results)), map[string]string{"root": absRoot})
	}

	return results, nil
}

// walkRecursive descends dir, collecting regular files not pruned by
// defaultIgnoreDirs or matcher. The .lintelignore file itself is skipped.
func walkRecursive(dir string, matcher *IgnoreMatcher) ([]string, error) {
	var out []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && defaultIgnoreDirs[info.Name()] {
				return filepath.SkipDir
			}
			rel, relErr := filepath.Rel(dir, path)
			if relErr == nil && matcher.IsIgnored(filepath.ToSlash(rel)+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Name() == ".lintelignore" {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr == nil && matcher.IsIgnored(filepath.ToSlash(rel)) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return out, nil
}

// expandIncludes resolves each include pattern: a bare directory is walked
// recursively, anything else is treated as a (possibly recursive-`**`) glob
// rooted at absRoot.
func expandIncludes(absRoot string, includes []string, matcher *IgnoreMatcher) ([]string, error) {
	seen := map[string]bool{}
	var out []string

	addPath := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, pattern := range includes {
		candidate := pattern
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(absRoot, candidate)
		}

		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			paths, err := walkRecursive(candidate, matcher)
			if err != nil {
				return nil, err
			}
			for _, p := range paths {
				addPath(p)
			}
			continue
		}

		globPattern := pattern
		if !filepath.IsAbs(globPattern) {
			globPattern = filepath.Join(absRoot, globPattern)
		}
		matches, err := doublestar.FilepathGlob(filepath.ToSlash(globPattern))
		if err != nil {
			return nil, fmt.Errorf("expanding pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			rel, relErr := filepath.Rel(absRoot, match)
			if relErr == nil && matcher.IsIgnored(filepath.ToSlash(rel)) {
				continue
			}
			addPath(match)
		}
	}
	return out, nil
}

func matchesAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, filepath.Base(relPath)); matched {
			return true
		}
		if strings.HasPrefix(relPath, strings.TrimSuffix(pattern, "/")+"/") {
			return true
		}
	}
	return false
}

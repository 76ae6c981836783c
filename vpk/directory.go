// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: original_source/src/lib/VPK.cpp (VPK::createFromDirectory, VPK::createFromDirectoryProcedural);
// github.com/woozymasta/pbo (compression.go, path-rule matcher usage)

package vpk

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/woozymasta/pathrules"
	"github.com/woozymasta/vpkpack/packfile"
)

// DirectoryRules decides, per file found under a content directory, how
// AddFromDirectoryWithRules stages it: an ordered rule list selects which
// paths are saved to the directory file instead of a numbered archive, and
// a second ordered rule list selects which paths get a preload window.
// This replaces the original's single per-path callback with the same
// ordered include/exclude matching its own teacher dependency already
// provides.
type DirectoryRules struct {
	// SaveToDirectory selects paths whose tail data is stored in the
	// directory file itself.
	SaveToDirectory        []pathrules.Rule
	SaveToDirectoryOptions pathrules.MatcherOptions

	// Preload selects paths that get a preload window of PreloadBytes
	// leading bytes (clamped per addEntryInternal's usual rules).
	Preload        []pathrules.Rule
	PreloadOptions pathrules.MatcherOptions
	PreloadBytes   uint32
}

// applyDefaults fills in the matcher defaults used across this codebase:
// case-insensitive matching with an exclude-by-default fallback.
func (r *DirectoryRules) applyDefaults() {
	if r.SaveToDirectoryOptions == (pathrules.MatcherOptions{}) {
		r.SaveToDirectoryOptions = pathrules.MatcherOptions{CaseInsensitive: true, DefaultAction: pathrules.ActionExclude}
	}
	if r.PreloadOptions == (pathrules.MatcherOptions{}) {
		r.PreloadOptions = pathrules.MatcherOptions{CaseInsensitive: true, DefaultAction: pathrules.ActionExclude}
	}
}

// AddFromDirectory stages every regular file under contentPath, each
// placed in the directory file or a numbered archive uniformly according
// to saveToDir. Equivalent to the original's createFromDirectory with a
// constant per-path decision.
func AddFromDirectory(v *VPK, contentPath string, saveToDir bool) error {
	return AddFromDirectoryWithRules(v, contentPath, DirectoryRules{
		SaveToDirectory: []pathrules.Rule{{Action: boolToAction(saveToDir), Pattern: "**"}},
	})
}

func boolToAction(b bool) pathrules.Action {
	if b {
		return pathrules.ActionInclude
	}
	return pathrules.ActionExclude
}

// AddFromDirectoryWithRules walks contentPath recursively, staging each
// regular file found as an entry whose virtual path is its path relative
// to contentPath, with vpk_saveToDirectory/vpk_preloadBytes decided by
// rules.
func AddFromDirectoryWithRules(v *VPK, contentPath string, rules DirectoryRules) error {
	rules.applyDefaults()

	var saveMatcher, preloadMatcher *pathrules.Matcher
	if len(rules.SaveToDirectory) > 0 {
		m, err := pathrules.NewMatcher(rules.SaveToDirectory, rules.SaveToDirectoryOptions)
		if err != nil {
			return fmt.Errorf("vpk: compile save-to-directory rules: %w", err)
		}
		saveMatcher = m
	}
	if len(rules.Preload) > 0 {
		m, err := pathrules.NewMatcher(rules.Preload, rules.PreloadOptions)
		if err != nil {
			return fmt.Errorf("vpk: compile preload rules: %w", err)
		}
		preloadMatcher = m
	}

	absContentPath, err := filepath.Abs(contentPath)
	if err != nil {
		return fmt.Errorf("vpk: resolve content path: %w", err)
	}

	return filepath.WalkDir(absContentPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(absContentPath, path)
		if err != nil {
			return nil
		}
		entryPath := packfile.NormalizeSlashes(rel)
		if entryPath == "" || strings.HasPrefix(entryPath, "../") {
			return nil
		}

		opts := packfile.EntryOptions{}
		if saveMatcher != nil {
			opts.VPKSaveToDirectory = saveMatcher.Included(entryPath, false)
		}
		if preloadMatcher != nil && preloadMatcher.Included(entryPath, false) {
			opts.VPKPreloadBytes = rules.PreloadBytes
		}

		return v.AddEntryFromFile(entryPath, path, opts)
	})
}

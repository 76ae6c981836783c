// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo (path.go); original_source/src/lib/PackFile.cpp (splitFilenameAndParentDir, normalizeSlashes)

package packfile

import "strings"

// NormalizeSlashes replaces '\' with '/'. It does not collapse repeated
// separators and preserves empty path components.
func NormalizeSlashes(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

// ToLowerASCII lower-cases ASCII letters only, leaving any other byte as-is.
func ToLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// SplitFilenameAndParentDir splits a normalized path into (parentDir, basename).
// If there is no '/', dir is "" and base is the whole path.
func SplitFilenameAndParentDir(p string) (dir, base string) {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i], p[i+1:]
	}
	return "", p
}

// NormalizeFilename applies the pack's casing policy, then normalizes
// slashes. This is the single normalization boundary every entry-identifying
// operation (addEntry, findEntry, removeEntry) must call consistently.
func NormalizeFilename(filename string, allowUppercase bool) string {
	filename = NormalizeSlashes(filename)
	if !allowUppercase {
		filename = ToLowerASCII(filename)
	}
	return filename
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo (doc.go)

// Package packfile is the generic pack-file abstraction shared by every
// concrete backend: an entry model, staging discipline (baked vs. unbaked
// entries), path normalization, and a dispatch-by-extension registry
// backends self-register into.
//
// Concrete backends (e.g. vpk) embed Base, implement the format-specific
// parts of the PackFile interface, and register a Factory for their
// extension from an init() function:
//
//	func init() {
//		packfile.Register(".vpk", func(path string, options packfile.Options, callback packfile.Callback) (packfile.PackFile, error) {
//			return Open(path, options, callback)
//		})
//	}
//
// Callers that don't need a specific backend can dispatch by extension
// through Open instead of importing the backend package directly.
package packfile

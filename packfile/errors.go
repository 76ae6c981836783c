// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo (errors.go)

package packfile

import "errors"

// Sentinel errors shared by every concrete pack-file backend. Use errors.Is
// in callers.
var (
	// ErrUnsupportedExtension means no backend is registered for the path's extension.
	ErrUnsupportedExtension = errors.New("packfile: no backend registered for extension")
	// ErrReadOnly means a mutation was attempted on a read-only pack file.
	ErrReadOnly = errors.New("packfile: pack file is read-only")
	// ErrEntryNotFound means the requested entry does not exist.
	ErrEntryNotFound = errors.New("packfile: entry not found")
	// ErrNilReader means a required reader handle was nil.
	ErrNilReader = errors.New("packfile: reader is nil")
)

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo (model.go, applyDefaults pattern); spec.md §6 Configuration

package packfile

// Options configures a pack file regardless of backend. A single struct is
// shared across every registered backend (mirroring the original's
// PackFileOptions, passed opaquely to every factory) rather than one
// options type per backend, since backend-specific fields are simply
// ignored by backends that don't use them.
type Options struct {
	// AllowUppercaseLettersInFilenames disables the default lower-casing of
	// entry paths on add/find/remove.
	AllowUppercaseLettersInFilenames bool

	// VPKVersion selects the VPK directory file version (1 or 2) written by
	// Header1.version. Defaults to 1 when zero.
	VPKVersion uint32

	// VPKPreferredChunkSize is the byte threshold, per numbered archive,
	// above which addEntry rolls over to the next archive index. Zero
	// disables rollover: every non-dir entry lands in the archive index
	// current when it is added (0 for a new VPK, one past the highest
	// existing archive for an opened one).
	VPKPreferredChunkSize uint32

	// VPKGenerateMD5Entries requests per-entry MD5 checksum records in the
	// VPK v2 archiveMD5Section at bake time. Ignored for v1.
	VPKGenerateMD5Entries bool
}

// EntryOptions configures one addEntry call regardless of backend.
type EntryOptions struct {
	// VPKSaveToDirectory stores the entry's tail bytes in the directory
	// file's data section (archive index 0x7FFF) instead of a numbered
	// archive.
	VPKSaveToDirectory bool

	// VPKPreloadBytes requests a preload window of up to this many leading
	// bytes, clamped to [0, min(len(buffer), vpk.MaxPreloadBytes)].
	VPKPreloadBytes uint32
}

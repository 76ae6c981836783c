// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: original_source/src/lib/VPK.cpp (Entry usage); spec.md §3 Data Model

package packfile

import "strings"

// Entry describes one virtual path inside a pack file. Fields prefixed
// VPK are only meaningful to the vpk backend; a generic packfile consumer
// should treat them as opaque backend metadata it can round-trip but need
// not interpret.
type Entry struct {
	// Path is the fully normalized virtual path ("materials/foo/bar.vmt").
	Path string

	// Length is the entry's uncompressed byte length.
	Length uint32
	// CRC32 is the CRC-32 of the entry's full byte content.
	CRC32 uint32
	// Offset is the byte offset of the entry's tail data within its
	// archive (after any preloaded bytes).
	Offset uint32

	// VPKArchiveIndex is 0x7FFF when the entry's tail lives in the
	// directory file itself, otherwise the numbered archive it lives in.
	VPKArchiveIndex uint16
	// VPKPreloadedData holds up to vpk.MaxPreloadBytes leading bytes stored
	// inline in the directory file's tree.
	VPKPreloadedData []byte

	// Unbaked is true while the entry's payload is staged but not yet
	// written by Bake.
	Unbaked bool
	// UnbakedUsingByteBuffer selects which of UnbakedFilePath /
	// UnbakedBuffer supplies the staged payload.
	UnbakedUsingByteBuffer bool
	// UnbakedFilePath is the source file to read from at bake time, when
	// UnbakedUsingByteBuffer is false.
	UnbakedFilePath string
	// UnbakedBuffer is the in-memory source payload, when
	// UnbakedUsingByteBuffer is true.
	UnbakedBuffer []byte
}

// Extension returns the entry's extension without the leading dot, or ""
// if the basename has none.
func (e *Entry) Extension() string {
	_, base := SplitFilenameAndParentDir(e.Path)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return base[i+1:]
	}
	return ""
}

// Stem returns the entry's basename without its extension.
func (e *Entry) Stem() string {
	_, base := SplitFilenameAndParentDir(e.Path)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// ParentDir returns the entry's directory, without a trailing slash, or ""
// for a root-level entry.
func (e *Entry) ParentDir() string {
	dir, _ := SplitFilenameAndParentDir(e.Path)
	return dir
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo (doc.go)

// Package vpk implements the VPK v1/v2 pack file format used by Source
// engine games: a directory file describing a tree of virtual paths, each
// entry's data stored either inline in the directory file or in a sibling
// numbered archive (name_000.vpk, name_001.vpk, ...).
//
// Opening a VPK parses its directory tree only; entry payloads are read
// lazily via ReadEntry. Mutations (AddEntryFromFile, AddEntryFromBuffer,
// RemoveEntry) stage changes in an unbaked set that only takes effect once
// Bake is called, which rewrites the directory file (and any numbered
// archives it grows) in one pass. The rewrite is done in place and is not
// atomic: if Bake returns an error, the directory file may be left
// partially written.
//
//	v, err := vpk.Open("hl2_textures_dir.vpk", packfile.Options{}, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	entry, ok := v.FindEntry("materials/metal/metalfloor001.vtf", false)
//	if ok {
//		data, err := v.ReadEntry(entry)
//		...
//	}
package vpk

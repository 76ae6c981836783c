// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: original_source/src/lib/VPK.cpp (VPK::addEntryInternal, VPK::createEmpty)

package vpk

import (
	"fmt"
	"hash/crc32"
	"os"

	"github.com/woozymasta/vpkpack/packfile"
)

// IsReadOnly always reports false: every parsed or created VPK accepts
// staged mutations.
func (v *VPK) IsReadOnly() bool { return false }

// UnbakedEntries returns the staged entries map keyed by parent directory.
func (v *VPK) UnbakedEntries() map[string][]packfile.Entry {
	return v.Base.UnbakedEntries
}

// AddEntryFromFile stages filename's content, read from pathToFile at bake
// time, for the next Bake call.
func (v *VPK) AddEntryFromFile(filename, pathToFile string, opts packfile.EntryOptions) error {
	buffer, err := os.ReadFile(pathToFile)
	if err != nil {
		return fmt.Errorf("vpk: read source file: %w", err)
	}
	entry := v.addEntryInternal(filename, buffer, opts, false)
	entry.UnbakedFilePath = pathToFile
	return nil
}

// AddEntryFromBuffer stages filename's content from an in-memory buffer
// for the next Bake call.
func (v *VPK) AddEntryFromBuffer(filename string, buffer []byte, opts packfile.EntryOptions) error {
	v.addEntryInternal(filename, buffer, opts, true)
	return nil
}

// addEntryInternal normalizes filename, computes its CRC-32 and staged
// length, clamps and strips any requested preload window from buffer, and
// assigns an archive index (accounting for chunk rollover), before
// appending the staged entry. Returns a pointer into the staged slice so
// callers can patch the unbaked source fields in place.
func (v *VPK) addEntryInternal(filename string, buffer []byte, opts packfile.EntryOptions, usingByteBuffer bool) *packfile.Entry {
	filename = packfile.NormalizeFilename(filename, v.Opts.AllowUppercaseLettersInFilenames)
	dir, _ := packfile.SplitFilenameAndParentDir(filename)

	entry := packfile.Entry{
		Path:                   filename,
		CRC32:                  crc32.ChecksumIEEE(buffer),
		Length:                 uint32(len(buffer)),
		Unbaked:                true,
		UnbakedUsingByteBuffer: usingByteBuffer,
	}
	if usingByteBuffer {
		entry.UnbakedBuffer = buffer
	}

	if opts.VPKSaveToDirectory {
		entry.VPKArchiveIndex = dirArchiveIndex
	} else {
		entry.VPKArchiveIndex = uint16(v.numArchives)
	}

	if opts.VPKPreloadBytes > 0 {
		limit := uint32(len(buffer))
		if limit > MaxPreloadBytes {
			limit = MaxPreloadBytes
		}
		clamped := opts.VPKPreloadBytes
		if clamped > limit {
			clamped = limit
		}
		entry.VPKPreloadedData = append([]byte(nil), buffer[:clamped]...)
		buffer = buffer[clamped:]
		if usingByteBuffer {
			entry.UnbakedBuffer = buffer
		}
	}

	if !opts.VPKSaveToDirectory {
		entry.Offset = v.currentlyFilledChunkSize
		v.currentlyFilledChunkSize += uint32(len(buffer))
		if v.Opts.VPKPreferredChunkSize > 0 && v.currentlyFilledChunkSize > v.Opts.VPKPreferredChunkSize {
			v.currentlyFilledChunkSize = 0
			v.numArchives++
		}
	}

	if v.UnbakedEntries()[dir] == nil {
		v.Base.UnbakedEntries[dir] = []packfile.Entry{}
	}
	v.Base.UnbakedEntries[dir] = append(v.Base.UnbakedEntries[dir], entry)
	return &v.Base.UnbakedEntries[dir][len(v.Base.UnbakedEntries[dir])-1]
}

// CreateEmpty writes a new, empty directory VPK at path: a header (plus a
// v2 header2 if requested) followed by a single tree-terminator byte, then
// reopens it.
func CreateEmpty(path string, options packfile.Options) (*VPK, error) {
	if options.VPKVersion == 0 {
		options.VPKVersion = 1
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("vpk: create: %w", err)
	}

	h1 := header1{signature: signatureID, version: options.VPKVersion, treeSize: 1}
	if _, err := f.Write(h1.marshal()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("vpk: write header1: %w", err)
	}
	if options.VPKVersion != 1 {
		h2 := header2{}
		if _, err := f.Write(h2.marshal()); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("vpk: write header2: %w", err)
		}
	}
	if _, err := f.Write([]byte{0}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("vpk: write tree terminator: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("vpk: close: %w", err)
	}

	return Open(path, options, nil)
}

// VerifyEntryChecksums returns the paths of every baked entry whose
// content no longer matches its stored CRC-32.
func (v *VPK) VerifyEntryChecksums() []string {
	var bad []string
	for _, list := range v.Entries {
		for _, entry := range list {
			data, err := v.ReadEntry(entry)
			if err != nil {
				bad = append(bad, entry.Path)
				continue
			}
			if crc32.ChecksumIEEE(data) != entry.CRC32 {
				bad = append(bad, entry.Path)
			}
		}
	}
	return bad
}

// VerifyFileChecksum reports whether this VPK's stored whole-file MD5
// (v2 only) matches the file's current content. v1 VPKs have no whole-file
// checksum and always report true.
func (v *VPK) VerifyFileChecksum() bool {
	if v.header1.version != 2 {
		return true
	}
	sum, err := computeWholeFileChecksum(v)
	if err != nil {
		return false
	}
	return sum == v.footer2.wholeFileChecksum
}

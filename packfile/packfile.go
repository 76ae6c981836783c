// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: original_source/src/lib/PackFile.cpp, include/vpkedit/PackFile.h

package packfile

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
)

// PackFile is the contract every concrete backend satisfies. A value
// returned by Open or a backend's own constructor implements this plus
// whatever backend-specific methods its concrete type exposes (type-assert
// to the concrete type, e.g. *vpk.VPK, to reach those).
type PackFile interface {
	// FilePath returns the path the pack file was opened from or will be
	// baked to.
	FilePath() string
	// Options returns the options the pack file was opened or created with.
	Options() Options

	// FindEntry looks up an entry by path, optionally including staged
	// (unbaked) entries.
	FindEntry(filename string, includeUnbaked bool) (Entry, bool)
	// ReadEntry returns an entry's full byte content.
	ReadEntry(entry Entry) ([]byte, error)
	// ReadEntryText returns an entry's content truncated at the first NUL
	// byte, interpreted as text.
	ReadEntryText(entry Entry) (string, bool)

	// AddEntryFromFile stages filename's content, read from pathToFile at
	// bake time, for the next Bake call. A no-op on a read-only pack file.
	AddEntryFromFile(filename, pathToFile string, opts EntryOptions) error
	// AddEntryFromBuffer stages filename's content from an in-memory
	// buffer for the next Bake call. A no-op on a read-only pack file.
	AddEntryFromBuffer(filename string, buffer []byte, opts EntryOptions) error
	// RemoveEntry removes a staged or baked entry. Reports whether an
	// entry was found and removed.
	RemoveEntry(filename string) bool

	// BakedEntries returns the entries map keyed by parent directory.
	BakedEntries() map[string][]Entry
	// UnbakedEntries returns the staged entries map keyed by parent
	// directory.
	UnbakedEntries() map[string][]Entry
	// EntryCount returns the number of baked entries, optionally including
	// staged ones.
	EntryCount(includeUnbaked bool) int

	// VerifyEntryChecksums returns the paths of every baked entry whose
	// stored CRC-32 does not match its content.
	VerifyEntryChecksums() []string
	// VerifyFileChecksum reports whether the backing file(s) match any
	// whole-file checksum the format stores.
	VerifyFileChecksum() bool

	// IsReadOnly reports whether mutation methods are no-ops.
	IsReadOnly() bool
	// Bake commits every staged entry to the backing file(s), writing to
	// outputDir if non-empty or the pack file's current directory
	// otherwise.
	Bake(ctx context.Context, outputDir string, callback Callback) error
}

// Base holds the staging state and bookkeeping shared by every backend.
// Concrete backends embed Base and implement the format-specific methods
// (AddEntryFromFile, AddEntryFromBuffer, ReadEntry, Bake, ...) themselves.
type Base struct {
	FullFilePath string
	Opts         Options

	Entries        map[string][]Entry
	UnbakedEntries map[string][]Entry
}

// NewBase initializes a Base ready for staging.
func NewBase(fullFilePath string, opts Options) Base {
	return Base{
		FullFilePath:   fullFilePath,
		Opts:           opts,
		Entries:        map[string][]Entry{},
		UnbakedEntries: map[string][]Entry{},
	}
}

func (b *Base) FilePath() string { return b.FullFilePath }

func (b *Base) Options() Options { return b.Opts }

func (b *Base) Filename() string {
	return filepath.Base(b.FullFilePath)
}

func (b *Base) Filestem() string {
	name := b.Filename()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// normalize applies this pack file's casing policy and slash normalization,
// the single boundary every entry-identifying operation must pass through.
func (b *Base) normalize(filename string) string {
	return NormalizeFilename(filename, b.Opts.AllowUppercaseLettersInFilenames)
}

// FindEntry looks up filename, consulting Entries first and only falling
// back to UnbakedEntries when includeUnbaked is set.
func (b *Base) FindEntry(filename string, includeUnbaked bool) (Entry, bool) {
	filename = b.normalize(filename)
	dir, _ := SplitFilenameAndParentDir(filename)

	for _, e := range b.Entries[dir] {
		if e.Path == filename {
			return e, true
		}
	}
	if includeUnbaked {
		for _, e := range b.UnbakedEntries[dir] {
			if e.Path == filename {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// RemoveEntry checks UnbakedEntries before Entries, matching the original's
// removeEntry precedence: a staged add/replace is discarded before falling
// through to a baked entry of the same path.
func (b *Base) RemoveEntry(filename string) bool {
	filename = b.normalize(filename)
	dir, _ := SplitFilenameAndParentDir(filename)

	if list, ok := b.UnbakedEntries[dir]; ok {
		for i, e := range list {
			if e.Path == filename {
				b.UnbakedEntries[dir] = append(list[:i], list[i+1:]...)
				return true
			}
		}
	}
	if list, ok := b.Entries[dir]; ok {
		for i, e := range list {
			if e.Path == filename {
				b.Entries[dir] = append(list[:i], list[i+1:]...)
				return true
			}
		}
	}
	return false
}

func (b *Base) BakedEntries() map[string][]Entry { return b.Entries }

func (b *Base) UnbakedEntriesMap() map[string][]Entry { return b.UnbakedEntries }

// EntryCount returns the number of baked entries, optionally including
// staged ones.
func (b *Base) EntryCount(includeUnbaked bool) int {
	count := 0
	for _, list := range b.Entries {
		count += len(list)
	}
	if includeUnbaked {
		for _, list := range b.UnbakedEntries {
			count += len(list)
		}
	}
	return count
}

// ReadEntryText truncates content at the first NUL byte, matching the
// original's byte-wise readEntryText.
func ReadEntryText(content []byte) string {
	if i := bytes.IndexByte(content, 0); i >= 0 {
		return string(content[:i])
	}
	return string(content)
}

// MergeUnbakedEntries promotes every staged entry into Entries, clearing
// the staged payload fields and the Unbaked flag, and empties
// UnbakedEntries. Concrete backends call this at the end of a successful
// Bake, after writing every staged entry's payload out.
func (b *Base) MergeUnbakedEntries() {
	for dir, list := range b.UnbakedEntries {
		for _, e := range list {
			e.Unbaked = false
			e.UnbakedUsingByteBuffer = false
			e.UnbakedFilePath = ""
			e.UnbakedBuffer = nil
			b.Entries[dir] = append(b.Entries[dir], e)
		}
	}
	b.UnbakedEntries = map[string][]Entry{}
}

// BakeOutputDir resolves the directory Bake should write to: outputDir
// itself if non-empty (slash-normalized), otherwise the pack file's own
// current directory.
func (b *Base) BakeOutputDir(outputDir string) string {
	if outputDir != "" {
		return NormalizeSlashes(outputDir)
	}
	dir := filepath.Dir(b.FullFilePath)
	if dir == "" {
		return "."
	}
	return dir
}

// SetFullFilePath rebases the pack file onto a new directory, keeping its
// filename. Call after a successful Bake to a different outputDir.
func (b *Base) SetFullFilePath(outputDir string) {
	b.FullFilePath = outputDir + "/" + b.Filename()
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: original_source/src/lib/VPK.cpp (VPK::bake)

package vpk

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/woozymasta/vpkpack/packfile"
)

// extGroup holds, for one extension, the directories (and their entries)
// that carry it — the shape Bake's tree write walks.
type extGroup struct {
	ext  string
	dirs []dirGroup
}

type dirGroup struct {
	dir     string
	entries []*packfile.Entry
}

// Bake commits every staged entry, rewriting the directory file (and
// growing any numbered archives it needs) in one pass: baked entries
// whose tail lives in the directory file are read back out first (since
// the directory file is about to be truncated and rewritten), then the
// tree is walked grouped by extension then directory, writing staged
// entries' payloads as it goes, and finally, for v2, MD5 section and
// footer checksums are computed and appended.
func (v *VPK) Bake(ctx context.Context, outputDir string, callback packfile.Callback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	outDir := v.BakeOutputDir(outputDir)
	outputPath := outDir + "/" + v.Filename()

	groups := v.groupEntriesByExtension()

	dirEntryData, err := v.extractDirStoredPayloads()
	if err != nil {
		return err
	}

	// copyNumberedArchives no-ops any archive whose source and destination
	// paths already coincide, so it's safe to call unconditionally whether
	// or not outputDir differs from the VPK's current directory.
	if err := v.copyNumberedArchives(outDir); err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("vpk: create output: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(v.header1.marshal()); err != nil {
		return fmt.Errorf("vpk: write header1 placeholder: %w", err)
	}
	if v.header1.version == 2 {
		if _, err := f.Write(v.header2.marshal()); err != nil {
			return fmt.Errorf("vpk: write header2 placeholder: %w", err)
		}
	}

	if err := v.writeTree(f, groups, &dirEntryData, outputPath, callback); err != nil {
		return err
	}

	if len(dirEntryData) > 0 {
		if _, err := f.Write(dirEntryData); err != nil {
			return fmt.Errorf("vpk: write directory-stored payloads: %w", err)
		}
	}

	v.MergeUnbakedEntries()

	treeEnd, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("vpk: tell: %w", err)
	}
	v.header1.treeSize = uint32(treeEnd) - uint32(len(dirEntryData)) - v.headerLength()

	// Rebase onto the output location before computing the v2 MD5 section:
	// bakeV2Tail re-reads each entry via ReadEntry, which resolves
	// directory-stored and numbered-archive tails relative to
	// v.FullFilePath/truncatedFilepath(). Entries materialized into a new
	// numbered archive during writeTree only exist at the output location,
	// so FullFilePath must already point there before those reads happen.
	v.SetFullFilePath(outDir)

	if v.header1.version != 1 {
		if err := v.bakeV2Tail(f, dirEntryData); err != nil {
			return err
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("vpk: seek header: %w", err)
	}
	if _, err := f.Write(v.header1.marshal()); err != nil {
		return fmt.Errorf("vpk: rewrite header1: %w", err)
	}
	if v.header1.version == 2 {
		if _, err := f.Write(v.header2.marshal()); err != nil {
			return fmt.Errorf("vpk: rewrite header2: %w", err)
		}
	}

	return nil
}

// groupEntriesByExtension buckets every baked and staged entry by
// extension then directory, matching the original's temp map; an empty
// extension becomes " " per the format's sentinel.
func (v *VPK) groupEntriesByExtension() []extGroup {
	byExt := map[string]map[string][]*packfile.Entry{}
	order := []string{}

	add := func(m map[string][]packfile.Entry) {
		dirs := make([]string, 0, len(m))
		for d := range m {
			dirs = append(dirs, d)
		}
		sort.Strings(dirs)
		for _, dir := range dirs {
			list := m[dir]
			for i := range list {
				e := &list[i]
				ext := e.Extension()
				if ext == "" {
					ext = " "
				}
				if _, ok := byExt[ext]; !ok {
					byExt[ext] = map[string][]*packfile.Entry{}
					order = append(order, ext)
				}
				byExt[ext][dir] = append(byExt[ext][dir], e)
			}
		}
	}

	add(v.Entries)
	add(v.UnbakedEntries())

	sort.Strings(order)
	groups := make([]extGroup, 0, len(order))
	for _, ext := range order {
		dirMap := byExt[ext]
		dirNames := make([]string, 0, len(dirMap))
		for d := range dirMap {
			dirNames = append(dirNames, d)
		}
		sort.Strings(dirNames)
		dg := make([]dirGroup, 0, len(dirNames))
		for _, d := range dirNames {
			dg = append(dg, dirGroup{dir: d, entries: dirMap[d]})
		}
		groups = append(groups, extGroup{ext: ext, dirs: dg})
	}
	return groups
}

// extractDirStoredPayloads reads back every baked, already-written entry
// whose tail lives in the directory file, since that file is about to be
// truncated by the rewrite. Returns the concatenated tail bytes and
// rewrites each such entry's Offset into that buffer.
func (v *VPK) extractDirStoredPayloads() ([]byte, error) {
	var data []byte
	for dir, list := range v.Entries {
		for i := range list {
			e := &list[i]
			if e.Unbaked || e.VPKArchiveIndex != dirArchiveIndex || e.Length == uint32(len(e.VPKPreloadedData)) {
				continue
			}
			bin, err := v.ReadEntry(*e)
			if err != nil {
				continue
			}
			tail := bin[len(e.VPKPreloadedData):]
			e.Offset = uint32(len(data))
			data = append(data, tail...)
		}
		v.Entries[dir] = list
	}
	return data, nil
}

// copyNumberedArchives copies every existing numbered archive sibling of
// this VPK to the new output directory, when baking to a different
// directory than the one the VPK currently lives in.
func (v *VPK) copyNumberedArchives(outDir string) error {
	from := v.truncatedFilepath()
	to := outDir + "/" + v.truncatedFilestem()

	for i := 0; i < v.numArchives; i++ {
		src := archiveFilename(from, i)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		dst := archiveFilename(to, i)
		if src == dst {
			continue
		}
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("vpk: copy archive %s: %w", src, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, in)
	return err
}

// writeTree walks groups writing the extension/directory/entry-name loop.
// Staged entries have their payload written here: into the directory
// buffer, a numbered archive, or (if their whole content fit in the
// preload window) nowhere at all.
func (v *VPK) writeTree(f *os.File, groups []extGroup, dirEntryData *[]byte, outputPath string, callback packfile.Callback) error {
	for _, group := range groups {
		if _, err := f.WriteString(group.ext); err != nil {
			return fmt.Errorf("vpk: write extension: %w", err)
		}
		if _, err := f.Write([]byte{0}); err != nil {
			return err
		}

		for _, dg := range group.dirs {
			name := dg.dir
			if name == "" {
				name = " "
			}
			if _, err := f.WriteString(name); err != nil {
				return fmt.Errorf("vpk: write directory: %w", err)
			}
			if _, err := f.Write([]byte{0}); err != nil {
				return err
			}

			for _, entry := range dg.entries {
				if entry.Unbaked {
					if err := v.materializeUnbakedPayload(entry, dirEntryData, outputPath); err != nil {
						return err
					}
				}

				if err := writeTreeRecord(f, entry); err != nil {
					return err
				}

				if callback != nil {
					callback(dg.dir, *entry)
				}
			}

			if _, err := f.Write([]byte{0}); err != nil {
				return err
			}
		}

		if _, err := f.Write([]byte{0}); err != nil {
			return err
		}
	}
	if _, err := f.Write([]byte{0}); err != nil {
		return err
	}
	return nil
}

// materializeUnbakedPayload resolves a staged entry's source bytes and
// writes its tail to wherever it now belongs, updating Offset and, if the
// whole entry fit in the preload window, VPKArchiveIndex.
func (v *VPK) materializeUnbakedPayload(entry *packfile.Entry, dirEntryData *[]byte, outputPath string) error {
	var tail []byte
	if entry.UnbakedUsingByteBuffer {
		tail = entry.UnbakedBuffer
	} else {
		data, err := readFileTail(entry.UnbakedFilePath, len(entry.VPKPreloadedData))
		if err != nil {
			return err
		}
		tail = data
	}

	switch {
	case entry.Length == uint32(len(entry.VPKPreloadedData)):
		entry.VPKArchiveIndex = dirArchiveIndex
		entry.Offset = uint32(len(*dirEntryData))
	case entry.VPKArchiveIndex != dirArchiveIndex:
		archivePath := archiveFilename(removeVPKAndOrDirSuffix(outputPath), int(entry.VPKArchiveIndex))
		info, statErr := os.Stat(archivePath)
		offset := int64(0)
		if statErr == nil {
			offset = info.Size()
		}
		entry.Offset = uint32(offset)

		af, err := os.OpenFile(archivePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("vpk: open archive for append: %w", err)
		}
		_, writeErr := af.Write(tail)
		closeErr := af.Close()
		if writeErr != nil {
			return fmt.Errorf("vpk: write archive: %w", writeErr)
		}
		if closeErr != nil {
			return fmt.Errorf("vpk: close archive: %w", closeErr)
		}
	default:
		entry.Offset = uint32(len(*dirEntryData))
		*dirEntryData = append(*dirEntryData, tail...)
	}
	return nil
}

func writeTreeRecord(f *os.File, entry *packfile.Entry) error {
	if _, err := f.WriteString(entry.Stem()); err != nil {
		return fmt.Errorf("vpk: write entry name: %w", err)
	}
	if _, err := f.Write([]byte{0}); err != nil {
		return err
	}

	tailLen := entry.Length - uint32(len(entry.VPKPreloadedData))
	var fixed [16]byte
	binary.LittleEndian.PutUint32(fixed[0:4], entry.CRC32)
	binary.LittleEndian.PutUint16(fixed[4:6], uint16(len(entry.VPKPreloadedData)))
	binary.LittleEndian.PutUint16(fixed[6:8], entry.VPKArchiveIndex)
	binary.LittleEndian.PutUint32(fixed[8:12], entry.Offset)
	binary.LittleEndian.PutUint32(fixed[12:16], tailLen)
	if _, err := f.Write(fixed[:]); err != nil {
		return fmt.Errorf("vpk: write entry fields: %w", err)
	}

	var term [2]byte
	binary.LittleEndian.PutUint16(term[:], entryTerminator)
	if _, err := f.Write(term[:]); err != nil {
		return err
	}

	if len(entry.VPKPreloadedData) > 0 {
		if _, err := f.Write(entry.VPKPreloadedData); err != nil {
			return fmt.Errorf("vpk: write preload: %w", err)
		}
	}
	return nil
}

// bakeV2Tail computes and appends the v2-only archive MD5 section and
// footer checksums, then recomputes Header2 to describe them.
func (v *VPK) bakeV2Tail(f *os.File, dirEntryData []byte) error {
	v.md5Entries = nil
	if v.Opts.VPKGenerateMD5Entries {
		for _, list := range v.Entries {
			for _, entry := range list {
				bin, err := v.ReadEntry(entry)
				if err != nil {
					continue
				}
				sum := md5.Sum(bin)
				v.md5Entries = append(v.md5Entries, md5Entry{
					archiveIndex: uint32(entry.VPKArchiveIndex),
					length:       entry.Length - uint32(len(entry.VPKPreloadedData)),
					offset:       entry.Offset,
					checksum:     sum,
				})
			}
		}
	}

	v.header2.fileDataSectionSize = uint32(len(dirEntryData))
	v.header2.archiveMD5SectionSize = uint32(len(v.md5Entries)) * md5EntrySize
	v.header2.otherMD5SectionSize = footer2FixedSize
	v.header2.signatureSectionSize = 0

	wholeFile := md5.New()
	wholeFile.Write(v.header1.marshal())
	wholeFile.Write(v.header2.marshal())

	if _, err := f.Seek(int64(header1Size+header2Size), io.SeekStart); err != nil {
		return fmt.Errorf("vpk: seek tree: %w", err)
	}
	treeData := make([]byte, v.header1.treeSize)
	if _, err := io.ReadFull(f, treeData); err != nil {
		return fmt.Errorf("vpk: reread tree: %w", err)
	}
	wholeFile.Write(treeData)
	v.footer2.treeChecksum = md5.Sum(treeData)

	if len(dirEntryData) > 0 {
		wholeFile.Write(dirEntryData)
	}

	md5EntriesBuf := make([]byte, 0, len(v.md5Entries)*md5EntrySize)
	for i := range v.md5Entries {
		md5EntriesBuf = append(md5EntriesBuf, v.md5Entries[i].marshal()...)
	}
	wholeFile.Write(md5EntriesBuf)
	v.footer2.md5EntriesChecksum = md5.Sum(md5EntriesBuf)

	var sum [16]byte
	copy(sum[:], wholeFile.Sum(nil))
	v.footer2.wholeFileChecksum = sum

	v.footer2.publicKey = nil
	v.footer2.signature = nil

	tailOffset := int64(header1Size) + int64(header2Size) + int64(v.header1.treeSize) + int64(len(dirEntryData))
	if _, err := f.Seek(tailOffset, io.SeekStart); err != nil {
		return fmt.Errorf("vpk: seek md5 section: %w", err)
	}
	if _, err := f.Write(md5EntriesBuf); err != nil {
		return fmt.Errorf("vpk: write md5 entries: %w", err)
	}
	if _, err := f.Write(v.footer2.treeChecksum[:]); err != nil {
		return err
	}
	if _, err := f.Write(v.footer2.md5EntriesChecksum[:]); err != nil {
		return err
	}
	if _, err := f.Write(v.footer2.wholeFileChecksum[:]); err != nil {
		return err
	}
	return nil
}


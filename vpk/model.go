// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: original_source/include/vpkedit/VPK.h, original_source/src/lib/VPK.cpp

package vpk

import (
	"encoding/binary"
	"fmt"

	"github.com/woozymasta/vpkpack/packfile"
)

const (
	// signatureID is the magic number at the start of every VPK directory file.
	signatureID uint32 = 0x55aa1234
	// dirArchiveIndex marks an entry whose tail data lives in the directory
	// file itself rather than a numbered archive.
	dirArchiveIndex uint16 = 0x7fff
	// entryTerminator follows every tree entry record.
	entryTerminator uint16 = 0xffff
	// dirSuffix is the conventional directory-file stem suffix.
	dirSuffix = "_dir"
	// extension is the file extension this backend registers for.
	extension = ".vpk"

	// MaxPreloadBytes bounds how many leading bytes of an entry may be
	// stored inline in the tree as preloaded data.
	MaxPreloadBytes uint32 = 1024

	header1Size = 12 // signature, version, treeSize: 3 x uint32
	header2Size = 16 // fileDataSectionSize, archiveMD5SectionSize, otherMD5SectionSize, signatureSectionSize
	footer2FixedSize = 48 // treeChecksum + md5EntriesChecksum + wholeFileChecksum, 16 bytes each
	md5EntrySize = 28 // archiveIndex, offset, length (uint32 x3) + 16-byte checksum
)

// header1 is present in every VPK version.
type header1 struct {
	signature uint32
	version   uint32
	treeSize  uint32
}

func (h *header1) marshal() []byte {
	buf := make([]byte, header1Size)
	binary.LittleEndian.PutUint32(buf[0:4], h.signature)
	binary.LittleEndian.PutUint32(buf[4:8], h.version)
	binary.LittleEndian.PutUint32(buf[8:12], h.treeSize)
	return buf
}

func (h *header1) unmarshal(buf []byte) {
	h.signature = binary.LittleEndian.Uint32(buf[0:4])
	h.version = binary.LittleEndian.Uint32(buf[4:8])
	h.treeSize = binary.LittleEndian.Uint32(buf[8:12])
}

// header2 is only present in VPK v2.
type header2 struct {
	fileDataSectionSize   uint32
	archiveMD5SectionSize uint32
	otherMD5SectionSize   uint32
	signatureSectionSize  uint32
}

func (h *header2) marshal() []byte {
	buf := make([]byte, header2Size)
	binary.LittleEndian.PutUint32(buf[0:4], h.fileDataSectionSize)
	binary.LittleEndian.PutUint32(buf[4:8], h.archiveMD5SectionSize)
	binary.LittleEndian.PutUint32(buf[8:12], h.otherMD5SectionSize)
	binary.LittleEndian.PutUint32(buf[12:16], h.signatureSectionSize)
	return buf
}

func (h *header2) unmarshal(buf []byte) {
	h.fileDataSectionSize = binary.LittleEndian.Uint32(buf[0:4])
	h.archiveMD5SectionSize = binary.LittleEndian.Uint32(buf[4:8])
	h.otherMD5SectionSize = binary.LittleEndian.Uint32(buf[8:12])
	h.signatureSectionSize = binary.LittleEndian.Uint32(buf[12:16])
}

// footer2 trails the directory file in VPK v2: three fixed 16-byte
// checksums, then an optional, variably-sized signature block this
// package never recomputes (no private key available).
type footer2 struct {
	treeChecksum      [16]byte
	md5EntriesChecksum [16]byte
	wholeFileChecksum [16]byte
	publicKey         []byte
	signature         []byte
}

// md5Entry is one record of the VPK v2 archive MD5 section: a per-entry
// checksum over the entry's full content (preloaded bytes plus tail),
// independent of the tree's own entry.crc32 field. length records the
// tail length only.
type md5Entry struct {
	archiveIndex uint32
	offset       uint32
	length       uint32
	checksum     [16]byte
}

func (m *md5Entry) marshal() []byte {
	buf := make([]byte, md5EntrySize)
	binary.LittleEndian.PutUint32(buf[0:4], m.archiveIndex)
	binary.LittleEndian.PutUint32(buf[4:8], m.offset)
	binary.LittleEndian.PutUint32(buf[8:12], m.length)
	copy(buf[12:28], m.checksum[:])
	return buf
}

func (m *md5Entry) unmarshal(buf []byte) {
	m.archiveIndex = binary.LittleEndian.Uint32(buf[0:4])
	m.offset = binary.LittleEndian.Uint32(buf[4:8])
	m.length = binary.LittleEndian.Uint32(buf[8:12])
	copy(m.checksum[:], buf[12:28])
}

// VPK is a parsed or in-progress VPK v1/v2 directory file.
type VPK struct {
	packfile.Base

	header1 header1
	header2 header2
	footer2 footer2
	md5Entries []md5Entry

	// numArchives tracks the archive count seen so far (parse) or being
	// filled (staging); addEntryInternal assigns new non-dir entries to
	// numArchives before possibly incrementing it on rollover.
	numArchives int
	// currentlyFilledChunkSize accumulates tail bytes written to the
	// current numbered archive since the last rollover.
	currentlyFilledChunkSize uint32

	// Callback is the hook passed to Open, invoked once per entry during
	// its tree parse. Bake does not use it; it invokes the callback passed
	// to Bake instead. Progress only; never a cancellation point.
	Callback packfile.Callback
}

func init() {
	packfile.Register(extension, func(path string, options packfile.Options, callback packfile.Callback) (packfile.PackFile, error) {
		return Open(path, options, callback)
	})
}

// Version returns 1 or 2.
func (v *VPK) Version() uint32 {
	return v.header1.version
}

// SetVersion changes the VPK's version, clearing the v2-only header,
// footer and MD5 entries it no longer carries meaning for. Valid values
// are 1 and 2; a no-op if version already matches.
func (v *VPK) SetVersion(version uint32) {
	if version == v.header1.version {
		return
	}
	v.header1.version = version
	v.Opts.VPKVersion = version
	v.header2 = header2{}
	v.footer2 = footer2{}
	v.md5Entries = nil
}

// headerLength returns the byte size of the fixed header block(s)
// preceding the tree: Header1 alone for v1, Header1+Header2 for v2.
func (v *VPK) headerLength() uint32 {
	if v.header1.version < 2 {
		return header1Size
	}
	return header1Size + header2Size
}

// truncatedFilestem strips a trailing "_dir" suffix from the file stem,
// used to derive numbered-archive sibling names.
func (v *VPK) truncatedFilestem() string {
	stem := v.Filestem()
	if len(stem) >= len(dirSuffix) && stem[len(stem)-len(dirSuffix):] == dirSuffix {
		stem = stem[:len(stem)-len(dirSuffix)]
	}
	return stem
}

// truncatedFilepath is truncatedFilestem joined back to the VPK's directory.
func (v *VPK) truncatedFilepath() string {
	dir, _ := packfile.SplitFilenameAndParentDir(packfile.NormalizeSlashes(v.FullFilePath))
	if dir == "" {
		return v.truncatedFilestem()
	}
	return dir + "/" + v.truncatedFilestem()
}

func padArchiveIndex(n int) string {
	return fmt.Sprintf("%03d", n)
}

func archiveFilename(base string, archiveIndex int) string {
	return base + "_" + padArchiveIndex(archiveIndex) + extension
}

// removeVPKAndOrDirSuffix strips a trailing ".vpk" and then a trailing
// "_dir" suffix, matching the original's lenient handling of paths passed
// with either suffix already present.
func removeVPKAndOrDirSuffix(path string) string {
	if len(path) >= len(extension) && path[len(path)-len(extension):] == extension {
		path = path[:len(path)-len(extension)]
	}
	if len(path) >= len(dirSuffix) && path[len(path)-len(dirSuffix):] == dirSuffix {
		path = path[:len(path)-len(dirSuffix)]
	}
	return path
}

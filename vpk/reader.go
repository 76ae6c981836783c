// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: original_source/src/lib/VPK.cpp (VPK::open, VPK::openInternal, VPK::readEntry)

package vpk

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/vpkpack/packfile"
)

// Open parses a VPK directory file at path. If path looks like a numbered
// archive (its stem ends in "_NNN", three decimal digits) and
// opening it directly fails, Open retries against the sibling "_dir" file,
// matching the original's convenience fallback for users who pass a
// numbered archive path by mistake.
func Open(path string, options packfile.Options, callback packfile.Callback) (*VPK, error) {
	v, err := openInternal(path, options, callback)
	if err == nil {
		return v, nil
	}
	if len(path) > 8 {
		ext := extOf(path)
		stem := path[:len(path)-len(ext)]
		if len(stem) > 4 {
			suffix := stem[len(stem)-4:]
			numbered := suffix[0] == '_'
			for _, c := range suffix[1:] {
				numbered = numbered && c >= '0' && c <= '9'
			}
			dirPath := stem[:len(stem)-4] + dirSuffix + ext
			if numbered && dirPath != path {
				if _, statErr := os.Stat(dirPath); statErr == nil {
					return openInternal(dirPath, options, callback)
				}
			}
		}
	}
	return nil, err
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' {
			break
		}
	}
	return ""
}

func openInternal(path string, options packfile.Options, callback packfile.Callback) (*VPK, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vpk: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	v := &VPK{Base: packfile.NewBase(path, options)}
	v.Callback = callback
	// -1 so that a tree with no existing archives leaves numArchives at 0
	// after the unconditional increment below, matching the reference
	// implementation's default-member initialization.
	v.numArchives = -1

	br := bufio.NewReaderSize(f, 64*1024)

	var h1buf [header1Size]byte
	if _, err := io.ReadFull(br, h1buf[:]); err != nil {
		return nil, fmt.Errorf("vpk: read header1: %w", err)
	}
	v.header1.unmarshal(h1buf[:])
	if v.header1.signature != signatureID {
		return nil, ErrNotVPK
	}
	v.Opts.VPKVersion = v.header1.version

	switch v.header1.version {
	case 1:
		// no header2
	case 2:
		var h2buf [header2Size]byte
		if _, err := io.ReadFull(br, h2buf[:]); err != nil {
			return nil, fmt.Errorf("vpk: read header2: %w", err)
		}
		v.header2.unmarshal(h2buf[:])
	default:
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, v.header1.version)
	}

	if err := v.parseTree(br); err != nil {
		return nil, err
	}

	// -1 incremented to 0 when no archives were seen.
	v.numArchives++

	if v.header1.version != 2 {
		return v, nil
	}

	if err := v.parseV2Tail(br); err != nil {
		return nil, err
	}
	return v, nil
}

// parseTree reads the triple-nested extension -> directory -> entry-name
// loop, each level terminated by an empty NUL-terminated string. A single
// space means an empty extension or directory, per the format's sentinel
// for "none".
func (v *VPK) parseTree(br *bufio.Reader) error {
	v.Entries = map[string][]packfile.Entry{}

	for {
		ext, err := readNulString(br)
		if err != nil {
			return fmt.Errorf("vpk: read extension: %w", err)
		}
		if ext == "" {
			break
		}

		for {
			dir, err := readNulString(br)
			if err != nil {
				return fmt.Errorf("vpk: read directory: %w", err)
			}
			if dir == "" {
				break
			}

			fullDir := dir
			if dir == " " {
				fullDir = ""
			}
			if _, ok := v.Entries[fullDir]; !ok {
				v.Entries[fullDir] = nil
			}

			for {
				name, err := readNulString(br)
				if err != nil {
					return fmt.Errorf("vpk: read entry name: %w", err)
				}
				if name == "" {
					break
				}

				entry := packfile.Entry{}
				if ext == " " {
					entry.Path = joinPath(fullDir, name)
				} else {
					entry.Path = joinPath(fullDir, name+"."+ext)
				}

				var fields [12]byte
				if _, err := io.ReadFull(br, fields[:]); err != nil {
					return fmt.Errorf("vpk: read entry fields: %w", err)
				}
				entry.CRC32 = binary.LittleEndian.Uint32(fields[0:4])
				preloadSize := binary.LittleEndian.Uint16(fields[4:6])
				entry.VPKArchiveIndex = binary.LittleEndian.Uint16(fields[6:8])
				entry.Offset = binary.LittleEndian.Uint32(fields[8:12])

				var lenTermBuf [6]byte
				if _, err := io.ReadFull(br, lenTermBuf[:]); err != nil {
					return fmt.Errorf("vpk: read entry length: %w", err)
				}
				entry.Length = binary.LittleEndian.Uint32(lenTermBuf[0:4])
				terminator := binary.LittleEndian.Uint16(lenTermBuf[4:6])
				if terminator != entryTerminator {
					return ErrInvalidTerminator
				}

				if preloadSize > 0 {
					preload := make([]byte, preloadSize)
					if _, err := io.ReadFull(br, preload); err != nil {
						return fmt.Errorf("vpk: read preload: %w", err)
					}
					entry.VPKPreloadedData = preload
					entry.Length += uint32(preloadSize)
				}

				v.Entries[fullDir] = append(v.Entries[fullDir], entry)

				if entry.VPKArchiveIndex != dirArchiveIndex && int(entry.VPKArchiveIndex) > v.numArchives {
					v.numArchives = int(entry.VPKArchiveIndex)
				}

				if v.Callback != nil {
					v.Callback(fullDir, entry)
				}
			}
		}
	}
	return nil
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

func readNulString(br *bufio.Reader) (string, error) {
	b, err := br.ReadBytes(0)
	if err != nil {
		return "", err
	}
	return string(b[:len(b)-1]), nil
}

// parseV2Tail reads the VPK v2 file-data section (skipped), archive MD5
// section, fixed 48-byte footer checksums, and optional signature section.
func (v *VPK) parseV2Tail(br *bufio.Reader) error {
	if v.header2.fileDataSectionSize > 0 {
		if _, err := io.CopyN(io.Discard, br, int64(v.header2.fileDataSectionSize)); err != nil {
			return fmt.Errorf("vpk: skip file data section: %w", err)
		}
	}

	if v.header2.archiveMD5SectionSize%md5EntrySize != 0 {
		return ErrInvalidMD5Section
	}
	count := v.header2.archiveMD5SectionSize / md5EntrySize
	v.md5Entries = make([]md5Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		var buf [md5EntrySize]byte
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return fmt.Errorf("vpk: read md5 entry: %w", err)
		}
		var e md5Entry
		e.unmarshal(buf[:])
		v.md5Entries = append(v.md5Entries, e)
	}

	if v.header2.otherMD5SectionSize != footer2FixedSize {
		// This should always be 48; tolerate anything else by stopping here.
		return nil
	}

	var fixed [footer2FixedSize]byte
	if _, err := io.ReadFull(br, fixed[:]); err != nil {
		return fmt.Errorf("vpk: read footer checksums: %w", err)
	}
	copy(v.footer2.treeChecksum[:], fixed[0:16])
	copy(v.footer2.md5EntriesChecksum[:], fixed[16:32])
	copy(v.footer2.wholeFileChecksum[:], fixed[32:48])

	if v.header2.signatureSectionSize == 0 {
		return nil
	}

	var sizeBuf [4]byte
	if _, err := io.ReadFull(br, sizeBuf[:]); err != nil {
		return fmt.Errorf("vpk: read public key size: %w", err)
	}
	publicKeySize := binary.LittleEndian.Uint32(sizeBuf[:])
	if v.header2.signatureSectionSize == 20 && publicKeySize == signatureID {
		// CS2 beta VPK; its signature section isn't the public-key/signature
		// pair this format otherwise uses. Stop parsing here, same as the
		// reference implementation.
		return nil
	}

	publicKey := make([]byte, publicKeySize)
	if _, err := io.ReadFull(br, publicKey); err != nil {
		return fmt.Errorf("vpk: read public key: %w", err)
	}
	v.footer2.publicKey = publicKey

	var sigSizeBuf [4]byte
	if _, err := io.ReadFull(br, sigSizeBuf[:]); err != nil {
		return fmt.Errorf("vpk: read signature size: %w", err)
	}
	signature := make([]byte, binary.LittleEndian.Uint32(sigSizeBuf[:]))
	if _, err := io.ReadFull(br, signature); err != nil {
		return fmt.Errorf("vpk: read signature: %w", err)
	}
	v.footer2.signature = signature

	return nil
}

// ReadEntry returns entry's full byte content: any preloaded bytes
// followed by its tail, read from wherever the tail currently lives
// (a staged source, a numbered archive, or this directory file).
func (v *VPK) ReadEntry(entry packfile.Entry) ([]byte, error) {
	out := make([]byte, entry.Length)
	copy(out, entry.VPKPreloadedData)

	if entry.Length == uint32(len(entry.VPKPreloadedData)) {
		return out, nil
	}

	if entry.Unbaked {
		for _, list := range v.UnbakedEntries() {
			for _, staged := range list {
				if staged.Path != entry.Path {
					continue
				}
				var tail []byte
				var err error
				if staged.UnbakedUsingByteBuffer {
					tail = staged.UnbakedBuffer
				} else {
					tail, err = readFileTail(staged.UnbakedFilePath, len(staged.VPKPreloadedData))
					if err != nil {
						return nil, err
					}
				}
				copy(out[len(entry.VPKPreloadedData):], tail)
				return out, nil
			}
		}
		return nil, packfile.ErrEntryNotFound
	}

	if entry.VPKArchiveIndex != dirArchiveIndex {
		path := archiveFilename(v.truncatedFilepath(), int(entry.VPKArchiveIndex))
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, path)
		}
		defer func() { _ = f.Close() }()

		tailLen := entry.Length - uint32(len(entry.VPKPreloadedData))
		tail := make([]byte, tailLen)
		if _, err := f.ReadAt(tail, int64(entry.Offset)); err != nil {
			return nil, fmt.Errorf("vpk: read archive entry: %w", err)
		}
		copy(out[len(entry.VPKPreloadedData):], tail)
		return out, nil
	}

	f, err := os.Open(v.FullFilePath)
	if err != nil {
		return nil, fmt.Errorf("vpk: open directory file: %w", err)
	}
	defer func() { _ = f.Close() }()

	tailLen := entry.Length - uint32(len(entry.VPKPreloadedData))
	tail := make([]byte, tailLen)
	dirOffset := int64(v.headerLength()) + int64(v.header1.treeSize) + int64(entry.Offset)
	if _, err := f.ReadAt(tail, dirOffset); err != nil {
		return nil, fmt.Errorf("vpk: read directory-stored entry: %w", err)
	}
	copy(out[len(entry.VPKPreloadedData):], tail)
	return out, nil
}

// ReadEntryText returns entry's content truncated at the first NUL byte.
func (v *VPK) ReadEntryText(entry packfile.Entry) (string, bool) {
	data, err := v.ReadEntry(entry)
	if err != nil {
		return "", false
	}
	return packfile.ReadEntryText(data), true
}

func readFileTail(path string, skip int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vpk: read source file: %w", err)
	}
	if skip >= len(data) {
		return nil, nil
	}
	return data[skip:], nil
}

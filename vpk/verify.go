// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: original_source/src/lib/VPK.cpp (whole-file checksum composition in VPK::bake)

package vpk

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
)

// computeWholeFileChecksum recomputes the v2 whole-file MD5 from the VPK's
// current on-disk bytes, in the same header1+header2+tree+fileData+md5Entries
// order Bake uses when it first writes that checksum.
func computeWholeFileChecksum(v *VPK) ([16]byte, error) {
	var zero [16]byte

	f, err := os.Open(v.FullFilePath)
	if err != nil {
		return zero, fmt.Errorf("vpk: open for checksum: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := md5.New()
	h.Write(v.header1.marshal())
	h.Write(v.header2.marshal())

	if _, err := f.Seek(int64(v.headerLength()), io.SeekStart); err != nil {
		return zero, fmt.Errorf("vpk: seek tree for checksum: %w", err)
	}
	treeData := make([]byte, v.header1.treeSize)
	if _, err := io.ReadFull(f, treeData); err != nil {
		return zero, fmt.Errorf("vpk: read tree for checksum: %w", err)
	}
	h.Write(treeData)

	if v.header2.fileDataSectionSize > 0 {
		fileData := make([]byte, v.header2.fileDataSectionSize)
		if _, err := io.ReadFull(f, fileData); err != nil {
			return zero, fmt.Errorf("vpk: read file data for checksum: %w", err)
		}
		h.Write(fileData)
	}

	md5Buf := make([]byte, 0, len(v.md5Entries)*md5EntrySize)
	for i := range v.md5Entries {
		md5Buf = append(md5Buf, v.md5Entries[i].marshal()...)
	}
	h.Write(md5Buf)

	var out [16]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

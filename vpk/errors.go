// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo (errors.go)

package vpk

import "errors"

var (
	// ErrNotVPK means the file's signature does not match the VPK magic.
	ErrNotVPK = errors.New("vpk: not a VPK file")
	// ErrUnsupportedVersion means the directory file's version is neither
	// 1 nor 2 (e.g. a Respawn-family Apex Legends/Titanfall variant).
	ErrUnsupportedVersion = errors.New("vpk: unsupported version")
	// ErrInvalidTerminator means a tree entry record's terminator field
	// was not 0xffff.
	ErrInvalidTerminator = errors.New("vpk: invalid entry terminator")
	// ErrInvalidMD5Section means the v2 archive MD5 section size is not a
	// multiple of the MD5 entry record size.
	ErrInvalidMD5Section = errors.New("vpk: malformed archive MD5 section")
	// ErrArchiveNotFound means an entry's numbered archive file is missing.
	ErrArchiveNotFound = errors.New("vpk: archive file not found")
)

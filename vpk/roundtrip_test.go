// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo (editor_test.go round-trip style)

package vpk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/vpkpack/packfile"
)

func TestCreateEmptyAndBakeRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "test_dir.vpk")

	v, err := CreateEmpty(path, packfile.Options{VPKVersion: 1})
	if err != nil {
		t.Fatalf("CreateEmpty: %v", err)
	}

	if err := v.AddEntryFromBuffer("materials/metal/floor.vtf", []byte("texture-bytes"), packfile.EntryOptions{}); err != nil {
		t.Fatalf("AddEntryFromBuffer: %v", err)
	}
	if err := v.AddEntryFromBuffer("scripts/main.txt", []byte("script content"), packfile.EntryOptions{}); err != nil {
		t.Fatalf("AddEntryFromBuffer: %v", err)
	}
	if err := v.AddEntryFromBuffer("root.txt", []byte("root level"), packfile.EntryOptions{}); err != nil {
		t.Fatalf("AddEntryFromBuffer root: %v", err)
	}

	if err := v.Bake(context.Background(), "", nil); err != nil {
		t.Fatalf("Bake: %v", err)
	}

	reopened, err := Open(path, packfile.Options{}, nil)
	if err != nil {
		t.Fatalf("Open after bake: %v", err)
	}

	entry, ok := reopened.FindEntry("materials/metal/floor.vtf", false)
	if !ok {
		t.Fatal("expected baked entry to be found after reopen")
	}
	data, err := reopened.ReadEntry(entry)
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if string(data) != "texture-bytes" {
		t.Fatalf("ReadEntry = %q, want %q", data, "texture-bytes")
	}

	rootEntry, ok := reopened.FindEntry("root.txt", false)
	if !ok {
		t.Fatal("expected root-level entry to be found")
	}
	rootData, err := reopened.ReadEntry(rootEntry)
	if err != nil {
		t.Fatalf("ReadEntry root: %v", err)
	}
	if string(rootData) != "root level" {
		t.Fatalf("ReadEntry root = %q", rootData)
	}

	if reopened.EntryCount(false) != 3 {
		t.Fatalf("EntryCount = %d, want 3", reopened.EntryCount(false))
	}

	if bad := reopened.VerifyEntryChecksums(); len(bad) != 0 {
		t.Fatalf("VerifyEntryChecksums found bad entries: %v", bad)
	}
}

func TestAddEntryPreloadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "preload_dir.vpk")

	v, err := CreateEmpty(path, packfile.Options{VPKVersion: 1})
	if err != nil {
		t.Fatalf("CreateEmpty: %v", err)
	}

	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = byte(i)
	}

	if err := v.AddEntryFromBuffer("big.bin", payload, packfile.EntryOptions{VPKPreloadBytes: 40}); err != nil {
		t.Fatalf("AddEntryFromBuffer: %v", err)
	}

	if err := v.Bake(context.Background(), "", nil); err != nil {
		t.Fatalf("Bake: %v", err)
	}

	reopened, err := Open(path, packfile.Options{}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	entry, ok := reopened.FindEntry("big.bin", false)
	if !ok {
		t.Fatal("expected entry to be found")
	}
	if len(entry.VPKPreloadedData) != 40 {
		t.Fatalf("preloaded data length = %d, want 40", len(entry.VPKPreloadedData))
	}

	data, err := reopened.ReadEntry(entry)
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatal("round-tripped payload does not match original")
	}
}

func TestMultiArchiveChunking(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "chunked_dir.vpk")

	v, err := CreateEmpty(path, packfile.Options{VPKVersion: 1, VPKPreferredChunkSize: 10})
	if err != nil {
		t.Fatalf("CreateEmpty: %v", err)
	}

	for i := 0; i < 5; i++ {
		name := filepath.ToSlash(filepath.Join("chunk", string(rune('a'+i))+".bin"))
		if err := v.AddEntryFromBuffer(name, make([]byte, 8), packfile.EntryOptions{}); err != nil {
			t.Fatalf("AddEntryFromBuffer: %v", err)
		}
	}

	if v.numArchives < 2 {
		t.Fatalf("expected rollover to more than one archive, got numArchives=%d", v.numArchives)
	}

	if err := v.Bake(context.Background(), "", nil); err != nil {
		t.Fatalf("Bake: %v", err)
	}

	for i := 0; i < v.numArchives; i++ {
		archivePath := archiveFilename(v.truncatedFilepath(), i)
		if _, statErr := os.Stat(archivePath); statErr != nil {
			t.Errorf("expected archive %s to exist: %v", archivePath, statErr)
		}
	}
}

func TestVersion2RoundTripWithMD5(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "v2_dir.vpk")

	v, err := CreateEmpty(path, packfile.Options{VPKVersion: 2, VPKGenerateMD5Entries: true})
	if err != nil {
		t.Fatalf("CreateEmpty: %v", err)
	}
	if err := v.AddEntryFromBuffer("a.txt", []byte("hello world"), packfile.EntryOptions{}); err != nil {
		t.Fatalf("AddEntryFromBuffer: %v", err)
	}
	if err := v.Bake(context.Background(), "", nil); err != nil {
		t.Fatalf("Bake: %v", err)
	}

	reopened, err := Open(path, packfile.Options{}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reopened.Version() != 2 {
		t.Fatalf("Version() = %d, want 2", reopened.Version())
	}
	if len(reopened.md5Entries) != 1 {
		t.Fatalf("expected 1 md5 entry, got %d", len(reopened.md5Entries))
	}
	if !reopened.VerifyFileChecksum() {
		t.Fatal("VerifyFileChecksum should pass for a freshly baked v2 file")
	}
}

func TestRemoveEntryNoOpOnUnknownPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rm_dir.vpk")

	v, err := CreateEmpty(path, packfile.Options{VPKVersion: 1})
	if err != nil {
		t.Fatalf("CreateEmpty: %v", err)
	}
	if v.RemoveEntry("nothing/here.txt") {
		t.Fatal("RemoveEntry should report false for a path that was never added")
	}
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo (editor_test.go style)

package packfile

import "testing"

func TestBaseFindAndRemoveEntry(t *testing.T) {
	t.Parallel()

	b := NewBase("archive.vpk", Options{})
	b.Entries["materials"] = []Entry{{Path: "materials/foo.vtf"}}
	b.UnbakedEntries["materials"] = []Entry{{Path: "materials/bar.vtf", Unbaked: true}}

	if _, ok := b.FindEntry("materials/foo.vtf", false); !ok {
		t.Fatal("expected baked entry to be found")
	}
	if _, ok := b.FindEntry("materials/bar.vtf", false); ok {
		t.Fatal("unbaked entry should not be found when includeUnbaked is false")
	}
	if _, ok := b.FindEntry("materials/bar.vtf", true); !ok {
		t.Fatal("unbaked entry should be found when includeUnbaked is true")
	}
	if _, ok := b.FindEntry("MATERIALS/FOO.VTF", false); !ok {
		t.Fatal("lookup should lower-case by default")
	}

	if !b.RemoveEntry("materials/bar.vtf") {
		t.Fatal("RemoveEntry should remove staged entry")
	}
	if _, ok := b.FindEntry("materials/bar.vtf", true); ok {
		t.Fatal("removed staged entry should no longer be found")
	}
	if !b.RemoveEntry("materials/foo.vtf") {
		t.Fatal("RemoveEntry should remove baked entry")
	}
	if b.RemoveEntry("materials/foo.vtf") {
		t.Fatal("RemoveEntry should report false for an already-removed entry")
	}
}

func TestBaseMergeUnbakedEntries(t *testing.T) {
	t.Parallel()

	b := NewBase("archive.vpk", Options{})
	b.UnbakedEntries["models"] = []Entry{{
		Path:                   "models/foo.mdl",
		Unbaked:                true,
		UnbakedUsingByteBuffer: true,
		UnbakedBuffer:          []byte("data"),
	}}

	b.MergeUnbakedEntries()

	if len(b.UnbakedEntries) != 0 {
		t.Fatal("UnbakedEntries should be empty after merge")
	}
	entries := b.Entries["models"]
	if len(entries) != 1 {
		t.Fatalf("expected 1 merged entry, got %d", len(entries))
	}
	if entries[0].Unbaked || entries[0].UnbakedBuffer != nil {
		t.Fatal("merged entry should have its staged fields cleared")
	}
}

func TestBaseEntryCount(t *testing.T) {
	t.Parallel()

	b := NewBase("archive.vpk", Options{})
	b.Entries["a"] = []Entry{{Path: "a/1"}, {Path: "a/2"}}
	b.UnbakedEntries["b"] = []Entry{{Path: "b/1"}}

	if got := b.EntryCount(false); got != 2 {
		t.Errorf("EntryCount(false) = %d, want 2", got)
	}
	if got := b.EntryCount(true); got != 3 {
		t.Errorf("EntryCount(true) = %d, want 3", got)
	}
}

func TestRegistryOpenDispatch(t *testing.T) {
	called := false
	Register(".testfmt", func(path string, options Options, callback Callback) (PackFile, error) {
		called = true
		return nil, nil
	})

	if !IsSupportedFileType(".testfmt") {
		t.Fatal("expected .testfmt to be registered")
	}
	if !IsSupportedFileType("testfmt") {
		t.Fatal("IsSupportedFileType should tolerate a missing leading dot")
	}

	if _, err := Open("archive.testfmt", Options{}, nil); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !called {
		t.Fatal("expected registered factory to be invoked")
	}

	if _, err := Open("archive.unknownfmt", Options{}, nil); err == nil {
		t.Fatal("expected ErrUnsupportedExtension for an unregistered extension")
	}
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/pbo (path_test.go style)

package packfile

import "testing"

func TestNormalizeSlashes(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`materials\metal\foo.vtf`: "materials/metal/foo.vtf",
		"materials/metal/foo.vtf": "materials/metal/foo.vtf",
		`mixed\slash/path`:        "mixed/slash/path",
		"":                        "",
	}
	for in, want := range cases {
		if got := NormalizeSlashes(in); got != want {
			t.Errorf("NormalizeSlashes(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToLowerASCII(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Materials/FOO.VTF": "materials/foo.vtf",
		"already/lower.txt": "already/lower.txt",
		"":                  "",
	}
	for in, want := range cases {
		if got := ToLowerASCII(in); got != want {
			t.Errorf("ToLowerASCII(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitFilenameAndParentDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		wantDir string
		wantBase string
	}{
		{"materials/metal/foo.vtf", "materials/metal", "foo.vtf"},
		{"foo.vtf", "", "foo.vtf"},
		{"a/b/c/d.txt", "a/b/c", "d.txt"},
	}
	for _, tt := range tests {
		dir, base := SplitFilenameAndParentDir(tt.path)
		if dir != tt.wantDir || base != tt.wantBase {
			t.Errorf("SplitFilenameAndParentDir(%q) = (%q, %q), want (%q, %q)", tt.path, dir, base, tt.wantDir, tt.wantBase)
		}
	}
}

func TestNormalizeFilename(t *testing.T) {
	t.Parallel()

	if got := NormalizeFilename(`Materials\Foo.VTF`, false); got != "materials/foo.vtf" {
		t.Errorf("NormalizeFilename lower-cased = %q", got)
	}
	if got := NormalizeFilename(`Materials\Foo.VTF`, true); got != "Materials/Foo.VTF" {
		t.Errorf("NormalizeFilename uppercase-allowed = %q", got)
	}
}

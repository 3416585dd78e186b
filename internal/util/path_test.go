// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"path/filepath"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple filename", input: "logo.png", want: "logo.png"},
		{name: "filename with spaces", input: "my drawing.dwg", want: "my drawing.dwg"},
		{name: "path traversal attempt", input: "../../../etc/passwd", want: "passwd"},
		{name: "path with directory", input: "uploads/logos/photo.png", want: "photo.png"},
		{name: "absolute path", input: "/var/www/uploads/file.pdf", want: "file.pdf"},
		{name: "single dot", input: ".", wantErr: true},
		{name: "double dot", input: "..", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "double extension", input: "part.tar.gz", want: "part.tar.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("SanitizeFilename() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("SanitizeFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSafeJoinPath(t *testing.T) {
	base := t.TempDir()

	tests := []struct {
		name       string
		components []string
		wantErr    bool
	}{
		{name: "single component", components: []string{"logo.png"}},
		{name: "nested components", components: []string{"gallery", "img.jpg"}},
		{name: "traversal escapes base", components: []string{"..", "outside.txt"}, wantErr: true},
		{name: "deep traversal", components: []string{"gallery", "..", "..", "etc", "passwd"}, wantErr: true},
		{name: "dot component stays inside", components: []string{".", "file.pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeJoinPath(base, tt.components...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SafeJoinPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				want := filepath.Join(append([]string{base}, tt.components...)...)
				if got != filepath.Clean(want) {
					t.Errorf("SafeJoinPath() = %q, want %q", got, filepath.Clean(want))
				}
			}
		})
	}
}

func TestContainsPathTraversal(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"logos/a.png", false},
		{"../secret", true},
		{"gallery/../../etc/passwd", true},
		{"gallery/./a.jpg", false},
		{"..", true},
	}

	for _, tt := range tests {
		if got := ContainsPathTraversal(tt.path); got != tt.want {
			t.Errorf("ContainsPathTraversal(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

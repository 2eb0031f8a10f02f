package fileserver

import (
	"errors"
	"testing"

	"github.com/Maxence-Van-Laere/deepfake-detection/internal/storage"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"/", IndexPath},
		{"", IndexPath},
		{"/?v=3", IndexPath},
		{"/index.html", "/index.html"},
		{"/app.js?cache=1&x=2", "/app.js"},
		{"/my%20photo.png", "/my photo.png"},
		{"/img/./a.png", "/img/a.png"},
		{"/img/../a.png", "/a.png"},
		{"//img//a.png", "/img/a.png"},
		{"/sub/", "/sub"},
		{"//", "/"},
		{"/caf%C3%A9.txt", "/café.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Resolve(tt.raw)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.raw, err)
			}
			if got.Path != tt.want {
				t.Errorf("Resolve(%q).Path = %q, want %q", tt.raw, got.Path, tt.want)
			}
		})
	}
}

func TestResolveKeepsRawPath(t *testing.T) {
	got, err := Resolve("/a%20b.txt?q=1")
	if err != nil {
		t.Fatal(err)
	}
	if got.RawPath != "/a%20b.txt" {
		t.Errorf("expected raw path without query, got %q", got.RawPath)
	}
}

func TestResolveRejectsEscape(t *testing.T) {
	for _, raw := range []string{
		"/../secret",
		"/%2e%2e/secret",
		"/a/../../secret",
		"/..",
		"/%2E%2E%2Fetc%2Fpasswd",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := Resolve(raw)
			if !errors.Is(err, storage.ErrOutsideRoot) {
				t.Errorf("Resolve(%q) = %v, want ErrOutsideRoot", raw, err)
			}
		})
	}
}

func TestResolveMalformedEscape(t *testing.T) {
	_, err := Resolve("/bad%zz.png")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if errors.Is(err, storage.ErrOutsideRoot) {
		t.Errorf("decode error must not be classified as not found: %v", err)
	}
}

func TestResolveDirectorySuffix(t *testing.T) {
	tests := []struct {
		raw  string
		path string
		dir  bool
	}{
		{"/", IndexPath, false},
		{"/a.txt", "/a.txt", false},
		{"/a.txt/", "/a.txt", true},
		{"/a.txt/.", "/a.txt", true},
		{"/a.txt%2F", "/a.txt", true},
		{"/a.txt/?x=1", "/a.txt", true},
		{"/sub/a.txt/..", "/sub", false},
		{"/a.txt/./b", "/a.txt/b", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Resolve(tt.raw)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.raw, err)
			}
			if got.Path != tt.path || got.Dir != tt.dir {
				t.Errorf("Resolve(%q) = {Path: %q, Dir: %v}, want {Path: %q, Dir: %v}",
					tt.raw, got.Path, got.Dir, tt.path, tt.dir)
			}
		})
	}
}

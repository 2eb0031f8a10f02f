// Package mimetype maps file extensions to the content types the dev
// server declares.
package mimetype

import (
	"path/filepath"
	"strings"
)

// Fallback is declared for extensions missing from a Table.
const Fallback = "application/octet-stream"

// Table maps a lowercase extension, including the leading dot, to a MIME type.
type Table map[string]string

var defaults = Table{
	".html": "text/html",
	".js":   "application/javascript",
	".css":  "text/css",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".svg":  "image/svg+xml",
	".json": "application/json",
	".txt":  "text/plain",

	// Preview bundle and media samples
	".wasm": "application/wasm",
	".gif":  "image/gif",
	".webp": "image/webp",
	".ico":  "image/x-icon",
	".mp4":  "video/mp4",
	".webm": "video/webm",
}

// Default returns a copy of the built-in table.
func Default() Table {
	t := make(Table, len(defaults))
	for ext, typ := range defaults {
		t[ext] = typ
	}
	return t
}

// Lookup returns the content type for name, matching its extension
// case-insensitively.
func (t Table) Lookup(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if typ, ok := t[ext]; ok {
		return typ
	}
	return Fallback
}

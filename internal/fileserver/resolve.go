package fileserver

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/Maxence-Van-Laere/deepfake-detection/internal/storage"
)

// IndexPath is served for the bare root.
const IndexPath = "/index.html"

// Target is a request path resolved to a storage name.
type Target struct {
	// RawPath is the escaped path as received, without the query.
	RawPath string
	// Path is the decoded, cleaned, rooted slash path handed to storage.
	Path string
	// Dir is set when the request names a directory ("/a.txt/" or
	// "/a.txt/."). Cleaning drops that suffix from Path; no file matches it.
	Dir bool
}

// Resolve decodes a raw request target into a Target. A malformed
// escape is an error; so is a path that climbs above the root, which
// wraps storage.ErrOutsideRoot.
func Resolve(rawTarget string) (Target, error) {
	raw := rawTarget
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return Target{RawPath: raw}, fmt.Errorf("decode %q: %w", raw, err)
	}
	if decoded == "" || decoded == "/" {
		return Target{RawPath: raw, Path: IndexPath}, nil
	}

	dir := strings.HasSuffix(decoded, "/") || strings.HasSuffix(decoded, "/.")
	cleaned := path.Clean(strings.TrimLeft(decoded, "/"))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return Target{RawPath: raw}, fmt.Errorf("%q: %w", decoded, storage.ErrOutsideRoot)
	}
	if cleaned == "." {
		cleaned = ""
	}
	return Target{RawPath: raw, Path: "/" + cleaned, Dir: dir}, nil
}

// requestTarget returns the undecoded path of r. RequestURI is used as
// sent by the client; requests built in-process fall back to the URL.
func requestTarget(r *http.Request) string {
	if strings.HasPrefix(r.RequestURI, "/") {
		return r.RequestURI
	}
	return r.URL.EscapedPath()
}

package fileserver

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/Maxence-Van-Laere/deepfake-detection/internal/storage"
)

// ErrNotFound marks a request that does not resolve to a regular file.
var ErrNotFound = errors.New("not found")

// Response bodies.
const (
	notFoundBody = "404 - Not Found"
	internalBody = "Server error"
)

// statusFor maps an error raised while handling a request to the
// status code sent back. Anything unclassified is internal.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, storage.ErrNotRegular),
		errors.Is(err, storage.ErrOutsideRoot):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writePlain(w http.ResponseWriter, code int) {
	body := internalBody
	if code == http.StatusNotFound {
		body = notFoundBody
	}
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	w.Write([]byte(body))
}

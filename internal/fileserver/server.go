// Package fileserver serves a directory tree over plain HTTP GET.
//
// Every request path is percent-decoded, "/" is treated as
// "/index.html", and the result is looked up under the root. Regular
// files are streamed with a content type from a mimetype.Table; anything
// else is a plain-text 404, and unexpected failures become a plain-text
// 500 without taking the listener down.
package fileserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Maxence-Van-Laere/deepfake-detection/internal/logging"
	"github.com/Maxence-Van-Laere/deepfake-detection/internal/metrics"
	"github.com/Maxence-Van-Laere/deepfake-detection/internal/mimetype"
	"github.com/Maxence-Van-Laere/deepfake-detection/internal/storage"
)

// Config holds everything a Server needs. There are no package globals,
// so several servers can run side by side.
type Config struct {
	Root    string         // directory to serve; ignored when Storage is set
	Port    int            // 0 picks a free port
	Types   mimetype.Table // nil means mimetype.Default()
	Storage storage.Storage
}

// Server is the static file server.
type Server struct {
	storage    storage.Storage
	types      mimetype.Table
	port       int
	httpServer *http.Server
}

// New creates a Server from cfg.
func New(cfg Config) (*Server, error) {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port %d out of range", cfg.Port)
	}

	store := cfg.Storage
	if store == nil {
		local, err := storage.NewLocalStorage(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		store = local
	}

	types := cfg.Types
	if types == nil {
		types = mimetype.Default()
	}

	s := &Server{
		storage: store,
		types:   types,
		port:    cfg.Port,
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Handler returns the server wrapped with logging, metrics and panic
// recovery.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s
	h = recoverMiddleware(h)
	h = metrics.Middleware(h)
	h = logging.Middleware(h)
	return h
}

// Listen binds the configured port on all interfaces.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(s.port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", s.port, err)
	}
	return ln, nil
}

// Serve accepts connections on ln until Shutdown. Each connection is
// handled on its own goroutine.
func (s *Server) Serve(ln net.Listener) error {
	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight
// requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP resolves and streams one request. The method is not checked.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithContext(ctx)

	target, err := Resolve(requestTarget(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if target.Dir {
		s.fail(w, r, fmt.Errorf("%w: %s names a directory", ErrNotFound, target.RawPath))
		return
	}

	if _, err := s.storage.Stat(ctx, target.Path); err != nil {
		// Any stat failure means there is nothing to serve.
		s.fail(w, r, fmt.Errorf("%w: %v", ErrNotFound, err))
		return
	}

	body, size, err := s.storage.Open(ctx, target.Path)
	if err != nil {
		s.fail(w, r, fmt.Errorf("open %s: %w", target.Path, err))
		return
	}
	defer body.Close()

	h := w.Header()
	h.Set("Content-Type", s.types.Lookup(target.Path))
	h.Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)
	metrics.RecordLookup(metrics.OutcomeServed)

	var n int64
	done := metrics.StreamStarted()
	defer func() { done(n) }()
	n, err = io.Copy(w, body)
	if err != nil {
		// Headers are gone already; the client sees a short body.
		logger.Debug("stream aborted",
			zap.String("path", target.Path),
			zap.Int64("written", n),
			zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	logger := logging.WithContext(r.Context())
	if code == http.StatusNotFound {
		metrics.RecordLookup(metrics.OutcomeNotFound)
		logger.Debug("not found", zap.String("target", r.RequestURI), zap.Error(err))
	} else {
		metrics.RecordLookup(metrics.OutcomeError)
		logger.Error("request failed", zap.String("target", r.RequestURI), zap.Error(err))
	}
	writePlain(w, code)
}

// recoverMiddleware turns a panic in the handler chain into a 500 so a
// single bad request cannot kill the process. Once the status line is out
// the panic is only logged; the client sees a truncated body.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hw := &headerWriter{ResponseWriter: w}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logging.WithContext(r.Context()).Error("handler panic",
				zap.Any("panic", rec),
				zap.String("target", r.RequestURI),
				zap.Bool("headers_sent", hw.sent))
			metrics.RecordLookup(metrics.OutcomeError)
			if !hw.sent {
				writePlain(w, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(hw, r)
	})
}

// headerWriter records whether the status line has been written.
type headerWriter struct {
	http.ResponseWriter
	sent bool
}

func (hw *headerWriter) WriteHeader(code int) {
	hw.sent = true
	hw.ResponseWriter.WriteHeader(code)
}

func (hw *headerWriter) Write(b []byte) (int, error) {
	hw.sent = true
	return hw.ResponseWriter.Write(b)
}

func (hw *headerWriter) Unwrap() http.ResponseWriter {
	return hw.ResponseWriter
}

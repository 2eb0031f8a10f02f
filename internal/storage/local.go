// Package storage provides the file backend behind the dev server.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrOutsideRoot is returned for names that resolve outside the root.
	ErrOutsideRoot = errors.New("path escapes root directory")

	// ErrNotRegular is returned for directories, devices, sockets and the like.
	ErrNotRegular = errors.New("not a regular file")
)

// Storage is the interface the file server reads through.
// Names are slash-separated and rooted ("/css/app.css").
type Storage interface {
	// Stat returns file info for a regular file.
	Stat(ctx context.Context, name string) (fs.FileInfo, error)

	// Open returns a reader for a regular file and its size.
	// The reader stops with ctx.Err() once ctx is done.
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
}

// LocalStorage implements Storage on a local directory tree.
type LocalStorage struct {
	rootDir string
}

// NewLocalStorage creates a new local storage backend rooted at rootDir.
func NewLocalStorage(rootDir string) (*LocalStorage, error) {
	absPath, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("root directory error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absPath)
	}
	return &LocalStorage{rootDir: absPath}, nil
}

// Root returns the absolute root directory.
func (s *LocalStorage) Root() string {
	return s.rootDir
}

// FullPath maps a rooted slash name onto the filesystem. It fails with
// ErrOutsideRoot when the result is not inside the root directory.
func (s *LocalStorage) FullPath(name string) (string, error) {
	name = strings.TrimPrefix(name, "/")
	fullPath := filepath.Join(s.rootDir, filepath.FromSlash(name))

	rel, err := filepath.Rel(s.rootDir, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%s: %w", name, ErrOutsideRoot)
	}
	return fullPath, nil
}

// Stat returns info for name if it is a regular file.
func (s *LocalStorage) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.FullPath(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", name, ErrNotRegular)
	}
	return info, nil
}

// Open opens name for streaming. The caller must Close the reader.
func (s *LocalStorage) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	fullPath, err := s.FullPath(name)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, 0, fmt.Errorf("%s: %w", name, ErrNotRegular)
	}

	return &contextReadCloser{ctx: ctx, f: f}, info.Size(), nil
}

// contextReadCloser stops reading once its context is done, so a
// disconnected client ends the copy loop on the next chunk.
type contextReadCloser struct {
	ctx context.Context
	f   *os.File
}

func (c *contextReadCloser) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.f.Read(p)
}

func (c *contextReadCloser) Close() error {
	return c.f.Close()
}

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStore saves an uploaded object and returns its public URL
type FileStore interface {
	Save(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Backend() string
}

// LocalStore writes uploads into a directory served under /uploads
type LocalStore struct {
	dir     string
	baseURL string
	create  func(path string) (io.WriteCloser, error)
}

func createFile(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// NewLocalStore creates the upload directory if needed
func NewLocalStore(dir, publicBaseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		create:  createFile,
	}, nil
}

// Dir returns the directory files are written to
func (l *LocalStore) Dir() string {
	return l.dir
}

// Backend implements FileStore
func (l *LocalStore) Backend() string {
	return "local"
}

// Save writes body to dir/name. A failed write or close removes the file.
func (l *LocalStore) Save(_ context.Context, name, _ string, body io.Reader) (string, error) {
	path := filepath.Join(l.dir, filepath.Base(name))

	f, err := l.create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	return fmt.Sprintf("%s/uploads/%s", l.baseURL, filepath.Base(name)), nil
}

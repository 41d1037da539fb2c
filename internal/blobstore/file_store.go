package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps images on the local filesystem under root, the way a web
// server's static directory is laid out. Returned references look like
// "/images/books/<uuid>.png".
type FileStore struct {
	root   string
	folder string
	rules  Rules
}

func NewFileStore(root, folder string, rules Rules) *FileStore {
	if folder == "" {
		folder = DefaultFolder
	}
	return &FileStore{root: root, folder: folder, rules: rules}
}

func (s *FileStore) Save(ctx context.Context, u *Upload) (string, error) {
	ext, err := s.rules.Validate(u)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := objectName(s.folder, ext)
	full := filepath.Join(s.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(full, u.Content, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return "/" + name, nil
}

// Delete removes the referenced file. A missing file is not an error.
func (s *FileStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	full, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// resolve maps a reference back to a path under root and refuses anything
// that would escape it.
func (s *FileStore) resolve(ref string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(ref, "/")))
	if rel == "." || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return "", fmt.Errorf("invalid image reference %q", ref)
	}
	return filepath.Join(s.root, rel), nil
}

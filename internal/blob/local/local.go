// Package local stores blobs on the filesystem under a root directory.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

type Store struct {
	root      string
	publicURL string
}

func New(root, publicURL string) (*Store, error) {
	const op = "blob.local.New"

	if root == "" {
		return nil, fmt.Errorf("%s: empty root", op)
	}

	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{
		root:      root,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) Store(_ context.Context, name string, data []byte, _ string) (string, error) {
	const op = "blob.local.Store"

	p, err := s.path(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err = os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err = os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.publicURL + "/" + strings.TrimPrefix(path.Clean(name), "/"), nil
}

func (s *Store) Delete(_ context.Context, name string) error {
	const op = "blob.local.Delete"

	p, err := s.path(name)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// path maps a blob name to a file below root, refusing names that escape it.
func (s *Store) path(name string) (string, error) {
	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	if !fs.ValidPath(strings.TrimPrefix(path.Clean(name), "./")) {
		return "", fmt.Errorf("invalid blob name %q", name)
	}

	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

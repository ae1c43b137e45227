package infra

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage persists uploaded files (payment receipts, product photos) on local
// disk and hands back a publicly reachable URL.
type Storage struct {
	basePath  string
	publicURL string
}

func NewStorage(basePath, publicURL string) (*Storage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base dir: %w", err)
	}
	return &Storage{basePath: basePath, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Save writes the upload under basePath/<folder>/ with a random name,
// preserving the original extension. Returns the public URL.
func (s *Storage) Save(folder string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("storage: open upload: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(s.basePath, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create dir: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}

	return fmt.Sprintf("%s/uploads/%s/%s", s.publicURL, folder, name), nil
}

// SaveBytes writes raw bytes (generated PDFs) and returns the public URL.
func (s *Storage) SaveBytes(folder, name string, data []byte) (string, error) {
	dir := filepath.Join(s.basePath, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: create dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return fmt.Sprintf("%s/uploads/%s/%s", s.publicURL, folder, name), nil
}

// BasePath exposes the root dir so the router can mount a static file server.
func (s *Storage) BasePath() string { return s.basePath }

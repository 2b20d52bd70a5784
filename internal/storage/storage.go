// Package storage abstracts media upload targets behind one interface
// with a local-disk backend and a Google Cloud Storage backend.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Kind selects the media category, which constrains allowed extensions.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var allowedExt = map[Kind][]string{
	KindImage: {".jpg", ".jpeg", ".png", ".webp"},
	KindVideo: {".mp4", ".webm"},
}

// Store uploads and deletes media objects. Upload returns a publicly
// reachable URL for the stored object.
type Store interface {
	Upload(ctx context.Context, filename string, r io.Reader, kind Kind, path string) (string, error)
	Delete(ctx context.Context, urlOrKey string) error
}

// ValidateExt checks the filename extension against the kind's
// allow-list and returns the normalized (lowercase) extension.
func ValidateExt(filename string, kind Kind) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, ok := range allowedExt[kind] {
		if ext == ok {
			return ext, nil
		}
	}
	return "", fmt.Errorf("file extension %s not allowed for %s upload", ext, kind)
}

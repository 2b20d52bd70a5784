package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Disk stores uploads under a local directory served as static files.
type Disk struct {
	// Root is the directory uploads are written under.
	Root string
	// BaseURL prefixes returned URLs, e.g. "http://localhost:3000".
	BaseURL string
}

// NewDisk returns a disk store rooted at root.
func NewDisk(root, baseURL string) *Disk {
	return &Disk{Root: root, BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// Upload writes the file under Root/path with a collision-proof name
// and returns its public URL.
func (d *Disk) Upload(_ context.Context, filename string, r io.Reader, kind Kind, path string) (string, error) {
	ext, err := ValidateExt(filename, kind)
	if err != nil {
		return "", err
	}

	// path comes from the request; keep it to a single safe segment.
	sub := sanitizeSegment(path)
	dir := filepath.Join(d.Root, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name := fmt.Sprintf("%s-%d%s", sanitizeSegment(base), time.Now().UnixNano(), ext)

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}

	if sub != "" {
		return fmt.Sprintf("%s/uploads/%s/%s", d.BaseURL, sub, name), nil
	}
	return fmt.Sprintf("%s/uploads/%s", d.BaseURL, name), nil
}

// Delete removes a previously uploaded file addressed by its URL or its
// path under /uploads/. Requests that escape Root are rejected.
func (d *Disk) Delete(_ context.Context, urlOrKey string) error {
	key := urlOrKey
	if idx := strings.Index(key, "/uploads/"); idx >= 0 {
		key = key[idx+len("/uploads/"):]
	}
	full := filepath.Join(d.Root, filepath.FromSlash(key))
	rootAbs, err := filepath.Abs(d.Root)
	if err != nil {
		return err
	}
	fullAbs, err := filepath.Abs(full)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(fullAbs, rootAbs+string(os.PathSeparator)) {
		return fmt.Errorf("invalid delete path")
	}
	if err := os.Remove(fullAbs); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("not found")
		}
		return err
	}
	return nil
}

// sanitizeSegment strips anything that could change directories.
func sanitizeSegment(s string) string {
	s = strings.ReplaceAll(s, "\\", "/")
	s = filepath.Base(strings.Trim(s, "/"))
	if s == "." || s == ".." {
		return ""
	}
	return s
}

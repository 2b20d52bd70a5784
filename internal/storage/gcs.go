package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
)

// GCS stores uploads in a Google Cloud Storage bucket with public
// object URLs.
type GCS struct {
	client *gcs.Client
	bucket string
}

// NewGCS returns a bucket-backed store. The client picks up credentials
// from the environment.
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// Upload streams the file to the bucket and returns the public URL.
func (g *GCS) Upload(ctx context.Context, filename string, r io.Reader, kind Kind, path string) (string, error) {
	ext, err := ValidateExt(filename, kind)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	object := fmt.Sprintf("%s-%d%s", sanitizeSegment(base), time.Now().UnixNano(), ext)
	if sub := sanitizeSegment(path); sub != "" {
		object = sub + "/" + object
	}

	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, object), nil
}

// Delete removes an object addressed by its public URL or object name.
func (g *GCS) Delete(ctx context.Context, urlOrKey string) error {
	object := urlOrKey
	prefix := fmt.Sprintf("https://storage.googleapis.com/%s/", g.bucket)
	object = strings.TrimPrefix(object, prefix)

	err := g.client.Bucket(g.bucket).Object(object).Delete(ctx)
	if err == gcs.ErrObjectNotExist {
		return fmt.Errorf("not found")
	}
	return err
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}

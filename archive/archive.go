// Package archive keeps copies of generated report PDFs on the local
// filesystem or in an S3 bucket.
package archive

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/esime/ielec/config"
)

var (
	ErrNotFound   = errors.New("archived object not found")
	ErrInvalidKey = errors.New("invalid archive key")
)

// Object describes a stored document.
type Object struct {
	Key      string    `json:"key"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Store is an archive backend. Keys are slash-separated relative paths.
type Store interface {
	// Put stores data under key and returns its location (a path or URL).
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]Object, error)
}

// New returns the backend selected by cfg. An archive of type "none" (or
// empty) returns a nil Store and no error.
func New(ctx context.Context, cfg config.ArchiveConfig, baseDir string, logger *zap.Logger) (Store, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "filesystem":
		dir := cfg.Dir
		if dir == "" {
			dir = "archive"
		}
		if !filepath.IsAbs(dir) && baseDir != "" {
			dir = filepath.Join(baseDir, dir)
		}
		return NewFilesystem(dir)
	case "s3":
		return NewS3(ctx, cfg, logger)
	}
	return nil, fmt.Errorf("unknown archive type %q", cfg.Type)
}

// Key builds the key of a report: user/calculator/yyyy/mm/dd/id.ext
func Key(userID, calculator string, t time.Time, id, ext string) string {
	return path.Join(userID, calculator, t.UTC().Format("2006/01/02"), id+"."+strings.TrimPrefix(ext, "."))
}

// cleanKey rejects keys that would escape the archive root.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return path.Clean(key), nil
}

package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/yungbote/accessly-backend/internal/platform/logger"
)

var ErrNotFound = errors.New("object not found")

// Store is a flat key/value blob store.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// New builds the store for cfg.Mode. ModeOff returns a nil Store.
func New(ctx context.Context, log *logger.Logger, cfg Config) (Store, error) {
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate snapshot storage config: %w", err)
	}
	switch cfg.Mode {
	case ModeOff:
		log.Info("Snapshot storage disabled")
		return nil, nil
	case ModeLocal:
		return NewLocalStore(log, cfg.LocalDir)
	default:
		return NewGCSStore(ctx, log, cfg)
	}
}

// CleanKey normalizes key to a relative slash path and rejects traversal.
func CleanKey(key string) (string, error) {
	k := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimLeft(path.Clean("/"+k), "/")
	if k == "" || k == "." {
		return "", fmt.Errorf("object key required")
	}
	if k != strings.TrimLeft(strings.TrimSpace(key), "/") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return k, nil
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(s, ".html.gz"), strings.HasSuffix(s, ".gz"):
		return "application/gzip"
	case strings.HasSuffix(s, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

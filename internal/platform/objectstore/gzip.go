package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// PutCompressed gzips data and stores it under key.
func PutCompressed(ctx context.Context, s Store, key string, data []byte) error {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestSpeed)
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("gzip object: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("gzip object: %w", err)
	}
	return s.Put(ctx, key, &buf, "application/gzip")
}

// GetCompressed reads and gunzips the object under key.
func GetCompressed(ctx context.Context, s Store, key string) ([]byte, error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	zr, err := gzip.NewReader(rc)
	if err != nil {
		return nil, fmt.Errorf("gunzip object %q: %w", key, err)
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

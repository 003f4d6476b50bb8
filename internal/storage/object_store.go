package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
)

// ObjectStore provides access to object storage.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// PresignPut returns a pre-authorized direct upload address plus the
	// headers the client must send with it.
	PresignPut(ctx context.Context, key, contentType string, sizeBytes int64) (string, map[string]string, error)
	Delete(ctx context.Context, key string) error
	// URL returns the public address of key.
	URL(key string) string
}

func joinURL(base, key string) string {
	if base == "" || key == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(key)
}

var (
	_ ObjectStore = (*S3Store)(nil)
	_ ObjectStore = (*MinioStore)(nil)
	_ ObjectStore = (*MemoryStore)(nil)
)

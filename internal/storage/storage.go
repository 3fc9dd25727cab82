package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"storefront-catalog/internal/config"

	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ErrObjectStore wraps every failure reported by an object store backend.
var ErrObjectStore = errors.New("object store error")

// ObjectStore removes product image blobs.
type ObjectStore interface {
	Remove(ctx context.Context, keys []string) error
}

// Noop discards removals. Used when no storage backend is configured.
type Noop struct{}

func (Noop) Remove(context.Context, []string) error { return nil }

// KeyFromURL derives the object key of a public image URL: everything after
// the bucket's path segment. ok is false when the URL does not point into
// the bucket.
func KeyFromURL(rawURL, bucket string) (key string, ok bool) {
	if rawURL == "" || bucket == "" {
		return "", false
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg != bucket {
			continue
		}
		key = strings.Join(segments[i+1:], "/")
		return key, key != ""
	}
	return "", false
}

// KeysFromURLs maps image URLs to object keys, skipping URLs outside the bucket.
func KeysFromURLs(urls []string, bucket string) []string {
	keys := make([]string, 0, len(urls))
	for _, u := range urls {
		if key, ok := KeyFromURL(u, bucket); ok {
			keys = append(keys, key)
		}
	}
	return keys
}

// New builds the object store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (ObjectStore, error) {
	switch cfg.Driver {
	case "supabase":
		logger.Info("Using supabase object store", zap.String("bucket", cfg.Bucket))
		return NewSupabaseStore(cfg.SupabaseURL, cfg.Bucket, cfg.SupabaseServiceKey), nil
	case "gcs":
		var opts []option.ClientOption
		switch {
		case cfg.GCSCredentialsJSON != "":
			opts = append(opts, option.WithCredentialsJSON([]byte(cfg.GCSCredentialsJSON)))
		case cfg.GCSCredentialsFile != "":
			opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
		}
		store, err := NewGCSStore(ctx, cfg.Bucket, opts...)
		if err != nil {
			return nil, err
		}
		logger.Info("Using gcs object store", zap.String("bucket", cfg.Bucket))
		return store, nil
	case "none", "":
		logger.Warn("No object store configured, image cleanup disabled")
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/multierr"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storagev1 "google.golang.org/api/storage/v1"
)

// GCSStore deletes objects from a Google Cloud Storage bucket.
type GCSStore struct {
	svc    *storagev1.Service
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	svc, err := storagev1.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs service: %w", err)
	}

	return &GCSStore{svc: svc, bucket: bucket}, nil
}

// Remove deletes each key, treating objects that are already gone as removed.
// Every other failure is collected and returned together.
func (g *GCSStore) Remove(ctx context.Context, keys []string) error {
	var errs error
	for _, key := range keys {
		err := g.svc.Objects.Delete(g.bucket, key).Context(ctx).Do()
		if err == nil {
			continue
		}

		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			continue
		}
		errs = multierr.Append(errs, fmt.Errorf("%w: deleting %s: %v", ErrObjectStore, key, err))
	}
	return errs
}

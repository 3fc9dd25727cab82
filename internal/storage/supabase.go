package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore removes objects through the Supabase storage API.
type SupabaseStore struct {
	client *storage_go.Client
	bucket string
}

// NewSupabaseStore builds a store for bucket on the project at baseURL,
// authenticating with the service role key.
func NewSupabaseStore(baseURL, bucket, serviceKey string) *SupabaseStore {
	endpoint := strings.TrimRight(baseURL, "/") + "/storage/v1"
	return &SupabaseStore{
		client: storage_go.NewClient(endpoint, serviceKey, map[string]string{"apikey": serviceKey}),
		bucket: bucket,
	}
}

// Remove deletes keys from the bucket in a single request.
func (s *SupabaseStore) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrObjectStore, err)
	}

	// the client has no context support, so a cancelled caller stops waiting
	done := make(chan error, 1)
	go func() {
		_, err := s.client.RemoveFile(s.bucket, keys)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrObjectStore, ctx.Err())
	case err := <-done:
		if err == nil {
			return nil
		}
		var se *storage_go.StorageError
		if errors.As(err, &se) {
			return fmt.Errorf("%w: supabase remove failed: %s", ErrObjectStore, se.Message)
		}
		return fmt.Errorf("%w: %v", ErrObjectStore, err)
	}
}

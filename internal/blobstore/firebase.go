package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

const gcsPublicHost = "https://storage.googleapis.com"

// FirebaseStore keeps blobs in the project's Firebase Storage bucket.
type FirebaseStore struct {
	bucket *storage.BucketHandle
	name   string
}

// NewFirebaseStore wraps a bucket handle obtained from the Firebase Admin
// SDK storage client.
func NewFirebaseStore(bucket *storage.BucketHandle, name string) *FirebaseStore {
	return &FirebaseStore{bucket: bucket, name: name}
}

func (s *FirebaseStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", key, err)
	}

	return joinURL(gcsPublicHost+"/"+s.name, key), nil
}

func (s *FirebaseStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	rd, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("open object %s: %w", key, err)
	}
	return rd, rd.Attrs.ContentType, nil
}

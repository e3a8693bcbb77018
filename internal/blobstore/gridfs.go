package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// GridFSBucketName is the bucket holding uploaded avatars.
	GridFSBucketName = "avatars"

	contentTypeField = "contentType"
)

// GridFSStore keeps blobs in a MongoDB GridFS bucket, one file per key.
// URLs point at this server's media route.
type GridFSStore struct {
	bucket  *gridfs.Bucket
	baseURL string
}

// NewGridFSStore opens the avatars bucket in db. baseURL is the public
// prefix the media route is mounted on, e.g. "http://localhost:8080/media".
func NewGridFSStore(db *mongo.Database, baseURL string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(GridFSBucketName))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket, baseURL: baseURL}, nil
}

func (s *GridFSStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: contentTypeField, Value: contentType}})

	stream, err := s.bucket.OpenUploadStream(key, opts)
	if err != nil {
		return "", fmt.Errorf("open upload stream: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return "", fmt.Errorf("write blob %s: %w", key, err)
	}
	if err := stream.Close(); err != nil {
		return "", fmt.Errorf("close blob %s: %w", key, err)
	}

	return joinURL(s.baseURL, key), nil
}

// Open returns the newest revision stored under key and its content type.
func (s *GridFSStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	stream, err := s.bucket.OpenDownloadStreamByName(key)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("open blob %s: %w", key, err)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(30 * time.Second)
	}
	_ = stream.SetReadDeadline(deadline)

	contentType := "application/octet-stream"
	if file := stream.GetFile(); file != nil && file.Metadata != nil {
		if v, ok := file.Metadata.Lookup(contentTypeField).StringValueOK(); ok && v != "" {
			contentType = v
		}
	}
	return stream, contentType, nil
}

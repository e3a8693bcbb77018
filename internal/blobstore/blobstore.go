// Package blobstore stores uploaded media such as avatars and hands back a
// public URL for each object.
package blobstore

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("blob not found")

// Store writes an object and returns the URL clients should use to fetch it.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// Opener streams a stored object back. Only backends that are served by this
// process implement it.
type Opener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// joinURL appends key to base with exactly one slash between them.
func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

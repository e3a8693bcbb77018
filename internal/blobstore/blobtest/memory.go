// Package blobtest provides an in-memory blobstore for tests.
package blobtest

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/anonto42/odinbook/backend/internal/blobstore"
)

// Object is a stored blob.
type Object struct {
	ContentType string
	Data        []byte
}

// Store is a concurrency-safe in-memory blobstore.Store and blobstore.Opener.
type Store struct {
	BaseURL string
	// Err, when set, is returned by every Put.
	Err error

	mu      sync.Mutex
	objects map[string]Object
}

func New(baseURL string) *Store {
	return &Store{BaseURL: baseURL, objects: make(map[string]Object)}
}

func (s *Store) Put(_ context.Context, key, contentType string, r io.Reader) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = Object{ContentType: contentType, Data: data}
	return s.BaseURL + "/" + key, nil
}

func (s *Store) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", blobstore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.Data)), obj.ContentType, nil
}

// Keys returns the stored keys in no particular order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}

// Get returns the object stored under key.
func (s *Store) Get(key string) (Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return obj, ok
}

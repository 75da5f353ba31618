package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStorage keeps objects in process memory. Used for local runs and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemoryStorage returns an empty in-memory object store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memoryObject)}
}

func memoryKey(bucket, key string) string {
	return bucket + "/" + key
}

// Upload stores a copy of the reader content, replacing any previous object.
func (s *MemoryStorage) Upload(_ context.Context, bucket, key string, reader io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to upload object %s/%s: %w", bucket, key, err)
	}
	s.mu.Lock()
	s.objects[memoryKey(bucket, key)] = memoryObject{data: data, contentType: contentType}
	s.mu.Unlock()
	return nil
}

// Download returns a reader over a copy of the stored object.
func (s *MemoryStorage) Download(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	obj, ok := s.objects[memoryKey(bucket, key)]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}
	return io.NopCloser(bytes.NewReader(append([]byte(nil), obj.data...))), nil
}

// Exists reports whether the object is stored.
func (s *MemoryStorage) Exists(_ context.Context, bucket, key string) (bool, error) {
	s.mu.RLock()
	_, ok := s.objects[memoryKey(bucket, key)]
	s.mu.RUnlock()
	return ok, nil
}

// ContentType returns the content type an object was uploaded with.
func (s *MemoryStorage) ContentType(bucket, key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[memoryKey(bucket, key)].contentType
}

// Len returns the number of stored objects.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryStorage keeps uploads in process. It backs STORE_BACKEND=memory;
// uploads are served back under baseURL.
type MemoryStorage struct {
	baseURL string
	mu      sync.RWMutex
	objects map[string]Object
}

type Object struct {
	Data        []byte
	ContentType string
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	if baseURL == "" {
		baseURL = "memory://"
	}
	return &MemoryStorage{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]Object),
	}
}

func (m *MemoryStorage) Upload(ctx context.Context, path string, blob []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path = strings.TrimPrefix(path, "/")
	data := make([]byte, len(blob))
	copy(data, blob)

	m.mu.Lock()
	m.objects[path] = Object{Data: data, ContentType: contentType}
	m.mu.Unlock()
	return fmt.Sprintf("%s/%s", m.baseURL, path), nil
}

func (m *MemoryStorage) Get(path string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[strings.TrimPrefix(path, "/")]
	return obj, ok
}

func (m *MemoryStorage) Close() error {
	return nil
}

package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Memory keeps objects in process. Used for local runs and tests.
type Memory struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
	types   map[string]string
}

func NewMemory(baseURL string) *Memory {
	if baseURL == "" {
		baseURL = "http://localhost/media"
	}
	return &Memory{baseURL: baseURL, objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *Memory) Put(ctx context.Context, obj Object) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj.Body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[obj.Key] = buf.Bytes()
	m.types[obj.Key] = obj.ContentType
	return nil
}

func (m *Memory) URL(key string) string { return joinURL(m.baseURL, key) }

// Get returns a stored object and whether it exists.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

package mocks

import (
	"context"
	"errors"
	"sync"
)

// MockKeyValueStore is a function-field mock of repository.KeyValueStore.
type MockKeyValueStore struct {
	GetFunc func(ctx context.Context, key string) (string, bool, error)
	SetFunc func(ctx context.Context, key, value string) error
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", false, errors.New("GetFunc not implemented")
}

func (m *MockKeyValueStore) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	return errors.New("SetFunc not implemented")
}

// MemoryKeyValueStore is an in-memory key-value store for tests.
type MemoryKeyValueStore struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func NewMemoryKeyValueStore() *MemoryKeyValueStore {
	return &MemoryKeyValueStore{data: make(map[string]string)}
}

func (m *MemoryKeyValueStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKeyValueStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

// Raw returns the stored value for key without decoding it.
func (m *MemoryKeyValueStore) Raw(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

// Sets reports how many writes the store has received.
func (m *MemoryKeyValueStore) Sets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

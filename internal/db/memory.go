package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is a process-local RecordStore. It backs tests and keeps the
// app usable when the database cannot be opened; nothing survives a restart.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[Collection]*memCollection
}

type memCollection struct {
	order  []string
	values map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore with every known collection.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{collections: make(map[Collection]*memCollection)}
	for _, c := range Collections {
		s.collections[c] = &memCollection{values: make(map[string][]byte)}
	}
	return s
}

func (s *MemoryStore) collection(c Collection) (*memCollection, error) {
	if _, err := lookupCollection(c); err != nil {
		return nil, err
	}
	return s.collections[c], nil
}

// Put implements RecordStore.
func (s *MemoryStore) Put(ctx context.Context, c Collection, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateRecord(key, value); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.collection(c)
	if err != nil {
		return err
	}
	if _, exists := col.values[key]; !exists {
		col.order = append(col.order, key)
	}
	col.values[key] = append([]byte(nil), value...)
	return nil
}

// Get implements RecordStore.
func (s *MemoryStore) Get(ctx context.Context, c Collection, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.collection(c)
	if err != nil {
		return nil, false, err
	}
	v, ok := col.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// GetAll implements RecordStore.
func (s *MemoryStore) GetAll(ctx context.Context, c Collection) ([][]byte, error) {
	return s.filter(ctx, c, func([]byte) bool { return true })
}

// Delete implements RecordStore.
func (s *MemoryStore) Delete(ctx context.Context, c Collection, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.collection(c)
	if err != nil {
		return err
	}
	if _, ok := col.values[key]; !ok {
		return nil
	}
	delete(col.values, key)
	for i, k := range col.order {
		if k == key {
			col.order = append(col.order[:i], col.order[i+1:]...)
			break
		}
	}
	return nil
}

// QueryByIndex implements RecordStore.
func (s *MemoryStore) QueryByIndex(ctx context.Context, c Collection, index, value string) ([][]byte, error) {
	_, field, err := lookupIndex(c, index)
	if err != nil {
		return nil, err
	}
	return s.filter(ctx, c, func(raw []byte) bool {
		var doc map[string]interface{}
		if json.Unmarshal(raw, &doc) != nil {
			return false
		}
		v, ok := doc[field]
		return ok && fmt.Sprint(v) == value
	})
}

func (s *MemoryStore) filter(ctx context.Context, c Collection, keep func([]byte) bool) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, err := s.collection(c)
	if err != nil {
		return nil, err
	}
	out := [][]byte{}
	for _, k := range col.order {
		v := col.values[k]
		if keep(v) {
			out = append(out, append([]byte(nil), v...))
		}
	}
	return out, nil
}

// Close implements RecordStore.
func (s *MemoryStore) Close() error {
	return nil
}

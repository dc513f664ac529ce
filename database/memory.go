package database

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryDoc struct {
	data      []byte
	version   int64
	updatedAt time.Time
}

// MemoryStore keeps documents in process memory. Used in tests and for quick local runs.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]memoryDoc
}

// NewMemoryStore returns an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]memoryDoc)}
}

func (s *MemoryStore) Driver() Driver { return DriverMemory }

func (s *MemoryStore) Close() error { return nil }

// All returns every document of the collection ordered by id.
func (s *MemoryStore) All(ctx context.Context, collection string) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[collection]
	out := make([]Snapshot, 0, len(docs))
	for id, doc := range docs {
		snap, err := doc.snapshot(id)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return doc.snapshot(id)
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeFields(fields)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]memoryDoc)
		s.collections[collection] = docs
	}
	prev := docs[id]
	docs[id] = memoryDoc{data: data, version: prev.version + 1, updatedAt: time.Now().UTC()}
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, expected int64, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	if doc.version != expected {
		return ErrConflict
	}
	current, err := decodeFields(doc.data)
	if err != nil {
		return err
	}
	data, err := encodeFields(mergeFields(current, fields))
	if err != nil {
		return err
	}
	s.collections[collection][id] = memoryDoc{data: data, version: doc.version + 1, updatedAt: time.Now().UTC()}
	return nil
}

// Delete removes the document. Deleting a missing document is not an error.
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

func (d memoryDoc) snapshot(id string) (Snapshot, error) {
	fields, err := decodeFields(d.data)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{ID: id, Fields: fields, Version: d.version, UpdatedAt: d.updatedAt}, nil
}

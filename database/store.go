package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when the requested document does not exist
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a conditional write observes a different version
	ErrConflict = errors.New("document version conflict")
)

// Driver identifies a document store backend
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Fields is the schemaless content of a document
type Fields map[string]any

// Snapshot is a document as read from the store
type Snapshot struct {
	ID        string
	Fields    Fields
	Version   int64
	UpdatedAt time.Time
}

// Store is a collection-scoped document store.
//
// Set is an upsert. Update merges top-level fields into an existing document
// only when its current version equals expected; it returns ErrNotFound when
// the document is gone and ErrConflict when another write won.
type Store interface {
	All(ctx context.Context, collection string) ([]Snapshot, error)
	Get(ctx context.Context, collection, id string) (Snapshot, error)
	Set(ctx context.Context, collection, id string, fields Fields) error
	Update(ctx context.Context, collection, id string, expected int64, fields Fields) error
	Delete(ctx context.Context, collection, id string) error
	Driver() Driver
	Close() error
}

func encodeFields(fields Fields) ([]byte, error) {
	if fields == nil {
		fields = Fields{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

func decodeFields(data []byte) (Fields, error) {
	fields := Fields{}
	if len(data) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return fields, nil
}

// mergeFields applies patch over current the way a partial document update does.
func mergeFields(current, patch Fields) Fields {
	out := make(Fields, len(current)+len(patch))
	for k, v := range current {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

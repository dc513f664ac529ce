// Package storage provides the object storage used for item images.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies an object storage backend
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverS3     Driver = "s3"
)

// ErrNotFound is returned when an object does not exist
var ErrNotFound = errors.New("object not found")

// PutOptions are optional parameters for Put
type PutOptions struct {
	ContentType string
}

// Info describes a stored object
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store is a path-scoped object store. Put overwrites an existing key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
	Driver() Driver
}

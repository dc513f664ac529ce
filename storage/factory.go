package storage

import (
	"context"
	"fmt"

	"prestamos/config"
)

// Open creates the object store selected by cfg.Blob.Driver
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch Driver(cfg.Blob.Driver) {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverS3:
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Blob.Driver)
	}
}

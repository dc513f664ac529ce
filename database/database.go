package database

import (
	"fmt"

	"prestamos/config"
	"prestamos/utils"
)

// Open creates the document store selected by cfg.DocStore.Driver
func Open(cfg *config.Config) (Store, error) {
	switch Driver(cfg.DocStore.Driver) {
	case DriverMemory:
		utils.LogInfo("using in-memory document store")
		return NewMemoryStore(), nil
	case DriverSQLite:
		utils.LogInfo("using sqlite document store at %s", cfg.SQLite.Path)
		return NewSQLiteStore(cfg.SQLite.Path)
	case DriverPostgres:
		utils.LogInfo("using postgres document store at %s:%d", cfg.Postgres.Host, cfg.Postgres.Port)
		return NewPostgresStore(cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown docstore driver %q", cfg.DocStore.Driver)
	}
}

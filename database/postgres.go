package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"prestamos/config"
	"prestamos/utils"
)

// document is the row layout shared by every collection
type document struct {
	Collection string    `gorm:"column:collection;primaryKey;size:64"`
	ID         string    `gorm:"column:id;primaryKey;size:128"`
	Data       string    `gorm:"column:data;type:jsonb;not null"`
	Version    int64     `gorm:"column:version;not null;default:1"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null"`
}

func (document) TableName() string {
	return "documents"
}

// PostgresStore keeps documents as JSONB rows in one table keyed by (collection, id)
type PostgresStore struct {
	DB *gorm.DB
}

// PostgresDSN builds the connection string from configuration
func PostgresDSN(cfg config.PostgresConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}

// NewPostgresStore connects to PostgreSQL, configures the pool and creates the documents table
func NewPostgresStore(cfg config.PostgresConfig) (*PostgresStore, error) {
	return OpenPostgres(PostgresDSN(cfg))
}

// OpenPostgres connects using a raw DSN
func OpenPostgres(dsn string) (*PostgresStore, error) {
	gormLogger := logger.New(
		utils.Logger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&document{}); err != nil {
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	return &PostgresStore{DB: db}, nil
}

func (s *PostgresStore) Driver() Driver { return DriverPostgres }

// Close closes the underlying connection pool
func (s *PostgresStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *PostgresStore) All(ctx context.Context, collection string) ([]Snapshot, error) {
	var docs []document
	if err := s.DB.WithContext(ctx).Where("collection = ?", collection).Order("id").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	out := make([]Snapshot, 0, len(docs))
	for _, doc := range docs {
		snap, err := doc.snapshot()
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	var doc document
	err := s.DB.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return doc.snapshot()
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	data, err := encodeFields(fields)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc := document{Collection: collection, ID: id, Data: string(data), Version: 1, UpdatedAt: now}
	err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"data":       doc.Data,
			"version":    gorm.Expr("documents.version + 1"),
			"updated_at": now,
		}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update locks the row, checks the version and writes the merged document in one transaction
func (s *PostgresStore) Update(ctx context.Context, collection, id string, expected int64, fields Fields) error {
	tx := s.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}

	var doc document
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("collection = ? AND id = ?", collection, id).
		First(&doc).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("read %s/%s: %w", collection, id, err)
	}

	if doc.Version != expected {
		tx.Rollback()
		return ErrConflict
	}

	current, err := decodeFields([]byte(doc.Data))
	if err != nil {
		tx.Rollback()
		return err
	}
	data, err := encodeFields(mergeFields(current, fields))
	if err != nil {
		tx.Rollback()
		return err
	}

	res := tx.Model(&document{}).
		Where("collection = ? AND id = ? AND version = ?", collection, id, expected).
		Updates(map[string]any{"data": string(data), "version": expected + 1, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		tx.Rollback()
		return fmt.Errorf("update %s/%s: %w", collection, id, res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return ErrConflict
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	err := s.DB.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).Delete(&document{}).Error
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (d document) snapshot() (Snapshot, error) {
	fields, err := decodeFields([]byte(d.Data))
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{ID: d.ID, Fields: fields, Version: d.Version, UpdatedAt: d.UpdatedAt}, nil
}

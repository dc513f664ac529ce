package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"prestamos/database"
	"prestamos/utils"
)

// ErrTargetVanished is returned when an update targets a document that no longer exists
var ErrTargetVanished = errors.New("target document no longer exists")

// Document is the constraint for entities stored by a Repository
type Document[T any] interface {
	*T
	GetID() string
	SetID(id string)
}

// Repository provides CRUD over one collection of the document store.
// Every call reports its outcome to the notifier as well as returning it.
type Repository[T any, PT Document[T]] struct {
	db         database.Store
	collection string
	notifier   Notifier
	metrics    *utils.Metrics
	newID      func() string
}

// NewRepository creates a repository for collection
func NewRepository[T any, PT Document[T]](db database.Store, collection string, notifier Notifier) *Repository[T, PT] {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Repository[T, PT]{
		db:         db,
		collection: collection,
		notifier:   notifier,
		metrics:    utils.GetMetrics(),
		newID:      uuid.NewString,
	}
}

// Collection returns the collection name
func (r *Repository[T, PT]) Collection() string {
	return r.collection
}

// GetAll returns every document. On failure the slice is empty, never nil.
func (r *Repository[T, PT]) GetAll(ctx context.Context) (items []T, err error) {
	defer r.observe("get_all", time.Now(), &err)

	snapshots, err := r.db.All(ctx, r.collection)
	if err != nil {
		r.notifier.Error(err, fmt.Sprintf("Error al obtener los documentos de %s", r.collection))
		return []T{}, fmt.Errorf("list %s: %w", r.collection, err)
	}
	items = make([]T, 0, len(snapshots))
	for _, snap := range snapshots {
		doc, err := r.decode(snap)
		if err != nil {
			r.notifier.Error(err, fmt.Sprintf("Error al obtener los documentos de %s", r.collection))
			return []T{}, err
		}
		items = append(items, *doc)
	}
	return items, nil
}

// GetByID returns the document or nil when it does not exist
func (r *Repository[T, PT]) GetByID(ctx context.Context, id string) (doc *T, err error) {
	defer r.observe("get", time.Now(), &err)

	snap, err := r.db.Get(ctx, r.collection, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err == nil {
		doc, err = r.decode(snap)
	}
	if err != nil {
		r.notifier.Error(err, fmt.Sprintf("Error al obtener documento por ID %s de %s", id, r.collection))
		return nil, fmt.Errorf("get %s/%s: %w", r.collection, id, err)
	}
	return doc, nil
}

// Create writes doc, assigning a random id first when it has none
func (r *Repository[T, PT]) Create(ctx context.Context, doc *T) (err error) {
	defer r.observe("create", time.Now(), &err)

	if err = r.create(ctx, doc); err != nil {
		r.notifier.Error(err, fmt.Sprintf("Error al crear documento en %s", r.collection))
		return err
	}
	r.notifier.Success("Documento creado exitosamente!")
	return nil
}

func (r *Repository[T, PT]) create(ctx context.Context, doc *T) error {
	r.EnsureID(doc)
	fields, err := toFields(doc)
	if err != nil {
		return err
	}
	if err := r.db.Set(ctx, r.collection, PT(doc).GetID(), fields); err != nil {
		return fmt.Errorf("create %s/%s: %w", r.collection, PT(doc).GetID(), err)
	}
	return nil
}

// EnsureID assigns a random id to doc when it has none
func (r *Repository[T, PT]) EnsureID(doc *T) {
	if PT(doc).GetID() == "" {
		PT(doc).SetID(r.newID())
	}
}

// Update merges doc into the stored document. It fails with ErrTargetVanished
// when the document is gone and database.ErrConflict when another write won.
func (r *Repository[T, PT]) Update(ctx context.Context, doc *T) (err error) {
	defer r.observe("update", time.Now(), &err)

	if err = r.update(ctx, doc); err != nil {
		r.notifier.Error(err, fmt.Sprintf("Error al actualizar documento en %s", r.collection))
		return err
	}
	r.notifier.Success("Documento actualizado exitosamente!")
	return nil
}

func (r *Repository[T, PT]) update(ctx context.Context, doc *T) error {
	id := PT(doc).GetID()
	vanished := fmt.Errorf("%w: no existe el documento que quiere editar en %s", ErrTargetVanished, r.collection)
	if id == "" {
		return vanished
	}

	current, err := r.db.Get(ctx, r.collection, id)
	if errors.Is(err, database.ErrNotFound) {
		return vanished
	}
	if err != nil {
		return fmt.Errorf("read %s/%s: %w", r.collection, id, err)
	}

	fields, err := toFields(doc)
	if err != nil {
		return err
	}
	err = r.db.Update(ctx, r.collection, id, current.Version, fields)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return vanished
	case err != nil:
		return fmt.Errorf("update %s/%s: %w", r.collection, id, err)
	}
	return nil
}

// Delete removes the document. Deleting an absent document succeeds.
func (r *Repository[T, PT]) Delete(ctx context.Context, id string) (err error) {
	defer r.observe("delete", time.Now(), &err)

	if err = r.db.Delete(ctx, r.collection, id); err != nil {
		err = fmt.Errorf("delete %s/%s: %w", r.collection, id, err)
		r.notifier.Error(err, fmt.Sprintf("Error al eliminar documento en %s", r.collection))
		return err
	}
	r.notifier.Success("Documento eliminado exitosamente!")
	return nil
}

// Count returns the number of documents in the collection
func (r *Repository[T, PT]) Count(ctx context.Context) (total int, err error) {
	defer r.observe("count", time.Now(), &err)

	snapshots, err := r.db.All(ctx, r.collection)
	if err != nil {
		r.notifier.Error(err, fmt.Sprintf("Error al obtener el total de registros de %s", r.collection))
		return 0, fmt.Errorf("count %s: %w", r.collection, err)
	}
	return len(snapshots), nil
}

func (r *Repository[T, PT]) observe(operation string, start time.Time, err *error) {
	r.metrics.RecordRepositoryOp(r.collection, operation, *err)
	utils.LogOperation(r.collection+"."+operation, start, *err)
}

func (r *Repository[T, PT]) decode(snap database.Snapshot) (*T, error) {
	data, err := json.Marshal(snap.Fields)
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", r.collection, snap.ID, err)
	}
	doc := new(T)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", r.collection, snap.ID, err)
	}
	if PT(doc).GetID() == "" {
		PT(doc).SetID(snap.ID)
	}
	return doc, nil
}

// toFields converts an entity into the map form the document store persists.
// References end up as their path strings through their JSON encoding.
func toFields(doc any) (database.Fields, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	fields := database.Fields{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return fields, nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"prestamos/database"
	"prestamos/models"
	"prestamos/storage"
)

// ItemService manages ARTICULOS and their images
type ItemService struct {
	*ImageRepository[models.Item, *models.Item]
	db database.Store
}

// NewItemService creates a new ItemService
func NewItemService(db database.Store, blobs storage.Store, notifier Notifier) *ItemService {
	return &ItemService{
		ImageRepository: NewImageRepository[models.Item](db, blobs, models.CollectionItems, notifier),
		db:              db,
	}
}

// NeighborhoodData returns the raw BARRIOS document the item points at, or
// nil when the item has no neighborhood or the document is missing.
func (s *ItemService) NeighborhoodData(ctx context.Context, item *models.Item) (database.Fields, error) {
	if item == nil || item.BarrioRef == nil {
		return nil, nil
	}
	snap, err := s.db.Get(ctx, item.BarrioRef.Collection, item.BarrioRef.ID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.notifier.Error(err, fmt.Sprintf("Error al obtener el barrio %s", item.BarrioRef))
		return nil, fmt.Errorf("resolve %s: %w", item.BarrioRef, err)
	}
	return snap.Fields, nil
}

// AddImages uploads more images for an existing item and records their URLs
func (s *ItemService) AddImages(ctx context.Context, id string, files ...Attachment) (*models.Item, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: articulo %s", ErrTargetVanished, id)
	}
	urls, err := s.UploadImages(ctx, id, files...)
	if err != nil {
		return nil, err
	}
	item.ImagenURLs = append(item.ImagenURLs, urls...)
	if err := s.Repository.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// ClearImages deletes every image of an item and empties its URL list
func (s *ItemService) ClearImages(ctx context.Context, id string) (*models.Item, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: articulo %s", ErrTargetVanished, id)
	}
	if err := s.DeleteImages(ctx, id); err != nil {
		return nil, err
	}
	item.ImagenURLs = []string{}
	if err := s.Repository.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

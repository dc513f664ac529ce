package services

import (
	"context"

	"prestamos/database"
	"prestamos/models"
)

type named[T any] interface {
	Document[T]
	FullName() string
}

// options projects documents into picker options
func options[T any, PT named[T]](items []T) []models.Option {
	out := make([]models.Option, 0, len(items))
	for i := range items {
		doc := PT(&items[i])
		out = append(out, models.Option{Label: doc.FullName(), Value: doc.GetID()})
	}
	return out
}

// ClientService manages CLIENTES
type ClientService struct {
	*Repository[models.Client, *models.Client]
}

// NewClientService creates a new ClientService
func NewClientService(db database.Store, notifier Notifier) *ClientService {
	return &ClientService{Repository: NewRepository[models.Client](db, models.CollectionClients, notifier)}
}

// Options returns one picker option per client
func (s *ClientService) Options(ctx context.Context) ([]models.Option, error) {
	clients, err := s.GetAll(ctx)
	if err != nil {
		return []models.Option{}, err
	}
	return options(clients), nil
}

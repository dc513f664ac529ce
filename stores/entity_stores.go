package stores

import (
	"context"

	"prestamos/models"
	"prestamos/services"
)

// ClientStore caches CLIENTES
type ClientStore struct {
	*EntityStore[models.Client, *models.Client]
	svc *services.ClientService
}

func NewClientStore(svc *services.ClientService, session SessionStorage) *ClientStore {
	return &ClientStore{
		EntityStore: NewEntityStore[models.Client](ClientsStoreName, "clientes", svc, session),
		svc:         svc,
	}
}

// Options loads the client picker options; the cached list is left as is.
func (s *ClientStore) Options(ctx context.Context) (opts []models.Option, err error) {
	err = s.run(ctx, func(ctx context.Context) (err error) {
		opts, err = s.svc.Options(ctx)
		return err
	})
	return opts, err
}

// EmployeeStore caches EMPLEADOS
type EmployeeStore struct {
	*EntityStore[models.Employee, *models.Employee]
	svc *services.EmployeeService
}

func NewEmployeeStore(svc *services.EmployeeService, session SessionStorage) *EmployeeStore {
	return &EmployeeStore{
		EntityStore: NewEntityStore[models.Employee](EmployeesStoreName, "empleados", svc, session),
		svc:         svc,
	}
}

// Options loads the employee picker options; the cached list is left as is.
func (s *EmployeeStore) Options(ctx context.Context) (opts []models.Option, err error) {
	err = s.run(ctx, func(ctx context.Context) (err error) {
		opts, err = s.svc.Options(ctx)
		return err
	})
	return opts, err
}

// LoanStore caches PRESTAMOS
type LoanStore struct {
	*EntityStore[models.Loan, *models.Loan]
}

func NewLoanStore(svc *services.LoanService, session SessionStorage) *LoanStore {
	return &LoanStore{EntityStore: NewEntityStore[models.Loan](LoansStoreName, "prestamos", svc, session)}
}

// ItemStore caches ARTICULOS and drives their image uploads
type ItemStore struct {
	*EntityStore[models.Item, *models.Item]
	svc *services.ItemService
}

func NewItemStore(svc *services.ItemService, session SessionStorage) *ItemStore {
	return &ItemStore{
		EntityStore: NewEntityStore[models.Item](ItemsStoreName, "articulos", itemSource{svc}, session),
		svc:         svc,
	}
}

// CreateWithImages uploads files, writes item and re-fetches the list
func (s *ItemStore) CreateWithImages(ctx context.Context, item *models.Item, files ...services.Attachment) error {
	return s.mutate(ctx, func(ctx context.Context) error { return s.svc.Create(ctx, item, files...) })
}

// UpdateWithImages replaces the item's images when files are given, merges
// item and re-fetches the list.
func (s *ItemStore) UpdateWithImages(ctx context.Context, item *models.Item, files ...services.Attachment) error {
	return s.mutate(ctx, func(ctx context.Context) error { return s.svc.Update(ctx, item, files...) })
}

// AddImages uploads more images for item id
func (s *ItemStore) AddImages(ctx context.Context, id string, files ...services.Attachment) (item *models.Item, err error) {
	err = s.mutate(ctx, func(ctx context.Context) (err error) {
		item, err = s.svc.AddImages(ctx, id, files...)
		return err
	})
	return item, err
}

// ClearImages deletes every image of item id
func (s *ItemStore) ClearImages(ctx context.Context, id string) (item *models.Item, err error) {
	err = s.mutate(ctx, func(ctx context.Context) (err error) {
		item, err = s.svc.ClearImages(ctx, id)
		return err
	})
	return item, err
}

// itemSource adapts ItemService to the plain Service contract
type itemSource struct {
	svc *services.ItemService
}

func (i itemSource) GetAll(ctx context.Context) ([]models.Item, error) { return i.svc.GetAll(ctx) }
func (i itemSource) Create(ctx context.Context, item *models.Item) error { return i.svc.Create(ctx, item) }
func (i itemSource) Update(ctx context.Context, item *models.Item) error { return i.svc.Update(ctx, item) }
func (i itemSource) Delete(ctx context.Context, id string) error { return i.svc.Delete(ctx, id) }
func (i itemSource) Count(ctx context.Context) (int, error) { return i.svc.Count(ctx) }

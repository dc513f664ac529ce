package stores

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"prestamos/database"
	"prestamos/models"
	"prestamos/services"
	"prestamos/storage"
)

var errDown = errors.New("store unavailable")

// flakyStore fails every call on the collections marked as down
type flakyStore struct {
	database.Store
	mu   sync.Mutex
	down map[string]bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Store: database.NewMemoryStore(), down: map[string]bool{}}
}

func (s *flakyStore) setDown(collection string, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down[collection] = down
}

func (s *flakyStore) check(collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down[collection] {
		return errDown
	}
	return nil
}

func (s *flakyStore) All(ctx context.Context, collection string) ([]database.Snapshot, error) {
	if err := s.check(collection); err != nil {
		return nil, err
	}
	return s.Store.All(ctx, collection)
}

func (s *flakyStore) Set(ctx context.Context, collection, id string, fields database.Fields) error {
	if err := s.check(collection); err != nil {
		return err
	}
	return s.Store.Set(ctx, collection, id, fields)
}

type fixture struct {
	db        *flakyStore
	session   *MemorySession
	clients   *ClientStore
	employees *EmployeeStore
	items     *ItemStore
	loans     *LoanStore
	dashboard *DashboardStore
	loanSvc   *services.LoanService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newFlakyStore()
	session := NewMemorySession()
	notifier := services.NewFeed(10)
	clientSvc := services.NewClientService(db, notifier)
	employeeSvc := services.NewEmployeeService(db, notifier)
	itemSvc := services.NewItemService(db, storage.NewMemoryStore(), notifier)
	loanSvc := services.NewLoanService(db, clientSvc, employeeSvc, nil, notifier)

	f := &fixture{
		db:        db,
		session:   session,
		clients:   NewClientStore(clientSvc, session),
		employees: NewEmployeeStore(employeeSvc, session),
		items:     NewItemStore(itemSvc, session),
		loans:     NewLoanStore(loanSvc, session),
		loanSvc:   loanSvc,
	}
	f.dashboard = NewDashboardStore(f.clients, f.employees, f.items, f.loans, session)
	return f
}

func testLoan() *models.Loan {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return &models.Loan{
		ID:              "p1",
		ClienteRef:      models.NewRef(models.CollectionClients, "c1"),
		MontoPrestado:   "100.000",
		ModalidadDePago: models.PaymentModalityDaily,
		Estado:          models.LoanStateActive,
		FechaInicio:     start.UnixMilli(),
		FechaFinal:      start.AddDate(0, 0, 15).UnixMilli(),
	}
}

func TestLoanStoreSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.loans.Create(ctx, testLoan()); err != nil {
		t.Fatal(err)
	}

	raw, ok, _ := f.session.GetItem(LoansStoreName)
	if !ok {
		t.Fatal("no session snapshot written")
	}
	for _, want := range []string{`"clienteRef":"CLIENTES/c1"`, `"empleadoRef":null`, `"interes":null`, `"version":0`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("snapshot %s does not contain %s", raw, want)
		}
	}

	reloaded := NewLoanStore(f.loanSvc, f.session)
	state := reloaded.State()
	if len(state.Items) != 1 {
		t.Fatalf("got %d loans want 1", len(state.Items))
	}
	loan := state.Items[0]
	if !models.SameRef(loan.ClienteRef, models.NewRef(models.CollectionClients, "c1")) {
		t.Errorf("got clienteRef %v want CLIENTES/c1", loan.ClienteRef)
	}
	if loan.EmpleadoRef != nil || loan.Interes != nil {
		t.Errorf("got empleadoRef %v interes %v want both nil", loan.EmpleadoRef, loan.Interes)
	}
	if loan.MontoAdeudado != "100.000" {
		t.Errorf("got monto_adeudado %s want 100.000", loan.MontoAdeudado)
	}
}

func TestStoreDiscardsMalformedSession(t *testing.T) {
	f := newFixture(t)
	f.session.SetItem(LoansStoreName, []byte(`{"state":{"items":[{"id":"p1","clienteRef":"sin-barra"}]},"version":0}`))

	store := NewLoanStore(f.loanSvc, f.session)
	if got := store.State().Items; len(got) != 0 {
		t.Errorf("got %v want an empty store", got)
	}
}

func TestStoreErrorClearedOnNextAction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.db.setDown(models.CollectionClients, true)
	if err := f.clients.Fetch(ctx); err == nil {
		t.Fatal("got nil error from a failing fetch")
	}
	if state := f.clients.State(); state.Error == nil || state.Loading {
		t.Fatalf("got state %+v want an error and not loading", state)
	}

	f.db.setDown(models.CollectionClients, false)
	if err := f.clients.Fetch(ctx); err != nil {
		t.Fatal(err)
	}
	if state := f.clients.State(); state.Error != nil {
		t.Errorf("got error %q want it cleared", *state.Error)
	}
}

func TestFailureKeepsCachedItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.clients.Create(ctx, &models.Client{ID: "c1", Nombres: "Ana", Apellidos: "Gómez"})

	f.db.setDown(models.CollectionClients, true)
	f.clients.Create(ctx, &models.Client{ID: "c2", Nombres: "Luis", Apellidos: "Pérez"})

	state := f.clients.State()
	if len(state.Items) != 1 || state.Items[0].ID != "c1" {
		t.Errorf("got items %+v want the cached c1", state.Items)
	}
	if _, ok := f.clients.Get("c1"); !ok {
		t.Error("Get did not find c1 in the cache")
	}
}

func TestStoresAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.clients.Create(ctx, &models.Client{ID: "c1", Nombres: "Ana", Apellidos: "Gómez"})

	f.db.setDown(models.CollectionLoans, true)
	if err := f.dashboard.FetchTotals(ctx); err == nil {
		t.Fatal("got nil error with PRESTAMOS down")
	}

	if f.loans.State().Error == nil {
		t.Error("loan store has no error")
	}
	if e := f.clients.State().Error; e != nil {
		t.Errorf("client store got error %q", *e)
	}
	if e := f.dashboard.State().Error; e == nil || *e != "Error al obtener los totales" {
		t.Errorf("got dashboard error %v", e)
	}
}

func TestDashboardTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.clients.Create(ctx, &models.Client{ID: "c1", Nombres: "Ana", Apellidos: "Gómez"})
	f.clients.Create(ctx, &models.Client{ID: "c2", Nombres: "Luis", Apellidos: "Pérez"})
	f.loans.Create(ctx, testLoan())

	totals, err := f.dashboard.RefreshTotals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if totals[models.CollectionClients] != 2 || totals[models.CollectionLoans] != 1 {
		t.Errorf("got %v", totals)
	}
	state := f.dashboard.State()
	if state.TotalClientes != 2 || state.TotalPrestamos != 1 || state.TotalEmpleados != 0 {
		t.Errorf("got %+v", state.Totals)
	}

	reloaded := NewDashboardStore(f.clients, f.employees, f.items, f.loans, f.session)
	if reloaded.State().TotalClientes != 2 {
		t.Errorf("got %+v after reload", reloaded.State())
	}
}

func TestOptionsKeepItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.employees.Create(ctx, &models.Employee{ID: "e1", Nombres: "Luis", Apellidos: "Pérez"})

	opts, err := f.employees.Options(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 1 || opts[0].Label != "Luis Pérez" || opts[0].Value != "e1" {
		t.Errorf("got %v", opts)
	}
	if got := f.employees.State().Items; len(got) != 1 {
		t.Errorf("got %d cached employees want 1", len(got))
	}
}

func TestItemStoreCreateWithImages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	item := &models.Item{BarrioRef: models.NewRef(models.CollectionNeighborhoods, "b1"), Estado: models.ItemStatePublished}
	err := f.items.CreateWithImages(ctx, item, services.Attachment{Name: "a.png", Body: strings.NewReader("a")})
	if err != nil {
		t.Fatal(err)
	}
	cached, ok := f.items.Get(item.ID)
	if !ok || len(cached.ImagenURLs) != 1 {
		t.Errorf("got %+v want the item with one image", cached)
	}
}

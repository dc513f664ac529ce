package stores

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"prestamos/models"
	"prestamos/utils"
)

// Totals are the counts shown on the dashboard
type Totals struct {
	TotalClientes  int `json:"totalClientes"`
	TotalEmpleados int `json:"totalEmpleados"`
	TotalArticulos int `json:"totalArticulos"`
	TotalPrestamos int `json:"totalPrestamos"`
}

// DashboardState is the observable state of the dashboard store
type DashboardState struct {
	Totals
	Loading bool    `json:"loading"`
	Error   *string `json:"error"`
}

type totalCounter interface {
	FetchTotal(ctx context.Context) error
	Total() int
}

// DashboardStore aggregates the totals of the entity stores
type DashboardStore struct {
	counters map[string]totalCounter
	session  SessionStorage

	mu    sync.Mutex
	state DashboardState
}

// NewDashboardStore creates the dashboard over the given entity stores
func NewDashboardStore(clients *ClientStore, employees *EmployeeStore, items *ItemStore, loans *LoanStore, session SessionStorage) *DashboardStore {
	if session == nil {
		session = NewMemorySession()
	}
	s := &DashboardStore{
		counters: map[string]totalCounter{
			models.CollectionClients:   clients,
			models.CollectionEmployees: employees,
			models.CollectionItems:     items,
			models.CollectionLoans:     loans,
		},
		session: session,
	}
	var snap snapshot[DashboardState]
	if ok, err := restore(session, DashboardStoreName, &snap); err != nil {
		utils.LogWarn("discarding session state of %s: %v", DashboardStoreName, err)
	} else if ok {
		s.state = snap.State
		s.state.Loading = false
	}
	return s
}

// State returns the current state
func (s *DashboardStore) State() DashboardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FetchTotals refreshes every entity count concurrently and waits for all of them
func (s *DashboardStore) FetchTotals(ctx context.Context) error {
	_, err := s.RefreshTotals(ctx)
	return err
}

// RefreshTotals is FetchTotals returning the counts keyed by collection
func (s *DashboardStore) RefreshTotals(ctx context.Context) (map[string]int, error) {
	s.update(func(st *DashboardState) {
		st.Loading = true
		st.Error = nil
	})

	var g errgroup.Group
	for _, counter := range s.counters {
		g.Go(func() error { return counter.FetchTotal(ctx) })
	}
	if err := g.Wait(); err != nil {
		msg := "Error al obtener los totales"
		s.update(func(st *DashboardState) {
			st.Loading = false
			st.Error = &msg
		})
		return nil, errors.Join(errors.New(msg), err)
	}

	totals := make(map[string]int, len(s.counters))
	for collection, counter := range s.counters {
		totals[collection] = counter.Total()
	}
	s.update(func(st *DashboardState) {
		st.Totals = Totals{
			TotalClientes:  totals[models.CollectionClients],
			TotalEmpleados: totals[models.CollectionEmployees],
			TotalArticulos: totals[models.CollectionItems],
			TotalPrestamos: totals[models.CollectionLoans],
		}
		st.Loading = false
	})
	return totals, nil
}

func (s *DashboardStore) update(apply func(*DashboardState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(&s.state)
	if err := persist(s.session, DashboardStoreName, s.state); err != nil {
		utils.LogError("persisting %s: %v", DashboardStoreName, err)
	}
}

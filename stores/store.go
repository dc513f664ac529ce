// Package stores holds the per-entity state containers the HTTP layer reads
// from. Every state change is persisted to a SessionStorage.
package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"prestamos/services"
	"prestamos/utils"
)

// Store names used as session keys
const (
	ClientsStoreName   = "clientes-store"
	EmployeesStoreName = "empleados-store"
	ItemsStoreName     = "articulos-store"
	LoansStoreName     = "prestamos-store"
	DashboardStoreName = "dashboard-store"
)

// State is the observable state of an entity store
type State[T any] struct {
	Items      []T     `json:"items"`
	TotalCount int     `json:"totalCount"`
	Loading    bool    `json:"loading"`
	Error      *string `json:"error"`
}

// snapshot is the session envelope
type snapshot[S any] struct {
	State   S   `json:"state"`
	Version int `json:"version"`
}

// Service is the data source an EntityStore drives
type Service[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, doc *T) error
	Update(ctx context.Context, doc *T) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// EntityStore caches one collection. Actions run the service call outside
// the lock; overlapping actions are not coalesced and the last one to finish
// wins.
type EntityStore[T any, PT services.Document[T]] struct {
	name    string
	label   string
	svc     Service[T]
	session SessionStorage

	mu    sync.Mutex
	state State[T]
}

// NewEntityStore creates a store and loads its last persisted snapshot
func NewEntityStore[T any, PT services.Document[T]](name, label string, svc Service[T], session SessionStorage) *EntityStore[T, PT] {
	if session == nil {
		session = NewMemorySession()
	}
	s := &EntityStore[T, PT]{
		name:    name,
		label:   label,
		svc:     svc,
		session: session,
		state:   State[T]{Items: []T{}},
	}
	if err := s.load(); err != nil {
		utils.LogWarn("discarding session state of %s: %v", name, err)
	}
	return s
}

// Name returns the session key of the store
func (s *EntityStore[T, PT]) Name() string {
	return s.name
}

// State returns a copy of the current state
func (s *EntityStore[T, PT]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Items = append([]T(nil), s.state.Items...)
	return out
}

// Get looks id up in the cached list
func (s *EntityStore[T, PT]) Get(id string) (*T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Items {
		if PT(&s.state.Items[i]).GetID() == id {
			item := s.state.Items[i]
			return &item, true
		}
	}
	return nil, false
}

// Total returns the last fetched document count
func (s *EntityStore[T, PT]) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalCount
}

// Fetch replaces the cached list with every document of the collection
func (s *EntityStore[T, PT]) Fetch(ctx context.Context) error {
	s.begin()
	return s.fetch(ctx)
}

func (s *EntityStore[T, PT]) fetch(ctx context.Context) error {
	items, err := s.svc.GetAll(ctx)
	if err != nil {
		s.fail(err)
		return err
	}
	s.finish(func(st *State[T]) { st.Items = items })
	return nil
}

// Create writes doc and re-fetches the list
func (s *EntityStore[T, PT]) Create(ctx context.Context, doc *T) error {
	return s.mutate(ctx, func(ctx context.Context) error { return s.svc.Create(ctx, doc) })
}

// Update merges doc and re-fetches the list
func (s *EntityStore[T, PT]) Update(ctx context.Context, doc *T) error {
	return s.mutate(ctx, func(ctx context.Context) error { return s.svc.Update(ctx, doc) })
}

// Delete removes id and re-fetches the list
func (s *EntityStore[T, PT]) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(ctx context.Context) error { return s.svc.Delete(ctx, id) })
}

// FetchTotal refreshes the document count
func (s *EntityStore[T, PT]) FetchTotal(ctx context.Context) error {
	s.begin()
	total, err := s.svc.Count(ctx)
	if err != nil {
		s.fail(fmt.Errorf("Error al obtener el total de %s: %w", s.label, err))
		return err
	}
	s.finish(func(st *State[T]) { st.TotalCount = total })
	return nil
}

// mutate runs op and, when it succeeds, re-fetches the list
func (s *EntityStore[T, PT]) mutate(ctx context.Context, op func(ctx context.Context) error) error {
	s.begin()
	if err := op(ctx); err != nil {
		s.fail(err)
		return err
	}
	return s.fetch(ctx)
}

// run wraps an action that does not touch the cached list
func (s *EntityStore[T, PT]) run(ctx context.Context, op func(ctx context.Context) error) error {
	s.begin()
	if err := op(ctx); err != nil {
		s.fail(err)
		return err
	}
	s.finish(nil)
	return nil
}

func (s *EntityStore[T, PT]) begin() {
	s.update(func(st *State[T]) {
		st.Loading = true
		st.Error = nil
	})
}

func (s *EntityStore[T, PT]) finish(apply func(*State[T])) {
	s.update(func(st *State[T]) {
		if apply != nil {
			apply(st)
		}
		st.Loading = false
	})
}

func (s *EntityStore[T, PT]) fail(err error) {
	msg := err.Error()
	s.update(func(st *State[T]) {
		st.Loading = false
		st.Error = &msg
	})
}

func (s *EntityStore[T, PT]) update(apply func(*State[T])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(&s.state)
	if s.state.Items == nil {
		s.state.Items = []T{}
	}
	if err := persist(s.session, s.name, s.state); err != nil {
		utils.LogError("persisting %s: %v", s.name, err)
	}
}

func (s *EntityStore[T, PT]) load() error {
	var snap snapshot[State[T]]
	if ok, err := restore(s.session, s.name, &snap); err != nil || !ok {
		return err
	}
	if snap.State.Items == nil {
		snap.State.Items = []T{}
	}
	// a restarted process has no action in flight
	snap.State.Loading = false

	s.mu.Lock()
	s.state = snap.State
	s.mu.Unlock()
	return nil
}

func persist[S any](session SessionStorage, name string, state S) error {
	data, err := json.Marshal(snapshot[S]{State: state})
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return session.SetItem(name, data)
}

func restore[S any](session SessionStorage, name string, snap *snapshot[S]) (bool, error) {
	data, ok, err := session.GetItem(name)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, snap); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

// ErrorMessage returns the stored error text, or "" when there is none
func ErrorMessage(e *string) string {
	if e == nil {
		return ""
	}
	return *e
}

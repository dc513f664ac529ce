package services

import (
	"context"
	"errors"
	"io"
	"path"
	"sync"

	"prestamos/database"
	"prestamos/models"
	"prestamos/storage"
)

var errBoom = errors.New("boom")

// recordingNotifier keeps every notification it receives
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Error(_ error, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

// countingStore counts writes and can fail calls for one collection
type countingStore struct {
	database.Store
	mu       sync.Mutex
	sets     int
	updates  int
	failColl string
	failErr  error
}

func newCountingStore() *countingStore {
	return &countingStore{Store: database.NewMemoryStore()}
}

func (s *countingStore) fail(collection string) error {
	if s.failColl != "" && s.failColl == collection {
		if s.failErr != nil {
			return s.failErr
		}
		return errBoom
	}
	return nil
}

func (s *countingStore) All(ctx context.Context, collection string) ([]database.Snapshot, error) {
	if err := s.fail(collection); err != nil {
		return nil, err
	}
	return s.Store.All(ctx, collection)
}

func (s *countingStore) Get(ctx context.Context, collection, id string) (database.Snapshot, error) {
	if err := s.fail(collection); err != nil {
		return database.Snapshot{}, err
	}
	return s.Store.Get(ctx, collection, id)
}

func (s *countingStore) Set(ctx context.Context, collection, id string, fields database.Fields) error {
	s.mu.Lock()
	s.sets++
	s.mu.Unlock()
	return s.Store.Set(ctx, collection, id, fields)
}

func (s *countingStore) Update(ctx context.Context, collection, id string, expected int64, fields database.Fields) error {
	s.mu.Lock()
	s.updates++
	s.mu.Unlock()
	return s.Store.Update(ctx, collection, id, expected, fields)
}

// conflictStore loses every conditional write
type conflictStore struct {
	database.Store
}

func (conflictStore) Update(context.Context, string, string, int64, database.Fields) error {
	return database.ErrConflict
}

// brokenDeleteBlobs stores objects but fails to delete them
type brokenDeleteBlobs struct {
	*storage.MemoryStore
}

func (brokenDeleteBlobs) Delete(context.Context, string) error {
	return errBoom
}

type sentMail struct {
	to   string
	loan string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) SendLoanClosedNotification(to string, _ *models.Client, loan *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, loan: loan.ID})
	return nil
}

func ptr[T any](v T) *T {
	return &v
}

// failingPutBlobs refuses uploads of one object name
type failingPutBlobs struct {
	*storage.MemoryStore
	failName string
}

func (b failingPutBlobs) Put(ctx context.Context, key string, r io.Reader, opts storage.PutOptions) (storage.Info, error) {
	if path.Base(key) == b.failName {
		return storage.Info{}, errBoom
	}
	return b.MemoryStore.Put(ctx, key, r, opts)
}

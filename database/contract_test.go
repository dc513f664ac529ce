package database

import (
	"context"
	"errors"
	"testing"
)

// runStoreContract exercises the behaviour every driver must share.
func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		if _, err := s.Get(ctx, "CLIENTES", "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v want ErrNotFound", err)
		}
	})

	t.Run("set is an upsert", func(t *testing.T) {
		if err := s.Set(ctx, "CLIENTES", "c1", Fields{"nombres": "Ana", "celular": "300"}); err != nil {
			t.Fatal(err)
		}
		first, err := s.Get(ctx, "CLIENTES", "c1")
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Set(ctx, "CLIENTES", "c1", Fields{"nombres": "Ana Maria"}); err != nil {
			t.Fatal(err)
		}
		second, err := s.Get(ctx, "CLIENTES", "c1")
		if err != nil {
			t.Fatal(err)
		}
		if second.Fields["nombres"] != "Ana Maria" {
			t.Errorf("got nombres %v want Ana Maria", second.Fields["nombres"])
		}
		if _, ok := second.Fields["celular"]; ok {
			t.Error("set must replace the whole document")
		}
		if second.Version <= first.Version {
			t.Errorf("version did not advance: %d -> %d", first.Version, second.Version)
		}
	})

	t.Run("all is scoped to the collection", func(t *testing.T) {
		if err := s.Set(ctx, "CLIENTES", "c2", Fields{"nombres": "Luis"}); err != nil {
			t.Fatal(err)
		}
		if err := s.Set(ctx, "EMPLEADOS", "e1", Fields{"nombres": "Sara"}); err != nil {
			t.Fatal(err)
		}
		docs, err := s.All(ctx, "CLIENTES")
		if err != nil {
			t.Fatal(err)
		}
		if len(docs) != 2 {
			t.Fatalf("got %d documents want 2", len(docs))
		}
		if docs[0].ID != "c1" || docs[1].ID != "c2" {
			t.Errorf("got ids %s,%s want c1,c2", docs[0].ID, docs[1].ID)
		}
	})

	t.Run("update merges with the expected version", func(t *testing.T) {
		snap, err := s.Get(ctx, "CLIENTES", "c2")
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Update(ctx, "CLIENTES", "c2", snap.Version, Fields{"celular": "311"}); err != nil {
			t.Fatal(err)
		}
		got, err := s.Get(ctx, "CLIENTES", "c2")
		if err != nil {
			t.Fatal(err)
		}
		if got.Fields["nombres"] != "Luis" || got.Fields["celular"] != "311" {
			t.Errorf("got %v want merged fields", got.Fields)
		}
	})

	t.Run("update with a stale version conflicts", func(t *testing.T) {
		snap, err := s.Get(ctx, "CLIENTES", "c2")
		if err != nil {
			t.Fatal(err)
		}
		err = s.Update(ctx, "CLIENTES", "c2", snap.Version-1, Fields{"celular": "000"})
		if !errors.Is(err, ErrConflict) {
			t.Errorf("got %v want ErrConflict", err)
		}
	})

	t.Run("update on a missing document", func(t *testing.T) {
		err := s.Update(ctx, "CLIENTES", "ghost", 1, Fields{"nombres": "x"})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v want ErrNotFound", err)
		}
		if _, err := s.Get(ctx, "CLIENTES", "ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("update must not create the document, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.Delete(ctx, "CLIENTES", "c1"); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Get(ctx, "CLIENTES", "c1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v want ErrNotFound", err)
		}
		if err := s.Delete(ctx, "CLIENTES", "c1"); err != nil {
			t.Errorf("deleting twice: %v", err)
		}
	})
}

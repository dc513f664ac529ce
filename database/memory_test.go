package database

import (
	"context"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	fields := Fields{"nombres": "Ana"}
	if err := s.Set(ctx, "CLIENTES", "c1", fields); err != nil {
		t.Fatal(err)
	}
	fields["nombres"] = "changed"

	snap, err := s.Get(ctx, "CLIENTES", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Fields["nombres"] != "Ana" {
		t.Errorf("got %v want Ana", snap.Fields["nombres"])
	}
}

func TestMemoryStoreHonorsContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.All(ctx, "CLIENTES"); err == nil {
		t.Error("expected context error")
	}
}

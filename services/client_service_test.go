package services

import (
	"context"
	"testing"

	"prestamos/database"
	"prestamos/models"
)

func TestClientOptions(t *testing.T) {
	ctx := context.Background()
	svc := NewClientService(database.NewMemoryStore(), &recordingNotifier{})
	svc.Create(ctx, &models.Client{ID: "c2", Nombres: "Luis", Apellidos: "Pérez"})
	svc.Create(ctx, &models.Client{ID: "c1", Nombres: "Ana", Apellidos: "Gómez"})

	opts, err := svc.Options(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []models.Option{{Label: "Ana Gómez", Value: "c1"}, {Label: "Luis Pérez", Value: "c2"}}
	if len(opts) != len(want) {
		t.Fatalf("got %v want %v", opts, want)
	}
	for i := range want {
		if opts[i] != want[i] {
			t.Errorf("got %v want %v", opts[i], want[i])
		}
	}
}

func TestEmployeeOptionsOnFailure(t *testing.T) {
	store := newCountingStore()
	store.failColl = models.CollectionEmployees
	svc := NewEmployeeService(store, &recordingNotifier{})

	opts, err := svc.Options(context.Background())
	if err == nil {
		t.Fatal("got nil error")
	}
	if opts == nil || len(opts) != 0 {
		t.Errorf("got %v want an empty option list", opts)
	}
}

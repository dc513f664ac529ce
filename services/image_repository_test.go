package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"prestamos/database"
	"prestamos/models"
	"prestamos/storage"
)

func newItem() *models.Item {
	return &models.Item{
		BarrioRef: models.NewRef(models.CollectionNeighborhoods, "b1"),
		Estado:    models.ItemStatePublished,
		Precio:    250000,
	}
}

func TestImageRepositoryCreateUploadsBeforeWrite(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStore()
	repo := NewImageRepository[models.Item](database.NewMemoryStore(), blobs, models.CollectionItems, &recordingNotifier{})

	item := newItem()
	err := repo.Create(ctx, item,
		Attachment{Name: "frente.png", ContentType: "image/png", Body: strings.NewReader("a")},
		Attachment{Name: "lado.png", ContentType: "image/png", Body: strings.NewReader("b")},
	)
	if err != nil {
		t.Fatal(err)
	}

	stored, _ := repo.GetByID(ctx, item.ID)
	want := []string{
		"memory://articulo_images/" + item.ID + "/frente.png",
		"memory://articulo_images/" + item.ID + "/lado.png",
	}
	if len(stored.ImagenURLs) != len(want) {
		t.Fatalf("got urls %v want %v", stored.ImagenURLs, want)
	}
	for i := range want {
		if stored.ImagenURLs[i] != want[i] {
			t.Errorf("got url %s want %s", stored.ImagenURLs[i], want[i])
		}
	}
	if data, ok := blobs.Object(ImageKey(item.ID, "lado.png")); !ok || string(data) != "b" {
		t.Errorf("got object %q want b", data)
	}
}

func TestImageRepositoryUpdateReplacesImages(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStore()
	repo := NewImageRepository[models.Item](database.NewMemoryStore(), blobs, models.CollectionItems, &recordingNotifier{})

	item := newItem()
	if err := repo.Create(ctx, item, Attachment{Name: "viejo.png", Body: strings.NewReader("old")}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Update(ctx, item, Attachment{Name: "nuevo.png", Body: strings.NewReader("new")}); err != nil {
		t.Fatal(err)
	}

	if _, ok := blobs.Object(ImageKey(item.ID, "viejo.png")); ok {
		t.Error("previous image still stored")
	}
	stored, _ := repo.GetByID(ctx, item.ID)
	if len(stored.ImagenURLs) != 1 || !strings.HasSuffix(stored.ImagenURLs[0], "/nuevo.png") {
		t.Errorf("got urls %v want only nuevo.png", stored.ImagenURLs)
	}
}

func TestImageRepositoryUpdateMissingStoresNothing(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStore()
	notifier := &recordingNotifier{}
	repo := NewImageRepository[models.Item](database.NewMemoryStore(), blobs, models.CollectionItems, notifier)

	item := newItem()
	item.ID = "missing"
	err := repo.Update(ctx, item, Attachment{Name: "a.png", Body: strings.NewReader("a")})
	if !errors.Is(err, ErrTargetVanished) {
		t.Fatalf("got %v want ErrTargetVanished", err)
	}
	objects, _ := blobs.List(ctx, ImagePrefix+"/")
	if len(objects) != 0 {
		t.Errorf("got %d objects after failed update want 0", len(objects))
	}
	if len(notifier.errors) != 1 {
		t.Errorf("got %d error notifications want 1", len(notifier.errors))
	}
}

func TestImageRepositoryNumbersRepeatedNames(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStore()
	repo := NewImageRepository[models.Item](database.NewMemoryStore(), blobs, models.CollectionItems, &recordingNotifier{})

	item := newItem()
	err := repo.Create(ctx, item,
		Attachment{Name: "foto.png", Body: strings.NewReader("1")},
		Attachment{Name: "foto.png", Body: strings.NewReader("2")},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(item.ImagenURLs) != 2 || item.ImagenURLs[0] == item.ImagenURLs[1] {
		t.Fatalf("got urls %v want two distinct urls", item.ImagenURLs)
	}
	if data, ok := blobs.Object(ImageKey(item.ID, "foto-1.png")); !ok || string(data) != "2" {
		t.Errorf("got object %q want 2", data)
	}

	urls, err := repo.UploadImages(ctx, item.ID, Attachment{Name: "foto.png", Body: strings.NewReader("3")})
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 1 || !strings.HasSuffix(urls[0], "/foto-2.png") {
		t.Errorf("got urls %v want foto-2.png", urls)
	}
	if data, _ := blobs.Object(ImageKey(item.ID, "foto.png")); string(data) != "1" {
		t.Errorf("got object %q want the first upload kept", data)
	}
}

func TestImageRepositoryFailedUploadCleansUp(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	db := database.NewMemoryStore()
	repo := NewImageRepository[models.Item](db, failingPutBlobs{MemoryStore: mem, failName: "roto.png"}, models.CollectionItems, &recordingNotifier{})

	item := newItem()
	item.ID = "a1"
	err := repo.Create(ctx, item,
		Attachment{Name: "bien.png", Body: strings.NewReader("ok")},
		Attachment{Name: "roto.png", Body: strings.NewReader("x")},
	)
	if !errors.Is(err, errBoom) {
		t.Fatalf("got %v want errBoom", err)
	}
	objects, _ := mem.List(ctx, ImagePrefix+"/")
	if len(objects) != 0 {
		t.Errorf("got %d objects left after failed upload want 0", len(objects))
	}
	if _, err := db.Get(ctx, models.CollectionItems, "a1"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("got %v want no document written", err)
	}
}

func TestImageRepositoryDeleteSurvivesImageFailure(t *testing.T) {
	ctx := context.Background()
	blobs := brokenDeleteBlobs{storage.NewMemoryStore()}
	notifier := &recordingNotifier{}
	repo := NewImageRepository[models.Item](database.NewMemoryStore(), blobs, models.CollectionItems, notifier)

	item := newItem()
	if err := repo.Create(ctx, item, Attachment{Name: "foto.png", Body: strings.NewReader("x")}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, item.ID); err != nil {
		t.Fatalf("got %v want the document delete to succeed", err)
	}

	got, err := repo.GetByID(ctx, item.ID)
	if err != nil || got != nil {
		t.Errorf("got %v, %v want the document gone", got, err)
	}
	if last := notifier.successes[len(notifier.successes)-1]; last != "Documento eliminado exitosamente!" {
		t.Errorf("got last success %q", last)
	}
}

func TestImageKeyUsesBaseName(t *testing.T) {
	if got := ImageKey("a1", "../../etc/passwd"); got != "articulo_images/a1/passwd" {
		t.Errorf("got %s want articulo_images/a1/passwd", got)
	}
}

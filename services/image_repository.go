package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"prestamos/database"
	"prestamos/storage"
	"prestamos/utils"
)

// ImagePrefix is the object storage folder holding every item's images
const ImagePrefix = "articulo_images"

// Attachment is an image file sent along with a document
type Attachment struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// ImageDocument is a Document that carries the URLs of its uploaded images
type ImageDocument[T any] interface {
	Document[T]
	GetImageURLs() []string
	SetImageURLs(urls []string)
}

// ImageRepository is a Repository whose documents own images in object storage
type ImageRepository[T any, PT ImageDocument[T]] struct {
	*Repository[T, PT]
	blobs storage.Store
}

// NewImageRepository creates an image-aware repository for collection
func NewImageRepository[T any, PT ImageDocument[T]](db database.Store, blobs storage.Store, collection string, notifier Notifier) *ImageRepository[T, PT] {
	return &ImageRepository[T, PT]{
		Repository: NewRepository[T, PT](db, collection, notifier),
		blobs:      blobs,
	}
}

// ImageKey returns the object key for an image of document id
func ImageKey(id, name string) string {
	return ImagePrefix + "/" + id + "/" + path.Base(name)
}

func imageFolder(id string) string {
	return ImagePrefix + "/" + id + "/"
}

// Create uploads the attachments, then writes doc with their URLs
func (r *ImageRepository[T, PT]) Create(ctx context.Context, doc *T, files ...Attachment) error {
	r.EnsureID(doc)
	if len(files) > 0 {
		urls, err := r.upload(ctx, PT(doc).GetID(), files)
		if err != nil {
			r.notifier.Error(err, "Error al cargar la imagen")
			return err
		}
		PT(doc).SetImageURLs(urls)
	}
	return r.Repository.Create(ctx, doc)
}

// Update replaces the document's images when attachments are given, then
// merges doc into the stored document.
func (r *ImageRepository[T, PT]) Update(ctx context.Context, doc *T, files ...Attachment) error {
	if len(files) > 0 {
		id := PT(doc).GetID()
		if err := r.exists(ctx, id); err != nil {
			r.notifier.Error(err, fmt.Sprintf("Error al actualizar documento en %s", r.collection))
			return err
		}
		if err := r.removeImages(ctx, id); err != nil {
			utils.LogWarn("Error al eliminar las imágenes de %s/%s: %v", r.collection, id, err)
		}
		urls, err := r.upload(ctx, id, files)
		if err != nil {
			r.notifier.Error(err, "Error al cargar la imagen")
			return err
		}
		PT(doc).SetImageURLs(urls)
	}
	return r.Repository.Update(ctx, doc)
}

// Delete removes the document's images and then the document. Image
// failures are logged and do not stop the document delete.
func (r *ImageRepository[T, PT]) Delete(ctx context.Context, id string) error {
	if err := r.removeImages(ctx, id); err != nil {
		utils.LogWarn("Error al eliminar las imágenes de %s/%s: %v", r.collection, id, err)
	}
	return r.Repository.Delete(ctx, id)
}

// UploadImages stores the attachments under the document's folder, next to
// the images already there, and returns their URLs in the order given. All
// uploads finish before it returns.
func (r *ImageRepository[T, PT]) UploadImages(ctx context.Context, id string, files ...Attachment) ([]string, error) {
	existing, err := r.blobs.List(ctx, imageFolder(id))
	if err != nil {
		err = fmt.Errorf("list images of %s: %w", id, err)
		r.notifier.Error(err, "Error al cargar la imagen")
		return nil, err
	}
	taken := make([]string, 0, len(existing))
	for _, obj := range existing {
		taken = append(taken, path.Base(obj.Key))
	}
	urls, err := r.upload(ctx, id, files, taken...)
	if err != nil {
		r.notifier.Error(err, "Error al cargar la imagen")
		return nil, err
	}
	return urls, nil
}

// DeleteImages removes every stored image of the document
func (r *ImageRepository[T, PT]) DeleteImages(ctx context.Context, id string) error {
	if err := r.removeImages(ctx, id); err != nil {
		r.notifier.Error(err, "Error al eliminar las imágenes del artículo")
		return err
	}
	return nil
}

func (r *ImageRepository[T, PT]) upload(ctx context.Context, id string, files []Attachment, taken ...string) (urls []string, err error) {
	defer r.observe("upload_images", time.Now(), &err)

	names := uniqueNames(files, taken...)
	urls = make([]string, len(files))
	stored := make([]bool, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			key := ImageKey(id, names[i])
			if _, err := r.blobs.Put(gctx, key, file.Body, storage.PutOptions{ContentType: file.ContentType}); err != nil {
				return fmt.Errorf("upload %s: %w", key, err)
			}
			stored[i] = true
			url, err := r.blobs.URL(gctx, key)
			if err != nil {
				return fmt.Errorf("url for %s: %w", key, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// the request context may already be done, cleanup must still run
		cleanup := context.WithoutCancel(ctx)
		for i, ok := range stored {
			if !ok {
				continue
			}
			key := ImageKey(id, names[i])
			if derr := r.blobs.Delete(cleanup, key); derr != nil && !errors.Is(derr, storage.ErrNotFound) {
				utils.LogWarn("Error al eliminar la imagen huérfana %s: %v", key, derr)
			}
		}
		return nil, err
	}
	return urls, nil
}

// uniqueNames returns the base name of every attachment, numbering repeats
// ("foto.png", "foto-1.png", ...) so no upload overwrites another or a taken name.
func uniqueNames(files []Attachment, taken ...string) []string {
	names := make([]string, len(files))
	seen := make(map[string]bool, len(files)+len(taken))
	for _, name := range taken {
		seen[name] = true
	}
	for i, file := range files {
		name := path.Base(file.Name)
		ext := path.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		candidate := name
		for n := 1; seen[candidate]; n++ {
			candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
		}
		seen[candidate] = true
		names[i] = candidate
	}
	return names
}

// exists fails with ErrTargetVanished when id is not stored
func (r *ImageRepository[T, PT]) exists(ctx context.Context, id string) error {
	vanished := fmt.Errorf("%w: no existe el documento que quiere editar en %s", ErrTargetVanished, r.collection)
	if id == "" {
		return vanished
	}
	_, err := r.db.Get(ctx, r.collection, id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return vanished
	case err != nil:
		return fmt.Errorf("read %s/%s: %w", r.collection, id, err)
	}
	return nil
}

func (r *ImageRepository[T, PT]) removeImages(ctx context.Context, id string) (err error) {
	defer r.observe("delete_images", time.Now(), &err)

	if strings.TrimSpace(id) == "" {
		return nil
	}
	objects, err := r.blobs.List(ctx, imageFolder(id))
	if err != nil {
		return fmt.Errorf("list images of %s: %w", id, err)
	}
	var errs []error
	for _, obj := range objects {
		if err := r.blobs.Delete(ctx, obj.Key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			errs = append(errs, fmt.Errorf("delete %s: %w", obj.Key, err))
		}
	}
	return errors.Join(errs...)
}

package controllers

import (
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"prestamos/database"
	"prestamos/models"
	"prestamos/services"
	"prestamos/stores"
)

const maxUploadMemory = 32 << 20

// ItemDetails is the item detail page
type ItemDetails struct {
	Articulo *models.Item   `json:"articulo"`
	Barrio   database.Fields `json:"barrio"`
	Badge    string          `json:"badge"`
}

// ItemController serves /api/articulos. Create and update accept either a
// JSON body or a multipart form with an "articulo" JSON part and "imagenes" files.
type ItemController struct {
	*EntityController[models.Item, *models.Item]
	store *stores.ItemStore
	svc   *services.ItemService
}

// NewItemController creates a new ItemController
func NewItemController(store *stores.ItemStore, svc *services.ItemService, v *FormValidator) *ItemController {
	return &ItemController{
		EntityController: newEntityController[models.Item](store, svc.GetByID, v, "Artículo no encontrado"),
		store:            store,
		svc:              svc,
	}
}

// Register mounts the item routes on r
func (c *ItemController) Register(r *mux.Router) {
	r.HandleFunc("", c.List).Methods(http.MethodGet)
	r.HandleFunc("", c.Create).Methods(http.MethodPost)
	r.HandleFunc("/{id}/imagenes", c.AddImages).Methods(http.MethodPost)
	r.HandleFunc("/{id}/imagenes", c.DeleteImages).Methods(http.MethodDelete)
	r.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	r.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	r.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

// Get returns the item with its neighborhood and badge
func (c *ItemController) Get(w http.ResponseWriter, r *http.Request) {
	item, err := c.find(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, c.notFound)
		return
	}
	barrio, err := c.svc.NeighborhoodData(r.Context(), item)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemDetails{Articulo: item, Barrio: barrio, Badge: services.ItemBadge(item.Estado)})
}

// Create writes a new item and uploads its images
func (c *ItemController) Create(w http.ResponseWriter, r *http.Request) {
	item, files, ok := c.readForm(w, r)
	if !ok {
		return
	}
	defer closeAll(files)

	if err := c.store.CreateWithImages(r.Context(), item, attachments(files)...); err != nil {
		writeStoreError(w, err)
		return
	}
	logAction(r, c.store.Name(), "create", item.ID)
	writeJSON(w, http.StatusCreated, item)
}

// Update merges the item and replaces its images when files are sent
func (c *ItemController) Update(w http.ResponseWriter, r *http.Request) {
	item, files, ok := c.readForm(w, r)
	if !ok {
		return
	}
	defer closeAll(files)

	item.ID = mux.Vars(r)["id"]
	if len(files) == 0 && item.ImagenURLs == nil {
		// a form without images keeps the ones already uploaded
		if current, err := c.find(r.Context(), item.ID); err == nil && current != nil {
			item.ImagenURLs = current.ImagenURLs
		}
	}
	if err := c.store.UpdateWithImages(r.Context(), item, attachments(files)...); err != nil {
		writeStoreError(w, err)
		return
	}
	logAction(r, c.store.Name(), "update", item.ID)
	writeJSON(w, http.StatusOK, item)
}

// AddImages uploads the "imagenes" files of a multipart form
func (c *ItemController) AddImages(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	files, err := openFiles(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer closeAll(files)
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No se enviaron imágenes")
		return
	}

	item, err := c.store.AddImages(r.Context(), mux.Vars(r)["id"], attachments(files)...)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	logAction(r, c.store.Name(), "add_images", item.ID)
	writeJSON(w, http.StatusOK, item)
}

// DeleteImages removes every image of the item
func (c *ItemController) DeleteImages(w http.ResponseWriter, r *http.Request) {
	item, err := c.store.ClearImages(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	logAction(r, c.store.Name(), "clear_images", item.ID)
	writeJSON(w, http.StatusOK, item)
}

type openedFile struct {
	header *multipart.FileHeader
	file   multipart.File
}

func (c *ItemController) readForm(w http.ResponseWriter, r *http.Request) (*models.Item, []openedFile, bool) {
	item := &models.Item{}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		return item, nil, c.decodeForm(w, r, item)
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return nil, nil, false
	}
	if err := json.Unmarshal([]byte(r.FormValue("articulo")), item); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, nil, false
	}
	if errs := c.validator.Validate(item); errs != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Errors: errs})
		return nil, nil, false
	}
	files, err := openFiles(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	return item, files, true
}

func openFiles(form *multipart.Form) ([]openedFile, error) {
	if form == nil {
		return nil, nil
	}
	var files []openedFile
	for _, header := range form.File["imagenes"] {
		f, err := header.Open()
		if err != nil {
			closeAll(files)
			return nil, errors.New("no se pudo leer la imagen " + header.Filename)
		}
		files = append(files, openedFile{header: header, file: f})
	}
	return files, nil
}

func attachments(files []openedFile) []services.Attachment {
	out := make([]services.Attachment, 0, len(files))
	for _, f := range files {
		out = append(out, services.Attachment{
			Name:        f.header.Filename,
			ContentType: f.header.Header.Get("Content-Type"),
			Body:        f.file,
		})
	}
	return out
}

func closeAll(files []openedFile) {
	for _, f := range files {
		f.file.Close()
	}
}

package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"prestamos/services"
	"prestamos/stores"
)

// entityStore is what a list/detail page needs from an entity store
type entityStore[T any] interface {
	Fetch(ctx context.Context) error
	Create(ctx context.Context, doc *T) error
	Update(ctx context.Context, doc *T) error
	Delete(ctx context.Context, id string) error
	Get(id string) (*T, bool)
	State() stores.State[T]
	Name() string
}

type lookupFunc[T any] func(ctx context.Context, id string) (*T, error)

// EntityController serves the list, detail and form endpoints of one entity
type EntityController[T any, PT services.Document[T]] struct {
	store     entityStore[T]
	lookup    lookupFunc[T]
	validator *FormValidator
	notFound  string
}

func newEntityController[T any, PT services.Document[T]](store entityStore[T], lookup lookupFunc[T], v *FormValidator, notFound string) *EntityController[T, PT] {
	return &EntityController[T, PT]{store: store, lookup: lookup, validator: v, notFound: notFound}
}

// Register mounts the CRUD routes on r
func (c *EntityController[T, PT]) Register(r *mux.Router) {
	r.HandleFunc("", c.List).Methods(http.MethodGet)
	r.HandleFunc("", c.Create).Methods(http.MethodPost)
	r.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	r.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	r.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

// List fetches the collection and returns the store state
func (c *EntityController[T, PT]) List(w http.ResponseWriter, r *http.Request) {
	if err := c.store.Fetch(r.Context()); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.store.State())
}

// Get returns one document, from the cached list when present
func (c *EntityController[T, PT]) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := c.find(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, c.notFound)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (c *EntityController[T, PT]) find(ctx context.Context, id string) (*T, error) {
	if doc, ok := c.store.Get(id); ok {
		return doc, nil
	}
	return c.lookup(ctx, id)
}

// Create validates the form and writes a new document
func (c *EntityController[T, PT]) Create(w http.ResponseWriter, r *http.Request) {
	doc := new(T)
	if !c.decodeForm(w, r, doc) {
		return
	}
	if err := c.store.Create(r.Context(), doc); err != nil {
		writeStoreError(w, err)
		return
	}
	logAction(r, c.store.Name(), "create", PT(doc).GetID())
	writeJSON(w, http.StatusCreated, doc)
}

// Update validates the form and merges it into the document named by the path
func (c *EntityController[T, PT]) Update(w http.ResponseWriter, r *http.Request) {
	doc := new(T)
	if !c.decodeForm(w, r, doc) {
		return
	}
	PT(doc).SetID(mux.Vars(r)["id"])
	if err := c.store.Update(r.Context(), doc); err != nil {
		writeStoreError(w, err)
		return
	}
	logAction(r, c.store.Name(), "update", PT(doc).GetID())
	writeJSON(w, http.StatusOK, doc)
}

// Delete removes the document named by the path
func (c *EntityController[T, PT]) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := c.store.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	logAction(r, c.store.Name(), "delete", id)
	w.WriteHeader(http.StatusNoContent)
}

// decodeForm reads and validates the body, writing the failure response itself
func (c *EntityController[T, PT]) decodeForm(w http.ResponseWriter, r *http.Request, doc *T) bool {
	if err := decodeJSON(r, doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if errs := c.validator.Validate(doc); errs != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Errors: errs})
		return false
	}
	return true
}

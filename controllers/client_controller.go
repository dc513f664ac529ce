package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"prestamos/models"
	"prestamos/services"
	"prestamos/stores"
)

type optionSource interface {
	Options(ctx context.Context) ([]models.Option, error)
}

func optionsHandler(store optionSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := store.Options(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, opts)
	}
}

// ClientController serves /api/clientes
type ClientController struct {
	*EntityController[models.Client, *models.Client]
	store *stores.ClientStore
}

// NewClientController creates a new ClientController
func NewClientController(store *stores.ClientStore, svc *services.ClientService, v *FormValidator) *ClientController {
	return &ClientController{
		EntityController: newEntityController[models.Client](store, svc.GetByID, v, "Cliente no encontrado"),
		store:            store,
	}
}

// Register mounts the client routes on r
func (c *ClientController) Register(r *mux.Router) {
	r.HandleFunc("/opciones", optionsHandler(c.store)).Methods(http.MethodGet)
	c.EntityController.Register(r)
}

// EmployeeController serves /api/empleados
type EmployeeController struct {
	*EntityController[models.Employee, *models.Employee]
	store *stores.EmployeeStore
}

// NewEmployeeController creates a new EmployeeController
func NewEmployeeController(store *stores.EmployeeStore, svc *services.EmployeeService, v *FormValidator) *EmployeeController {
	return &EmployeeController{
		EntityController: newEntityController[models.Employee](store, svc.GetByID, v, "Empleado no encontrado"),
		store:            store,
	}
}

// Register mounts the employee routes on r
func (c *EmployeeController) Register(r *mux.Router) {
	r.HandleFunc("/opciones", optionsHandler(c.store)).Methods(http.MethodGet)
	c.EntityController.Register(r)
}

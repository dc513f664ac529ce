package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"prestamos/models"
	"prestamos/services"
	"prestamos/stores"
)

// LoanController serves /api/prestamos
type LoanController struct {
	*EntityController[models.Loan, *models.Loan]
	svc *services.LoanService
	now func() time.Time
}

// NewLoanController creates a new LoanController
func NewLoanController(store *stores.LoanStore, svc *services.LoanService, v *FormValidator) *LoanController {
	return &LoanController{
		EntityController: newEntityController[models.Loan](store, svc.GetByID, v, "Préstamo no encontrado"),
		svc:              svc,
		now:              time.Now,
	}
}

// Register mounts the loan routes on r
func (c *LoanController) Register(r *mux.Router) {
	r.HandleFunc("/nuevo", c.Defaults).Methods(http.MethodGet)
	r.HandleFunc("/{id}/detalle", c.Details).Methods(http.MethodGet)
	c.EntityController.Register(r)
}

// Defaults returns the initial values of the new loan form
func (c *LoanController) Defaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, services.NewLoanDefaults(c.now()))
}

// Details returns the loan with its client, employee, duration and badge
func (c *LoanController) Details(w http.ResponseWriter, r *http.Request) {
	details, err := c.svc.Details(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if details == nil {
		writeError(w, http.StatusNotFound, c.notFound)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

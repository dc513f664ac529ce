package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"prestamos/database"
	"prestamos/middleware"
	"prestamos/models"
	"prestamos/services"
	"prestamos/utils"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationResponse is the body of a 422 response
type ValidationResponse struct {
	Errors map[string]string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		utils.LogError("error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: "Error: " + message})
}

// writeStoreError maps a store or service failure to its status code
func writeStoreError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrTargetVanished), errors.Is(err, database.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrMalformedRef), errors.Is(err, models.ErrRefCollection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(dst)
}

// logAction records a successful write together with the authenticated user
func logAction(r *http.Request, store, action, id string) {
	user, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		user = "anonimo"
	}
	utils.Logger().WithFields(logrus.Fields{
		"usuario": user,
		"store":   store,
		"action":  action,
		"id":      id,
	}).Info("document changed")
}

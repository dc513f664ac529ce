package controllers

import (
	"net/http"

	"prestamos/services"
	"prestamos/stores"
)

// DashboardController serves /api/dashboard
type DashboardController struct {
	store *stores.DashboardStore
}

func NewDashboardController(store *stores.DashboardStore) *DashboardController {
	return &DashboardController{store: store}
}

// Totals refreshes and returns the dashboard counts
func (c *DashboardController) Totals(w http.ResponseWriter, r *http.Request) {
	if err := c.store.FetchTotals(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, stores.ErrorMessage(c.store.State().Error))
		return
	}
	writeJSON(w, http.StatusOK, c.store.State())
}

// NotificationController serves /api/notificaciones
type NotificationController struct {
	feed *services.Feed
}

func NewNotificationController(feed *services.Feed) *NotificationController {
	return &NotificationController{feed: feed}
}

// Drain returns and clears the pending notifications
func (c *NotificationController) Drain(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.feed.Drain())
}

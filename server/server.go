// Package server wires the stores, services and controllers into one router.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prestamos/config"
	"prestamos/controllers"
	"prestamos/database"
	"prestamos/middleware"
	"prestamos/services"
	"prestamos/storage"
	"prestamos/stores"
	"prestamos/utils"
)

// Backends are the external collaborators of the application
type Backends struct {
	Docs    database.Store
	Blobs   storage.Store
	Session stores.SessionStorage
	Mailer  services.Mailer
}

// Server holds the wired application
type Server struct {
	cfg       *config.Config
	backends  Backends
	router    *mux.Router
	feed      *services.Feed
	dashboard *stores.DashboardStore
	scheduler *services.TotalsScheduler
}

// OpenBackends connects to the document store, object storage and session
// storage selected by cfg.
func OpenBackends(ctx context.Context, cfg *config.Config) (Backends, error) {
	docs, err := database.Open(cfg)
	if err != nil {
		return Backends{}, err
	}
	blobs, err := storage.Open(ctx, cfg)
	if err != nil {
		docs.Close()
		return Backends{}, err
	}

	var session stores.SessionStorage = stores.NewMemorySession()
	if cfg.Session.Dir != "" {
		fs, err := stores.NewFileSession(cfg.Session.Dir)
		if err != nil {
			docs.Close()
			return Backends{}, err
		}
		session = fs
	}

	return Backends{
		Docs:    docs,
		Blobs:   blobs,
		Session: session,
		Mailer:  services.NewEmailService(cfg.SMTP),
	}, nil
}

// New builds the application on top of b
func New(cfg *config.Config, b Backends) *Server {
	if b.Session == nil {
		b.Session = stores.NewMemorySession()
	}
	feed := services.NewFeed(100)
	notifier := services.Fanout{services.LogNotifier{}, feed}

	clientSvc := services.NewClientService(b.Docs, notifier)
	employeeSvc := services.NewEmployeeService(b.Docs, notifier)
	itemSvc := services.NewItemService(b.Docs, b.Blobs, notifier)
	loanSvc := services.NewLoanService(b.Docs, clientSvc, employeeSvc, b.Mailer, notifier)

	clients := stores.NewClientStore(clientSvc, b.Session)
	employees := stores.NewEmployeeStore(employeeSvc, b.Session)
	items := stores.NewItemStore(itemSvc, b.Session)
	loans := stores.NewLoanStore(loanSvc, b.Session)
	dashboard := stores.NewDashboardStore(clients, employees, items, loans, b.Session)

	s := &Server{
		cfg:       cfg,
		backends:  b,
		feed:      feed,
		dashboard: dashboard,
		scheduler: services.NewTotalsScheduler(dashboard, cfg.Scheduler.Interval),
	}

	metrics := utils.GetMetrics()
	v := controllers.NewFormValidator()

	router := mux.NewRouter()
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.Metrics(metrics))

	router.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.RateLimit(utils.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)))
	if cfg.Auth.JWTSecret != "" {
		api.Use(middleware.Auth([]byte(cfg.Auth.JWTSecret)))
	}

	controllers.NewClientController(clients, clientSvc, v).Register(api.PathPrefix("/clientes").Subrouter())
	controllers.NewEmployeeController(employees, employeeSvc, v).Register(api.PathPrefix("/empleados").Subrouter())
	controllers.NewItemController(items, itemSvc, v).Register(api.PathPrefix("/articulos").Subrouter())
	controllers.NewLoanController(loans, loanSvc, v).Register(api.PathPrefix("/prestamos").Subrouter())
	api.HandleFunc("/dashboard", controllers.NewDashboardController(dashboard).Totals).Methods(http.MethodGet)
	api.HandleFunc("/notificaciones", controllers.NewNotificationController(feed).Drain).Methods(http.MethodGet)

	s.router = router
	return s
}

// Handler returns the HTTP handler of the application. CORS wraps the
// router so preflight requests are answered before route matching.
func (s *Server) Handler() http.Handler {
	return middleware.CORS(s.router)
}

// Dashboard returns the dashboard store
func (s *Server) Dashboard() *stores.DashboardStore {
	return s.dashboard
}

// Scheduler returns the totals scheduler; it is not started by New
func (s *Server) Scheduler() *services.TotalsScheduler {
	return s.scheduler
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if _, err := s.backends.Docs.Get(ctx, "_health", "ping"); err != nil && !errors.Is(err, database.ErrNotFound) {
		utils.LogWarn("health check: %v", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(`{"status":"` + status + `","docstore":"` + string(s.backends.Docs.Driver()) + `"}`))
}

// Close stops the scheduler and releases the document store
func (s *Server) Close() error {
	s.scheduler.Stop()
	return s.backends.Docs.Close()
}

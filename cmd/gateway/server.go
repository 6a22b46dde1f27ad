package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/streamlift/panel_core/internal/config"
	"github.com/streamlift/panel_core/internal/logging"
	"github.com/streamlift/panel_core/internal/metrics"
	"github.com/streamlift/panel_core/internal/middleware"
	"github.com/streamlift/panel_core/internal/mutation"
	"github.com/streamlift/panel_core/internal/notify"
	"github.com/streamlift/panel_core/internal/resource"
)

// server holds the wired panel core the handlers operate on.
type server struct {
	cfg      *config.Config
	log      *logging.Logger
	metrics  *metrics.Metrics
	cache    *resource.Cache
	executor *mutation.Executor
	queue    *notify.Queue
	limiter  *middleware.RateLimiter
}

func newServer(cfg *config.Config, log *logging.Logger, m *metrics.Metrics,
	cache *resource.Cache, executor *mutation.Executor, queue *notify.Queue) *server {
	return &server{
		cfg:      cfg,
		log:      log,
		metrics:  m,
		cache:    cache,
		executor: executor,
		queue:    queue,
		limiter:  middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log),
	}
}

func (s *server) router() http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Logging(s.log))
	r.Use(middleware.Metrics(s.metrics))
	r.Use(middleware.CORS(s.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Auth(s.cfg.Auth.JWTSecret, s.log))

	r.Use(s.limiter.Handler())

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Storefront.
	api.HandleFunc("/reviews/{productID}", s.handleListReviews).Methods(http.MethodGet)
	api.HandleFunc("/reviews/{productID}", s.handleCreateReview).Methods(http.MethodPost)
	api.HandleFunc("/plans", s.handleListPlans).Methods(http.MethodGet)
	api.HandleFunc("/subscriptions", s.handleListSubscriptions).Methods(http.MethodGet)
	api.HandleFunc("/subscriptions/{id}/status", s.handleChangeSubscriptionStatus).Methods(http.MethodPost)

	// Self-service account.
	api.HandleFunc("/account/profile", s.handleUpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/account/password", s.handleChangePassword).Methods(http.MethodPost)

	// Notifications.
	api.HandleFunc("/notifications", s.handleListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}", s.handleDismissNotification).Methods(http.MethodDelete)

	// Back office.
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/invoices", s.handleListInvoices).Methods(http.MethodGet)
	admin.HandleFunc("/invoices", s.handleCreateInvoice).Methods(http.MethodPost)
	admin.HandleFunc("/invoices/{id}", s.handleUpdateInvoice).Methods(http.MethodPut)

	admin.HandleFunc("/plans", s.handleCreatePlan).Methods(http.MethodPost)
	admin.HandleFunc("/plans/{id}", s.handleUpdatePlan).Methods(http.MethodPut)
	admin.HandleFunc("/plans/{id}/visibility", s.handleTogglePlanVisibility).Methods(http.MethodPost)

	admin.HandleFunc("/providers", s.handleListProviders).Methods(http.MethodGet)
	admin.HandleFunc("/providers/import", s.handleImportProvider).Methods(http.MethodPost)
	admin.HandleFunc("/providers/{id}/active", s.handleToggleProviderActive).Methods(http.MethodPost)

	admin.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", s.handleUpdateUser).Methods(http.MethodPatch)
	admin.HandleFunc("/users/{id}", s.handleDeleteUser).Methods(http.MethodDelete)

	admin.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	admin.HandleFunc("/settings", s.handleUpdateSettings).Methods(http.MethodPut)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

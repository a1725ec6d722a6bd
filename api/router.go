package api

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/billbatista/expensebook/middleware"
	"github.com/billbatista/expensebook/session"
)

type RouterConfig struct {
	Verifier    session.Verifier
	Accounts    middleware.AccountChecker
	CORSOrigins []string
}

func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	router.Use(middleware.AuthMiddleware(cfg.Verifier, cfg.Accounts))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Public routes
	router.Get("/health", h.Health)
	router.Post("/auth/register", h.Register)
	router.Post("/auth/login", h.Login)

	// Protected routes - require authentication
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/auth/me", h.Me)

		r.Put("/budget/set", h.SetBudget)
		r.Put("/budget/add", h.AddToBudget)

		r.Get("/expenses", h.ListExpenses)
		r.Post("/expenses", h.CreateExpense)
		r.Delete("/expenses", h.ClearExpenses)
		r.Delete("/expenses/{id}", h.DeleteExpense)
	})

	return router
}

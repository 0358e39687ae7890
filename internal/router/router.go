package router

import (
	"github.com/MAKAMOUL/prophoneplus/internal/handler"
	"github.com/MAKAMOUL/prophoneplus/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler         *handler.Handler
	DataHandler     *handler.DataHandler
	ProductHandler  *handler.ProductHandler
	CategoryHandler *handler.CategoryHandler
	SaleHandler     *handler.SaleHandler
	AlertHandler    *handler.AlertHandler
	UserHandler     *handler.UserHandler
	SyncHandler     *handler.SyncHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", "X-User-ID", "X-User-Name", "X-User-Role"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session)

		r.Route("/api/v1", func(r chi.Router) {
			// Health check endpoints
			if cfg.Handler != nil {
				r.Get("/health", cfg.Handler.Health)
				r.Get("/ready", cfg.Handler.Ready)
			}

			// Combined snapshot
			if cfg.DataHandler != nil {
				r.Get("/data", cfg.DataHandler.Get)
				r.Post("/data/refresh", cfg.DataHandler.Refresh)
			}

			// Product endpoints
			if cfg.ProductHandler != nil {
				r.Route("/products", func(r chi.Router) {
					r.Get("/", cfg.ProductHandler.List)
					r.Post("/", cfg.ProductHandler.Create)
					r.Get("/low-stock", cfg.ProductHandler.LowStock)
					r.Put("/{id}", cfg.ProductHandler.Update)
					r.Delete("/{id}", cfg.ProductHandler.Delete)
					r.Get("/{id}/image", cfg.ProductHandler.GetImage)
					r.Post("/{id}/image", cfg.ProductHandler.UploadImage)
				})
			}

			// Category endpoints
			if cfg.CategoryHandler != nil {
				r.Route("/categories", func(r chi.Router) {
					r.Get("/", cfg.CategoryHandler.List)
					r.Post("/", cfg.CategoryHandler.Create)
					r.Put("/{id}", cfg.CategoryHandler.Update)
					r.Delete("/{id}", cfg.CategoryHandler.Delete)
				})
			}

			// Sale endpoints
			if cfg.SaleHandler != nil {
				r.Route("/sales", func(r chi.Router) {
					r.Get("/", cfg.SaleHandler.List)
					r.Post("/", cfg.SaleHandler.Create)
					r.Delete("/{id}", cfg.SaleHandler.Delete)
				})
			}

			// Alert endpoints
			if cfg.AlertHandler != nil {
				r.Route("/alerts", func(r chi.Router) {
					r.Get("/", cfg.AlertHandler.List)
					r.Post("/{id}/dismiss", cfg.AlertHandler.Dismiss)
				})
			}

			// Local account endpoints
			if cfg.UserHandler != nil {
				r.Route("/users", func(r chi.Router) {
					r.Get("/", cfg.UserHandler.List)
					r.Post("/", cfg.UserHandler.Create)
					r.Get("/{id}", cfg.UserHandler.Get)
					r.Put("/{id}", cfg.UserHandler.Update)
				})
			}

			// Sync endpoints
			if cfg.SyncHandler != nil {
				r.Route("/sync", func(r chi.Router) {
					r.Get("/status", cfg.SyncHandler.Status)
					r.Post("/run", cfg.SyncHandler.Run)
					r.Get("/events", cfg.SyncHandler.Events)
				})
			}
		})
	})

	return r
}

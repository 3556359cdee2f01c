package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"msku-service/internal/config"
	"msku-service/internal/middleware"
	"msku-service/internal/resolve/catalog"
	mskuHnd "msku-service/internal/resolve/handler"
	"msku-service/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, cat *catalog.Catalog) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)

	h := mskuHnd.New(cat, cfg, logger)
	r.Route("/api", func(r chi.Router) {
		r.Route("/sku-mappings", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Get("/{id}", h.Get)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
		r.Get("/resolve", h.Resolve)
		r.Post("/resolve/bulk", h.Bulk)
		r.Get("/patterns", h.Patterns)
		r.Post("/upload", h.Upload)
		r.Post("/sales", h.Sales)
	})

	return r
}

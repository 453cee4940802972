// Package router assembles the gateway's HTTP routes and middleware chain.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/radif/filegateway/internal/config"
	"github.com/radif/filegateway/internal/file"
	appMiddleware "github.com/radif/filegateway/internal/middleware"

	_ "github.com/radif/filegateway/docs/swagger"
)

// New returns the root handler. Upload and download routes are guarded by bearer auth
// only when a JWT secret is configured; the ledger route exists only with a database.
func New(cfg *config.Config, files *file.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Group(func(r chi.Router) {
		if cfg.AuthEnabled() {
			r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
		}
		r.Post("/upload", files.Upload)
		r.Get("/download/{filename}", files.Download)
		if cfg.LedgerEnabled() {
			r.Get("/uploads", files.Recent)
		}
	})

	return r
}

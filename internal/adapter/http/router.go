package http

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

// RouterConfig names the API and supplies what it serves.
type RouterConfig struct {
	Name     string
	Version  string
	Services Services
	Webhooks Ingester
}

// NewRouter builds the chi router: request middleware, HTTP server spans,
// the Huma API and the raw webhook route.
func NewRouter(cfg RouterConfig) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware(cfg.Name, otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig(cfg.Name, cfg.Version))
	Register(api, cfg.Services)

	router.Method(http.MethodPost, WebhookPath, NewWebhookHandler(cfg.Webhooks))

	return router
}

// Package httpapi assembles the public HTTP surface.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/minimarket-pos/internal/catalog"
	"github.com/joao-fontenele/minimarket-pos/internal/imagesearch"
	"github.com/joao-fontenele/minimarket-pos/internal/orders"
	"github.com/joao-fontenele/minimarket-pos/internal/telemetry"
)

type Handlers struct {
	Catalog *catalog.Handler
	Orders  *orders.Handler
	Images  *imagesearch.Handler
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
}

func NewRouter(h Handlers, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", orders.IdempotencyKeyHeader},
		MaxAge:         300,
	}))
	r.Use(telemetry.RouteTag)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.Catalog.HandleListProducts)
		r.Post("/", h.Catalog.HandleCreateProduct)
		r.Get("/{id}", h.Catalog.HandleGetProduct)
		r.Put("/{id}", h.Catalog.HandleUpdateProduct)
		r.Patch("/{id}", h.Catalog.HandleUpdateProduct)
		r.Delete("/{id}", h.Catalog.HandleDeleteProduct)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.Catalog.HandleListCategories)
		r.Post("/", h.Catalog.HandleCreateCategory)
		r.Put("/{id}", h.Catalog.HandleUpdateCategory)
		r.Delete("/{id}", h.Catalog.HandleDeleteCategory)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.Orders.HandleList)
		r.Post("/", h.Orders.HandleCreate)
		r.Get("/{id}", h.Orders.HandleGet)
	})

	r.Post("/generate-image", h.Images.HandleGenerate)

	return otelhttp.NewHandler(r, "pos-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/metrics" && r.URL.Path != "/healthz"
		}),
	)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

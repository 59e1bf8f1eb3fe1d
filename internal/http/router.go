package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewRouter assembles the cart API with the shared middleware stack.
func NewRouter(handler *CartHandler, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(IdentityMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", handler.GetCart)
		r.Post("/", handler.AddItem)
		r.Delete("/", handler.ClearCart)
		r.Post("/sync", handler.SyncCart)
		r.Get("/count", handler.GetCount)
		r.Get("/breakdown", handler.GetBreakdown)
		r.Patch("/{id}", handler.UpdateQuantity)
		r.Delete("/{id}", handler.RemoveItem)
	})

	return otelhttp.NewHandler(r, "cart-api")
}

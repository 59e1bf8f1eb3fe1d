package http

import (
	"context"
	"net/http"
)

// IdentityMiddleware pulls the authenticated identity from the request.
// Header-based stand-in for a real session validation layer; an absent
// header means a guest request.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := r.Header.Get("X-User-ID")
		ctx := context.WithValue(r.Context(), "identity", identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFromContext(ctx context.Context) string {
	if identity, ok := ctx.Value("identity").(string); ok {
		return identity
	}
	return ""
}

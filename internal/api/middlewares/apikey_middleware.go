package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/markdave123-py/kbase/internal/services"
)

// ApiKeyMiddleware rejects search requests before any embedding or query
// work happens. The Authorization header may carry the raw key or the
// "Bearer <key>" form; it must match the collection's stored key exactly.
func ApiKeyMiddleware(admin *services.AdminService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			collection := chi.URLParam(r, "collection")

			valid, err := admin.ValidateApiKey(r.Context(), header, collection)
			if err != nil {
				http.Error(w, "authorization check failed", http.StatusInternalServerError)
				return
			}
			if !valid {
				http.Error(w, "missing or invalid api key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

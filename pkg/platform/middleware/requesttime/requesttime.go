package requesttime

import (
	"net/http"
	"time"

	"careguard/pkg/requestcontext"
)

// Middleware pins a single timestamp to the request context so every clock
// read within one submission (document-age check, expiry computation,
// recorded-at) observes the same instant.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package http

import (
	"net/http"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// ActorHeader identifies the user performing a request.
const ActorHeader = "X-Actor"

// ActorMiddleware puts the X-Actor header on the request context, where the
// workflow picks it up for audit records.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor := r.Header.Get(ActorHeader); actor != "" {
			r = r.WithContext(domain.WithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

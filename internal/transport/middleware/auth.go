package middleware

import (
	"net/http"

	"github.com/frahmantamala/meeting-manager/internal"
	"github.com/frahmantamala/meeting-manager/pkg/logger"
)

const UserIDHeader = "X-User-ID"

// UserContext places the acting user from the X-User-ID header into the
// request context. Requests without a valid header pass through anonymous;
// handlers that need an actor reject them.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if userID, ok := internal.ParseUserID(r.Header.Get(UserIDHeader)); ok {
			ctx = internal.ContextWithUserID(ctx, userID)
			ctx = logger.With(ctx, "user_id", userID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireActor rejects writes that carry no acting user.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if internal.UserIDFromContext(r.Context()) == 0 {
				writeAppError(w, internal.ErrMissingActor)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

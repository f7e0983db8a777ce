// Package authn is the token gate for protected routes. It never touches
// storage: a valid signature and unexpired token are enough to pass, and the
// resolved user id travels in the request context.
package authn

import (
	"context"
	"log/slog"
	"net/http"

	resp "devconnect/internal/lib/api/response"
	"devconnect/internal/lib/jwt"
	sl "devconnect/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ctxKey struct{}

func New(log *slog.Logger, headerName, tokenSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authn.New"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token := r.Header.Get(headerName)
			if token == "" {
				log.Info("missing auth token")

				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Msg("No token, authorization denied."))

				return
			}

			userID, err := jwt.ParseToken(token, tokenSecret)
			if err != nil {
				log.Info("invalid auth token", sl.Err(err))

				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Msg("Token is not valid."))

				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, userID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated subject id injected by the middleware.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok
}

// Package me serves the authenticated identity, minus the password hash.
package me

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	resp "devconnect/internal/lib/api/response"
	sl "devconnect/internal/lib/logger"
	"devconnect/internal/middleware/authn"
	"devconnect/internal/models"
	"devconnect/internal/storage"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type IdentityProvider interface {
	Identity(ctx context.Context, userID int64) (models.User, error)
}

func New(log *slog.Logger, provider IdentityProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.me.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserID(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Msg("No token, authorization denied."))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := provider.Identity(ctx, userID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Msg("User not found."))

				return
			}

			log.Error("failed to load user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal server error."))

			return
		}

		render.JSON(w, r, user)
	}
}

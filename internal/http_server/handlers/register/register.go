package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"devconnect/internal/auth"
	resp "devconnect/internal/lib/api/response"
	sl "devconnect/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type Response struct {
	Token string `json:"token"`
}

type Registrar interface {
	Register(ctx context.Context, name, email, password string) (string, error)
}

type WelcomePublisher interface {
	PublishWelcome(ctx context.Context, email, name string) error
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	registrar Registrar,
	publisher WelcomePublisher,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request."))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Info("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		token, err := registrar.Register(ctx, req.Name, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrUserExists) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("User already exists."))

				return
			}

			log.Error("failed to register user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal server error."))

			return
		}

		// Welcome email is best-effort; registration already succeeded.
		if err := publisher.PublishWelcome(ctx, req.Email, req.Name); err != nil {
			log.Warn("failed to publish welcome email", sl.Err(err))
		}

		log.Info("User registered")

		render.JSON(w, r, Response{Token: token})
	}
}

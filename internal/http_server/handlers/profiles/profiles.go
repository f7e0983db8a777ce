package profiles

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	resp "devconnect/internal/lib/api/response"
	sl "devconnect/internal/lib/logger"
	"devconnect/internal/middleware/authn"
	"devconnect/internal/models"
	"devconnect/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Storage interface {
	Profile(ctx context.Context, userID int64) (models.Profile, error)
	Profiles(ctx context.Context) ([]models.Profile, error)
	UpsertProfile(ctx context.Context, profile models.Profile) (models.Profile, error)
	AddExperience(ctx context.Context, userID int64, exp models.Experience) (models.Profile, error)
	DeleteExperience(ctx context.Context, userID, expID int64) (models.Profile, error)
	AddEducation(ctx context.Context, userID int64, edu models.Education) (models.Profile, error)
	DeleteEducation(ctx context.Context, userID, eduID int64) (models.Profile, error)
	DeleteUserCascade(ctx context.Context, userID int64) error
}

type UpsertRequest struct {
	Status         string `json:"status" validate:"required"`
	Skills         string `json:"skills" validate:"required"`
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	GithubUsername string `json:"github_user_name"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	Linkedin       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

func Me(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profiles.Me"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserID(r.Context())
		if !ok {
			unauthorized(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		profile, err := store.Profile(ctx, userID)
		if err != nil {
			if errors.Is(err, storage.ErrProfileNotFound) {
				profileNotFound(w, r)
				return
			}

			log.Error("failed to load profile", sl.Err(err))

			internalError(w, r)

			return
		}

		render.JSON(w, r, profile)
	}
}

func All(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profiles.All"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		profiles, err := store.Profiles(ctx)
		if err != nil {
			log.Error("failed to list profiles", sl.Err(err))

			internalError(w, r)

			return
		}

		render.JSON(w, r, profiles)
	}
}

func ByUser(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profiles.ByUser"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
		if err != nil {
			profileNotFound(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		profile, err := store.Profile(ctx, userID)
		if err != nil {
			if errors.Is(err, storage.ErrProfileNotFound) {
				profileNotFound(w, r)
				return
			}

			log.Error("failed to load profile", sl.Err(err))

			internalError(w, r)

			return
		}

		render.JSON(w, r, profile)
	}
}

// Upsert creates the acting user's profile or replaces its fields; the two
// flows converge on one storage call.
func Upsert(log *slog.Logger, validate *validator.Validate, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profiles.Upsert"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserID(r.Context())
		if !ok {
			unauthorized(w, r)
			return
		}

		var req UpsertRequest

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

		profile, err := store.UpsertProfile(ctx, models.Profile{
			UserID:         userID,
			Status:         req.Status,
			Skills:         splitSkills(req.Skills),
			Company:        req.Company,
			Website:        req.Website,
			Location:       req.Location,
			Bio:            req.Bio,
			GithubUsername: req.GithubUsername,
			Social: models.Social{
				Youtube:   req.Youtube,
				Twitter:   req.Twitter,
				Facebook:  req.Facebook,
				Linkedin:  req.Linkedin,
				Instagram: req.Instagram,
			},
		})
		if err != nil {
			log.Error("failed to upsert profile", sl.Err(err))

			internalError(w, r)

			return
		}

		log.Info("profile saved", slog.Int64("uid", userID))

		render.JSON(w, r, profile)
	}
}

// DeleteAccount removes the user's posts, profile and identity record.
func DeleteAccount(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profiles.DeleteAccount"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserID(r.Context())
		if !ok {
			unauthorized(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := store.DeleteUserCascade(ctx, userID); err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Msg("User not found."))

				return
			}

			log.Error("failed to delete account", sl.Err(err))

			internalError(w, r)

			return
		}

		log.Info("account deleted", slog.Int64("uid", userID))

		render.JSON(w, r, resp.Msg("User deleted."))
	}
}

func splitSkills(raw string) []string {
	parts := strings.Split(raw, ",")

	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}

	return skills
}

func profileNotFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, resp.Msg("There is no profile for this user."))
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, resp.Msg("User not authorized."))
}

func internalError(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, resp.Error("Internal server error."))
}

package profiles

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
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

// dateLayout is the wire format for experience/education dates.
const dateLayout = "2006-01-02"

type ExperienceRequest struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type EducationRequest struct {
	School       string `json:"school" validate:"required"`
	Degree       string `json:"degree" validate:"required"`
	FieldOfStudy string `json:"field_of_study" validate:"required"`
	From         string `json:"from" validate:"required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

func AddExperience(log *slog.Logger, validate *validator.Validate, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profiles.AddExperience"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserID(r.Context())
		if !ok {
			unauthorized(w, r)
			return
		}

		var req ExperienceRequest

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

		from, to, err := parseDates(req.From, req.To)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Date is not valid."))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		profile, err := store.AddExperience(ctx, userID, models.Experience{
			Title:       req.Title,
			Company:     req.Company,
			Location:    req.Location,
			From:        from,
			To:          to,
			Current:     req.Current,
			Description: req.Description,
		})
		if err != nil {
			if errors.Is(err, storage.ErrProfileNotFound) {
				profileNotFound(w, r)
				return
			}

			log.Error("failed to add experience", sl.Err(err))

			internalError(w, r)

			return
		}

		render.JSON(w, r, profile)
	}
}

func DeleteExperience(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profiles.DeleteExperience"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserID(r.Context())
		if !ok {
			unauthorized(w, r)
			return
		}

		expID, err := strconv.ParseInt(chi.URLParam(r, "exp_id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Msg("Experience not found."))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		profile, err := store.DeleteExperience(ctx, userID, expID)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrProfileNotFound):
				profileNotFound(w, r)
			case errors.Is(err, storage.ErrExperienceNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Msg("Experience not found."))
			default:
				log.Error("failed to delete experience", sl.Err(err))
				internalError(w, r)
			}

			return
		}

		render.JSON(w, r, profile)
	}
}

func AddEducation(log *slog.Logger, validate *validator.Validate, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profiles.AddEducation"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserID(r.Context())
		if !ok {
			unauthorized(w, r)
			return
		}

		var req EducationRequest

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

		from, to, err := parseDates(req.From, req.To)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Date is not valid."))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		profile, err := store.AddEducation(ctx, userID, models.Education{
			School:       req.School,
			Degree:       req.Degree,
			FieldOfStudy: req.FieldOfStudy,
			From:         from,
			To:           to,
			Current:      req.Current,
			Description:  req.Description,
		})
		if err != nil {
			if errors.Is(err, storage.ErrProfileNotFound) {
				profileNotFound(w, r)
				return
			}

			log.Error("failed to add education", sl.Err(err))

			internalError(w, r)

			return
		}

		render.JSON(w, r, profile)
	}
}

func DeleteEducation(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profiles.DeleteEducation"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserID(r.Context())
		if !ok {
			unauthorized(w, r)
			return
		}

		eduID, err := strconv.ParseInt(chi.URLParam(r, "edu_id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Msg("Education not found."))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		profile, err := store.DeleteEducation(ctx, userID, eduID)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrProfileNotFound):
				profileNotFound(w, r)
			case errors.Is(err, storage.ErrEducationNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Msg("Education not found."))
			default:
				log.Error("failed to delete education", sl.Err(err))
				internalError(w, r)
			}

			return
		}

		render.JSON(w, r, profile)
	}
}

func parseDates(fromRaw, toRaw string) (time.Time, *time.Time, error) {
	from, err := time.Parse(dateLayout, fromRaw)
	if err != nil {
		return time.Time{}, nil, err
	}

	if toRaw == "" {
		return from, nil, nil
	}

	to, err := time.Parse(dateLayout, toRaw)
	if err != nil {
		return time.Time{}, nil, err
	}

	return from, &to, nil
}

package posts

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"devconnect/internal/auth"
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

type CommentRequest struct {
	Text string `json:"text" validate:"required"`
}

func CreateComment(
	log *slog.Logger,
	validate *validator.Validate,
	store Storage,
	users UserProvider,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.posts.CreateComment"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserID(r.Context())
		if !ok {
			unauthorized(w, r)
			return
		}

		postID, err := postID(r)
		if err != nil {
			postNotFound(w, r)
			return
		}

		var req CommentRequest

		err = render.DecodeJSON(r.Body, &req)
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

		user, err := users.UserByID(ctx, userID)
		if err != nil {
			log.Error("failed to load author", sl.Err(err))

			internalError(w, r)

			return
		}

		comments, err := store.AddComment(ctx, postID, models.Comment{
			UserID: user.ID,
			Text:   req.Text,
			Name:   user.Name,
			Avatar: user.AvatarURL,
		})
		if err != nil {
			if errors.Is(err, storage.ErrPostNotFound) {
				postNotFound(w, r)
				return
			}

			log.Error("failed to add comment", sl.Err(err))

			internalError(w, r)

			return
		}

		render.JSON(w, r, comments)
	}
}

func DeleteComment(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.posts.DeleteComment"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserID(r.Context())
		if !ok {
			unauthorized(w, r)
			return
		}

		postID, err := postID(r)
		if err != nil {
			postNotFound(w, r)
			return
		}

		commentID, err := strconv.ParseInt(chi.URLParam(r, "comment_id"), 10, 64)
		if err != nil {
			commentNotFound(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		comment, err := store.Comment(ctx, postID, commentID)
		if err != nil {
			if errors.Is(err, storage.ErrCommentNotFound) {
				commentNotFound(w, r)
				return
			}

			log.Error("failed to load comment", sl.Err(err))

			internalError(w, r)

			return
		}

		if err := auth.Authorize(comment.UserID, userID); err != nil {
			log.Info("comment delete denied", slog.Int64("owner", comment.UserID))

			unauthorized(w, r)

			return
		}

		comments, err := store.DeleteComment(ctx, postID, commentID)
		if err != nil {
			if errors.Is(err, storage.ErrCommentNotFound) {
				commentNotFound(w, r)
				return
			}

			log.Error("failed to delete comment", sl.Err(err))

			internalError(w, r)

			return
		}

		render.JSON(w, r, comments)
	}
}

func commentNotFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, resp.Msg("Comment not found."))
}

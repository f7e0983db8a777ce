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

type Storage interface {
	SavePost(ctx context.Context, post models.Post) (models.Post, error)
	Posts(ctx context.Context) ([]models.Post, error)
	Post(ctx context.Context, id int64) (models.Post, error)
	DeletePost(ctx context.Context, id int64) error
	AddLike(ctx context.Context, postID, userID int64) ([]models.Like, error)
	RemoveLike(ctx context.Context, postID, userID int64) ([]models.Like, error)
	AddComment(ctx context.Context, postID int64, comment models.Comment) ([]models.Comment, error)
	Comment(ctx context.Context, postID, commentID int64) (models.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID int64) ([]models.Comment, error)
}

type UserProvider interface {
	UserByID(ctx context.Context, id int64) (models.User, error)
}

type CreateRequest struct {
	Text string `json:"text" validate:"required"`
}

func Create(
	log *slog.Logger,
	validate *validator.Validate,
	store Storage,
	users UserProvider,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.posts.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, ok := authn.UserID(r.Context())
		if !ok {
			unauthorized(w, r)
			return
		}

		var req CreateRequest

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

		user, err := users.UserByID(ctx, userID)
		if err != nil {
			log.Error("failed to load author", sl.Err(err))

			internalError(w, r)

			return
		}

		post, err := store.SavePost(ctx, models.Post{
			UserID: user.ID,
			Text:   req.Text,
			Name:   user.Name,
			Avatar: user.AvatarURL,
		})
		if err != nil {
			log.Error("failed to save post", sl.Err(err))

			internalError(w, r)

			return
		}

		log.Info("post created", slog.Int64("post_id", post.ID))

		render.JSON(w, r, post)
	}
}

func All(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.posts.All"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		posts, err := store.Posts(ctx)
		if err != nil {
			log.Error("failed to list posts", sl.Err(err))

			internalError(w, r)

			return
		}

		render.JSON(w, r, posts)
	}
}

func ByID(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.posts.ByID"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		postID, err := postID(r)
		if err != nil {
			postNotFound(w, r)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		post, err := store.Post(ctx, postID)
		if err != nil {
			if errors.Is(err, storage.ErrPostNotFound) {
				postNotFound(w, r)
				return
			}

			log.Error("failed to load post", sl.Err(err))

			internalError(w, r)

			return
		}

		render.JSON(w, r, post)
	}
}

func Delete(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.posts.Delete"

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

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		post, err := store.Post(ctx, postID)
		if err != nil {
			if errors.Is(err, storage.ErrPostNotFound) {
				postNotFound(w, r)
				return
			}

			log.Error("failed to load post", sl.Err(err))

			internalError(w, r)

			return
		}

		if err := auth.Authorize(post.UserID, userID); err != nil {
			log.Info("delete denied", slog.Int64("owner", post.UserID))

			unauthorized(w, r)

			return
		}

		if err := store.DeletePost(ctx, postID); err != nil {
			if errors.Is(err, storage.ErrPostNotFound) {
				postNotFound(w, r)
				return
			}

			log.Error("failed to delete post", sl.Err(err))

			internalError(w, r)

			return
		}

		log.Info("post deleted", slog.Int64("post_id", postID))

		render.JSON(w, r, resp.Msg("Post deleted."))
	}
}

func Like(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.posts.Like"

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

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		likes, err := store.AddLike(ctx, postID, userID)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrPostNotFound):
				postNotFound(w, r)
			case errors.Is(err, storage.ErrAlreadyLiked):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Msg("Post already liked."))
			default:
				log.Error("failed to like post", sl.Err(err))
				internalError(w, r)
			}

			return
		}

		render.JSON(w, r, likes)
	}
}

func Unlike(log *slog.Logger, store Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.posts.Unlike"

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

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		// Removes the like owned by the acting user, never someone else's.
		likes, err := store.RemoveLike(ctx, postID, userID)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrPostNotFound):
				postNotFound(w, r)
			case errors.Is(err, storage.ErrNotLiked):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Msg("Post has not yet been liked."))
			default:
				log.Error("failed to unlike post", sl.Err(err))
				internalError(w, r)
			}

			return
		}

		render.JSON(w, r, likes)
	}
}

func postID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func postNotFound(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, resp.Msg("Post not found."))
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, resp.Msg("User not authorized."))
}

func internalError(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, resp.Error("Internal server error."))
}

package profiles

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"devconnect/internal/github"
	resp "devconnect/internal/lib/api/response"
	sl "devconnect/internal/lib/logger"
	"devconnect/internal/models"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type RepoLister interface {
	Repos(ctx context.Context, username string) ([]models.Repo, error)
}

func GithubRepos(log *slog.Logger, lister RepoLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profiles.GithubRepos"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		username := chi.URLParam(r, "username")

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		repos, err := lister.Repos(ctx, username)
		if err != nil {
			if errors.Is(err, github.ErrProfileNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Msg("No Github profile found."))

				return
			}

			log.Error("failed to fetch github repos", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal server error."))

			return
		}

		render.JSON(w, r, repos)
	}
}

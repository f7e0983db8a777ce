package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devconnect/internal/auth"
	"devconnect/internal/config"
	"devconnect/internal/github"
	"devconnect/internal/http_server/handlers/login"
	"devconnect/internal/http_server/handlers/me"
	"devconnect/internal/http_server/handlers/posts"
	"devconnect/internal/http_server/handlers/profiles"
	"devconnect/internal/http_server/handlers/register"
	"devconnect/internal/middleware/authn"
	rateLimit "devconnect/internal/middleware/ratelimit"
	"devconnect/internal/rabbitmq"
	"devconnect/internal/storage/postgres"
	redisStorage "devconnect/internal/storage/redis"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting devconnect api", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect postgres", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	cache, err := redisStorage.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Error("failed to connect redis", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer cache.Close()

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer msgBroker.Close()

	authService := auth.New(log, storage, storage, cfg.Tokens.AuthTokenSecret, cfg.Tokens.AuthTokenTTL)

	githubClient := github.New(log, cfg.Github.APIURL, cfg.Github.Timeout, cache, cfg.Github.CacheTTL)

	router := setupRouter(log, cfg, authService, storage, msgBroker, githubClient)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", slog.String("err", err.Error()))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Main service stopped")
}

func setupRouter(
	log *slog.Logger,
	cfg *config.Config,
	authService *auth.Auth,
	storage *postgres.PostgresRepo,
	msgBroker *rabbitmq.Publisher,
	githubClient *github.Client,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	validate := validator.New()

	protected := authn.New(log, cfg.Tokens.AuthTokenHeader, cfg.Tokens.AuthTokenSecret)

	r.Route("/api", func(r chi.Router) {
		r.With(rateLimit.Register()).Post("/users",
			register.New(log, validate, authService, msgBroker),
		)
		r.With(rateLimit.Login()).Post("/auth",
			login.New(log, validate, authService),
		)
		r.With(protected).Get("/auth",
			me.New(log, authService),
		)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", profiles.All(log, storage))
			r.Get("/user/{user_id}", profiles.ByUser(log, storage))
			r.With(rateLimit.Github()).Get("/github/{username}",
				profiles.GithubRepos(log, githubClient),
			)

			r.Group(func(r chi.Router) {
				r.Use(protected)
				r.Use(rateLimit.Write())

				r.Get("/me", profiles.Me(log, storage))
				r.Post("/", profiles.Upsert(log, validate, storage))
				r.Delete("/", profiles.DeleteAccount(log, storage))
				r.Put("/experience", profiles.AddExperience(log, validate, storage))
				r.Delete("/experience/{exp_id}", profiles.DeleteExperience(log, storage))
				r.Put("/education", profiles.AddEducation(log, validate, storage))
				r.Delete("/education/{edu_id}", profiles.DeleteEducation(log, storage))
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Use(protected)
			r.Use(rateLimit.Write())

			r.Post("/", posts.Create(log, validate, storage, storage))
			r.Get("/", posts.All(log, storage))
			r.Get("/{id}", posts.ByID(log, storage))
			r.Delete("/{id}", posts.Delete(log, storage))
			r.Put("/like/{id}", posts.Like(log, storage))
			r.Put("/unlike/{id}", posts.Unlike(log, storage))
			r.Post("/comment/{id}", posts.CreateComment(log, validate, storage, storage))
			r.Delete("/comment/{id}/{comment_id}", posts.DeleteComment(log, storage))
		})
	})

	return r
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

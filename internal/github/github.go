// Package github is the external collaborator that lists a user's public
// repositories for the profile page. Responses are cached so a hot profile
// does not hammer the GitHub API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	sl "devconnect/internal/lib/logger"
	"devconnect/internal/models"
	"devconnect/internal/storage"
)

var ErrProfileNotFound = errors.New("github profile not found")

type Cache interface {
	CachedRepos(ctx context.Context, username string) ([]models.Repo, error)
	SetCachedRepos(ctx context.Context, username string, repos []models.Repo, ttl time.Duration) error
}

type Client struct {
	log      *slog.Logger
	http     *http.Client
	baseURL  string
	cache    Cache
	cacheTTL time.Duration
}

func New(log *slog.Logger, baseURL string, timeout time.Duration, cache Cache, cacheTTL time.Duration) *Client {
	return &Client{
		log:      log,
		http:     &http.Client{Timeout: timeout},
		baseURL:  baseURL,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Repos returns the five most recent public repositories for a username.
func (c *Client) Repos(ctx context.Context, username string) ([]models.Repo, error) {
	const op = "github.Repos"

	log := c.log.With(slog.String("op", op), slog.String("username", username))

	if repos, err := c.cache.CachedRepos(ctx, username); err == nil {
		return repos, nil
	} else if !errors.Is(err, storage.ErrCacheMiss) {
		log.Warn("repo cache read failed", sl.Err(err))
	}

	reqURL := fmt.Sprintf("%s/users/%s/repos?per_page=5&sort=created:asc",
		c.baseURL, url.PathEscape(username))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, ErrProfileNotFound
	case res.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s: unexpected status %d", op, res.StatusCode)
	}

	var repos []models.Repo
	if err := json.NewDecoder(res.Body).Decode(&repos); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.cache.SetCachedRepos(ctx, username, repos, c.cacheTTL); err != nil {
		log.Warn("repo cache write failed", sl.Err(err))
	}

	return repos, nil
}

package posts_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"devconnect/internal/http_server/handlers/posts"
	"devconnect/internal/lib/jwt"
	"devconnect/internal/middleware/authn"
	"devconnect/internal/models"
	"devconnect/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

const (
	testHeader = "x-auth-token"
	testSecret = "test-secret"
)

type fakeStore struct {
	posts    map[int64]models.Post
	likes    map[int64][]int64
	comments map[int64][]models.Comment
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts:    map[int64]models.Post{},
		likes:    map[int64][]int64{},
		comments: map[int64][]models.Comment{},
	}
}

func (f *fakeStore) addPost(ownerID int64, text string) int64 {
	f.nextID++
	f.posts[f.nextID] = models.Post{ID: f.nextID, UserID: ownerID, Text: text}
	return f.nextID
}

func (f *fakeStore) SavePost(_ context.Context, post models.Post) (models.Post, error) {
	f.nextID++
	post.ID = f.nextID
	post.Likes = []models.Like{}
	post.Comments = []models.Comment{}
	f.posts[post.ID] = post
	return post, nil
}

func (f *fakeStore) Posts(_ context.Context) ([]models.Post, error) {
	var all []models.Post
	for _, p := range f.posts {
		all = append(all, p)
	}
	return all, nil
}

func (f *fakeStore) Post(_ context.Context, id int64) (models.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return models.Post{}, storage.ErrPostNotFound
	}
	return post, nil
}

func (f *fakeStore) DeletePost(_ context.Context, id int64) error {
	if _, ok := f.posts[id]; !ok {
		return storage.ErrPostNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakeStore) AddLike(_ context.Context, postID, userID int64) ([]models.Like, error) {
	if _, ok := f.posts[postID]; !ok {
		return nil, storage.ErrPostNotFound
	}
	for _, uid := range f.likes[postID] {
		if uid == userID {
			return nil, storage.ErrAlreadyLiked
		}
	}
	f.likes[postID] = append(f.likes[postID], userID)
	return f.likeList(postID), nil
}

func (f *fakeStore) RemoveLike(_ context.Context, postID, userID int64) ([]models.Like, error) {
	if _, ok := f.posts[postID]; !ok {
		return nil, storage.ErrPostNotFound
	}
	var kept []int64
	removed := false
	for _, uid := range f.likes[postID] {
		if uid == userID {
			removed = true
			continue
		}
		kept = append(kept, uid)
	}
	if !removed {
		return nil, storage.ErrNotLiked
	}
	f.likes[postID] = kept
	return f.likeList(postID), nil
}

func (f *fakeStore) AddComment(_ context.Context, postID int64, comment models.Comment) ([]models.Comment, error) {
	if _, ok := f.posts[postID]; !ok {
		return nil, storage.ErrPostNotFound
	}
	f.nextID++
	comment.ID = f.nextID
	f.comments[postID] = append([]models.Comment{comment}, f.comments[postID]...)
	return f.comments[postID], nil
}

func (f *fakeStore) Comment(_ context.Context, postID, commentID int64) (models.Comment, error) {
	for _, c := range f.comments[postID] {
		if c.ID == commentID {
			return c, nil
		}
	}
	return models.Comment{}, storage.ErrCommentNotFound
}

func (f *fakeStore) DeleteComment(_ context.Context, postID, commentID int64) ([]models.Comment, error) {
	var kept []models.Comment
	removed := false
	for _, c := range f.comments[postID] {
		if c.ID == commentID {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	if !removed {
		return nil, storage.ErrCommentNotFound
	}
	f.comments[postID] = kept
	return kept, nil
}

func (f *fakeStore) likeList(postID int64) []models.Like {
	likes := []models.Like{}
	for _, uid := range f.likes[postID] {
		likes = append(likes, models.Like{UserID: uid})
	}
	return likes
}

type fakeUsers struct{}

func (fakeUsers) UserByID(_ context.Context, id int64) (models.User, error) {
	return models.User{ID: id, Name: "A", AvatarURL: "https://www.gravatar.com/avatar/x"}, nil
}

func newRouter(store *fakeStore) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(authn.New(log, testHeader, testSecret))
	r.Post("/api/posts", posts.Create(log, validate, store, fakeUsers{}))
	r.Get("/api/posts/{id}", posts.ByID(log, store))
	r.Delete("/api/posts/{id}", posts.Delete(log, store))
	r.Put("/api/posts/like/{id}", posts.Like(log, store))
	r.Put("/api/posts/unlike/{id}", posts.Unlike(log, store))
	r.Post("/api/posts/comment/{id}", posts.CreateComment(log, validate, store, fakeUsers{}))
	r.Delete("/api/posts/comment/{id}/{comment_id}", posts.DeleteComment(log, store))

	return r
}

func perform(t *testing.T, router http.Handler, method, target string, userID int64, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)

	token, err := jwt.NewToken(userID, testSecret, time.Minute)
	require.NoError(t, err)
	req.Header.Set(testHeader, token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestCreatePost(t *testing.T) {
	store := newFakeStore()
	router := newRouter(store)

	rec := perform(t, router, http.MethodPost, "/api/posts", 1, `{"text":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var post models.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	require.Equal(t, "hello", post.Text)
	require.Equal(t, int64(1), post.UserID)
	require.Equal(t, "A", post.Name)
}

func TestCreatePostRequiresText(t *testing.T) {
	rec := perform(t, newRouter(newFakeStore()), http.MethodPost, "/api/posts", 1, `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Text is required.")
}

func TestGetPostMalformedID(t *testing.T) {
	rec := perform(t, newRouter(newFakeStore()), http.MethodGet, "/api/posts/not-an-id", 1, "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Post not found.")
}

func TestDeletePostNonOwner(t *testing.T) {
	store := newFakeStore()
	postID := store.addPost(2, "owned by someone else")
	router := newRouter(store)

	rec := perform(t, router, http.MethodDelete, "/api/posts/1", 1, "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "User not authorized.")

	// The post is untouched.
	_, ok := store.posts[postID]
	require.True(t, ok)
}

func TestDeletePostOwner(t *testing.T) {
	store := newFakeStore()
	postID := store.addPost(1, "mine")
	router := newRouter(store)

	rec := perform(t, router, http.MethodDelete, "/api/posts/1", 1, "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Post deleted.")

	_, ok := store.posts[postID]
	require.False(t, ok)
}

func TestLikeTwice(t *testing.T) {
	store := newFakeStore()
	store.addPost(2, "likeable")
	router := newRouter(store)

	rec := perform(t, router, http.MethodPut, "/api/posts/like/1", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = perform(t, router, http.MethodPut, "/api/posts/like/1", 1, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Post already liked.")
}

func TestUnlikeNotLiked(t *testing.T) {
	store := newFakeStore()
	store.addPost(2, "never liked")
	router := newRouter(store)

	rec := perform(t, router, http.MethodPut, "/api/posts/unlike/1", 1, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Post has not yet been liked.")
}

func TestUnlikeRemovesOwnLikeOnly(t *testing.T) {
	store := newFakeStore()
	store.addPost(3, "popular")
	router := newRouter(store)

	perform(t, router, http.MethodPut, "/api/posts/like/1", 1, "")
	perform(t, router, http.MethodPut, "/api/posts/like/1", 2, "")

	rec := perform(t, router, http.MethodPut, "/api/posts/unlike/1", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var likes []models.Like
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &likes))
	require.Len(t, likes, 1)
	require.Equal(t, int64(2), likes[0].UserID)
}

func TestDeleteCommentNonOwner(t *testing.T) {
	store := newFakeStore()
	store.addPost(1, "commented")
	router := newRouter(store)

	rec := perform(t, router, http.MethodPost, "/api/posts/comment/1", 2, `{"text":"nice"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var comments []models.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	commentID := comments[0].ID

	target := "/api/posts/comment/1/" + strconv.FormatInt(commentID, 10)

	// The post owner is not the comment owner.
	rec = perform(t, router, http.MethodDelete, target, 1, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = perform(t, router, http.MethodDelete, target, 2, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

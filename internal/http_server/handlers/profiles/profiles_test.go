package profiles_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"devconnect/internal/http_server/handlers/profiles"
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
	profiles     map[int64]models.Profile
	deletedUsers []int64
	nextID       int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: map[int64]models.Profile{}}
}

func (f *fakeStore) Profile(_ context.Context, userID int64) (models.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return models.Profile{}, storage.ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeStore) Profiles(_ context.Context) ([]models.Profile, error) {
	var all []models.Profile
	for _, p := range f.profiles {
		all = append(all, p)
	}
	return all, nil
}

func (f *fakeStore) UpsertProfile(_ context.Context, profile models.Profile) (models.Profile, error) {
	existing, ok := f.profiles[profile.UserID]
	if ok {
		profile.ID = existing.ID
		profile.Experience = existing.Experience
		profile.Education = existing.Education
	} else {
		f.nextID++
		profile.ID = f.nextID
		profile.Experience = []models.Experience{}
		profile.Education = []models.Education{}
	}
	f.profiles[profile.UserID] = profile
	return profile, nil
}

func (f *fakeStore) AddExperience(_ context.Context, userID int64, exp models.Experience) (models.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return models.Profile{}, storage.ErrProfileNotFound
	}
	f.nextID++
	exp.ID = f.nextID
	profile.Experience = append([]models.Experience{exp}, profile.Experience...)
	f.profiles[userID] = profile
	return profile, nil
}

func (f *fakeStore) DeleteExperience(_ context.Context, userID, expID int64) (models.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return models.Profile{}, storage.ErrProfileNotFound
	}
	var kept []models.Experience
	removed := false
	for _, exp := range profile.Experience {
		if exp.ID == expID {
			removed = true
			continue
		}
		kept = append(kept, exp)
	}
	if !removed {
		return models.Profile{}, storage.ErrExperienceNotFound
	}
	profile.Experience = kept
	f.profiles[userID] = profile
	return profile, nil
}

func (f *fakeStore) AddEducation(_ context.Context, userID int64, edu models.Education) (models.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return models.Profile{}, storage.ErrProfileNotFound
	}
	f.nextID++
	edu.ID = f.nextID
	profile.Education = append([]models.Education{edu}, profile.Education...)
	f.profiles[userID] = profile
	return profile, nil
}

func (f *fakeStore) DeleteEducation(_ context.Context, userID, eduID int64) (models.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return models.Profile{}, storage.ErrProfileNotFound
	}
	var kept []models.Education
	removed := false
	for _, edu := range profile.Education {
		if edu.ID == eduID {
			removed = true
			continue
		}
		kept = append(kept, edu)
	}
	if !removed {
		return models.Profile{}, storage.ErrEducationNotFound
	}
	profile.Education = kept
	f.profiles[userID] = profile
	return profile, nil
}

func (f *fakeStore) DeleteUserCascade(_ context.Context, userID int64) error {
	if _, ok := f.profiles[userID]; !ok {
		return storage.ErrUserNotFound
	}
	delete(f.profiles, userID)
	f.deletedUsers = append(f.deletedUsers, userID)
	return nil
}

func newRouter(store *fakeStore) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	validate := validator.New()

	r := chi.NewRouter()
	r.Route("/api/profile", func(r chi.Router) {
		r.Get("/user/{user_id}", profiles.ByUser(log, store))

		r.Group(func(r chi.Router) {
			r.Use(authn.New(log, testHeader, testSecret))

			r.Get("/me", profiles.Me(log, store))
			r.Post("/", profiles.Upsert(log, validate, store))
			r.Delete("/", profiles.DeleteAccount(log, store))
			r.Put("/experience", profiles.AddExperience(log, validate, store))
			r.Delete("/experience/{exp_id}", profiles.DeleteExperience(log, store))
			r.Put("/education", profiles.AddEducation(log, validate, store))
			r.Delete("/education/{edu_id}", profiles.DeleteEducation(log, store))
		})
	})

	return r
}

func perform(t *testing.T, router http.Handler, method, target string, userID int64, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)

	if userID != 0 {
		token, err := jwt.NewToken(userID, testSecret, time.Minute)
		require.NoError(t, err)
		req.Header.Set(testHeader, token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestUpsertSplitsSkills(t *testing.T) {
	store := newFakeStore()
	router := newRouter(store)

	rec := perform(t, router, http.MethodPost, "/api/profile", 1,
		`{"status":"Developer","skills":"Go, SQL ,  Docker,"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var profile models.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.Equal(t, []string{"Go", "SQL", "Docker"}, profile.Skills)
	require.Equal(t, int64(1), profile.UserID)
}

func TestUpsertValidation(t *testing.T) {
	rec := perform(t, newRouter(newFakeStore()), http.MethodPost, "/api/profile", 1, `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Status is required.")
	require.Contains(t, rec.Body.String(), "Skills is required.")
}

func TestUpsertReplacesFields(t *testing.T) {
	store := newFakeStore()
	router := newRouter(store)

	perform(t, router, http.MethodPost, "/api/profile", 1,
		`{"status":"Developer","skills":"Go","company":"Acme"}`)

	rec := perform(t, router, http.MethodPost, "/api/profile", 1,
		`{"status":"Lead","skills":"Go"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	profile := store.profiles[1]
	require.Equal(t, "Lead", profile.Status)
	require.Empty(t, profile.Company)
	require.Len(t, store.profiles, 1)
}

func TestMeWithoutProfile(t *testing.T) {
	rec := perform(t, newRouter(newFakeStore()), http.MethodGet, "/api/profile/me", 1, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "There is no profile for this user.")
}

func TestByUserIsPublic(t *testing.T) {
	store := newFakeStore()
	store.profiles[5] = models.Profile{ID: 1, UserID: 5, Status: "Developer"}
	router := newRouter(store)

	// No token at all.
	rec := perform(t, router, http.MethodGet, "/api/profile/user/5", 0, "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Developer")
}

func TestAddExperienceBadDate(t *testing.T) {
	store := newFakeStore()
	store.profiles[1] = models.Profile{ID: 1, UserID: 1}
	router := newRouter(store)

	rec := perform(t, router, http.MethodPut, "/api/profile/experience", 1,
		`{"title":"Dev","company":"Acme","from":"02-01-2020"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Date is not valid.")
}

func TestExperienceLifecycle(t *testing.T) {
	store := newFakeStore()
	store.profiles[1] = models.Profile{ID: 1, UserID: 1}
	router := newRouter(store)

	rec := perform(t, router, http.MethodPut, "/api/profile/experience", 1,
		`{"title":"Dev","company":"Acme","from":"2020-01-02","to":"2021-06-30"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile models.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.Len(t, profile.Experience, 1)

	rec = perform(t, router, http.MethodDelete, "/api/profile/experience/999", 1, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Experience not found.")

	rec = perform(t, router, http.MethodDelete, "/api/profile/experience/1", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, store.profiles[1].Experience)
}

func TestDeleteAccount(t *testing.T) {
	store := newFakeStore()
	store.profiles[1] = models.Profile{ID: 1, UserID: 1}
	router := newRouter(store)

	rec := perform(t, router, http.MethodDelete, "/api/profile", 1, "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "User deleted.")
	require.Equal(t, []int64{1}, store.deletedUsers)
}

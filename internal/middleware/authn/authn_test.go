package authn_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devconnect/internal/lib/jwt"
	"devconnect/internal/middleware/authn"

	"github.com/stretchr/testify/require"
)

const (
	testHeader = "x-auth-token"
	testSecret = "test-secret"
)

func newProtectedServer(t *testing.T) (*httptest.Server, *int64) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	var gotUserID int64

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := authn.UserID(r.Context())
		require.True(t, ok)
		gotUserID = id
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(authn.New(log, testHeader, testSecret)(next))
	t.Cleanup(srv.Close)

	return srv, &gotUserID
}

func TestMissingToken(t *testing.T) {
	srv, _ := newProtectedServer(t)

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "No token, authorization denied.")
}

func TestInvalidToken(t *testing.T) {
	srv, _ := newProtectedServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set(testHeader, "garbage")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "Token is not valid.")
}

func TestExpiredToken(t *testing.T) {
	srv, _ := newProtectedServer(t)

	token, err := jwt.NewToken(7, testSecret, -time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set(testHeader, token)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestValidToken(t *testing.T) {
	srv, gotUserID := newProtectedServer(t)

	token, err := jwt.NewToken(7, testSecret, time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set(testHeader, token)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, int64(7), *gotUserID)
}

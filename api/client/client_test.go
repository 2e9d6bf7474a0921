package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *PhotoClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewPhotoClient(srv.URL+"/magicframe/website/api.php", 5*time.Second)
}

func TestLoginSuccess(t *testing.T) {
	pc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/magicframe/website/api.php/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "grandma", body["username"])
		assert.Equal(t, "secret", body["password"])

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"user_id":3,"username":"grandma","token":"t0k"}`)
	})

	s, err := pc.Login(context.Background(), "grandma", "secret")
	require.NoError(t, err)
	assert.Equal(t, "t0k", s.Token)
	assert.Equal(t, 3, s.UserID)
	assert.Equal(t, "grandma", s.Username)
}

func TestLoginFailureKeepsServerText(t *testing.T) {
	pc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"Invalid username or password"}`)
	})

	_, err := pc.Login(context.Background(), "grandma", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Invalid username or password", apiErr.Message)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestLoginFailureWithoutBody(t *testing.T) {
	pc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := pc.Login(context.Background(), "a", "b")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Unknown error", apiErr.Message)
}

func TestLoginMissingToken(t *testing.T) {
	pc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true}`)
	})

	_, err := pc.Login(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestLogout(t *testing.T) {
	pc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t0k", r.Header.Get("Authorization"))
		assert.Equal(t, "/magicframe/website/api.php/logout", r.URL.Path)
		io.WriteString(w, `{"success":true,"message":"Logged out successfully"}`)
	})

	msg, err := pc.Logout(context.Background(), "t0k")
	require.NoError(t, err)
	assert.Equal(t, "Logged out successfully", msg)
}

func TestLogoutRefused(t *testing.T) {
	pc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"Invalid or expired token"}`)
	})

	_, err := pc.Logout(context.Background(), "t0k")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Invalid or expired token", apiErr.Message)
}

func TestVerifyToken(t *testing.T) {
	var valid atomic.Bool
	valid.Store(true)
	pc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/magicframe/website/api.php/images", r.URL.Path)
		if !valid.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{"images":[]}`)
	})

	require.NoError(t, pc.VerifyToken(context.Background(), "t0k"))

	valid.Store(false)
	assert.ErrorIs(t, pc.VerifyToken(context.Background(), "t0k"), ErrUnauthorized)
}

func TestVerifyTokenNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	pc := NewPhotoClient(srv.URL+"/api.php", time.Second)

	err := pc.VerifyToken(context.Background(), "t0k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestFetchNewClassifiesResponse(t *testing.T) {
	var contentType atomic.Value
	contentType.Store("application/zip")
	pc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/magicframe/website/api.php/notDownloadedImages", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("download"))
		w.Header().Set("Content-Type", contentType.Load().(string))
		w.Header().Set("Content-Disposition", `attachment; filename="a.jpg"`)
		io.WriteString(w, "payload")
	})

	d, err := pc.FetchNew(context.Background(), "t0k")
	require.NoError(t, err)
	assert.Equal(t, KindZip, d.Kind)
	data, err := io.ReadAll(d.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	require.NoError(t, d.Close())

	contentType.Store("image/jpeg")
	d, err = pc.FetchNew(context.Background(), "t0k")
	require.NoError(t, err)
	assert.Equal(t, KindImage, d.Kind)
	assert.Equal(t, `attachment; filename="a.jpg"`, d.ContentDisposition)
	d.Close()
}

func TestFetchNewUnauthorized(t *testing.T) {
	pc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := pc.FetchNew(context.Background(), "t0k")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDownloadFileResolvesAgainstRoot(t *testing.T) {
	pc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/magicframe/website/uploads/4/abc.jpg", r.URL.Path)
		io.WriteString(w, "jpegdata")
	})

	rc, err := pc.DownloadFile(context.Background(), "uploads/4/abc.jpg")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(data))
}

func TestClassifyContentType(t *testing.T) {
	assert.Equal(t, KindMetadata, ClassifyContentType("application/json; charset=utf-8"))
	assert.Equal(t, KindZip, ClassifyContentType("application/zip"))
	assert.Equal(t, KindImage, ClassifyContentType("image/png"))
	assert.Equal(t, KindImage, ClassifyContentType("image/gif"))
	assert.Equal(t, KindUnknown, ClassifyContentType("text/html"))
	assert.Equal(t, "zip", KindZip.String())
}

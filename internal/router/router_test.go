package router

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radif/filegateway/internal/config"
	"github.com/radif/filegateway/internal/file"
	"github.com/radif/filegateway/internal/staging"
	"github.com/radif/filegateway/internal/storage"
)

// stubStorage answers every Stat with ErrNotFound and accepts every Put.
type stubStorage struct {
	puts int
}

func (s *stubStorage) Put(_ context.Context, _ string, r io.Reader, _ int64, _ string) error {
	s.puts++
	_, err := io.Copy(io.Discard, r)
	return err
}

func (s *stubStorage) Stat(context.Context, string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, storage.ErrNotFound
}

func (s *stubStorage) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func newHandler(t *testing.T, cfg *config.Config) (http.Handler, *stubStorage) {
	t.Helper()
	store := &stubStorage{}
	svc := file.NewService(store, staging.NewStore(t.TempDir()), nil)
	return New(cfg, file.NewHandler(svc)), store
}

func uploadRequest(t *testing.T) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "a.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("hello"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload?folderName=docs", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	h, _ := newHandler(t, &config.Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRoutesWithoutAuth(t *testing.T) {
	h, store := newHandler(t, &config.Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.puts)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/missing.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLedgerRouteOnlyWithDatabase(t *testing.T) {
	h, _ := newHandler(t, &config.Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "success")
}

func TestRoutesWithAuth(t *testing.T) {
	cfg := &config.Config{JWTSecret: "gateway-secret"}
	h, store := newHandler(t, cfg)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, store.puts)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ci",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	req := uploadRequest(t)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.puts)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health stays public")
}

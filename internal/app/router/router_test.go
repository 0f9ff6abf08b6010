package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	authadapters "gym_backend/internal/feature/auth/adapters"
	authhandler "gym_backend/internal/feature/auth/transport/handler"
	"gym_backend/internal/feature/auth/usecase"
	pagehandler "gym_backend/internal/feature/portal/transport/handler"
	"gym_backend/internal/feature/portal/transport/web"
	"gym_backend/internal/platform/http/handler"
	jwtmw "gym_backend/internal/platform/jwt"
	"gym_backend/internal/shared/ratelimiter"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T, loginAttempts int) *gin.Engine {
	t.Helper()

	gen := jwtmw.NewGenerator("router-test-secret")
	uc := usecase.NewAuthUsecase(authadapters.NewUserMemory(), authadapters.NewSessionMemory(), gen,
		usecase.Options{BcryptCost: bcrypt.MinCost})
	tmpl, err := web.Templates()
	require.NoError(t, err)

	return NewRouter(Deps{
		Auth:        authhandler.NewAuthHandler(uc),
		Pages:       pagehandler.NewPageHandler(uc, false),
		Health:      handler.NewHealth(nil, 0),
		Tokens:      gen,
		Sessions:    uc,
		Limiter:     ratelimiter.NewRateLimiter(loginAttempts, time.Minute),
		Templates:   tmpl,
		CORSOrigins: []string{"http://localhost:3000"},
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func call(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t, 10)

	w := call(r, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_APIFlow(t *testing.T) {
	r := newTestRouter(t, 10)

	w := call(r, http.MethodPost, "/api/v1/signup", "", gin.H{
		"email": "ada@gym.test", "password": "secret1", "firstName": "Ada", "lastName": "Lovelace",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = call(r, http.MethodPost, "/api/v1/signup", "", gin.H{
		"email": "ada@gym.test", "password": "secret2", "firstName": "Ada", "lastName": "L",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w = call(r, http.MethodPost, "/api/v1/login", "", gin.H{"email": "ada@gym.test", "password": "nope-nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, http.MethodPost, "/api/v1/login", "", gin.H{"email": "ada@gym.test", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
		User  struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, uint(1), login.User.ID)
	require.NotEmpty(t, login.Token)

	w = call(r, http.MethodGet, "/api/v1/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"ada@gym.test"`)
	assert.NotContains(t, w.Body.String(), "password")

	w = call(r, http.MethodGet, "/api/v1/sessions", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"current":true`)

	w = call(r, http.MethodPost, "/api/v1/logout", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodGet, "/api/v1/me", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_LoginThrottled(t *testing.T) {
	r := newTestRouter(t, 2)

	for i := 0; i < 2; i++ {
		w := call(r, http.MethodPost, "/api/v1/login", "", gin.H{"email": "x@gym.test", "password": "whatever"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	w := call(r, http.MethodPost, "/api/v1/login", "", gin.H{"email": "x@gym.test", "password": "whatever"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(t, 10)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_PagesMounted(t *testing.T) {
	r := newTestRouter(t, 10)

	w := call(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	w = call(r, http.MethodGet, "/login", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

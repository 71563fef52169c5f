package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contest_judge/internal/common/security"
	"contest_judge/internal/platform/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(security.TokenAuth))
	r.Use(Authenticator)
	r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
		id, _ := GetUserIDFromContext(r.Context())
		w.Write([]byte(id))
	})
	r.With(AdminOnly).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func do(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticator(t *testing.T) {
	config.AppConfig = &config.Config{JWTKey: []byte("mw-test"), JWTExp: time.Hour}
	security.InitJWT()
	h := newProtectedRouter()

	userToken, err := security.GenerateToken("u1", "user")
	require.NoError(t, err)
	adminToken, err := security.GenerateToken("a1", "admin")
	require.NoError(t, err)

	rec := do(t, h, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token required")

	rec = do(t, h, "/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, "/me", userToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())

	assert.Equal(t, http.StatusForbidden, do(t, h, "/admin", userToken).Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, "/admin", adminToken).Code)
}

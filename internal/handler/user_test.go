package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"painpal/internal/model"
)

func TestRegister_CreatesUser(t *testing.T) {
	env := newTestEnv(t)

	body := `{"email":"bob@example.com","name":"Bob","externalUid":"uid-bob"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"bob@example.com"`)
}

func TestRegister_NoAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	// No auth header at all: registration happens before the account exists.
	body := `{"email":"carol@example.com","name":"Carol","externalUid":"uid-carol"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"email":"x@example.com"}`))
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", decodeError(t, rr).Error)
}

func TestRegister_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"email":`))
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMe_ReturnsAuthenticatedUser(t *testing.T) {
	env := newTestEnv(t)

	var got model.User
	rr := env.do(t, http.MethodGet, "/api/users/me", "", &got)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, env.user.ID, got.ID)
	assert.Equal(t, env.user.Email, got.Email)
}

package jwtmiddleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	security "github.com/linemk/bigshop/internal/jwt-new"
	"github.com/linemk/bigshop/internal/domain/models"
	"github.com/linemk/bigshop/internal/jwt-new/jwtmiddleware"
	"github.com/stretchr/testify/assert"
)

func TestJWTMiddleware_ValidToken(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	user := &models.User{ID: 42, Email: "user@example.com", Role: models.RoleUser}
	token, err := security.NewToken(context.Background(), user, time.Hour)
	assert.NoError(t, err)

	var gotUserID int64
	var gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = jwtmiddleware.FromContext(r.Context())
		gotRole, _ = jwtmiddleware.RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := jwtmiddleware.NewJWTMiddleware()(next)

	req := httptest.NewRequest("GET", "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(42), gotUserID, "userID from token should reach the context")
	assert.Equal(t, models.RoleUser, gotRole, "role from token should reach the context")
}

func TestJWTMiddleware_MissingToken(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not be called without a token")
	})
	handler := jwtmiddleware.NewJWTMiddleware()(next)

	req := httptest.NewRequest("GET", "/api/cart", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestJWTMiddleware_InvalidToken(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not be called with a garbage token")
	})
	handler := jwtmiddleware.NewJWTMiddleware()(next)

	req := httptest.NewRequest("GET", "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	user := &models.User{ID: 1, Email: "user@example.com", Role: models.RoleUser}
	token, err := security.NewToken(context.Background(), user, time.Hour)
	assert.NoError(t, err)

	// Токен подписан другим секретом
	os.Setenv("JWT_SECRET", "othersecret")
	defer os.Unsetenv("JWT_SECRET")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not be called with a forged token")
	})
	handler := jwtmiddleware.NewJWTMiddleware()(next)

	req := httptest.NewRequest("GET", "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	admin := &models.User{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin}
	token, err := security.NewToken(context.Background(), admin, time.Hour)
	assert.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := jwtmiddleware.NewJWTMiddleware()(jwtmiddleware.RequireAdmin(next))

	req := httptest.NewRequest("GET", "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireAdmin_DeniesRegularUser(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	user := &models.User{ID: 2, Email: "user@example.com", Role: models.RoleUser}
	token, err := security.NewToken(context.Background(), user, time.Hour)
	assert.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("regular user must not pass the admin gate")
	})
	handler := jwtmiddleware.NewJWTMiddleware()(jwtmiddleware.RequireAdmin(next))

	req := httptest.NewRequest("GET", "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

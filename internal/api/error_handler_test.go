package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sweetshop/sweet-shop-api/internal/core/domain"
)

func TestResolveError_Mapping(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	log := zerolog.Nop()

	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusTeapot, "short and stout"), http.StatusTeapot, "short and stout"},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest, "invalid sweet ID format"},
		{"out of stock", domain.ErrOutOfStock, http.StatusBadRequest, "sweet is out of stock"},
		{"validation", domain.Invalid("price must be a non-negative number"), http.StatusBadRequest, "price must be a non-negative number"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"expired token", domain.ErrTokenExpired, http.StatusUnauthorized, "token expired"},
		{"invalid token", domain.ErrInvalidToken, http.StatusUnauthorized, "invalid token"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"sweet missing", domain.ErrSweetNotFound, http.StatusNotFound, "sweet not found"},
		{"user missing", domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{"sweet exists", domain.ErrSweetExists, http.StatusConflict, "sweet with this name already exists"},
		{"user exists", domain.ErrUserExists, http.StatusConflict, "username already taken"},
		{"unknown", http.ErrBodyNotAllowed, http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		code, msg := resolveError(tc.err, log, c)
		if code != tc.code || msg != tc.msg {
			t.Fatalf("%s: expected (%d, %q), got (%d, %q)", tc.name, tc.code, tc.msg, code, msg)
		}
	}
}

func TestHTTPErrorHandler_WritesEnvelope(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/inventory/bad/purchase", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrInvalidID, c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"error\":\"invalid sweet ID format\"}\n" {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := c.NoContent(http.StatusOK); err != nil {
		t.Fatalf("commit response: %v", err)
	}
	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrSweetNotFound, c)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected committed 200 to stand, got %d", rec.Code)
	}
}

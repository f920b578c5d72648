package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/sweetshop/sweet-shop-api/internal/core/domain"
	"github.com/sweetshop/sweet-shop-api/internal/core/service"
)

type stubUserRepo struct {
	users map[string]*domain.User // keyed by id
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.users[user.ID] = user
	return user, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func newAuthContext(header string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestAuth_ValidToken(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)
	user := &domain.User{ID: "u1", Username: "alice", Role: domain.RoleAdmin}
	repo := &stubUserRepo{users: map[string]*domain.User{"u1": user}}

	token, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	c, rec := newAuthContext("Bearer " + token)
	if err := Auth(tokens, repo)(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	got, ok := c.Get(CtxUser).(*domain.User)
	if !ok || got.ID != "u1" {
		t.Fatalf("expected resolved user in context, got %v", c.Get(CtxUser))
	}
	if c.Get(CtxUserID) != "u1" || c.Get(CtxUsername) != "alice" || c.Get(CtxRole) != domain.RoleAdmin {
		t.Fatalf("unexpected context values: %v %v %v", c.Get(CtxUserID), c.Get(CtxUsername), c.Get(CtxRole))
	}
}

func TestAuth_Rejections(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)
	user := &domain.User{ID: "u1", Username: "alice", Role: domain.RoleUser}
	repo := &stubUserRepo{users: map[string]*domain.User{"u1": user}}

	valid, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       "u1",
		"username": "alice",
		"role":     domain.RoleUser,
		"exp":      time.Now().Add(-time.Minute).Unix(),
	})
	expiredToken, err := expired.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	ghost, err := tokens.Issue(&domain.User{ID: "gone", Username: "ghost", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	cases := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "no token provided"},
		{"wrong scheme", "Basic " + valid, "invalid token format"},
		{"no token after scheme", "Bearer  ", "no token provided"},
		{"garbage token", "Bearer not-a-token", "invalid token"},
		{"expired token", "Bearer " + expiredToken, "token expired"},
		{"deleted user", "Bearer " + ghost, "user not found"},
	}
	for _, tc := range cases {
		c, _ := newAuthContext(tc.header)
		err := Auth(tokens, repo)(okHandler)(c)

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			t.Fatalf("%s: expected HTTPError, got %v", tc.name, err)
		}
		if he.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", tc.name, he.Code)
		}
		if he.Message != tc.message {
			t.Fatalf("%s: expected message %q, got %v", tc.name, tc.message, he.Message)
		}
	}
}

func TestAuth_CaseInsensitiveScheme(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)
	user := &domain.User{ID: "u1", Username: "alice", Role: domain.RoleUser}
	repo := &stubUserRepo{users: map[string]*domain.User{"u1": user}}

	token, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	c, rec := newAuthContext("bearer " + token)
	if err := Auth(tokens, repo)(okHandler)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

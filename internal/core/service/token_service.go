package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sweetshop/sweet-shop-api/internal/core/domain"
)

// defaultTokenTTL is how long an issued token stays valid.
const defaultTokenTTL = 7 * 24 * time.Hour

// Claims is the decoded payload of a verified bearer token.
type Claims struct {
	UserID   string
	Username string
	Role     string
}

// TokenService issues and verifies HS256-signed bearer tokens. The signing
// secret is injected at construction; its presence is checked at process
// start, not per request.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token binding the user's identity and role.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(s.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify parses and validates a token, returning its claims. Expired tokens
// fail with domain.ErrTokenExpired, everything else with domain.ErrInvalidToken.
func (s *TokenService) Verify(token string) (*Claims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}
	if !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}

	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	if id == "" {
		return nil, domain.ErrInvalidToken
	}

	return &Claims{UserID: id, Username: username, Role: role}, nil
}

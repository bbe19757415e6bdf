// Package identity maps bearer tokens to policy principals. The role claim
// is embedded at issue time, so resolving a principal never touches storage.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campusconnect/campusconnect-backend/internal/policy"
	"github.com/campusconnect/campusconnect-backend/internal/types"
)

var ErrInvalidToken = errors.New("identity: invalid token")

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

type Option func(*TokenService)

func WithIssuer(issuer string) Option {
	return func(s *TokenService) { s.issuer = issuer }
}

func WithClock(now func() time.Time) Option {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret []byte, opts ...Option) *TokenService {
	s := &TokenService{secret: secret, issuer: "campusconnect", now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) Issue(user *types.User, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Principal verifies the token and extracts the caller identity.
func (s *TokenService) Principal(token string) (policy.Principal, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return policy.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return policy.Principal{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	role := types.Role(claims.Role)
	switch role {
	case types.RoleStudent, types.RoleTeacher, types.RoleAdmin:
	default:
		return policy.Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return policy.Principal{ID: userID, Role: role}, nil
}

// Package jwt issues and verifies the bookstore access tokens.
//
//	svc, err := jwt.NewService(&jwt.Config{Secret: secret, Issuer: "bookstore"})
//	token, err := svc.Generate(jwt.NewClaims(user.ID, user.Username, user.Role))
//	claims, err := svc.Parse(token)
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is wrapped by every Parse failure.
var ErrInvalidToken = errors.New("jwt: invalid token")

// Claims identify the caller of a request.
type Claims struct {
	gojwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// NewClaims returns claims for a user. Subject is the user id.
func NewClaims(userID, username, role string) *Claims {
	return &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: userID},
		Username:         username,
		Role:             role,
	}
}

// UserID returns the subject.
func (c *Claims) UserID() string { return c.Subject }

// Service signs and parses tokens.
type Service struct {
	cfg Config
	now func() time.Time
}

// NewService creates a Service.
func NewService(cfg *Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: *cfg, now: time.Now}, nil
}

// Generate signs claims. Zero IssuedAt, ExpiresAt, Issuer and ID are filled
// from the configuration.
func (s *Service) Generate(claims *Claims) (string, error) {
	now := s.now()
	if claims.IssuedAt == nil {
		claims.IssuedAt = gojwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil && s.cfg.AccessTokenTTL > 0 {
		claims.ExpiresAt = gojwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL))
	}
	if claims.Issuer == "" {
		claims.Issuer = s.cfg.Issuer
	}
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}

	signed, err := gojwt.NewWithClaims(s.cfg.signingMethod(), claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, expiry and issuer of token.
func (s *Service) Parse(token string) (*Claims, error) {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}

	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, func(*gojwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TTL returns the access token lifetime.
func (s *Service) TTL() time.Duration { return s.cfg.AccessTokenTTL }

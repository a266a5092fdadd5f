// Package auth issues and validates signed access tokens and hashes
// credentials.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrUnsupportedSigningMethod = errors.New("unsupported signing method")

// Claims is the token payload: the registered claims (sub = username, exp,
// iat, jti) plus the user id and display names.
type Claims struct {
	UserID    int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	jwt.RegisteredClaims
}

// ClaimsFor builds the claims minted for u at login.
func ClaimsFor(u *models.User) Claims {
	return Claims{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: u.UserName,
		},
	}
}

// TokenService signs and verifies stateless access tokens with a shared
// HMAC secret. It holds no mutable state and is safe for concurrent use.
type TokenService struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now for both issuing and validation.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(cfg *config.Config, opts ...TokenOption) (*TokenService, error) {
	name := cfg.SigningMethod
	if name == "" {
		name = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(name).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSigningMethod, name)
	}

	s := &TokenService{
		secret: []byte(cfg.SecretKey),
		method: method,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue signs claims with an absolute expiry of now+ttl. Any exp, iat or jti
// already present on claims is overwritten.
func (s *TokenService) Issue(claims Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	claims.ID = uuid.NewString()

	token, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Validate verifies the signature and expiry of tokenString and returns its
// claims. Failures are one of common.ErrTokenMalformed,
// common.ErrTokenInvalidSignature or common.ErrTokenExpired.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) && badSignatureSegment(tokenString) {
			return nil, fmt.Errorf("%w: %v", common.ErrTokenInvalidSignature, err)
		}
		return nil, classify(err)
	}

	if claims.Subject == "" || claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing sub or id", common.ErrTokenMalformed)
	}

	return claims, nil
}

// badSignatureSegment reports whether tokenString has a well-formed header
// and claims but a signature segment that is not strict base64url. Loose
// decoding ignores the trailing bits of the last character, so such a
// segment is an edited signature rather than a malformed token.
func badSignatureSegment(tokenString string) bool {
	_, parts, err := jwt.NewParser(jwt.WithStrictDecoding()).ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return false
	}
	_, err = base64.RawURLEncoding.Strict().DecodeString(parts[2])
	return err != nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", common.ErrTokenInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)
	}
}

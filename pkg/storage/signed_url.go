package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const downloadAudience = "achievement-download"

var (
	// ErrInvalidDownloadToken is returned for malformed, tampered or expired tokens.
	ErrInvalidDownloadToken = errors.New("invalid download token")
)

type downloadClaims struct {
	Ref string `json:"ref"`
	jwt.RegisteredClaims
}

// SignedURLSigner issues short-lived HS256 tokens that grant access to a
// single stored evidence document.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate returns a token binding the submission id to its blob reference.
func (s *SignedURLSigner) Generate(id, ref string) (string, time.Time, error) {
	if id == "" || ref == "" {
		return "", time.Time{}, fmt.Errorf("id and ref required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	now := s.now()
	claims := downloadClaims{
		Ref: ref,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			Audience:  jwt.ClaimStrings{downloadAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign download token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Parse validates a token and returns the embedded submission id and blob
// reference. allowExpired skips the expiry check but never the signature.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (id, ref string, expiresAt time.Time, err error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if allowExpired {
		opts = append(opts, jwt.WithoutClaimsValidation())
	} else {
		opts = append(opts, jwt.WithAudience(downloadAudience), jwt.WithExpirationRequired())
	}

	claims := &downloadClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", "", time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDownloadToken, err)
	}
	if claims.Subject == "" || claims.Ref == "" {
		return "", "", time.Time{}, ErrInvalidDownloadToken
	}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return claims.Subject, claims.Ref, expiresAt, nil
}

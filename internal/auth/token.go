package auth

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// VerifyStatus is the outcome of verifying a bearer token.
type VerifyStatus int

const (
	// TokenValid means signature and expiry check out and the subject parsed.
	TokenValid VerifyStatus = iota
	// TokenExpired means the signature is good but the token is past its expiry.
	TokenExpired
	// TokenMalformed covers bad structure, bad signature and unexpected algorithms.
	TokenMalformed
	// TokenInvalidSubject means the subject claim is missing or not a user ID.
	TokenInvalidSubject
)

// String returns the status as a short log-friendly label.
func (s VerifyStatus) String() string {
	switch s {
	case TokenValid:
		return "valid"
	case TokenExpired:
		return "expired"
	case TokenMalformed:
		return "malformed"
	case TokenInvalidSubject:
		return "invalid_subject"
	default:
		return "unknown"
	}
}

// VerifyResult carries the verification outcome. UserID is only meaningful
// when Status is TokenValid.
type VerifyResult struct {
	Status VerifyStatus
	UserID int64
}

// TokenIssuer issues and verifies HS256-signed identity tokens.
// Tokens are stateless: once issued they stay valid for their full lifetime,
// there is no revocation list. The secret is injected at construction,
// never read from a global.
type TokenIssuer struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenIssuer creates a TokenIssuer with the given signing secret and
// token lifetime.
func NewTokenIssuer(secret []byte, lifetime time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:   secret,
		lifetime: lifetime,
	}
}

// Lifetime returns the configured token lifetime.
func (t *TokenIssuer) Lifetime() time.Duration {
	return t.lifetime
}

// Issue creates a signed token asserting the given user identity.
// The subject is the stringified user ID so numeric typing never depends on
// the signing library; expiry is now plus the configured lifetime.
func (t *TokenIssuer) Issue(userID int64, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        ulid.Make().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify checks a token's signature and expiry against the given time and
// parses the subject back into a user ID. Signature validity is established
// before any claim is trusted: a mis-signed token is malformed no matter
// what expiry it claims.
func (t *TokenIssuer) Verify(tokenString string, now time.Time) VerifyResult {
	if !canonicalSignature(tokenString) {
		return VerifyResult{Status: TokenMalformed}
	}

	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return VerifyResult{Status: TokenExpired}
		}
		return VerifyResult{Status: TokenMalformed}
	}

	if claims.Subject == "" {
		return VerifyResult{Status: TokenInvalidSubject}
	}

	userID, parseErr := strconv.ParseInt(claims.Subject, 10, 64)
	if parseErr != nil || userID <= 0 {
		return VerifyResult{Status: TokenInvalidSubject}
	}

	return VerifyResult{Status: TokenValid, UserID: userID}
}

// canonicalSignature reports whether the token's signature segment is the
// canonical base64url encoding of its bytes. The signature is the one segment
// not covered by the signature itself, so without this check its unused
// padding bits are malleable: a token whose text differs from the issued one
// could still verify.
func canonicalSignature(tokenString string) bool {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return false
	}

	raw, err := base64.RawURLEncoding.Strict().DecodeString(parts[2])
	if err != nil {
		return false
	}
	return base64.RawURLEncoding.EncodeToString(raw) == parts[2]
}

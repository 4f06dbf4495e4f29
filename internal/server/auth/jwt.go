// Package auth implements the credential primitives of the user service:
// signed session tokens (access and refresh) and one-way password hashing.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/withgossing/bank-app/internal/common"
)

// TokenKind distinguishes the two token flavors. They differ only in
// validity duration and intended use.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims carries the signed assertion of identity. Subject is the immutable
// user ID, never the username, so a username change does not orphan live
// tokens. Role is advisory; authorization re-derives it from the user record.
type Claims struct {
	jwt.RegisteredClaims
	Role string    `json:"role,omitempty"`
	Kind TokenKind `json:"kind"`
}

// GenerateToken mints a signed token of the given kind for the subject.
// issued-at is now, expires-at is now + validityDuration, signed HS256 with
// the server secret.
func GenerateToken(subject, role string, kind TokenKind, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Role: role,
		Kind: kind,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of a token and returns its
// claims. Only HS256 is accepted; a token signed with any other method is
// rejected regardless of its signature. The returned errors are classified
// for logging; callers must collapse them to a generic invalid-token failure
// before anything leaves the process.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrorTokenUnsupportedMethod
		}
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, classifyTokenError(err)
	}

	if !token.Valid {
		return nil, common.ErrorInvalidToken
	}

	return claims, nil
}

// ParseTokenOfKind is ParseToken plus a check that the token carries the
// expected kind claim, so a refresh token can never pass as an access token
// or vice versa.
func ParseTokenOfKind(tokenString string, secretKey []byte, kind TokenKind) (*Claims, error) {
	claims, err := ParseToken(tokenString, secretKey)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, common.ErrorTokenWrongKind
	}
	return claims, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, common.ErrorTokenUnsupportedMethod):
		return common.ErrorTokenUnsupportedMethod
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrorTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return common.ErrorTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return common.ErrorTokenSignatureInvalid
	default:
		return common.ErrorInvalidToken
	}
}

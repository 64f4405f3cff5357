// Package auth is the authentication core: argon2id credential hashing,
// the HS256 token codec and the framework-free request gate. Everything here
// is immutable after construction and safe for concurrent use.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cmsauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the shortest accepted signing key, in bytes.
const MinKeyLength = 32

// Claims is the token payload: the standard claims (sub carries the user id)
// plus the user's role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the identity the token is bound to.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenCodec issues and validates self-contained bearer tokens.
type TokenCodec struct {
	key      []byte
	validity time.Duration
}

func NewTokenCodec(key []byte, validity time.Duration) (*TokenCodec, error) {
	if len(key) < MinKeyLength {
		return nil, fmt.Errorf("signing key must be at least %d bytes", MinKeyLength)
	}
	if validity <= 0 {
		return nil, errors.New("token validity must be positive")
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &TokenCodec{key: k, validity: validity}, nil
}

// Issue signs a token for userID and role, valid from now until the returned
// expiry. Expiry has whole-second precision.
func (c *TokenCodec) Issue(userID, role string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(c.validity).Truncate(time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	tokenString, err := token.SignedString(c.key)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Validate checks the token's signature and expiry as of now. The error is
// one of common.ErrTokenMalformed, common.ErrTokenExpired or
// common.ErrTokenBadSignature; callers must not tell them apart to clients.
func (c *TokenCodec) Validate(tokenString string, now time.Time) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	})

	switch {
	case err == nil && token.Valid:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, common.ErrTokenBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, common.ErrTokenExpired
	default:
		return nil, common.ErrTokenMalformed
	}

	if claims.Subject == "" {
		return nil, common.ErrTokenMalformed
	}
	return claims, nil
}

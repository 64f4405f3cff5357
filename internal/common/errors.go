// Package common defines shared constants and sentinel errors used across
// client and server layers of cmsauth. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors. They never leave the service layer.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Authenticator errors.
	ErrInvalidData        = errors.New("invalid data")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStoreFailure       = errors.New("store failure")

	// Credential hasher errors. Both indicate misconfiguration or corruption.
	ErrHashing      = errors.New("password hashing failed")
	ErrVerification = errors.New("password hash verification failed")

	// Token errors. Every variant wraps ErrTokenInvalid.
	ErrTokenInvalid      = errors.New("invalid token")
	ErrTokenMalformed    = fmt.Errorf("%w: malformed", ErrTokenInvalid)
	ErrTokenExpired      = fmt.Errorf("%w: expired", ErrTokenInvalid)
	ErrTokenBadSignature = fmt.Errorf("%w: bad signature", ErrTokenInvalid)
	ErrTokenMissing      = fmt.Errorf("%w: missing", ErrTokenInvalid)
)

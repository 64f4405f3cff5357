package common

import (
	"errors"
	"net/http"
)

// statusTable maps each error kind to the HTTP status rendered at the
// boundary. Order matters: the first matching kind wins.
var statusTable = []struct {
	kind   error
	status int
}{
	{ErrInvalidData, http.StatusBadRequest},
	{ErrUserAlreadyExists, http.StatusConflict},
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrTokenInvalid, http.StatusUnauthorized},
	{ErrHashing, http.StatusInternalServerError},
	{ErrVerification, http.StatusInternalServerError},
	{ErrStoreFailure, http.StatusInternalServerError},
}

// HTTPStatus returns the HTTP status code for err. Unknown errors map to 500.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for _, e := range statusTable {
		if errors.Is(err, e.kind) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message safe to show a client for err. Internal
// failures and every token variant collapse to generic texts.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidData):
		return err.Error()
	case errors.Is(err, ErrUserAlreadyExists):
		return ErrUserAlreadyExists.Error()
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials.Error()
	case errors.Is(err, ErrTokenInvalid):
		return "unauthorized"
	default:
		return "internal error"
	}
}

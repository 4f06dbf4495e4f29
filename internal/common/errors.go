package common

import (
	"errors"
	"fmt"
)

var (

	// repository specific errors
	ErrorNotFound           = errors.New("not found")
	ErrorStorageUnavailable = errors.New("storage unavailable")

	// service specific errors
	ErrorInternal       = errors.New("internal error")
	ErrorBadCredentials = errors.New("bad credentials")
	ErrorValidation     = errors.New("validation error")
	ErrorForbidden      = errors.New("forbidden")

	// token errors; callers outside the log pipeline should only ever
	// surface ErrorInvalidToken
	ErrorInvalidToken           = errors.New("invalid token")
	ErrorTokenExpired           = errors.New("token expired")
	ErrorTokenMalformed         = errors.New("token malformed")
	ErrorTokenSignatureInvalid  = errors.New("token signature invalid")
	ErrorTokenUnsupportedMethod = errors.New("token signing method not supported")
	ErrorTokenWrongKind         = errors.New("token kind mismatch")
)

// DuplicateError reports a registration or update conflict on one of the
// globally unique account identifiers. Field is "username" or "email".
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s", e.Field)
}

// Is makes errors.Is(err, &DuplicateError{}) match any duplicate error and
// errors.Is(err, &DuplicateError{Field: "email"}) match email conflicts only.
func (e *DuplicateError) Is(target error) bool {
	d, ok := target.(*DuplicateError)
	if !ok {
		return false
	}
	return d.Field == "" || d.Field == e.Field
}

// NewDuplicateError returns the conflict error for the given identifier field.
func NewDuplicateError(field string) error {
	return &DuplicateError{Field: field}
}

// IsDuplicate reports whether err is an identifier conflict and, if so,
// which field collided.
func IsDuplicate(err error) (string, bool) {
	var d *DuplicateError
	if errors.As(err, &d) {
		return d.Field, true
	}
	return "", false
}

// IsInvalidToken reports whether err belongs to the token error family.
func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrorInvalidToken) ||
		errors.Is(err, ErrorTokenExpired) ||
		errors.Is(err, ErrorTokenMalformed) ||
		errors.Is(err, ErrorTokenSignatureInvalid) ||
		errors.Is(err, ErrorTokenUnsupportedMethod) ||
		errors.Is(err, ErrorTokenWrongKind)
}

package services

import "errors"

// Sentinel errors the HTTP layer maps onto status codes: ErrNotFound
// becomes 404, ErrDuplicate 409 and ErrInvalid 400. Services wrap them
// with fmt.Errorf("%w: ...") so the detail survives the translation.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicate      = errors.New("already exists")
	ErrInvalid        = errors.New("invalid input")
	ErrBadCredentials = errors.New("invalid credentials")
)

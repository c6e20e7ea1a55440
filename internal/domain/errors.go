package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateUser = errors.New("user already exists")
)

// UserError reports a directory operation rejected for a specific email.
// It unwraps to ErrNotFound or ErrDuplicateUser.
type UserError struct {
	Email string
	Err   error
}

func (e *UserError) Error() string {
	switch e.Err {
	case ErrDuplicateUser:
		return fmt.Sprintf("User with email: [%s] is already created", e.Email)
	case ErrNotFound:
		return fmt.Sprintf("User with email: [%s] doesn't exist", e.Email)
	}
	return fmt.Sprintf("%s: %v", e.Email, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

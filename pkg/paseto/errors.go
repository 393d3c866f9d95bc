package pasetotoken

import (
	"errors"
	"fmt"
)

// ErrUnknownRole rejects tokens whose role is none of the booking roles.
var ErrUnknownRole = errors.New("token carries an unknown role")

type ErrConfig struct{ Msg string }

func (e ErrConfig) Error() string { return "paseto config error: " + e.Msg }

// ErrInvalidToken wraps every verification failure so callers can answer 401
// without inspecting the cause.
type ErrInvalidToken struct{ Err error }

func (e ErrInvalidToken) Error() string { return fmt.Sprintf("invalid token: %v", e.Err) }
func (e ErrInvalidToken) Unwrap() error { return e.Err }

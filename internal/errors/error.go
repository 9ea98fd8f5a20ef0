// Package errors provides sentinel errors shared by the admin service layers.
package errors

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionClosed    = errors.New("session closed")
	ErrDeleteInFlight   = errors.New("another delete is in flight")
	ErrUnknownProduct   = errors.New("product is not part of the loaded collection")
	ErrUnknownSortKey   = errors.New("unknown sort key")
	ErrNotAuthorized    = errors.New("operator is not authorized")
	ErrStoreUnavailable = errors.New("store unavailable")
)

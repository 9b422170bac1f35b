package subscription

import "errors"

var (
	ErrRecordNotFound     = errors.New("subscription record not found")
	ErrMissingIdentity    = errors.New("subscription record has no user id")
	ErrMissingProviderRef = errors.New("subscription record has no provider subscription id")
)

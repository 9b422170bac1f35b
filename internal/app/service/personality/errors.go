package personality

import "errors"

var (
	ErrPersonalityNotFound = errors.New("personality not found")
	ErrPremiumRequired     = errors.New("personality requires an active subscription")
)

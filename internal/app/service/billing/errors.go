package billing

import "errors"

var (
	// ErrIdentityUnresolved means no tier could map the event to a local user.
	ErrIdentityUnresolved = errors.New("billing: user identity unresolved")

	ErrInvalidCheckoutRequest = errors.New("billing: invalid checkout request")
	ErrPriceNotConfigured     = errors.New("billing: subscription price not configured")
	ErrUnknownPersonality     = errors.New("billing: personality has no configured price")
	ErrPaymentsNotConfigured  = errors.New("billing: payments not configured")
	ErrCheckoutFailed         = errors.New("billing: checkout session creation failed")

	ErrProviderFetch = errors.New("billing: provider fetch failed")
)

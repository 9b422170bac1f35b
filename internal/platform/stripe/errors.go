package stripe

import "errors"

var (
	// ErrNotConfigured is returned on first use when the secret key is absent.
	ErrNotConfigured = errors.New("stripe: secret key not configured")

	ErrMissingSignature = errors.New("stripe: missing signature header")
	ErrMissingSecret    = errors.New("stripe: webhook secret not configured")
	ErrInvalidSignature = errors.New("stripe: invalid signature")
	// ErrMalformedEvent means the signature matched but the body is not an event.
	ErrMalformedEvent = errors.New("stripe: malformed event payload")
)

package decaylog

import "errors"

var (
	ErrInvalidMood   = errors.New("invalid mood")
	ErrEntryNotFound = errors.New("decay log entry not found")
)

package core

import "errors"

var (
	// ErrMissingServerID is returned when a channel message is built from an event without a guild.
	ErrMissingServerID = errors.New("message has no server id")
	// ErrInvalidSnowflake is returned for platform ids that are not unsigned decimal integers.
	ErrInvalidSnowflake = errors.New("invalid snowflake")
	// ErrInvalidCommandPattern is returned when the configured command pattern does not compile.
	ErrInvalidCommandPattern = errors.New("invalid command pattern")
	// ErrInvalidPayload marks payloads that cannot be turned into a request. Always a logic error.
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrDispatchFailed wraps network failures and non-2xx responses from the target.
	ErrDispatchFailed = errors.New("dispatch failed")
	// ErrCacheUpdate is returned when the message cache rejects a gateway event.
	ErrCacheUpdate = errors.New("cache update failed")
)

// IsInvariantViolation reports whether err stems from a classification or payload bug
// rather than from the network or the target.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrMissingServerID) || errors.Is(err, ErrInvalidPayload)
}

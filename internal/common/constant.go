// Package common contains shared constants and sentinel errors used across
// parentlink components.
package common

const (
	// AuthorizationHeaderName carries the bearer token on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// UserIDHeaderName carries the subject of the bearer token, when known.
	UserIDHeaderName = "X-User-ID"

	// IdempotencyKeyHeaderName lets the backend collapse replays of one create.
	IdempotencyKeyHeaderName = "Idempotency-Key"

	// AppName names the data directory and the environment variable prefix.
	AppName = "parentlink"
)

// Package common contains constants and sentinel errors shared by the evote
// client packages.
package common

const (
	// AuthorizationHeaderName carries the bearer access token.
	AuthorizationHeaderName = "Authorization"
	// RequestIDHeaderName carries a per-request UUID for log correlation.
	RequestIDHeaderName = "X-Request-ID"

	BearerPrefix = "Bearer "
)

// Durable storage keys for the session.
const (
	StorageKeyUser         = "user"
	StorageKeyAccessToken  = "access_token"
	StorageKeyRefreshToken = "refresh_token"
)

// PlaceholderImage is shown for candidates and parties without a photo.
const PlaceholderImage = "/placeholder.png"

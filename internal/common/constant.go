package common

const (
	// AuthorizationHeaderName is the gRPC metadata key carrying "Bearer <token>".
	AuthorizationHeaderName = "authorization"

	// AccessTokenHeaderName is the bare-token metadata key kept for clients
	// that do not send the Authorization scheme.
	AccessTokenHeaderName = "access_token"

	// TokenTypeBearer is returned alongside every issued access token.
	TokenTypeBearer = "bearer"
)

package plugin

import "errors"

// Request handling errors.
var (
	// ErrUnknownMethod indicates the host called a method the plugin does not export
	ErrUnknownMethod = errors.New("unknown method")

	// ErrInvalidParams indicates the request parameters could not be decoded
	ErrInvalidParams = errors.New("invalid params")

	// ErrInvalidRequest indicates a request line that is not a JSON object
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRequestTooLarge indicates a request line over MaxRequestSize
	ErrRequestTooLarge = errors.New("request too large")

	// ErrMissingTTL indicates a set request without a ttl parameter
	ErrMissingTTL = errors.New("missing ttl parameter")
)

package estimation

import "errors"

var (
	// ErrDestroyed is returned by Update after Destroy has been called.
	ErrDestroyed = errors.New("estimation: estimator destroyed")

	// ErrCubemapUnavailable wraps failures to acquire the session's environment cubemap faces.
	ErrCubemapUnavailable = errors.New("estimation: cubemap unavailable")

	// ErrMalformedCubemap is returned for faces that are missing, empty, of differing sizes
	// or shorter than their reported dimensions.
	ErrMalformedCubemap = errors.New("estimation: malformed cubemap")
)

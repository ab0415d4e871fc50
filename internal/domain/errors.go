package domain

import "errors"

// Domain errors.
var (
	// ErrCastNotFound is returned when the content API has no such cast.
	ErrCastNotFound = errors.New("cast not found")

	// ErrUpstreamUnavailable is returned when the content API fails or times out.
	ErrUpstreamUnavailable = errors.New("content API unavailable")

	// ErrRateLimited is returned when rate limited by the content API.
	ErrRateLimited = errors.New("rate limited")

	// ErrMissingAPIKey is returned when no content API key is configured.
	ErrMissingAPIKey = errors.New("content API key is not set")

	// ErrMissingRenderParam is returned when a composite image is requested without avatar, name or handle.
	ErrMissingRenderParam = errors.New("missing parameters")

	// ErrInvalidAvatarURL is returned when the avatar parameter is not an absolute URL.
	ErrInvalidAvatarURL = errors.New("invalid profile picture URL")

	// ErrImageFetch is returned when a remote image cannot be downloaded or decoded.
	ErrImageFetch = errors.New("image fetch failed")

	// ErrImageTooLarge is returned when a remote image exceeds the size limit.
	ErrImageTooLarge = errors.New("image too large")
)

// CastError wraps an error with cast lookup context.
type CastError struct {
	Key string
	Op  string
	Err error
}

func (e *CastError) Error() string {
	if e.Key != "" {
		return e.Op + " [" + e.Key + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *CastError) Unwrap() error {
	return e.Err
}

// NewCastError creates a new CastError.
func NewCastError(key, op string, err error) *CastError {
	return &CastError{
		Key: key,
		Op:  op,
		Err: err,
	}
}

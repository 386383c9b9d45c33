package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown payload shape, transport or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSessionBusy indicates a query is already in flight for the session.
	// The new query is rejected rather than interleaved.
	ErrSessionBusy = errors.New("session busy")

	// ErrSearchUnavailable indicates the search backend is not configured or unreachable.
	ErrSearchUnavailable = errors.New("search backend unavailable")

	// ErrGeneratorUnavailable indicates the generative-text backend is not configured.
	// Summaries fall back to the backend summary text.
	ErrGeneratorUnavailable = errors.New("generator unavailable")

	// ErrMalformedPayload indicates a backend response could not be interpreted.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrNoTrailer indicates a summary carries no recommendation trailer.
	ErrNoTrailer = errors.New("no recommendation trailer")

	// ErrMissingConfig indicates required configuration is absent.
	// Startup must fail rather than serve with partial configuration.
	ErrMissingConfig = errors.New("missing required configuration")

	// Backend Errors.

	// ErrAuthInvalid indicates the backend rejected the credentials.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrPermissionDenied indicates the credentials lack access to the resource.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// Package discoveryengine implements driven.SearchBackend against the
// managed enterprise search service.
//
// Two transports are provided. TypedClient uses the generated
// discoveryengine/v1 client and returns *domain.TypedPayload. RESTClient
// posts JSON with a bearer token and returns the decoded body as
// domain.FlatPayload. Both share endpoint selection, error classification
// and rate limiting with the google adapter package.
package discoveryengine

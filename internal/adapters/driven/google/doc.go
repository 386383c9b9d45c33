// Package google provides shared infrastructure for the Google Cloud adapters.
//
// This package contains common utilities used by the search transports,
// the Vertex AI generator and the Firestore history store:
//   - Token providers for Application Default Credentials, the metadata
//     server and static access tokens
//   - A TokenSource adapter bridging driven.TokenProvider to oauth2.TokenSource
//   - Error handling for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect API quotas
//
// # Usage
//
//	provider, err := google.NewTokenProvider(ctx, cfg.Auth)
//	ts := google.NewTokenSource(ctx, provider)
//	svc, err := discoveryengine.NewService(ctx, option.WithTokenSource(ts))
//
// # OAuth2 Scopes
//
// All clients use https://www.googleapis.com/auth/cloud-platform.
package google

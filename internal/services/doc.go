// Package services implements [CatalogService], the HTTP client for the label's catalog data service.
//
// # Endpoints
//
//   - GET /api/songs, GET /api/artists, GET /api/stats : read path for the catalog
//   - POST /api/songs/{id}/toggle-like : like counter mutation, response body ignored
//   - POST /api/auth/login, GET /api/auth/me : account lookups used by the login gate
//
// Artwork and audio references in records are paths relative to the service root;
// [CatalogService.ResolveURL] joins them to the base URL and [CatalogService.OpenAudio] streams them.
//
// # Rate Limiting
//
// All calls share one [rate.Limiter] configured from [api] requests_per_second.
//
// # OAuth
//
// [NewOAuthConfig] builds the [oauth2.Config] used by the browser login flow in the server package.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status; the {"error": "..."} body is included
//   - [shared.ErrServiceUnavailable] : 503 from the data service
//   - [shared.ErrAuthFailed] : login or token lookup rejected
package services

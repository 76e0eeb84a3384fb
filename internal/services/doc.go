// Package services defines the [MovieProvider] interface for movie search and detail lookups and
// implements it for OMDb.
//
// # OMDb Implementation
//
// [OMDbService] issues GET requests against the OMDb API with the configured API key:
//   - search: ?s={query}&page={n}&type={type}&y={year}
//   - details: ?i={imdbID}&plot=full
//
// Requests share a [rate.Limiter] and are retried with backoff on transport errors and 5xx
// responses. A 4xx response or an OMDb body with Response "False" is never retried.
//
// Results are memoized in [cache.TTL] instances passed in through [OMDbOpts]; the service does not
// create caches of its own.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : no API key configured
//   - [shared.ErrMovieNotFound] : OMDb answered Response "False"; the message is OMDb's
//   - [shared.ErrServiceUnavailable] : 5xx after all retries
//   - [shared.ErrAPIRequest] : transport failure, 4xx or an undecodable body
package services

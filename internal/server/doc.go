// Package server provides HTTP routing, middleware, the JSON API over the list core, and OAuth
// callback handling for the CLI.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses gorilla/mux internally for method matching and path variables.
//
// # JSON API
//
// [API] registers the list, membership, movie and account routes. List routes require a bearer
// token issued by [Tokens] at sign-up or login; tokens live in a TTL cache and expire with it.
// Every mutation responds with state re-read from the store, never with a locally patched copy.
//
// Errors are reported as {"error", "kind"} with the status chosen by [StatusFor]:
// validation 400, duplicate 409, protected 403, not found 404, provider 502, store 500.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), resolves the identity behind the
// authorization code, and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server

// package server contains middleware & handlers for the movie list web service
package server

import (
	"net/http"
)

// Middleware wraps an http.Handler with request logging, metrics or authentication.
type Middleware func(http.Handler) http.Handler

// Handler is a self-routing handler such as the OAuth callback, mounted on every path it lists.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router is what [API.Register] and the OAuth sign-in flow mount their routes on.
type Router interface {
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	Handler(handler Handler)
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

// Package middleware holds the http.Handler wrappers in front of the game
// server. Auth attaches the signed-in player to the request context.
package middleware

import "net/http"

// Middleware wraps a handler with one concern of the server.
type Middleware func(http.Handler) http.Handler

// Wrap applies mws to h so that the last one listed runs first. The server
// lists Auth, Cors, Logging, so CORS preflights are logged but never reach
// Auth.
func Wrap(h http.Handler, mws ...Middleware) http.Handler {
	for _, mw := range mws {
		h = mw(h)
	}
	return h
}

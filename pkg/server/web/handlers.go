package web

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// InternalError is the message of every 500 response, details are only logged.
const InternalError = "Internal server error"

// Handler is a function type that handles an HTTP request in InstantTempMail.
type Handler func(http.ResponseWriter, *http.Request, *Context) error

// ServeHTTP builds the context and passes onto the real handler.
func (h Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	expRequestsTotal.Add(1)

	// Create the context.
	ctx, err := NewContext(req)
	if err != nil {
		expErrorsTotal.Add(1)
		log.Error().Str("module", "web").Err(err).Msg("HTTP failed to create context")
		_ = RenderError(w, http.StatusInternalServerError, InternalError)
		return
	}
	defer ctx.Close()

	// Run the handler, grab the error, and report it.
	err = h(w, req, ctx)
	if err != nil {
		expErrorsTotal.Add(1)
		log.Error().Str("module", "web").Str("path", req.RequestURI).Err(err).
			Msg("Error handling request")
		_ = RenderError(w, http.StatusInternalServerError, InternalError)
		return
	}
}

// noMatchHandler creates a handler to log requests that Gorilla mux is unable to route,
// returning specified statusCode to the client.
func noMatchHandler(statusCode int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Warn().Str("module", "web").Str("remote", req.RemoteAddr).Str("proto", req.Proto).
			Str("method", req.Method).Str("path", req.RequestURI).Msg(message)
		w.WriteHeader(statusCode)
	})
}

// requestLoggingWrapper returns middleware that logs client requests.
func requestLoggingWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		log.Debug().Str("module", "web").Str("remote", req.RemoteAddr).Str("proto", req.Proto).
			Str("method", req.Method).Str("path", req.RequestURI).Msg("Request")
		next.ServeHTTP(w, req)
	})
}

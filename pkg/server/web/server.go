// Package web provides the plumbing for the InstantTempMail RESTful API.
package web

import (
	"context"
	"errors"
	"expvar"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/instanttempmail/tempmail/pkg/assistant"
	"github.com/instanttempmail/tempmail/pkg/config"
	"github.com/instanttempmail/tempmail/pkg/message"
	"github.com/instanttempmail/tempmail/pkg/stringutil"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

var (
	// manager and assist are handed to request handlers through Context.
	manager    message.Manager
	assist     *assistant.Assistant
	rootConfig *config.Root

	// Router is shared between the web and rest packages.  It sends incoming requests to the
	// correct handler function.
	Router = mux.NewRouter()

	expRequestsTotal = new(expvar.Int)
	expErrorsTotal   = new(expvar.Int)
)

func init() {
	m := expvar.NewMap("http")
	m.Set("RequestsTotal", expRequestsTotal)
	m.Set("ErrorsTotal", expErrorsTotal)
}

// Server defines an instance of the HTTP server.
type Server struct {
	http     *http.Server
	listener net.Listener
	notify   chan error
}

// NewServer sets up things for unit tests or the Start() method.
func NewServer(conf *config.Root, mm message.Manager, ai *assistant.Assistant) *Server {
	rootConfig = conf
	manager = mm
	assist = ai

	prefix := stringutil.MakePathPrefixer(conf.Web.BasePath)
	Router.Path(prefix("/debug/vars")).Handler(expvar.Handler()).Methods("GET")
	Router.NotFoundHandler = noMatchHandler(http.StatusNotFound, "No route matches URI path")
	Router.MethodNotAllowedHandler = noMatchHandler(http.StatusMethodNotAllowed,
		"Method not allowed for URI path")

	return &Server{
		http: &http.Server{
			Addr:         conf.Web.Addr,
			Handler:      requestLoggingWrapper(Router),
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		notify: make(chan error, 1),
	}
}

// Start begins listening for HTTP requests.  readyFunc is called once the listener is open.
// Start blocks until ctx is done, then shuts the server down gracefully.
func (s *Server) Start(ctx context.Context, readyFunc func()) {
	slog := log.With().Str("module", "web").Str("phase", "startup").Logger()
	var err error
	s.listener, err = net.Listen("tcp", s.http.Addr)
	if err != nil {
		slog.Error().Err(err).Msg("HTTP failed to start TCP listener")
		s.notify <- err
		close(s.notify)
		return
	}
	slog.Info().Str("addr", s.listener.Addr().String()).Msg("HTTP listening on tcp")
	readyFunc()

	// Listener go routine.
	go s.serve(ctx)

	// Wait for shutdown.
	<-ctx.Done()
	slog = log.With().Str("module", "web").Str("phase", "shutdown").Logger()
	slog.Debug().Msg("HTTP server shutting down on request")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(sctx); err != nil {
		slog.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

// serve begins serving HTTP requests.
func (s *Server) serve(ctx context.Context) {
	// http.Server.Serve blocks until Shutdown is called.
	err := s.http.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) || ctx.Err() != nil {
		return
	}
	log.Error().Str("module", "web").Err(err).Msg("HTTP server failed")
	s.notify <- err
	close(s.notify)
}

// Addr returns the address the server is listening on, valid once Start called readyFunc.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Notify allows the running HTTP server to be monitored for a fatal error.
func (s *Server) Notify() <-chan error {
	return s.notify
}

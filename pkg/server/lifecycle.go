// Package server wires the InstantTempMail services together.
package server

import (
	"context"

	"github.com/instanttempmail/tempmail/pkg/assistant"
	"github.com/instanttempmail/tempmail/pkg/config"
	"github.com/instanttempmail/tempmail/pkg/expiry"
	"github.com/instanttempmail/tempmail/pkg/extension"
	"github.com/instanttempmail/tempmail/pkg/inbox"
	"github.com/instanttempmail/tempmail/pkg/message"
	"github.com/instanttempmail/tempmail/pkg/policy"
	"github.com/instanttempmail/tempmail/pkg/rest"
	"github.com/instanttempmail/tempmail/pkg/server/web"
	"github.com/instanttempmail/tempmail/pkg/storage"
	"github.com/instanttempmail/tempmail/pkg/storage/mem"
	"github.com/instanttempmail/tempmail/pkg/stringutil"
)

// Services holds the configured services.
type Services struct {
	ExtHost   *extension.Host
	Inboxes   *inbox.Registry
	Store     storage.Store
	Manager   *message.StoreManager
	Assistant *assistant.Assistant
	Scheduler *expiry.Scheduler
	Sweeper   *expiry.Sweeper
	WebServer *web.Server
}

// Prod wires up the production InstantTempMail environment.
func Prod(rootCtx context.Context, shutdownChan chan bool, conf *config.Root) (*Services, error) {
	extHost := extension.NewHost()

	inboxes, err := inbox.NewRegistry(conf.Inbox.DefaultTTL)
	if err != nil {
		return nil, err
	}
	store := mem.New(conf.Inbox, extHost)
	addrPolicy := policy.NewAddressing(conf.Inbox)
	mmanager := message.NewStoreManager(conf.Inbox, store, inboxes, addrPolicy, extHost)

	ai, err := assistant.New(conf.Assistant)
	if err != nil {
		return nil, err
	}

	// Expiry timers follow inbox events, the sweeper catches what the timers missed.
	scheduler := expiry.NewScheduler(mmanager, inboxes)
	scheduler.Listen(extHost)
	sweeper := expiry.NewSweeper(conf.Inbox, store, mmanager, inboxes, shutdownChan)

	// Configure routes and HTTP server.
	prefix := stringutil.MakePathPrefixer(conf.Web.BasePath)
	rest.SetupRoutes(web.Router.PathPrefix(prefix("/api/")).Subrouter())
	webServer := web.NewServer(conf, mmanager, ai)

	return &Services{
		ExtHost:   extHost,
		Inboxes:   inboxes,
		Store:     store,
		Manager:   mmanager,
		Assistant: ai,
		Scheduler: scheduler,
		Sweeper:   sweeper,
		WebServer: webServer,
	}, nil
}

// Start the services.  readyFunc is called once the HTTP server is accepting connections.
func (s *Services) Start(ctx context.Context, readyFunc func()) {
	s.Sweeper.Start()
	go s.WebServer.Start(ctx, readyFunc)
}

// Notify allows the running services to be monitored for a fatal error.
func (s *Services) Notify() <-chan error {
	return s.WebServer.Notify()
}

// Stop cancels pending work that is not tied to the root context.  Call after shutdownChan has
// been closed.
func (s *Services) Stop() {
	s.Sweeper.Join()
	s.Scheduler.Stop()
	s.Manager.StopWelcome()
}

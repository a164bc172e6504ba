package expiry

import (
	"errors"
	"time"

	"github.com/instanttempmail/tempmail/pkg/config"
	"github.com/instanttempmail/tempmail/pkg/message"
	"github.com/instanttempmail/tempmail/pkg/storage"
	"github.com/rs/zerolog/log"
)

// Sweeper periodically removes messages whose deadline already passed: those that were stale
// when their inbox was scheduled, and those of inboxes that are no longer open.
type Sweeper struct {
	globalShutdown chan bool // Closes when the service needs to shut down
	sweepShutdown  chan bool // Closed after the sweeper has shut down
	store          storage.Store
	manager        message.Manager
	inboxes        TTLSource
	interval       time.Duration
	now            func() time.Time
}

// NewSweeper configures a new Sweeper.
func NewSweeper(
	cfg config.Inbox,
	store storage.Store,
	manager message.Manager,
	inboxes TTLSource,
	shutdownChannel chan bool,
) *Sweeper {
	sw := &Sweeper{
		globalShutdown: shutdownChannel,
		sweepShutdown:  make(chan bool),
		store:          store,
		manager:        manager,
		inboxes:        inboxes,
		interval:       cfg.SweepInterval,
		now:            time.Now,
	}
	// expSweepInterval is displayed on the /debug/vars page
	expSweepInterval.Set(int64(cfg.SweepInterval / time.Second))
	return sw
}

// Start up the sweeper if the interval > 0.
func (sw *Sweeper) Start() {
	if sw.interval <= 0 {
		log.Info().Str("phase", "startup").Str("module", "expiry").Msg("Expiry sweeper disabled")
		close(sw.sweepShutdown)
		return
	}
	log.Info().Str("phase", "startup").Str("module", "expiry").
		Msgf("Expiry sweeper configured for %v", sw.interval)
	go sw.run()
}

// run loops to kick off the sweeper on the correct schedule.
func (sw *Sweeper) run() {
	slog := log.With().Str("module", "expiry").Logger()
	start := time.Now()
sweepLoop:
	for {
		// Prevent sweeper from starting more than once per interval.
		since := time.Since(start)
		if since < sw.interval {
			dur := sw.interval - since
			slog.Debug().Msgf("Sweeper sleeping for %v", dur)
			select {
			case <-sw.globalShutdown:
				break sweepLoop
			case <-time.After(dur):
			}
		}
		// Kickoff sweep.
		start = time.Now()
		if err := sw.DoScan(); err != nil {
			slog.Error().Err(err).Msg("Error during expiry sweep")
		}
		// Check for global shutdown.
		select {
		case <-sw.globalShutdown:
			break sweepLoop
		default:
		}
	}
	slog.Debug().Str("phase", "shutdown").Msg("Expiry sweeper shut down")
	close(sw.sweepShutdown)
}

// DoScan does a single pass of all mailboxes looking for messages that have expired.
func (sw *Sweeper) DoScan() error {
	slog := log.With().Str("module", "expiry").Logger()
	slog.Debug().Msg("Starting expiry sweep")
	now := sw.now()
	retained := 0
	var orphans []string
	// Loop over all mailboxes.
	err := sw.store.VisitMailboxes(func(messages []storage.Message) bool {
		if len(messages) == 0 {
			return true
		}
		mailbox := messages[0].Mailbox()
		ttl, ok := sw.inboxes.TTL(mailbox)
		if !ok {
			orphans = append(orphans, mailbox)
			return true
		}
		for _, msg := range messages {
			if msg.Date().Add(ttl).After(now) {
				retained++
				continue
			}
			slog.Debug().Str("mailbox", mailbox).Str("id", msg.ID()).
				Msg("Sweeping expired message")
			err := sw.manager.RemoveMessage(mailbox, msg.ID())
			switch {
			case err == nil:
				expSweptTotal.Add(1)
				expExpiredTotal.Add(1)
			case errors.Is(err, storage.ErrNotExist):
				// Removed by its timer meanwhile.
			default:
				slog.Error().Str("mailbox", mailbox).Str("id", msg.ID()).Err(err).
					Msg("Failed to sweep message")
			}
		}
		select {
		case <-sw.globalShutdown:
			slog.Debug().Str("phase", "shutdown").Msg("Expiry sweep aborted due to shutdown")
			return false
		default:
		}
		return true
	})
	if err != nil {
		return err
	}
	for _, mailbox := range orphans {
		slog.Debug().Str("mailbox", mailbox).Msg("Purging messages of closed inbox")
		if err := sw.store.PurgeMessages(mailbox); err != nil {
			slog.Error().Str("mailbox", mailbox).Err(err).Msg("Failed to purge closed inbox")
		}
	}
	// Update metrics
	setSweepCompleted(time.Now())
	expRetainedCurrent.Set(int64(retained))
	return nil
}

// Join does not return until the sweeper has shut down.
func (sw *Sweeper) Join() {
	if sw.sweepShutdown != nil {
		<-sw.sweepShutdown
	}
}

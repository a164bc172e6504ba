// Package expiry removes inbox messages once the TTL of their inbox elapsed.
package expiry

import (
	"errors"
	"sync"
	"time"

	"github.com/instanttempmail/tempmail/pkg/extension"
	"github.com/instanttempmail/tempmail/pkg/extension/event"
	"github.com/instanttempmail/tempmail/pkg/message"
	"github.com/instanttempmail/tempmail/pkg/storage"
	"github.com/rs/zerolog/log"
)

const listenerName = "expiry"

// TTLSource reports the TTL of open inboxes.
type TTLSource interface {
	TTL(mailbox string) (time.Duration, bool)
}

// Scheduler keeps one removal timer per message.  The timers of an inbox are recomputed from
// scratch whenever its contents or TTL change.
type Scheduler struct {
	manager message.Manager
	inboxes TTLSource
	now     func() time.Time

	mu      sync.Mutex
	timers  map[string]map[string]*pending // Keyed by mailbox, then message ID.
	stopped bool
}

// pending is a scheduled removal; a timer that fires after its entry was replaced is stale.
type pending struct {
	timer    *time.Timer
	deadline time.Time
}

// NewScheduler creates a Scheduler that removes messages through manager.
func NewScheduler(manager message.Manager, inboxes TTLSource) *Scheduler {
	return &Scheduler{
		manager: manager,
		inboxes: inboxes,
		now:     time.Now,
		timers:  make(map[string]map[string]*pending),
	}
}

// Listen subscribes the scheduler to the inbox events that require rescheduling.
func (s *Scheduler) Listen(extHost *extension.Host) {
	events := extHost.Events
	events.AfterMessageStored.AddListener(listenerName, func(m event.MessageMetadata) {
		s.Reschedule(m.Mailbox)
	})
	events.AfterMessageDeleted.AddListener(listenerName, func(m event.MessageMetadata) {
		s.Reschedule(m.Mailbox)
	})
	events.AfterTTLChanged.AddListener(listenerName, func(e event.InboxTTL) {
		s.Reschedule(e.Mailbox)
	})
	events.AfterInboxClosed.AddListener(listenerName, func(e event.InboxClosed) {
		s.Cancel(e.Mailbox)
	})
}

// Reschedule cancels the pending timers of mailbox and sets a new one for every message whose
// deadline, Date plus TTL, is still ahead.  Messages already past their deadline are left for
// the Sweeper.
func (s *Scheduler) Reschedule(mailbox string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.cancelLocked(mailbox)

	ttl, ok := s.inboxes.TTL(mailbox)
	if !ok {
		return
	}
	metas, err := s.manager.GetMetadata(mailbox)
	if err != nil {
		log.Error().Str("module", "expiry").Str("mailbox", mailbox).Err(err).
			Msg("Failed to list messages for scheduling")
		return
	}

	now := s.now()
	timers := make(map[string]*pending, len(metas))
	stale := 0
	for _, meta := range metas {
		deadline := meta.Date.Add(ttl)
		remaining := deadline.Sub(now)
		if remaining <= 0 {
			stale++
			continue
		}
		id := meta.ID
		p := &pending{deadline: deadline}
		p.timer = time.AfterFunc(remaining, func() { s.expire(mailbox, id, p) })
		timers[id] = p
	}
	if len(timers) > 0 {
		s.timers[mailbox] = timers
		expPendingCurrent.Add(int64(len(timers)))
	}
	log.Debug().Str("module", "expiry").Str("mailbox", mailbox).Dur("ttl", ttl).
		Int("scheduled", len(timers)).Int("stale", stale).Msg("Rescheduled inbox")
}

// Cancel stops all pending timers of mailbox.
func (s *Scheduler) Cancel(mailbox string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(mailbox)
}

// Pending returns the number of scheduled removals for mailbox.
func (s *Scheduler) Pending(mailbox string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers[mailbox])
}

// Deadline returns when the message will be removed, if a removal is scheduled.
func (s *Scheduler) Deadline(mailbox, id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.timers[mailbox][id]
	if !ok {
		return time.Time{}, false
	}
	return p.deadline, true
}

// Stop cancels every timer; later Reschedule calls are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for mailbox := range s.timers {
		s.cancelLocked(mailbox)
	}
	log.Debug().Str("module", "expiry").Str("phase", "shutdown").Msg("Expiry timers stopped")
}

func (s *Scheduler) cancelLocked(mailbox string) {
	timers := s.timers[mailbox]
	for _, p := range timers {
		p.timer.Stop()
	}
	expPendingCurrent.Add(-int64(len(timers)))
	delete(s.timers, mailbox)
}

// expire is called by the timer of p.
func (s *Scheduler) expire(mailbox, id string, p *pending) {
	s.mu.Lock()
	if s.timers[mailbox][id] != p {
		// Replaced by a reschedule after the timer already fired.
		s.mu.Unlock()
		return
	}
	delete(s.timers[mailbox], id)
	if len(s.timers[mailbox]) == 0 {
		delete(s.timers, mailbox)
	}
	expPendingCurrent.Add(-1)
	s.mu.Unlock()

	err := s.manager.RemoveMessage(mailbox, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return
		}
		log.Error().Str("module", "expiry").Str("mailbox", mailbox).Str("id", id).Err(err).
			Msg("Failed to remove expired message")
		return
	}
	expExpiredTotal.Add(1)
	log.Debug().Str("module", "expiry").Str("mailbox", mailbox).Str("id", id).
		Msg("Removed expired message")
}

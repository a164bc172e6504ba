package message

import (
	"errors"
	"time"

	"github.com/instanttempmail/tempmail/pkg/inbox"
	"github.com/rs/zerolog/log"
)

// Welcome is delivered to every new inbox once WelcomeDelay elapsed.
var Welcome = Draft{
	From:    "welcome@service.com",
	Subject: "Welcome to InstantTempMail!",
	Body: "Thank you for using our service. Your temporary email is ready to receive " +
		"messages.",
}

// scheduleWelcome arranges delivery of the Welcome draft to mailbox.
func (s *StoreManager) scheduleWelcome(mailbox string) {
	if s.WelcomeDelay <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.welcome == nil {
		s.welcome = make(map[string]*time.Timer)
	}
	if t, ok := s.welcome[mailbox]; ok {
		t.Stop()
	}
	s.welcome[mailbox] = time.AfterFunc(s.WelcomeDelay, func() {
		s.mu.Lock()
		delete(s.welcome, mailbox)
		s.mu.Unlock()
		draft := Welcome
		if _, err := s.DeliverDraft(mailbox, &draft); err != nil {
			if errors.Is(err, inbox.ErrNotExist) {
				return
			}
			log.Warn().Str("module", "manager").Str("mailbox", mailbox).Err(err).
				Msg("Failed to deliver welcome message")
		}
	})
}

// cancelWelcome stops a pending welcome delivery; returns true if one was pending.
func (s *StoreManager) cancelWelcome(mailbox string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.welcome[mailbox]
	if ok {
		t.Stop()
		delete(s.welcome, mailbox)
	}
	return ok
}

// StopWelcome cancels every pending welcome delivery, used at shutdown.
func (s *StoreManager) StopWelcome() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for mailbox, t := range s.welcome {
		t.Stop()
		delete(s.welcome, mailbox)
	}
}

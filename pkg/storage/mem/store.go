// Package mem implements an in-memory message store.  Contents are lost when the process exits.
package mem

import (
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/instanttempmail/tempmail/pkg/config"
	"github.com/instanttempmail/tempmail/pkg/extension"
	"github.com/instanttempmail/tempmail/pkg/storage"
	"github.com/rs/zerolog/log"
)

// Store implements an in-memory message store.
type Store struct {
	sync.Mutex
	boxes   map[string]*mbox
	cap     int // Per-mailbox message cap.
	extHost *extension.Host
}

type mbox struct {
	sync.RWMutex
	name     string
	last     int
	messages map[string]*Message
}

var _ storage.Store = &Store{}

// New returns an empty memory store.  Deletions, including those caused by the message cap, are
// announced on the AfterMessageDeleted event.
func New(cfg config.Inbox, extHost *extension.Host) *Store {
	return &Store{
		boxes:   make(map[string]*mbox),
		cap:     cfg.MsgCap,
		extHost: extHost,
	}
}

// AddMessage stores the message, message ID and Size will be ignored.
func (s *Store) AddMessage(message storage.Message) (id string, err error) {
	r, err := message.Source()
	if err != nil {
		return "", err
	}
	source, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil {
		return "", err
	}
	m := &Message{
		mailbox: message.Mailbox(),
		from:    message.From(),
		to:      message.To(),
		date:    message.Date(),
		subject: message.Subject(),
		source:  source,
	}
	var dropped []*Message
	s.withMailbox(message.Mailbox(), true, true, func(mb *mbox) {
		mb.last++
		m.index = mb.last
		m.id = strconv.Itoa(mb.last)
		mb.messages[m.id] = m

		if s.cap > 0 && len(mb.messages) > s.cap {
			dropped = mb.oldest(len(mb.messages) - s.cap)
			for _, d := range dropped {
				delete(mb.messages, d.id)
			}
		}
	})
	for _, d := range dropped {
		log.Debug().Str("module", "storage").Str("mailbox", d.mailbox).Str("id", d.id).
			Msg("Message cap reached, dropped oldest message")
		s.emitDeleted(d)
	}
	return m.id, nil
}

// GetMessage gets a message.
func (s *Store) GetMessage(mailbox, id string) (storage.Message, error) {
	var m *Message
	s.withMailbox(mailbox, false, false, func(mb *mbox) {
		if found, ok := mb.messages[id]; ok {
			m = found.snapshot()
		}
	})
	if m == nil {
		return nil, storage.ErrNotExist
	}
	return m, nil
}

// GetMessages gets a list of messages in delivery order.
func (s *Store) GetMessages(mailbox string) ([]storage.Message, error) {
	ms := []storage.Message{}
	s.withMailbox(mailbox, false, false, func(mb *mbox) {
		for _, m := range mb.sorted() {
			ms = append(ms, m.snapshot())
		}
	})
	return ms, nil
}

// MarkSeen marks a message as having been read.
func (s *Store) MarkSeen(mailbox, id string) error {
	found := false
	s.withMailbox(mailbox, false, true, func(mb *mbox) {
		if m := mb.messages[id]; m != nil {
			m.seen = true
			found = true
		}
	})
	if !found {
		return storage.ErrNotExist
	}
	return nil
}

// PurgeMessages deletes the contents of a mailbox, and the mailbox itself.
func (s *Store) PurgeMessages(mailbox string) error {
	s.Lock()
	mb, ok := s.boxes[mailbox]
	delete(s.boxes, mailbox)
	s.Unlock()
	if !ok {
		return nil
	}

	mb.Lock()
	messages := mb.sorted()
	mb.messages = make(map[string]*Message)
	mb.Unlock()

	for _, m := range messages {
		s.emitDeleted(m)
	}
	return nil
}

// RemoveMessage deletes a single message.
func (s *Store) RemoveMessage(mailbox, id string) error {
	var m *Message
	s.withMailbox(mailbox, false, true, func(mb *mbox) {
		m = mb.messages[id]
		delete(mb.messages, id)
	})
	if m == nil {
		return storage.ErrNotExist
	}
	s.emitDeleted(m)
	return nil
}

// VisitMailboxes visits each mailbox in the store.
func (s *Store) VisitMailboxes(f func([]storage.Message) (cont bool)) error {
	s.Lock()
	boxNames := make([]string, 0, len(s.boxes))
	for k := range s.boxes {
		boxNames = append(boxNames, k)
	}
	s.Unlock()
	sort.Strings(boxNames)

	for _, mailbox := range boxNames {
		ms, err := s.GetMessages(mailbox)
		if err != nil {
			return err
		}
		if !f(ms) {
			break
		}
	}
	return nil
}

// withMailbox locks the named mailbox and calls f.  If the mailbox does not exist it is created
// when create is set, otherwise f is not called.
func (s *Store) withMailbox(mailbox string, create, writeLock bool, f func(mb *mbox)) {
	s.Lock()
	mb, ok := s.boxes[mailbox]
	if !ok {
		if !create {
			s.Unlock()
			return
		}
		mb = &mbox{
			name:     mailbox,
			messages: make(map[string]*Message),
		}
		s.boxes[mailbox] = mb
	}
	s.Unlock()

	if writeLock {
		mb.Lock()
		defer mb.Unlock()
	} else {
		mb.RLock()
		defer mb.RUnlock()
	}
	f(mb)
}

func (s *Store) emitDeleted(m *Message) {
	if s.extHost != nil {
		s.extHost.Events.AfterMessageDeleted.Emit(m.metadata())
	}
}

// sorted returns messages in delivery order; mbox lock must be held.
func (mb *mbox) sorted() []*Message {
	ms := make([]*Message, 0, len(mb.messages))
	for _, m := range mb.messages {
		ms = append(ms, m)
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].index < ms[j].index })
	return ms
}

// oldest returns the n oldest messages; mbox lock must be held.
func (mb *mbox) oldest(n int) []*Message {
	ms := mb.sorted()
	if n > len(ms) {
		n = len(ms)
	}
	return ms[:n]
}

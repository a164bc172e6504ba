package message

import (
	"bytes"
	"errors"
	"expvar"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/instanttempmail/tempmail/pkg/config"
	"github.com/instanttempmail/tempmail/pkg/extension"
	"github.com/instanttempmail/tempmail/pkg/extension/event"
	"github.com/instanttempmail/tempmail/pkg/inbox"
	"github.com/instanttempmail/tempmail/pkg/metric"
	"github.com/instanttempmail/tempmail/pkg/policy"
	"github.com/instanttempmail/tempmail/pkg/storage"
	"github.com/jhillyerd/enmime/v2"
	"github.com/rs/zerolog/log"
)

// ErrDiscarded is returned by Deliver when a BeforeMessageStored listener dropped the message.
var ErrDiscarded = errors.New("message discarded")

var (
	// Raw stat collectors
	expDeliveredTotal = new(expvar.Int)
	expDiscardedTotal = new(expvar.Int)
	expInboxesCurrent = new(expvar.Int)

	// History of certain stats
	deliveredHist = metric.NewHistory()
	inboxesHist   = metric.NewHistory()

	// History rendered as comma delim string
	expDeliveredHist = new(expvar.String)
	expInboxesHist   = new(expvar.String)
)

func init() {
	m := expvar.NewMap("inbox")
	m.Set("DeliveredTotal", expDeliveredTotal)
	m.Set("DiscardedTotal", expDiscardedTotal)
	m.Set("InboxesCurrent", expInboxesCurrent)
	m.Set("DeliveredHist", expDeliveredHist)
	m.Set("InboxesHist", expInboxesHist)

	metric.AddTickerFunc(func() {
		expDeliveredHist.Set(deliveredHist.Push(expDeliveredTotal))
		expInboxesHist.Set(inboxesHist.Push(expInboxesCurrent))
	})
}

// Manager is the interface controllers use to interact with inboxes and their messages.
type Manager interface {
	NewInbox() (inbox.State, error)
	Inbox(mailbox string) (inbox.State, error)
	RotateInbox(mailbox string) (inbox.State, error)
	CloseInbox(mailbox string) error
	SetTTL(mailbox string, ttl time.Duration) error
	Deliver(mailbox string, source []byte) (id string, err error)
	DeliverDraft(mailbox string, draft *Draft) (id string, err error)
	GetMetadata(mailbox string) ([]*Metadata, error)
	GetMessage(mailbox, id string) (*Message, error)
	MarkSeen(mailbox, id string) error
	SelectMessage(mailbox, id string) error
	ClearSelection(mailbox string) error
	PurgeMessages(mailbox string) error
	RemoveMessage(mailbox, id string) error
	SourceReader(mailbox, id string) (io.ReadCloser, error)
	MailboxForAddress(address string) (string, error)
}

// StoreManager is a message Manager backed by the storage.Store.
type StoreManager struct {
	AddrPolicy   *policy.Addressing
	Store        storage.Store
	Inboxes      *inbox.Registry
	ExtHost      *extension.Host
	WelcomeDelay time.Duration

	now     func() time.Time
	mu      sync.Mutex
	welcome map[string]*time.Timer // Pending welcome messages by mailbox.
}

var _ Manager = &StoreManager{}

// NewStoreManager creates a StoreManager for the inbox configuration.
func NewStoreManager(
	cfg config.Inbox,
	store storage.Store,
	inboxes *inbox.Registry,
	addrPolicy *policy.Addressing,
	extHost *extension.Host,
) *StoreManager {
	return &StoreManager{
		AddrPolicy:   addrPolicy,
		Store:        store,
		Inboxes:      inboxes,
		ExtHost:      extHost,
		WelcomeDelay: cfg.WelcomeDelay,
	}
}

// NewInbox opens an inbox for a freshly generated address.
func (s *StoreManager) NewInbox() (inbox.State, error) {
	for i := 0; i < 10; i++ {
		st, created := s.Inboxes.Open(s.AddrPolicy.NewAddress())
		if !created {
			continue
		}
		expInboxesCurrent.Add(1)
		log.Debug().Str("module", "manager").Str("mailbox", st.Address).Msg("Opened inbox")
		s.scheduleWelcome(st.Address)
		return st, nil
	}
	return inbox.State{}, errors.New("unable to generate an unused address")
}

// Inbox returns the state of an open inbox.
func (s *StoreManager) Inbox(mailbox string) (inbox.State, error) {
	return s.Inboxes.Get(mailbox)
}

// RotateInbox closes the inbox and opens a new one in its place.  The new inbox keeps the TTL of
// the old one.
func (s *StoreManager) RotateInbox(mailbox string) (inbox.State, error) {
	old, err := s.Inboxes.Get(mailbox)
	if err != nil {
		return inbox.State{}, err
	}
	if err := s.CloseInbox(mailbox); err != nil {
		return inbox.State{}, err
	}
	st, err := s.NewInbox()
	if err != nil {
		return inbox.State{}, err
	}
	if old.TTL != st.TTL {
		if err := s.SetTTL(st.Address, old.TTL); err != nil {
			return inbox.State{}, err
		}
		st.TTL = old.TTL
	}
	log.Info().Str("module", "manager").Str("old", mailbox).Str("mailbox", st.Address).
		Msg("Rotated inbox")
	return st, nil
}

// CloseInbox cancels a pending welcome message, purges the messages and forgets the inbox.
func (s *StoreManager) CloseInbox(mailbox string) error {
	if _, err := s.Inboxes.Get(mailbox); err != nil {
		return err
	}
	s.cancelWelcome(mailbox)
	if err := s.Store.PurgeMessages(mailbox); err != nil {
		return fmt.Errorf("purge %v: %w", mailbox, err)
	}
	if s.Inboxes.Close(mailbox) {
		expInboxesCurrent.Add(-1)
	}
	if s.ExtHost != nil {
		s.ExtHost.Events.AfterInboxClosed.Emit(&event.InboxClosed{Mailbox: mailbox})
	}
	log.Debug().Str("module", "manager").Str("mailbox", mailbox).Msg("Closed inbox")
	return nil
}

// SetTTL changes the lifetime of the messages in an inbox.
func (s *StoreManager) SetTTL(mailbox string, ttl time.Duration) error {
	if err := s.Inboxes.SetTTL(mailbox, ttl); err != nil {
		return err
	}
	if s.ExtHost != nil {
		s.ExtHost.Events.AfterTTLChanged.Emit(&event.InboxTTL{Mailbox: mailbox, TTL: ttl})
	}
	log.Debug().Str("module", "manager").Str("mailbox", mailbox).Dur("ttl", ttl).
		Msg("Changed inbox TTL")
	return nil
}

// Deliver submits a new message to the store.
func (s *StoreManager) Deliver(mailbox string, source []byte) (string, error) {
	if _, err := s.Inboxes.Get(mailbox); err != nil {
		return "", err
	}
	if domain := policy.MailboxDomain(mailbox); !s.AddrPolicy.ShouldAcceptDomain(domain) {
		return "", fmt.Errorf("%w: domain %q is not accepted", policy.ErrInvalidAddress, domain)
	}

	// TODO parse only the header here, GetMessage parses the full body again on read.
	env, err := enmime.ReadEnvelope(bytes.NewReader(source))
	if err != nil {
		return "", err
	}
	from := &mail.Address{Address: strings.TrimSpace(env.GetHeader("From"))}
	if addrs, err := env.AddressList("From"); err == nil && len(addrs) > 0 {
		from = addrs[0]
	}
	to, err := env.AddressList("To")
	if err != nil || len(to) == 0 {
		to = []*mail.Address{{Address: mailbox}}
	}
	subject := env.GetHeader("Subject")

	if s.ExtHost != nil {
		inbound := &event.InboundMessage{
			Mailbox: mailbox,
			From:    *from,
			Subject: subject,
			Size:    int64(len(source)),
		}
		if result := s.ExtHost.Events.BeforeMessageStored.Emit(inbound); result != nil {
			if result.Discard {
				expDiscardedTotal.Add(1)
				log.Debug().Str("module", "manager").Str("mailbox", mailbox).
					Msg("Message discarded by extension")
				return "", ErrDiscarded
			}
			from = &result.From
			subject = result.Subject
		}
	}

	log.Debug().Str("module", "manager").Str("mailbox", mailbox).Msg("Delivering message")
	delivery := &Delivery{
		Meta: Metadata{
			Mailbox: mailbox,
			From:    from,
			To:      to,
			Date:    s.clock(),
			Subject: subject,
			Size:    int64(len(source)),
		},
		Reader: bytes.NewReader(source),
	}
	id, err := s.Store.AddMessage(delivery)
	if err != nil {
		return "", err
	}
	delivery.Meta.ID = id
	expDeliveredTotal.Add(1)

	if s.ExtHost != nil {
		s.ExtHost.Events.AfterMessageStored.Emit(delivery.Meta.eventMetadata())
	}
	return id, nil
}

// DeliverDraft encodes the draft as MIME and delivers it.
func (s *StoreManager) DeliverDraft(mailbox string, draft *Draft) (string, error) {
	source, err := draft.Encode(mailbox, s.clock())
	if err != nil {
		return "", err
	}
	return s.Deliver(mailbox, source)
}

// GetMetadata returns a slice of metadata for the specified mailbox.
func (s *StoreManager) GetMetadata(mailbox string) ([]*Metadata, error) {
	messages, err := s.Store.GetMessages(mailbox)
	if err != nil {
		return nil, err
	}
	metas := make([]*Metadata, len(messages))
	for i, sm := range messages {
		metas[i] = MakeMetadata(sm)
	}
	return metas, nil
}

// GetMessage returns the specified message.
func (s *StoreManager) GetMessage(mailbox, id string) (*Message, error) {
	sm, err := s.Store.GetMessage(mailbox, id)
	if err != nil {
		return nil, err
	}
	r, err := sm.Source()
	if err != nil {
		return nil, err
	}
	env, err := enmime.ReadEnvelope(r)
	_ = r.Close()
	if err != nil {
		return nil, err
	}
	return New(*MakeMetadata(sm), env), nil
}

// MarkSeen marks the message as having been read.
func (s *StoreManager) MarkSeen(mailbox, id string) error {
	log.Debug().Str("module", "manager").Str("mailbox", mailbox).Str("id", id).
		Msg("Marking as seen")
	return s.Store.MarkSeen(mailbox, id)
}

// SelectMessage opens a message in the detail view: it is marked read and recorded as the
// selection of its inbox.
func (s *StoreManager) SelectMessage(mailbox, id string) error {
	if _, err := s.Inboxes.Get(mailbox); err != nil {
		return err
	}
	if err := s.MarkSeen(mailbox, id); err != nil {
		return err
	}
	return s.Inboxes.Select(mailbox, id)
}

// ClearSelection closes the detail view of an inbox.
func (s *StoreManager) ClearSelection(mailbox string) error {
	return s.Inboxes.ClearSelection(mailbox)
}

// PurgeMessages removes all messages from the specified mailbox.
func (s *StoreManager) PurgeMessages(mailbox string) error {
	if err := s.Store.PurgeMessages(mailbox); err != nil {
		return err
	}
	_ = s.Inboxes.ClearSelection(mailbox)
	return nil
}

// RemoveMessage deletes the specified message, clearing the inbox selection if it pointed at it.
func (s *StoreManager) RemoveMessage(mailbox, id string) error {
	if err := s.Store.RemoveMessage(mailbox, id); err != nil {
		return err
	}
	if s.Inboxes.ClearSelectionIf(mailbox, id) {
		log.Debug().Str("module", "manager").Str("mailbox", mailbox).Str("id", id).
			Msg("Removed selected message")
	}
	return nil
}

// SourceReader allows the stored message source to be read.
func (s *StoreManager) SourceReader(mailbox, id string) (io.ReadCloser, error) {
	sm, err := s.Store.GetMessage(mailbox, id)
	if err != nil {
		return nil, err
	}
	return sm.Source()
}

// MailboxForAddress parses an email address to return the canonical mailbox name.
func (s *StoreManager) MailboxForAddress(address string) (string, error) {
	return s.AddrPolicy.ExtractMailbox(address)
}

func (s *StoreManager) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

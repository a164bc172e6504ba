package test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"sort"
	"strconv"
	"sync"
	"testing/iotest"
	"time"

	"github.com/instanttempmail/tempmail/pkg/config"
	"github.com/instanttempmail/tempmail/pkg/inbox"
	"github.com/instanttempmail/tempmail/pkg/message"
	"github.com/instanttempmail/tempmail/pkg/policy"
	"github.com/instanttempmail/tempmail/pkg/storage"
	"github.com/jhillyerd/enmime/v2"
)

const (
	// StubDomain is the inbox domain of ManagerStub.
	StubDomain = "tempmail.dev"

	// ErrorMailbox makes every ManagerStub message operation fail with a non-sentinel error.
	ErrorMailbox = "messageserr@" + StubDomain
)

var errStub = errors.New("internal error")

// ManagerStub is a test stub for message.Manager
type ManagerStub struct {
	message.Manager
	mu        sync.Mutex
	addrs     *policy.Addressing
	inboxes   map[string]*inbox.State
	mailboxes map[string][]*message.Message
	sources   map[string][]byte
	broken    map[string]bool
	last      int
	now       time.Time
}

// NewManager creates a new ManagerStub.
func NewManager() *ManagerStub {
	return &ManagerStub{
		addrs:     policy.NewAddressing(config.Inbox{Domain: StubDomain}),
		inboxes:   make(map[string]*inbox.State),
		mailboxes: make(map[string][]*message.Message),
		sources:   make(map[string][]byte),
		broken:    make(map[string]bool),
		now:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// AddInbox opens an inbox with the default TTL.
func (m *ManagerStub) AddInbox(mailbox string) inbox.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openLocked(mailbox)
}

// AddMessage parses source and adds it to the mailbox, opening the inbox if needed.  The returned
// message has a sequential ID.
func (m *ManagerStub) AddMessage(mailbox string, source []byte) (*message.Message, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(source))
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openLocked(mailbox)
	m.last++
	meta := message.Metadata{
		Mailbox: mailbox,
		ID:      strconv.Itoa(m.last),
		From:    &mail.Address{Address: env.GetHeader("From")},
		To:      []*mail.Address{{Address: mailbox}},
		Date:    m.now.Add(time.Duration(m.last) * time.Minute),
		Subject: env.GetHeader("Subject"),
		Size:    int64(len(source)),
	}
	if addrs, err := env.AddressList("From"); err == nil && len(addrs) > 0 {
		meta.From = addrs[0]
	}
	msg := message.New(meta, env)
	m.mailboxes[mailbox] = append(m.mailboxes[mailbox], msg)
	m.sources[mailbox+"/"+meta.ID] = source
	return msg, nil
}

// AddDraft encodes the draft and adds it to the mailbox.
func (m *ManagerStub) AddDraft(mailbox string, d *message.Draft) (*message.Message, error) {
	source, err := d.Encode(mailbox, m.now)
	if err != nil {
		return nil, err
	}
	return m.AddMessage(mailbox, source)
}

// NewInbox opens an inbox with a sequential address.
func (m *ManagerStub) NewInbox() (inbox.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openLocked(fmt.Sprintf("stub%d@%s", len(m.inboxes)+1, StubDomain)), nil
}

// Inbox returns the state of an open inbox.
func (m *ManagerStub) Inbox(mailbox string) (inbox.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.inboxes[mailbox]
	if !ok {
		return inbox.State{}, inbox.ErrNotExist
	}
	return *st, nil
}

// RotateInbox closes the inbox and opens another with the same TTL.
func (m *ManagerStub) RotateInbox(mailbox string) (inbox.State, error) {
	old, err := m.Inbox(mailbox)
	if err != nil {
		return inbox.State{}, err
	}
	if err := m.CloseInbox(mailbox); err != nil {
		return inbox.State{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.openLocked(fmt.Sprintf("rotated-%s", old.Address))
	m.inboxes[st.Address].TTL = old.TTL
	st.TTL = old.TTL
	return st, nil
}

// CloseInbox forgets an inbox and its messages.
func (m *ManagerStub) CloseInbox(mailbox string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.inboxes[mailbox]; !ok {
		return inbox.ErrNotExist
	}
	delete(m.inboxes, mailbox)
	delete(m.mailboxes, mailbox)
	return nil
}

// SetTTL validates and sets the inbox TTL.
func (m *ManagerStub) SetTTL(mailbox string, ttl time.Duration) error {
	if err := inbox.ValidTTL(ttl); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.inboxes[mailbox]
	if !ok {
		return inbox.ErrNotExist
	}
	st.TTL = ttl
	return nil
}

// Deliver adds source to an open inbox.
func (m *ManagerStub) Deliver(mailbox string, source []byte) (string, error) {
	if mailbox == ErrorMailbox {
		return "", errStub
	}
	if domain := policy.MailboxDomain(mailbox); !m.addrs.ShouldAcceptDomain(domain) {
		return "", fmt.Errorf("%w: domain %q is not accepted", policy.ErrInvalidAddress, domain)
	}
	if _, err := m.Inbox(mailbox); err != nil {
		return "", err
	}
	msg, err := m.AddMessage(mailbox, source)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

// DeliverDraft encodes and delivers the draft.
func (m *ManagerStub) DeliverDraft(mailbox string, d *message.Draft) (string, error) {
	source, err := d.Encode(mailbox, m.now)
	if err != nil {
		return "", err
	}
	return m.Deliver(mailbox, source)
}

// GetMessage gets a message by ID from the specified mailbox.
func (m *ManagerStub) GetMessage(mailbox, id string) (*message.Message, error) {
	if mailbox == ErrorMailbox {
		return nil, errStub
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg := m.findLocked(mailbox, id); msg != nil {
		return msg, nil
	}
	return nil, storage.ErrNotExist
}

// GetMetadata gets all the metadata for the specified mailbox.
func (m *ManagerStub) GetMetadata(mailbox string) ([]*message.Metadata, error) {
	if mailbox == ErrorMailbox {
		return nil, errStub
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	messages := m.mailboxes[mailbox]
	metas := make([]*message.Metadata, len(messages))
	for i, msg := range messages {
		meta := msg.Metadata
		metas[i] = &meta
	}
	sort.SliceStable(metas, func(i, j int) bool { return metas[i].Date.Before(metas[j].Date) })
	return metas, nil
}

// MarkSeen marks a message as having been read.
func (m *ManagerStub) MarkSeen(mailbox, id string) error {
	if mailbox == ErrorMailbox {
		return errStub
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg := m.findLocked(mailbox, id); msg != nil {
		msg.Seen = true
		return nil
	}
	return storage.ErrNotExist
}

// SelectMessage marks the message read and selects it.
func (m *ManagerStub) SelectMessage(mailbox, id string) error {
	if _, err := m.Inbox(mailbox); err != nil {
		return err
	}
	if err := m.MarkSeen(mailbox, id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inboxes[mailbox].Selected = id
	return nil
}

// ClearSelection removes the inbox selection.
func (m *ManagerStub) ClearSelection(mailbox string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.inboxes[mailbox]
	if !ok {
		return inbox.ErrNotExist
	}
	st.Selected = ""
	return nil
}

// PurgeMessages removes every message of the mailbox.
func (m *ManagerStub) PurgeMessages(mailbox string) error {
	if mailbox == ErrorMailbox {
		return errStub
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mailboxes, mailbox)
	if st, ok := m.inboxes[mailbox]; ok {
		st.Selected = ""
	}
	return nil
}

// RemoveMessage deletes a message, clearing the selection if it pointed at it.
func (m *ManagerStub) RemoveMessage(mailbox, id string) error {
	if mailbox == ErrorMailbox {
		return errStub
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	messages := m.mailboxes[mailbox]
	for i, msg := range messages {
		if msg.ID == id {
			m.mailboxes[mailbox] = append(messages[:i:i], messages[i+1:]...)
			delete(m.sources, mailbox+"/"+id)
			if st, ok := m.inboxes[mailbox]; ok && st.Selected == id {
				st.Selected = ""
			}
			return nil
		}
	}
	return storage.ErrNotExist
}

// SourceReader returns the source the message was added with.
func (m *ManagerStub) SourceReader(mailbox, id string) (io.ReadCloser, error) {
	if mailbox == ErrorMailbox {
		return nil, errStub
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	source, ok := m.sources[mailbox+"/"+id]
	if !ok {
		return nil, storage.ErrNotExist
	}
	if m.broken[mailbox+"/"+id] {
		half := bytes.NewReader(source[:len(source)/2])
		return io.NopCloser(io.MultiReader(half, iotest.ErrReader(errStub))), nil
	}
	return io.NopCloser(bytes.NewReader(source)), nil
}

// BreakSource makes reading the source of a message fail halfway through.
func (m *ManagerStub) BreakSource(mailbox, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broken[mailbox+"/"+id] = true
}

// MailboxForAddress applies the address policy of StubDomain.
func (m *ManagerStub) MailboxForAddress(address string) (string, error) {
	return m.addrs.ExtractMailbox(address)
}

func (m *ManagerStub) openLocked(mailbox string) inbox.State {
	if st, ok := m.inboxes[mailbox]; ok {
		return *st
	}
	st := &inbox.State{Address: mailbox, TTL: time.Hour, Created: m.now}
	m.inboxes[mailbox] = st
	return *st
}

func (m *ManagerStub) findLocked(mailbox, id string) *message.Message {
	for _, msg := range m.mailboxes[mailbox] {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

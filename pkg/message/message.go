// Package message contains message handling logic.
package message

import (
	"io"
	"net/mail"
	"time"

	"github.com/instanttempmail/tempmail/pkg/extension/event"
	"github.com/instanttempmail/tempmail/pkg/storage"
	"github.com/jhillyerd/enmime/v2"
)

// Metadata holds information about a message, but not the content.
type Metadata struct {
	Mailbox string
	ID      string
	From    *mail.Address
	To      []*mail.Address
	Date    time.Time
	Subject string
	Size    int64
	Seen    bool
}

// Message holds both the metadata and content of a message.
type Message struct {
	Metadata
	env *enmime.Envelope
}

// New constructs a new Message.
func New(m Metadata, e *enmime.Envelope) *Message {
	return &Message{
		Metadata: m,
		env:      e,
	}
}

// Text returns the plain text body, converted from HTML by enmime when the message has no text
// part.
func (m *Message) Text() string { return m.env.Text }

// HTML returns the unsanitized HTML body, if any.
func (m *Message) HTML() string { return m.env.HTML }

// Attachments returns the MIME attachments of the message.
func (m *Message) Attachments() []*enmime.Part { return m.env.Attachments }

// Header returns the header map of the root MIME part.
func (m *Message) Header() map[string][]string { return m.env.Root.Header }

// Delivery is used to add a message to storage.
type Delivery struct {
	Meta   Metadata
	Reader io.Reader
}

var _ storage.Message = &Delivery{}

// Mailbox getter.
func (d *Delivery) Mailbox() string { return d.Meta.Mailbox }

// ID getter.
func (d *Delivery) ID() string { return d.Meta.ID }

// From getter.
func (d *Delivery) From() *mail.Address { return d.Meta.From }

// To getter.
func (d *Delivery) To() []*mail.Address { return d.Meta.To }

// Date getter.
func (d *Delivery) Date() time.Time { return d.Meta.Date }

// Subject getter.
func (d *Delivery) Subject() string { return d.Meta.Subject }

// Size getter.
func (d *Delivery) Size() int64 { return d.Meta.Size }

// Seen getter.
func (d *Delivery) Seen() bool { return d.Meta.Seen }

// Source contains the raw content of the message.
func (d *Delivery) Source() (io.ReadCloser, error) {
	return io.NopCloser(d.Reader), nil
}

// MakeMetadata populates Metadata from a storage.Message.
func MakeMetadata(m storage.Message) *Metadata {
	return &Metadata{
		Mailbox: m.Mailbox(),
		ID:      m.ID(),
		From:    m.From(),
		To:      m.To(),
		Date:    m.Date(),
		Subject: m.Subject(),
		Size:    m.Size(),
		Seen:    m.Seen(),
	}
}

// eventMetadata converts Metadata into the payload of message events.
func (m *Metadata) eventMetadata() *event.MessageMetadata {
	return &event.MessageMetadata{
		Mailbox: m.Mailbox,
		ID:      m.ID,
		From:    m.From,
		Date:    m.Date,
		Subject: m.Subject,
		Size:    m.Size,
		Seen:    m.Seen,
	}
}

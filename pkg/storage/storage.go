// Package storage defines the message store contract shared by store implementations.
package storage

import (
	"errors"
	"io"
	"net/mail"
	"time"
)

// ErrNotExist indicates the requested message does not exist.
var ErrNotExist = errors.New("message does not exist")

// Store is the interface the message manager uses to keep inbox messages.
type Store interface {
	// AddMessage stores a copy of message and returns its new ID.  The ID and Size of the
	// provided message are ignored.
	AddMessage(message Message) (id string, err error)
	GetMessage(mailbox, id string) (Message, error)
	// GetMessages returns the messages of mailbox in delivery order.
	GetMessages(mailbox string) ([]Message, error)
	MarkSeen(mailbox, id string) error
	PurgeMessages(mailbox string) error
	RemoveMessage(mailbox, id string) error
	VisitMailboxes(f func([]Message) (cont bool)) error
}

// Message is a stored message, or one about to be stored.
type Message interface {
	Mailbox() string
	ID() string
	From() *mail.Address
	To() []*mail.Address
	Date() time.Time
	Subject() string
	Source() (io.ReadCloser, error)
	Size() int64
	Seen() bool
}

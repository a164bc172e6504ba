// Package event holds the payload types carried by extension event brokers.
package event

import (
	"net/mail"
	"time"
)

// InboundMessage describes a message about to be stored.  A BeforeMessageStored listener may
// return a modified copy; setting Discard drops the message.
type InboundMessage struct {
	Mailbox string
	From    mail.Address
	Subject string
	Size    int64
	Discard bool
}

// MessageMetadata contains the basic header data for a stored or deleted message.
type MessageMetadata struct {
	Mailbox string
	ID      string
	From    *mail.Address
	Date    time.Time
	Subject string
	Size    int64
	Seen    bool
}

// InboxTTL announces the TTL setting of an inbox.
type InboxTTL struct {
	Mailbox string
	TTL     time.Duration
}

// InboxClosed announces that an inbox was purged and forgotten.
type InboxClosed struct {
	Mailbox string
}

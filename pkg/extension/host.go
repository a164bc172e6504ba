// Package extension lets components react to inbox activity without depending on each other.
package extension

import (
	"github.com/instanttempmail/tempmail/pkg/extension/event"
)

// Host owns the event brokers shared by the service components.
type Host struct {
	Events *Events
}

// Events lists every event type the service emits.
//
// Before-events run synchronously inside the triggering operation; the first non-nil listener
// result decides the outcome.  After-events run asynchronously once the operation completed.
type Events struct {
	BeforeMessageStored EventBroker[event.InboundMessage, event.InboundMessage]
	AfterMessageStored  AsyncEventBroker[event.MessageMetadata]
	AfterMessageDeleted AsyncEventBroker[event.MessageMetadata]
	AfterTTLChanged     AsyncEventBroker[event.InboxTTL]
	AfterInboxClosed    AsyncEventBroker[event.InboxClosed]
}

// NewHost creates a host with no listeners.
func NewHost() *Host {
	return &Host{Events: &Events{}}
}

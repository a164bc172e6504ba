// Package model holds the JSON wire types of the REST API.
package model

import (
	"time"
)

// JSONEmail is the wire form of an inbox message, as rendered by the API and posted to the
// assistant endpoint.
type JSONEmail struct {
	ID          string            `json:"id"`
	From        string            `json:"from"`
	Subject     string            `json:"subject"`
	Body        string            `json:"body"`
	HTML        string            `json:"html,omitempty"`
	Timestamp   int64             `json:"timestamp"`
	Read        bool              `json:"read"`
	Attachments []*JSONAttachment `json:"attachments,omitempty"`
}

// JSONAttachment describes a downloadable attachment of a JSONEmail.
type JSONAttachment struct {
	FileName    string `json:"filename"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
}

// JSONMessageHeader contains the basic header data for a message.
type JSONMessageHeader struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Subject   string `json:"subject"`
	Timestamp int64  `json:"timestamp"`
	Read      bool   `json:"read"`
	Size      int64  `json:"size"`
}

// JSONInbox is the state of an inbox and its message headers, oldest first.
type JSONInbox struct {
	Address   string               `json:"address"`
	TTL       string               `json:"ttl"`
	TTLMillis int64                `json:"ttlMillis"`
	Selected  string               `json:"selected,omitempty"`
	Created   int64                `json:"created"`
	Messages  []*JSONMessageHeader `json:"messages"`
}

// JSONTTLOption is one of the selectable inbox lifetimes.
type JSONTTLOption struct {
	Name   string `json:"name"`
	Millis int64  `json:"ms"`
	Label  string `json:"label"`
}

// JSONTTLRequest changes the TTL of an inbox.  TTL is an option name, a duration or milliseconds.
type JSONTTLRequest struct {
	TTL string `json:"ttl"`
}

// JSONDraft is a simple message to deliver to an inbox.
type JSONDraft struct {
	From        string                 `json:"from"`
	Subject     string                 `json:"subject"`
	Body        string                 `json:"body"`
	HTML        string                 `json:"html,omitempty"`
	Attachments []*JSONDraftAttachment `json:"attachments,omitempty"`
}

// JSONDraftAttachment is a file attached to a JSONDraft, Content is base64 encoded on the wire.
type JSONDraftAttachment struct {
	FileName    string `json:"filename"`
	ContentType string `json:"contentType,omitempty"`
	Content     []byte `json:"content"`
}

// JSONMessagePatch updates the flags of a message.
type JSONMessagePatch struct {
	Read bool `json:"read"`
}

// JSONDelivered identifies a delivered message.
type JSONDelivered struct {
	ID string `json:"id"`
}

// Millis converts t to Unix epoch milliseconds, the timestamp unit of the API.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// Time converts Unix epoch milliseconds to a time.
func Time(ms int64) time.Time {
	return time.UnixMilli(ms)
}

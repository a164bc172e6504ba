// Package client provides a basic REST client for InstantTempMail
package client

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/instanttempmail/tempmail/pkg/rest/model"
)

// Client accesses the InstantTempMail REST API v1
type Client struct {
	restClient
}

// New creates a new v1 REST API client given the base URL of an InstantTempMail server, ex:
// "http://localhost:9000"
func New(baseURL string, opts ...func(*ClientOptions)) (*Client, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	options := getDefaultClientOptions()
	for _, opt := range opts {
		opt(options)
	}
	c := &Client{
		restClient{
			client: &http.Client{
				Transport: options.transport,
				Timeout:   options.timeout,
			},
			baseURL: parsedURL,
		},
	}
	return c, nil
}

// TTLOptions lists the selectable inbox TTLs.
func (c *Client) TTLOptions(ctx context.Context) (opts []*model.JSONTTLOption, err error) {
	err = c.doJSON(ctx, "GET", "/api/v1/ttl", nil, &opts)
	return
}

// NewInbox opens an inbox with a generated address.
func (c *Client) NewInbox(ctx context.Context) (*Inbox, error) {
	return c.inbox(ctx, "POST", "/api/v1/inbox", nil)
}

// GetInbox returns the inbox state and message headers.
func (c *Client) GetInbox(ctx context.Context, name string) (*Inbox, error) {
	return c.inbox(ctx, "GET", inboxURI(name), nil)
}

// CloseInbox purges and closes the inbox.
func (c *Client) CloseInbox(ctx context.Context, name string) error {
	return c.doJSON(ctx, "DELETE", inboxURI(name), nil, nil)
}

// RotateInbox replaces the inbox with a new address, returning the new inbox.
func (c *Client) RotateInbox(ctx context.Context, name string) (*Inbox, error) {
	return c.inbox(ctx, "POST", inboxURI(name)+"/rotate", nil)
}

// SetTTL changes the inbox TTL, ex: "10m" or "24h".
func (c *Client) SetTTL(ctx context.Context, name, ttl string) (*Inbox, error) {
	return c.inbox(ctx, "PUT", inboxURI(name)+"/ttl", &model.JSONTTLRequest{TTL: ttl})
}

// ClearSelection closes the detail view of the inbox.
func (c *Client) ClearSelection(ctx context.Context, name string) error {
	return c.doJSON(ctx, "DELETE", inboxURI(name)+"/selection", nil, nil)
}

// Mbox exports the inbox in mbox format.
func (c *Client) Mbox(ctx context.Context, name string) (*bytes.Buffer, error) {
	return c.doRaw(ctx, inboxURI(name)+"/mbox")
}

// Deliver sends a draft to the inbox and returns the new message ID.
func (c *Client) Deliver(ctx context.Context, name string, draft *model.JSONDraft) (string, error) {
	var d model.JSONDelivered
	if err := c.doJSON(ctx, "POST", inboxURI(name)+"/messages", draft, &d); err != nil {
		return "", err
	}
	return d.ID, nil
}

// GetMessage returns the message details given a mailbox name and message ID.
func (c *Client) GetMessage(ctx context.Context, name, id string) (message *Message, err error) {
	err = c.doJSON(ctx, "GET", messageURI(name, id), nil, &message)
	if err != nil {
		return nil, err
	}
	message.mailbox = name
	message.client = c
	return
}

// MarkSeen marks the specified message as having been read.
func (c *Client) MarkSeen(ctx context.Context, name, id string) error {
	return c.doJSON(ctx, "PATCH", messageURI(name, id), &model.JSONMessagePatch{Read: true}, nil)
}

// SelectMessage opens the message in the detail view and returns it.
func (c *Client) SelectMessage(ctx context.Context, name, id string) (message *Message, err error) {
	err = c.doJSON(ctx, "POST", messageURI(name, id)+"/select", nil, &message)
	if err != nil {
		return nil, err
	}
	message.mailbox = name
	message.client = c
	return
}

// GetMessageSource returns the message source given a mailbox name and message ID.
func (c *Client) GetMessageSource(ctx context.Context, name, id string) (*bytes.Buffer, error) {
	return c.doRaw(ctx, messageURI(name, id)+"/source")
}

// DeleteMessage deletes a single message given the mailbox name and message ID.
func (c *Client) DeleteMessage(ctx context.Context, name, id string) error {
	return c.doJSON(ctx, "DELETE", messageURI(name, id), nil, nil)
}

// AnalyzeMessage runs the assistant analysis on a stored message.
func (c *Client) AnalyzeMessage(ctx context.Context, name, id string) (
	result *model.AnalyzeResponse, err error) {
	err = c.doJSON(ctx, "POST", messageURI(name, id)+"/analyze", nil, &result)
	return
}

// Analyze asks the assistant to analyze an email.
func (c *Client) Analyze(ctx context.Context, email *model.JSONEmail) (
	result *model.AnalyzeResponse, err error) {
	req := &model.AssistantRequest{Action: model.ActionAnalyze, Email: email}
	err = c.doJSON(ctx, "POST", "/api/v1/assistant", req, &result)
	return
}

// Suggestions asks the assistant for usernames.
func (c *Client) Suggestions(ctx context.Context) ([]string, error) {
	var result model.SuggestionsResponse
	req := &model.AssistantRequest{Action: model.ActionSuggestions}
	if err := c.doJSON(ctx, "POST", "/api/v1/assistant", req, &result); err != nil {
		return nil, err
	}
	return result.Suggestions, nil
}

// Chat sends prompt to the assistant.  selected is the email being viewed, it may be nil.
func (c *Client) Chat(ctx context.Context, prompt string, selected *model.JSONEmail) (string, error) {
	var result model.ChatResponse
	req := &model.AssistantRequest{Action: model.ActionChat, Prompt: &prompt, Context: selected}
	if err := c.doJSON(ctx, "POST", "/api/v1/assistant", req, &result); err != nil {
		return "", err
	}
	return result.Response, nil
}

// Inbox represents an open inbox and its message headers
type Inbox struct {
	*model.JSONInbox
	client *Client
}

// TTLDuration returns the inbox TTL as a duration.
func (i *Inbox) TTLDuration() time.Duration {
	return time.Duration(i.TTLMillis) * time.Millisecond
}

// Headers returns the message headers, oldest first.
func (i *Inbox) Headers() []*MessageHeader {
	headers := make([]*MessageHeader, len(i.Messages))
	for n, m := range i.Messages {
		headers[n] = &MessageHeader{JSONMessageHeader: m, mailbox: i.Address, client: i.client}
	}
	return headers
}

// MessageHeader represents a message sans content
type MessageHeader struct {
	*model.JSONMessageHeader
	mailbox string
	client  *Client
}

// GetMessage returns this message with content
func (h *MessageHeader) GetMessage(ctx context.Context) (message *Message, err error) {
	return h.client.GetMessage(ctx, h.mailbox, h.ID)
}

// GetSource returns the source for this message
func (h *MessageHeader) GetSource(ctx context.Context) (*bytes.Buffer, error) {
	return h.client.GetMessageSource(ctx, h.mailbox, h.ID)
}

// Delete deletes this message from the inbox
func (h *MessageHeader) Delete(ctx context.Context) error {
	return h.client.DeleteMessage(ctx, h.mailbox, h.ID)
}

// Message represents a message including content
type Message struct {
	*model.JSONEmail
	mailbox string
	client  *Client
}

// GetSource returns the source for this message
func (m *Message) GetSource(ctx context.Context) (*bytes.Buffer, error) {
	return m.client.GetMessageSource(ctx, m.mailbox, m.ID)
}

// Delete deletes this message from the inbox
func (m *Message) Delete(ctx context.Context) error {
	return m.client.DeleteMessage(ctx, m.mailbox, m.ID)
}

// Analyze asks the assistant to analyze this message.
func (m *Message) Analyze(ctx context.Context) (*model.AnalyzeResponse, error) {
	return m.client.AnalyzeMessage(ctx, m.mailbox, m.ID)
}

func (c *Client) inbox(ctx context.Context, method, uri string, in any) (*Inbox, error) {
	var ji model.JSONInbox
	if err := c.doJSON(ctx, method, uri, in, &ji); err != nil {
		return nil, err
	}
	return &Inbox{JSONInbox: &ji, client: c}, nil
}

func inboxURI(name string) string {
	return "/api/v1/inbox/" + url.PathEscape(name)
}

func messageURI(name, id string) string {
	return inboxURI(name) + "/messages/" + url.PathEscape(id)
}

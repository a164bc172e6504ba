package test

import (
	"fmt"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/instanttempmail/tempmail/pkg/message"
	"github.com/instanttempmail/tempmail/pkg/storage"
	"github.com/stretchr/testify/require"
)

// DeliverToStore creates and delivers a message to the specific mailbox, returning the ID and size
// of the generated message.
func DeliverToStore(
	t *testing.T,
	store storage.Store,
	mailbox string,
	subject string,
	date time.Time,
) (string, int64) {
	t.Helper()
	meta := message.Metadata{
		Mailbox: mailbox,
		To:      []*mail.Address{{Name: "Some Body", Address: mailbox}},
		From:    &mail.Address{Name: "Some B. Else", Address: "somebodyelse@host"},
		Subject: subject,
		Date:    date,
	}
	testMsg := fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: %s\r\n\r\nTest Body\r\n",
		meta.To[0].Address, meta.From.Address, subject)
	delivery := &message.Delivery{
		Meta:   meta,
		Reader: strings.NewReader(testMsg),
	}
	id, err := store.AddMessage(delivery)
	require.NoError(t, err)

	return id, int64(len(testMsg))
}

// GetAndCountMessages is a test helper that expects to receive count messages or fails the test, it
// also checks return error.
func GetAndCountMessages(t *testing.T, s storage.Store, mailbox string, count int) []storage.Message {
	t.Helper()
	msgs, err := s.GetMessages(mailbox)
	require.NoError(t, err, "GetMessages(%q)", mailbox)
	require.Len(t, msgs, count, "message count of %q", mailbox)

	return msgs
}

package test

import (
	"bytes"
	"io"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/instanttempmail/tempmail/pkg/message"
	"github.com/instanttempmail/tempmail/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreFactory returns a new store for the test suite.
type StoreFactory func() (store storage.Store, destroy func(), err error)

// StoreSuite runs a set of general tests on the provided Store.
func StoreSuite(t *testing.T, factory StoreFactory) {
	testCases := []struct {
		name string
		test func(*testing.T, storage.Store)
	}{
		{"metadata", testMetadata},
		{"content", testContent},
		{"delivery order", testDeliveryOrder},
		{"unique ids", testUniqueIDs},
		{"size", testSize},
		{"seen", testSeen},
		{"delete", testDelete},
		{"purge", testPurge},
		{"not exist", testNotExist},
		{"visit mailboxes", testVisitMailboxes},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, destroy, err := factory()
			require.NoError(t, err)
			defer destroy()
			tc.test(t, store)
		})
	}
}

// testMetadata verifies message metadata is stored and retrieved correctly.
func testMetadata(t *testing.T, store storage.Store) {
	mailbox := "testmailbox@tempmail.dev"
	from := &mail.Address{Name: "From Person", Address: "from@person.com"}
	to := []*mail.Address{
		{Name: "One Person", Address: "one@a.person.com"},
		{Name: "Two Person", Address: "two@b.person.com"},
	}
	date := time.Now()
	subject := "fantastic test subject line"
	content := "doesn't matter"
	delivery := &message.Delivery{
		Meta: message.Metadata{
			// ID and Size will be determined by the Store.
			Mailbox: mailbox,
			From:    from,
			To:      to,
			Date:    date,
			Subject: subject,
		},
		Reader: strings.NewReader(content),
	}
	id, err := store.AddMessage(delivery)
	require.NoError(t, err)
	require.NotEmpty(t, id, "AddMessage() must return an ID")

	// Retrieve and validate the message.
	sm, err := store.GetMessage(mailbox, id)
	require.NoError(t, err)
	assert.Equal(t, mailbox, sm.Mailbox())
	assert.Equal(t, id, sm.ID())
	assert.Equal(t, *from, *sm.From())
	require.Len(t, sm.To(), len(to))
	for i, got := range sm.To() {
		assert.Equal(t, *to[i], *got)
	}
	assert.True(t, sm.Date().Equal(date), "got date %v, want: %v", sm.Date(), date)
	assert.Equal(t, subject, sm.Subject())
	assert.Equal(t, int64(len(content)), sm.Size())
	assert.False(t, sm.Seen(), "new message must be unread")
}

// testContent generates some binary content and makes sure it is correctly retrieved.
func testContent(t *testing.T, store storage.Store) {
	content := make([]byte, 5000)
	for i := range content {
		content[i] = byte(i % 256)
	}
	mailbox := "testmailbox@tempmail.dev"
	delivery := &message.Delivery{
		Meta: message.Metadata{
			Mailbox: mailbox,
			From:    &mail.Address{Name: "From Person", Address: "from@person.com"},
			To:      []*mail.Address{{Name: "One Person", Address: "one@a.person.com"}},
			Date:    time.Now(),
			Subject: "fantastic test subject line",
		},
		Reader: bytes.NewReader(content),
	}
	id, err := store.AddMessage(delivery)
	require.NoError(t, err)

	// Get and check.
	m, err := store.GetMessage(mailbox, id)
	require.NoError(t, err)
	r, err := m.Source()
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	_ = r.Close()
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

// testDeliveryOrder delivers several messages to the same mailbox, meanwhile querying its contents
// with a new GetMessages call each cycle.
func testDeliveryOrder(t *testing.T, store storage.Store) {
	mailbox := "fred@tempmail.dev"
	subjects := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	for i, subj := range subjects {
		// Check mailbox count.
		GetAndCountMessages(t, store, mailbox, i)
		DeliverToStore(t, store, mailbox, subj, time.Now())
	}
	// Confirm delivery order.
	msgs := GetAndCountMessages(t, store, mailbox, 5)
	for i, want := range subjects {
		assert.Equal(t, want, msgs[i].Subject())
	}
}

// testUniqueIDs confirms IDs are never reused within a mailbox, even after deletion.
func testUniqueIDs(t *testing.T, store storage.Store) {
	mailbox := "fred@tempmail.dev"
	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		id, _ := DeliverToStore(t, store, mailbox, "subject", time.Now())
		assert.False(t, seen[id], "ID %q reused", id)
		seen[id] = true
		require.NoError(t, store.RemoveMessage(mailbox, id))
	}
}

// testSize verifies message content size metadata values.
func testSize(t *testing.T, store storage.Store) {
	mailbox := "fred@tempmail.dev"
	subjects := []string{"a", "br", "much longer than the others"}
	sentIds := make([]string, len(subjects))
	sentSizes := make([]int64, len(subjects))
	for i, subj := range subjects {
		id, size := DeliverToStore(t, store, mailbox, subj, time.Now())
		sentIds[i] = id
		sentSizes[i] = size
	}
	for i, id := range sentIds {
		msg, err := store.GetMessage(mailbox, id)
		require.NoError(t, err)
		assert.Equal(t, sentSizes[i], msg.Size())
	}
}

// testSeen marks one message as read and checks no other message changed.
func testSeen(t *testing.T, store storage.Store) {
	mailbox := "fred@tempmail.dev"
	for _, subj := range []string{"alpha", "bravo", "charlie"} {
		DeliverToStore(t, store, mailbox, subj, time.Now())
	}
	msgs := GetAndCountMessages(t, store, mailbox, 3)
	require.NoError(t, store.MarkSeen(mailbox, msgs[1].ID()))

	msgs = GetAndCountMessages(t, store, mailbox, 3)
	assert.False(t, msgs[0].Seen())
	assert.True(t, msgs[1].Seen())
	assert.False(t, msgs[2].Seen())
}

// testDelete creates and deletes some messages.
func testDelete(t *testing.T, store storage.Store) {
	mailbox := "fred@tempmail.dev"
	subjects := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	for _, subj := range subjects {
		DeliverToStore(t, store, mailbox, subj, time.Now())
	}
	msgs := GetAndCountMessages(t, store, mailbox, len(subjects))
	// Delete a couple messages.
	require.NoError(t, store.RemoveMessage(mailbox, msgs[1].ID()))
	require.NoError(t, store.RemoveMessage(mailbox, msgs[3].ID()))

	// Confirm deletion.
	subjects = []string{"alpha", "charlie", "echo"}
	msgs = GetAndCountMessages(t, store, mailbox, len(subjects))
	for i, want := range subjects {
		assert.Equal(t, want, msgs[i].Subject())
	}

	// Try appending one more.
	DeliverToStore(t, store, mailbox, "foxtrot", time.Now())
	subjects = []string{"alpha", "charlie", "echo", "foxtrot"}
	msgs = GetAndCountMessages(t, store, mailbox, len(subjects))
	for i, want := range subjects {
		assert.Equal(t, want, msgs[i].Subject())
	}
}

// testPurge makes sure mailboxes can be purged.
func testPurge(t *testing.T, store storage.Store) {
	mailbox := "fred@tempmail.dev"
	subjects := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	for _, subj := range subjects {
		DeliverToStore(t, store, mailbox, subj, time.Now())
	}
	GetAndCountMessages(t, store, mailbox, len(subjects))

	// Purge and verify.
	require.NoError(t, store.PurgeMessages(mailbox))
	GetAndCountMessages(t, store, mailbox, 0)

	// Purging an unknown mailbox is not an error.
	assert.NoError(t, store.PurgeMessages("nobody@tempmail.dev"))
}

// testNotExist verifies missing messages are reported with storage.ErrNotExist.
func testNotExist(t *testing.T, store storage.Store) {
	mailbox := "fred@tempmail.dev"
	DeliverToStore(t, store, mailbox, "alpha", time.Now())

	for _, mb := range []string{mailbox, "nobody@tempmail.dev"} {
		_, err := store.GetMessage(mb, "999")
		assert.ErrorIs(t, err, storage.ErrNotExist, "GetMessage(%q)", mb)
		assert.ErrorIs(t, store.MarkSeen(mb, "999"), storage.ErrNotExist, "MarkSeen(%q)", mb)
		assert.ErrorIs(t, store.RemoveMessage(mb, "999"), storage.ErrNotExist,
			"RemoveMessage(%q)", mb)
	}
}

// testVisitMailboxes creates some mailboxes and confirms the VisitMailboxes method visits all of
// them.
func testVisitMailboxes(t *testing.T, ds storage.Store) {
	boxes := []string{"abby", "bill", "christa", "donald", "evelyn"}
	for _, name := range boxes {
		DeliverToStore(t, ds, name+"@tempmail.dev", "Old Message", time.Now().Add(-24*time.Hour))
		DeliverToStore(t, ds, name+"@tempmail.dev", "New Message", time.Now())
	}
	seen := 0
	err := ds.VisitMailboxes(func(messages []storage.Message) bool {
		seen++
		assert.Len(t, messages, 2)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 5, seen, "visited mailboxes")

	// Visiting stops when f returns false.
	seen = 0
	err = ds.VisitMailboxes(func(messages []storage.Message) bool {
		seen++
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen, "visited mailboxes after stop")
}

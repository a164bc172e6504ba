package main

import (
	"testing"
	"time"

	"github.com/instanttempmail/tempmail/pkg/rest/client"
	"github.com/instanttempmail/tempmail/pkg/rest/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(from, subject string, read bool, age time.Duration) *client.MessageHeader {
	return &client.MessageHeader{JSONMessageHeader: &model.JSONMessageHeader{
		From:      from,
		Subject:   subject,
		Read:      read,
		Timestamp: model.Millis(time.Now().Add(-age)),
	}}
}

func TestMatch(t *testing.T) {
	m := &matchCmd{}
	require.NoError(t, m.from.Set(`^alice@`))
	require.NoError(t, m.subject.Set(`(?i)invoice`))
	m.unread = true
	m.maxAge = time.Hour

	assert.True(t, m.match(header(`"Alice" <alice@example.com>`, "Your Invoice", false, time.Minute)))
	assert.False(t, m.match(header("bob@example.com", "Your Invoice", false, time.Minute)), "from")
	assert.False(t, m.match(header("alice@example.com", "Hello", false, time.Minute)), "subject")
	assert.False(t, m.match(header("alice@example.com", "Invoice", true, time.Minute)), "read")
	assert.False(t, m.match(header("alice@example.com", "Invoice", false, 2*time.Hour)), "age")
}

func TestMatchNoCriteria(t *testing.T) {
	m := &matchCmd{}
	assert.True(t, m.match(header("", "", true, 48*time.Hour)))
}

func TestEnvelopeSender(t *testing.T) {
	assert.Equal(t, "alice@example.com", envelopeSender(`Alice <alice@example.com>`))
	assert.Equal(t, "not an address", envelopeSender("not an address"))
}

func TestRegexFlag(t *testing.T) {
	var r regexFlag
	assert.False(t, r.Defined())
	assert.Equal(t, "", r.String())

	require.NoError(t, r.Set("a+b"))
	assert.True(t, r.Defined())
	assert.Equal(t, "a+b", r.String())

	assert.Error(t, r.Set("("))
	require.NoError(t, r.Set(""))
	assert.False(t, r.Defined())
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", baseURL())
}

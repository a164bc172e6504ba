package rest

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-mbox"
	"github.com/instanttempmail/tempmail/pkg/inbox"
	"github.com/instanttempmail/tempmail/pkg/message"
	"github.com/instanttempmail/tempmail/pkg/rest/model"
	"github.com/instanttempmail/tempmail/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	baseURL  = "http://localhost/api/v1"
	testAddr = "alpha@" + test.StubDomain
)

func TestRestTTLOptions(t *testing.T) {
	setupWebServer(test.NewManager())

	w, err := testRestGet(baseURL + "/ttl")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code)

	result := decodeJSON(t, w)
	for i, o := range inbox.TTLOptions {
		idx := "[" + strconv.Itoa(i) + "]"
		decodedStringEquals(t, result, idx+"/name", o.Name)
		decodedNumberEquals(t, result, idx+"/ms", float64(o.TTL.Milliseconds()))
		decodedStringEquals(t, result, idx+"/label", o.Label)
	}
}

func TestRestInboxCreate(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)

	w, err := testRestRequest("POST", baseURL+"/inbox", "", "")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	result := decodeJSON(t, w)
	addr, msg := getDecodedPath(result, "address")
	require.Empty(t, msg)
	decodedStringEquals(t, result, "ttl", "1h")
	decodedNumberEquals(t, result, "ttlMillis", float64(time.Hour.Milliseconds()))

	_, err = mm.Inbox(addr.(string))
	assert.NoError(t, err, "inbox should be open")
}

func TestRestInboxShow(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)

	// Unknown inbox.
	w, err := testRestGet(baseURL + "/inbox/" + testAddr)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Inbox not found"}`, w.Body.String())

	// Invalid address.
	w, err = testRestGet(baseURL + "/inbox/no..dots@" + test.StubDomain)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Empty inbox, bare local part is completed with the domain.
	mm.AddInbox(testAddr)
	w, err = testRestGet(baseURL + "/inbox/alpha")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeJSON(t, w)
	decodedStringEquals(t, result, "address", testAddr)
	messages, msg := getDecodedPath(result, "messages")
	require.Empty(t, msg)
	assert.Empty(t, messages)

	// Message headers, oldest first.
	_, err = mm.AddDraft(testAddr, &message.Draft{From: "One <one@example.com>", Subject: "first"})
	require.NoError(t, err)
	_, err = mm.AddDraft(testAddr, &message.Draft{From: "two@example.com", Subject: "second"})
	require.NoError(t, err)
	require.NoError(t, mm.MarkSeen(testAddr, "2"))

	w, err = testRestGet(baseURL + "/inbox/" + testAddr)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result = decodeJSON(t, w)
	decodedStringEquals(t, result, "messages/[0]/id", "1")
	decodedStringEquals(t, result, "messages/[0]/from", `"One" <one@example.com>`)
	decodedStringEquals(t, result, "messages/[0]/subject", "first")
	decodedBoolEquals(t, result, "messages/[0]/read", false)
	decodedStringEquals(t, result, "messages/[1]/from", "two@example.com")
	decodedBoolEquals(t, result, "messages/[1]/read", true)
}

func TestRestInboxShowError(t *testing.T) {
	mm := test.NewManager()
	logbuf := setupWebServer(mm)
	mm.AddInbox(test.ErrorMailbox)

	w, err := testRestGet(baseURL + "/inbox/" + test.ErrorMailbox)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, internalErrorJSON, w.Body.String())
	assert.Contains(t, logbuf.String(), "internal error")
}

func TestRestInboxClose(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	mm.AddInbox(testAddr)

	w, err := testRestRequest("DELETE", baseURL+"/inbox/"+testAddr, "", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	_, err = mm.Inbox(testAddr)
	assert.ErrorIs(t, err, inbox.ErrNotExist)

	w, err = testRestRequest("DELETE", baseURL+"/inbox/"+testAddr, "", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRestInboxRotate(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	mm.AddInbox(testAddr)
	require.NoError(t, mm.SetTTL(testAddr, 6*time.Hour))

	w, err := testRestRequest("POST", baseURL+"/inbox/"+testAddr+"/rotate", "", "")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeJSON(t, w)
	decodedStringEquals(t, result, "ttl", "6h")
	addr, _ := getDecodedPath(result, "address")
	assert.NotEqual(t, testAddr, addr)

	_, err = mm.Inbox(testAddr)
	assert.ErrorIs(t, err, inbox.ErrNotExist)
}

func TestRestInboxTTL(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	mm.AddInbox(testAddr)
	url := baseURL + "/inbox/" + testAddr + "/ttl"

	for _, ttl := range []string{"10m", "24h0m0s", "21600000"} {
		w, err := testRestRequest("PUT", url, jsonType, `{"ttl":"`+ttl+`"}`)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code, ttl)
	}
	st, err := mm.Inbox(testAddr)
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, st.TTL)

	for _, body := range []string{`{"ttl":"7m"}`, `{"ttl":""}`, `{"ttl":`} {
		w, err := testRestRequest("PUT", url, jsonType, body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w, err := testRestRequest("PUT", baseURL+"/inbox/other/ttl", jsonType, `{"ttl":"1h"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRestInboxMbox(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	mm.AddInbox(testAddr)
	for _, subject := range []string{"first", "second"} {
		_, err := mm.AddDraft(testAddr, &message.Draft{
			From:    "sender@example.com",
			Subject: subject,
			Body:    "From the top\n",
		})
		require.NoError(t, err)
	}

	w, err := testRestGet(baseURL + "/inbox/" + testAddr + "/mbox")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/mbox", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "From sender@example.com "))

	mr := mbox.NewReader(w.Body)
	var subjects []string
	for {
		r, err := mr.NextMessage()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		raw, err := io.ReadAll(r)
		require.NoError(t, err)
		for _, line := range strings.Split(string(raw), "\n") {
			if s, ok := strings.CutPrefix(strings.TrimRight(line, "\r"), "Subject: "); ok {
				subjects = append(subjects, s)
			}
		}
	}
	assert.Equal(t, []string{"first", "second"}, subjects)

	w, err = testRestGet(baseURL + "/inbox/missing/mbox")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRestInboxMboxAbortedStream(t *testing.T) {
	mm := test.NewManager()
	logbuf := setupWebServer(mm)
	mm.AddInbox(testAddr)
	var last *message.Message
	for _, subject := range []string{"first", "second"} {
		msg, err := mm.AddDraft(testAddr, &message.Draft{
			From:    "sender@example.com",
			Subject: subject,
			Body:    "Body\n",
		})
		require.NoError(t, err)
		last = msg
	}
	mm.BreakSource(testAddr, last.ID)

	w, err := testRestGet(baseURL + "/inbox/" + testAddr + "/mbox")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/mbox", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "From sender@example.com "))
	assert.NotContains(t, w.Body.String(), "Internal server error")
	assert.Contains(t, logbuf.String(), "mbox export aborted")
}

func TestRestClearSelection(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	_, err := mm.AddDraft(testAddr, &message.Draft{From: "a@example.com", Subject: "hi"})
	require.NoError(t, err)
	require.NoError(t, mm.SelectMessage(testAddr, "1"))

	w, err := testRestRequest("DELETE", baseURL+"/inbox/"+testAddr+"/selection", "", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)

	st, err := mm.Inbox(testAddr)
	require.NoError(t, err)
	assert.Empty(t, st.Selected)
}

func TestJSONInboxTTLName(t *testing.T) {
	st := inbox.State{Address: testAddr, TTL: 90 * time.Minute, Created: time.UnixMilli(1000)}
	got := jsonInbox(st, nil)
	assert.Equal(t, &model.JSONInbox{
		Address:   testAddr,
		TTL:       "1h30m0s",
		TTLMillis: 5400000,
		Created:   1000,
		Messages:  []*model.JSONMessageHeader{},
	}, got)
}

package rest

import (
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/instanttempmail/tempmail/pkg/assistant"
	"github.com/instanttempmail/tempmail/pkg/message"
	"github.com/instanttempmail/tempmail/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawMessage = "From: Sender <verify@bank.example>\r\n" +
	"To: alpha@tempmail.dev\r\n" +
	"Subject: Urgent notice\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"Your account is suspended. Click here now.\r\n"

func messageURL(id string) string {
	return baseURL + "/inbox/" + testAddr + "/messages/" + id
}

func TestRestDeliverRaw(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	mm.AddInbox(testAddr)

	w, err := testRestRequest("POST", baseURL+"/inbox/"+testAddr+"/messages",
		"message/rfc822", rawMessage)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decodedStringEquals(t, decodeJSON(t, w), "id", "1")

	msg, err := mm.GetMessage(testAddr, "1")
	require.NoError(t, err)
	assert.Equal(t, "Urgent notice", msg.Subject)
	assert.Equal(t, "verify@bank.example", msg.From.Address)
}

func TestRestDeliverDraft(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	mm.AddInbox(testAddr)

	content := base64.StdEncoding.EncodeToString([]byte("attached text"))
	body := `{"from":"Bob <bob@example.com>","subject":"Report","body":"See attached.",` +
		`"attachments":[{"filename":"report.txt","contentType":"text/plain","content":"` +
		content + `"}]}`
	w, err := testRestRequest("POST", baseURL+"/inbox/"+testAddr+"/messages", jsonType, body)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	msg, err := mm.GetMessage(testAddr, "1")
	require.NoError(t, err)
	assert.Equal(t, "Report", msg.Subject)
	assert.Equal(t, "Bob", msg.From.Name)
	require.Len(t, msg.Attachments(), 1)
	assert.Equal(t, "attached text", string(msg.Attachments()[0].Content))
}

func TestRestDeliverErrors(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	mm.AddInbox(testAddr)

	tcs := []struct {
		name  string
		inbox string
		ctype string
		body  string
		want  int
	}{
		{"unknown inbox", "nobody", jsonType, `{"subject":"x"}`, http.StatusNotFound},
		{"foreign domain", "alpha@elsewhere.example", jsonType, `{"subject":"x"}`, http.StatusBadRequest},
		{"invalid address", "a..b", jsonType, `{"subject":"x"}`, http.StatusBadRequest},
		{"malformed draft", testAddr, jsonType, `{"subject":`, http.StatusBadRequest},
		{"store failure", test.ErrorMailbox, "message/rfc822", rawMessage, http.StatusInternalServerError},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			w, err := testRestRequest("POST", baseURL+"/inbox/"+tc.inbox+"/messages", tc.ctype, tc.body)
			require.NoError(t, err)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestRestMessageShow(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	_, err := mm.AddDraft(testAddr, &message.Draft{
		From:    "Alice <alice@example.com>",
		Subject: "Hello",
		Body:    "plain body",
		HTML:    `<p onclick="x()">Hi <script>alert(1)</script><a href="https://example.com" target="_blank">link</a></p>`,
		Attachments: []message.Attachment{
			{FileName: "notes.txt", ContentType: "text/plain", Content: []byte("notes")},
		},
	})
	require.NoError(t, err)

	w, err := testRestGet(messageURL("1"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decodeJSON(t, w)
	decodedStringEquals(t, result, "id", "1")
	decodedStringEquals(t, result, "from", `"Alice" <alice@example.com>`)
	decodedStringEquals(t, result, "subject", "Hello")
	decodedStringEquals(t, result, "body", "plain body")
	decodedBoolEquals(t, result, "read", false)
	html, msg := getDecodedPath(result, "html")
	require.Empty(t, msg)
	assert.Contains(t, html, `href="https://example.com"`)
	assert.NotContains(t, html, "onclick")
	assert.NotContains(t, html, "script")
	assert.NotContains(t, html, "alert")
	decodedStringEquals(t, result, "attachments/[0]/filename", "notes.txt")
	decodedStringEquals(t, result, "attachments/[0]/url",
		"/api/v1/inbox/"+testAddr+"/messages/1/attach/0/notes.txt")
	decodedNumberEquals(t, result, "attachments/[0]/size", 5)

	// Unknown message.
	w, err = testRestGet(messageURL("99"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Message not found"}`, w.Body.String())
}

func TestRestMessageAttachment(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	_, err := mm.AddDraft(testAddr, &message.Draft{
		From:    "alice@example.com",
		Subject: "files",
		Attachments: []message.Attachment{
			{FileName: "a.bin", Content: []byte{1, 2, 3}},
		},
	})
	require.NoError(t, err)

	w, err := testRestGet(messageURL("1") + "/attach/0/a.bin")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=a.bin`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, []byte{1, 2, 3}, w.Body.Bytes())

	w, err = testRestGet(messageURL("1") + "/attach/1/a.bin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, err = testRestGet(messageURL("1") + "/attach/x/a.bin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestMessageMarkSeen(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	_, err := mm.AddDraft(testAddr, &message.Draft{From: "a@example.com", Subject: "s"})
	require.NoError(t, err)

	w, err := testRestPatch(messageURL("1"), `{"read":true}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	msg, err := mm.GetMessage(testAddr, "1")
	require.NoError(t, err)
	assert.True(t, msg.Seen)

	w, err = testRestPatch(messageURL("2"), `{"read":true}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, err = testRestPatch(messageURL("1"), `{"read":`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestMessageSelect(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	_, err := mm.AddDraft(testAddr, &message.Draft{From: "a@example.com", Subject: "s"})
	require.NoError(t, err)

	w, err := testRestRequest("POST", messageURL("1")+"/select", "", "")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodedBoolEquals(t, decodeJSON(t, w), "read", true)

	st, err := mm.Inbox(testAddr)
	require.NoError(t, err)
	assert.Equal(t, "1", st.Selected)

	w, err = testRestRequest("POST", messageURL("7")+"/select", "", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRestMessageDelete(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	for i := 0; i < 2; i++ {
		_, err := mm.AddDraft(testAddr, &message.Draft{From: "a@example.com", Subject: "s"})
		require.NoError(t, err)
	}
	require.NoError(t, mm.SelectMessage(testAddr, "2"))

	// Deleting another message keeps the selection.
	w, err := testRestRequest("DELETE", messageURL("1"), "", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	st, err := mm.Inbox(testAddr)
	require.NoError(t, err)
	assert.Equal(t, "2", st.Selected)

	// Deleting the selected message clears it.
	w, err = testRestRequest("DELETE", messageURL("2"), "", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	st, err = mm.Inbox(testAddr)
	require.NoError(t, err)
	assert.Empty(t, st.Selected)

	w, err = testRestRequest("DELETE", messageURL("2"), "", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRestMessageSource(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	_, err := mm.AddMessage(testAddr, []byte(rawMessage))
	require.NoError(t, err)

	w, err := testRestGet(messageURL("1") + "/source")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	assert.Equal(t, rawMessage, w.Body.String())

	w, err = testRestGet(messageURL("2") + "/source")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRestMessageAnalyze(t *testing.T) {
	mm := test.NewManager()
	setupWebServer(mm)
	_, err := mm.AddMessage(testAddr, []byte(rawMessage))
	require.NoError(t, err)
	_, err = mm.AddDraft(testAddr, &message.Draft{
		From:    "news@example.com",
		Subject: "Digest",
		HTML:    "<p>Weekly digest.</p><p>Nothing urgent.</p>",
	})
	require.NoError(t, err)

	w, err := testRestRequest("POST", messageURL("1")+"/analyze", "", "")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeJSON(t, w)
	decodedStringEquals(t, result, "phishingRisk", string(assistant.RiskHigh))
	decodedStringEquals(t, result, "summary/[0]", "Your account is suspended.")

	w, err = testRestRequest("POST", messageURL("2")+"/analyze", "", "")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result = decodeJSON(t, w)
	decodedStringEquals(t, result, "phishingRisk", string(assistant.RiskLow))
	summary, _ := getDecodedPath(result, "summary")
	assert.Equal(t, []any{"Weekly digest.", "Nothing urgent."}, summary)

	w, err = testRestRequest("POST", messageURL("3")+"/analyze", "", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRestUnknownRoute(t *testing.T) {
	setupWebServer(test.NewManager())

	w, err := testRestGet(baseURL + "/nothing/here")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package message

import (
	"bytes"
	"net/mail"
	"strings"
	"time"

	"github.com/instanttempmail/tempmail/pkg/sanitize"
	"github.com/jhillyerd/enmime/v2"
)

// DefaultSubject replaces an empty draft subject, MIME messages require one.
const DefaultSubject = "(no subject)"

// Attachment is a file to attach to a Draft.
type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Draft describes a simple message to be encoded as MIME and delivered, the way a simulated
// message arrives.
type Draft struct {
	From        string
	Subject     string
	Body        string
	HTML        string
	Attachments []Attachment
}

// Encode builds the MIME source of the draft addressed to mailbox.  A draft with HTML but no body
// gets a plain text body extracted from the HTML.
func (d *Draft) Encode(mailbox string, date time.Time) ([]byte, error) {
	from := &mail.Address{Address: strings.TrimSpace(d.From)}
	if a, err := mail.ParseAddress(d.From); err == nil {
		from = a
	}
	subject := d.Subject
	if strings.TrimSpace(subject) == "" {
		subject = DefaultSubject
	}
	body := d.Body
	if body == "" && d.HTML != "" {
		body = sanitize.PlainText(d.HTML)
	}

	b := enmime.Builder().
		From(from.Name, from.Address).
		To("", mailbox).
		Subject(subject).
		Date(date).
		Text([]byte(body))
	if d.HTML != "" {
		b = b.HTML([]byte(d.HTML))
	}
	for _, a := range d.Attachments {
		ctype := a.ContentType
		if ctype == "" {
			ctype = "application/octet-stream"
		}
		b = b.AddAttachment(a.Content, ctype, a.FileName)
	}
	part, err := b.Build()
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := part.Encode(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/emersion/go-mbox"
	"github.com/instanttempmail/tempmail/pkg/inbox"
	"github.com/instanttempmail/tempmail/pkg/message"
	"github.com/instanttempmail/tempmail/pkg/rest/model"
	"github.com/instanttempmail/tempmail/pkg/server/web"
	"github.com/instanttempmail/tempmail/pkg/storage"
	"github.com/instanttempmail/tempmail/pkg/stringutil"
	"github.com/rs/zerolog/log"
)

// mboxSender is the envelope sender of exported messages without a From address.
const mboxSender = "MAILER-DAEMON"

// TTLOptionsV1 lists the selectable inbox TTLs.
func TTLOptionsV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	opts := make([]*model.JSONTTLOption, len(inbox.TTLOptions))
	for i, o := range inbox.TTLOptions {
		opts[i] = &model.JSONTTLOption{
			Name:   o.Name,
			Millis: o.TTL.Milliseconds(),
			Label:  o.Label,
		}
	}
	return web.RenderJSON(w, opts)
}

// InboxCreateV1 opens an inbox for a generated address.
func InboxCreateV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	st, err := ctx.Manager.NewInbox()
	if err != nil {
		return err
	}
	log.Info().Str("module", "rest").Str("mailbox", st.Address).Msg("Created inbox")
	return web.RenderJSONStatus(w, http.StatusCreated, jsonInbox(st, nil))
}

// InboxShowV1 renders the inbox state and its message headers.
func InboxShowV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name, ok := mailboxParam(w, ctx)
	if !ok {
		return nil
	}
	st, err := ctx.Manager.Inbox(name)
	if err != nil {
		return renderManagerError(w, err)
	}
	metas, err := ctx.Manager.GetMetadata(name)
	if err != nil {
		// This doesn't indicate empty, likely an IO error
		return fmt.Errorf("failed to get messages for %v: %w", name, err)
	}
	return web.RenderJSON(w, jsonInbox(st, metas))
}

// InboxCloseV1 purges and forgets an inbox.
func InboxCloseV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name, ok := mailboxParam(w, ctx)
	if !ok {
		return nil
	}
	if err := ctx.Manager.CloseInbox(name); err != nil {
		return renderManagerError(w, err)
	}
	log.Debug().Str("module", "rest").Str("mailbox", name).Msg("HTTP closed inbox")
	return web.RenderJSON(w, "OK")
}

// InboxRotateV1 replaces the inbox with a new address.
func InboxRotateV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name, ok := mailboxParam(w, ctx)
	if !ok {
		return nil
	}
	st, err := ctx.Manager.RotateInbox(name)
	if err != nil {
		return renderManagerError(w, err)
	}
	return web.RenderJSON(w, jsonInbox(st, nil))
}

// InboxTTLV1 changes the inbox TTL, existing messages are rescheduled.
func InboxTTLV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name, ok := mailboxParam(w, ctx)
	if !ok {
		return nil
	}
	var tr model.JSONTTLRequest
	if err := json.NewDecoder(req.Body).Decode(&tr); err != nil {
		return web.RenderError(w, http.StatusBadRequest, "Invalid JSON")
	}
	ttl, err := inbox.ParseTTL(tr.TTL)
	if err != nil {
		return renderManagerError(w, err)
	}
	if err := ctx.Manager.SetTTL(name, ttl); err != nil {
		return renderManagerError(w, err)
	}
	st, err := ctx.Manager.Inbox(name)
	if err != nil {
		return renderManagerError(w, err)
	}
	return web.RenderJSON(w, jsonInbox(st, nil))
}

// InboxClearSelectionV1 closes the detail view of the inbox.
func InboxClearSelectionV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name, ok := mailboxParam(w, ctx)
	if !ok {
		return nil
	}
	if err := ctx.Manager.ClearSelection(name); err != nil {
		return renderManagerError(w, err)
	}
	return web.RenderJSON(w, "OK")
}

// InboxMboxV1 exports every message of the inbox in mbox format.
func InboxMboxV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name, ok := mailboxParam(w, ctx)
	if !ok {
		return nil
	}
	if _, err := ctx.Manager.Inbox(name); err != nil {
		return renderManagerError(w, err)
	}
	metas, err := ctx.Manager.GetMetadata(name)
	if err != nil {
		return fmt.Errorf("failed to get messages for %v: %w", name, err)
	}

	w.Header().Set("Content-Type", "application/mbox")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".mbox"))
	cw := &countingWriter{w: w}
	mw := mbox.NewWriter(cw)
	for _, meta := range metas {
		if err := writeMboxMessage(mw, ctx.Manager, meta); err != nil {
			if errors.Is(err, storage.ErrNotExist) {
				// Expired while exporting.
				continue
			}
			return mboxStreamError(cw, name, err)
		}
	}
	return mboxStreamError(cw, name, mw.Close())
}

// mboxStreamError passes err on while nothing was sent.  Once the export started streaming, the
// status line is out and err is only logged.
func mboxStreamError(cw *countingWriter, name string, err error) error {
	if err == nil || cw.n == 0 {
		return err
	}
	log.Error().Str("module", "rest").Str("mailbox", name).Int64("written", cw.n).Err(err).
		Msg("mbox export aborted")
	return nil
}

// countingWriter counts the bytes written to w.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func writeMboxMessage(mw *mbox.Writer, mm message.Manager, meta *message.Metadata) error {
	r, err := mm.SourceReader(meta.Mailbox, meta.ID)
	if err != nil {
		return err
	}
	defer r.Close()
	from := mboxSender
	if meta.From != nil && meta.From.Address != "" {
		from = meta.From.Address
	}
	mr, err := mw.CreateMessage(from, meta.Date)
	if err != nil {
		return err
	}
	_, err = io.Copy(mr, r)
	return err
}

func jsonInbox(st inbox.State, metas []*message.Metadata) *model.JSONInbox {
	headers := make([]*model.JSONMessageHeader, len(metas))
	for i, meta := range metas {
		headers[i] = jsonMessageHeader(meta)
	}
	return &model.JSONInbox{
		Address:   st.Address,
		TTL:       ttlName(st.TTL),
		TTLMillis: st.TTL.Milliseconds(),
		Selected:  st.Selected,
		Created:   model.Millis(st.Created),
		Messages:  headers,
	}
}

func jsonMessageHeader(meta *message.Metadata) *model.JSONMessageHeader {
	return &model.JSONMessageHeader{
		ID:        meta.ID,
		From:      stringutil.StringAddress(meta.From),
		Subject:   meta.Subject,
		Timestamp: model.Millis(meta.Date),
		Read:      meta.Seen,
		Size:      meta.Size,
	}
}

// ttlName returns the option name for ttl, or the duration string if it is not an option.
func ttlName(ttl time.Duration) string {
	for _, o := range inbox.TTLOptions {
		if o.TTL == ttl {
			return o.Name
		}
	}
	return ttl.String()
}

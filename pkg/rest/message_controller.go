package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/instanttempmail/tempmail/pkg/assistant"
	"github.com/instanttempmail/tempmail/pkg/message"
	"github.com/instanttempmail/tempmail/pkg/rest/model"
	"github.com/instanttempmail/tempmail/pkg/sanitize"
	"github.com/instanttempmail/tempmail/pkg/server/web"
	"github.com/instanttempmail/tempmail/pkg/stringutil"
	"github.com/rs/zerolog/log"
)

const (
	// maxMessageBytes limits the size of a delivered message or draft.
	maxMessageBytes = 10 << 20

	rfc822Type = "message/rfc822"
)

// MessageDeliverV1 delivers a raw message/rfc822 body, or a JSON draft, to the inbox.
func MessageDeliverV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name, ok := mailboxParam(w, ctx)
	if !ok {
		return nil
	}
	body := http.MaxBytesReader(w, req.Body, maxMessageBytes)

	var id string
	if mediaType(req) == rfc822Type {
		source, rerr := io.ReadAll(body)
		if rerr != nil {
			return web.RenderError(w, http.StatusBadRequest, "Unable to read message")
		}
		id, err = ctx.Manager.Deliver(name, source)
	} else {
		var jd model.JSONDraft
		if err := json.NewDecoder(body).Decode(&jd); err != nil {
			return web.RenderError(w, http.StatusBadRequest, "Invalid JSON")
		}
		id, err = ctx.Manager.DeliverDraft(name, draftFromJSON(&jd))
	}
	if errors.Is(err, message.ErrDiscarded) {
		return web.RenderJSONStatus(w, http.StatusAccepted, &model.JSONDelivered{})
	}
	if err != nil {
		return renderManagerError(w, err)
	}
	log.Debug().Str("module", "rest").Str("mailbox", name).Str("id", id).Msg("HTTP delivered message")
	return web.RenderJSONStatus(w, http.StatusCreated, &model.JSONDelivered{ID: id})
}

// MessageShowV1 renders a message with its HTML body sanitized.
func MessageShowV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name, ok := mailboxParam(w, ctx)
	if !ok {
		return nil
	}
	msg, err := ctx.Manager.GetMessage(name, ctx.Vars["id"])
	if err != nil {
		return renderManagerError(w, err)
	}
	return web.RenderJSON(w, jsonEmail(msg))
}

// MessageMarkSeenV1 sets the read flag of a message.
func MessageMarkSeenV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name, ok := mailboxParam(w, ctx)
	if !ok {
		return nil
	}
	var patch model.JSONMessagePatch
	if err := json.NewDecoder(req.Body).Decode(&patch); err != nil {
		return web.RenderError(w, http.StatusBadRequest, "Invalid JSON")
	}
	if patch.Read {
		if err := ctx.Manager.MarkSeen(name, ctx.Vars["id"]); err != nil {
			return renderManagerError(w, err)
		}
	}
	return web.RenderJSON(w, "OK")
}

// MessageSelectV1 opens a message in the detail view, and renders it.
func MessageSelectV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name, ok := mailboxParam(w, ctx)
	if !ok {
		return nil
	}
	id := ctx.Vars["id"]
	if err := ctx.Manager.SelectMessage(name, id); err != nil {
		return renderManagerError(w, err)
	}
	msg, err := ctx.Manager.GetMessage(name, id)
	if err != nil {
		return renderManagerError(w, err)
	}
	return web.RenderJSON(w, jsonEmail(msg))
}

// MessageDeleteV1 removes a message from the inbox.
func MessageDeleteV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name, ok := mailboxParam(w, ctx)
	if !ok {
		return nil
	}
	if err := ctx.Manager.RemoveMessage(name, ctx.Vars["id"]); err != nil {
		return renderManagerError(w, err)
	}
	return web.RenderJSON(w, "OK")
}

// MessageSourceV1 displays the raw source of a message, including headers. Renders text/plain
func MessageSourceV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name, ok := mailboxParam(w, ctx)
	if !ok {
		return nil
	}
	r, err := ctx.Manager.SourceReader(name, ctx.Vars["id"])
	if err != nil {
		return renderManagerError(w, err)
	}
	defer r.Close()
	w.Header().Set("Content-Type", "text/plain")
	_, err = io.Copy(w, r)
	return err
}

// MessageAnalyzeV1 runs the assistant analysis on a stored message.
func MessageAnalyzeV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name, ok := mailboxParam(w, ctx)
	if !ok {
		return nil
	}
	msg, err := ctx.Manager.GetMessage(name, ctx.Vars["id"])
	if err != nil {
		return renderManagerError(w, err)
	}
	body := msg.Text()
	if body == "" {
		body = sanitize.PlainText(msg.HTML())
	}
	insight, err := ctx.Assistant.Analyze(req.Context(), &assistant.Email{
		From:    stringutil.StringAddress(msg.From),
		Subject: msg.Subject,
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("analyze %v/%v: %w", name, msg.ID, err)
	}
	return web.RenderJSON(w, analyzeResponse(insight))
}

// MessageAttachmentV1 sends the content of an attachment.
func MessageAttachmentV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	name, ok := mailboxParam(w, ctx)
	if !ok {
		return nil
	}
	num, err := strconv.Atoi(ctx.Vars["num"])
	if err != nil {
		return web.RenderError(w, http.StatusBadRequest, "Invalid attachment number")
	}
	msg, err := ctx.Manager.GetMessage(name, ctx.Vars["id"])
	if err != nil {
		return renderManagerError(w, err)
	}
	atts := msg.Attachments()
	if num < 0 || num >= len(atts) {
		return web.RenderError(w, http.StatusNotFound, "Attachment not found")
	}
	att := atts[num]
	ctype := att.ContentType
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": att.FileName}))
	_, err = w.Write(att.Content)
	return err
}

func jsonEmail(msg *message.Message) *model.JSONEmail {
	atts := msg.Attachments()
	jatts := make([]*model.JSONAttachment, len(atts))
	for i, att := range atts {
		fname := att.FileName
		if fname == "" {
			fname = "attachment"
		}
		link := web.Reverse("MessageAttachmentV1",
			"name", msg.Mailbox, "id", msg.ID, "num", i, "file", url.PathEscape(fname))
		jatts[i] = &model.JSONAttachment{
			FileName:    att.FileName,
			URL:         link,
			Size:        int64(len(att.Content)),
			ContentType: att.ContentType,
		}
	}
	return &model.JSONEmail{
		ID:          msg.ID,
		From:        stringutil.StringAddress(msg.From),
		Subject:     msg.Subject,
		Body:        msg.Text(),
		HTML:        sanitize.HTML(msg.HTML()),
		Timestamp:   model.Millis(msg.Date),
		Read:        msg.Seen,
		Attachments: jatts,
	}
}

func draftFromJSON(jd *model.JSONDraft) *message.Draft {
	d := &message.Draft{
		From:    jd.From,
		Subject: jd.Subject,
		Body:    jd.Body,
		HTML:    jd.HTML,
	}
	for _, ja := range jd.Attachments {
		d.Attachments = append(d.Attachments, message.Attachment{
			FileName:    ja.FileName,
			ContentType: ja.ContentType,
			Content:     ja.Content,
		})
	}
	return d
}

// mediaType returns the lower-cased media type of the request body, ignoring parameters.
func mediaType(req *http.Request) string {
	mt, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

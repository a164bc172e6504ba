package rest

import (
	"errors"
	"net/http"

	"github.com/instanttempmail/tempmail/pkg/inbox"
	"github.com/instanttempmail/tempmail/pkg/policy"
	"github.com/instanttempmail/tempmail/pkg/server/web"
	"github.com/instanttempmail/tempmail/pkg/storage"
)

// renderManagerError writes the 4xx response for a known manager error and returns nil.  Any other
// error is returned unchanged, web.Handler will log it and respond 500.
func renderManagerError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, inbox.ErrNotExist):
		return web.RenderError(w, http.StatusNotFound, "Inbox not found")
	case errors.Is(err, storage.ErrNotExist):
		return web.RenderError(w, http.StatusNotFound, "Message not found")
	case errors.Is(err, policy.ErrInvalidAddress), errors.Is(err, inbox.ErrInvalidTTL):
		return web.RenderError(w, http.StatusBadRequest, err.Error())
	}
	return err
}

// mailboxParam canonicalizes the {name} route variable.
func mailboxParam(w http.ResponseWriter, ctx *web.Context) (string, bool) {
	name, err := ctx.Manager.MailboxForAddress(ctx.Vars["name"])
	if err != nil {
		_ = web.RenderError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return name, true
}

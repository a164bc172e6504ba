package rest

import (
	"github.com/gorilla/mux"
	"github.com/instanttempmail/tempmail/pkg/server/web"
)

// SetupRoutes populates the routes for the REST interface
func SetupRoutes(r *mux.Router) {
	// Assistant
	r.Path("/ai-assistant").Handler(
		web.Handler(AssistantV1)).Name("AssistantLegacy").Methods("POST")
	r.Path("/v1/assistant").Handler(
		web.Handler(AssistantV1)).Name("AssistantV1").Methods("POST")

	// API v1
	r.Path("/v1/ttl").Handler(
		web.Handler(TTLOptionsV1)).Name("TTLOptionsV1").Methods("GET")
	r.Path("/v1/inbox").Handler(
		web.Handler(InboxCreateV1)).Name("InboxCreateV1").Methods("POST")
	r.Path("/v1/inbox/{name}").Handler(
		web.Handler(InboxShowV1)).Name("InboxShowV1").Methods("GET")
	r.Path("/v1/inbox/{name}").Handler(
		web.Handler(InboxCloseV1)).Name("InboxCloseV1").Methods("DELETE")
	r.Path("/v1/inbox/{name}/rotate").Handler(
		web.Handler(InboxRotateV1)).Name("InboxRotateV1").Methods("POST")
	r.Path("/v1/inbox/{name}/ttl").Handler(
		web.Handler(InboxTTLV1)).Name("InboxTTLV1").Methods("PUT")
	r.Path("/v1/inbox/{name}/mbox").Handler(
		web.Handler(InboxMboxV1)).Name("InboxMboxV1").Methods("GET")
	r.Path("/v1/inbox/{name}/selection").Handler(
		web.Handler(InboxClearSelectionV1)).Name("InboxClearSelectionV1").Methods("DELETE")
	r.Path("/v1/inbox/{name}/messages").Handler(
		web.Handler(MessageDeliverV1)).Name("MessageDeliverV1").Methods("POST")
	r.Path("/v1/inbox/{name}/messages/{id}").Handler(
		web.Handler(MessageShowV1)).Name("MessageShowV1").Methods("GET")
	r.Path("/v1/inbox/{name}/messages/{id}").Handler(
		web.Handler(MessageMarkSeenV1)).Name("MessageMarkSeenV1").Methods("PATCH")
	r.Path("/v1/inbox/{name}/messages/{id}").Handler(
		web.Handler(MessageDeleteV1)).Name("MessageDeleteV1").Methods("DELETE")
	r.Path("/v1/inbox/{name}/messages/{id}/select").Handler(
		web.Handler(MessageSelectV1)).Name("MessageSelectV1").Methods("POST")
	r.Path("/v1/inbox/{name}/messages/{id}/source").Handler(
		web.Handler(MessageSourceV1)).Name("MessageSourceV1").Methods("GET")
	r.Path("/v1/inbox/{name}/messages/{id}/analyze").Handler(
		web.Handler(MessageAnalyzeV1)).Name("MessageAnalyzeV1").Methods("POST")
	r.Path("/v1/inbox/{name}/messages/{id}/attach/{num}/{file}").Handler(
		web.Handler(MessageAttachmentV1)).Name("MessageAttachmentV1").Methods("GET")
}

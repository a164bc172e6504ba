package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/instanttempmail/tempmail/pkg/assistant"
	"github.com/instanttempmail/tempmail/pkg/rest/model"
	"github.com/instanttempmail/tempmail/pkg/sanitize"
	"github.com/instanttempmail/tempmail/pkg/server/web"
	"github.com/rs/zerolog/log"
)

var (
	errNullRequest  = errors.New("assistant request is null")
	errTrailingData = errors.New("unexpected data after assistant request")
	errNoPrompt     = errors.New("chat request has no prompt")
)

// assistantRequest is the server side view of model.AssistantRequest.  Fields are decoded lazily,
// only the ones the action reads must be well formed.
type assistantRequest struct {
	Action  any             `json:"action"`
	Email   json.RawMessage `json:"email"`
	Prompt  json.RawMessage `json:"prompt"`
	Context json.RawMessage `json:"context"`
}

// assistantEmailJSON tracks which email fields were sent.
type assistantEmailJSON struct {
	From    *string `json:"from"`
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
	HTML    string  `json:"html"`
}

// AssistantV1 answers analyze, suggestions and chat requests.
func AssistantV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	ar, err := decodeAssistantRequest(req.Body)
	if err != nil {
		return fmt.Errorf("failed to decode assistant request: %w", err)
	}
	action, _ := ar.Action.(string)
	log.Debug().Str("module", "rest").Str("action", action).Msg("Assistant request")

	switch action {
	case model.ActionAnalyze:
		var email *assistant.Email
		if present(ar.Email) {
			if email, err = decodeAssistantEmail(ar.Email, true); err != nil {
				return fmt.Errorf("analyze: %w", err)
			}
		}
		insight, err := ctx.Assistant.Analyze(req.Context(), email)
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		return web.RenderJSON(w, analyzeResponse(insight))

	case model.ActionSuggestions:
		names, err := ctx.Assistant.Suggestions(req.Context())
		if err != nil {
			return fmt.Errorf("suggestions: %w", err)
		}
		return web.RenderJSON(w, &model.SuggestionsResponse{Suggestions: names})

	case model.ActionChat:
		if !present(ar.Prompt) {
			return fmt.Errorf("chat: %w", errNoPrompt)
		}
		var prompt string
		if err := json.Unmarshal(ar.Prompt, &prompt); err != nil {
			return fmt.Errorf("chat prompt: %w", err)
		}
		// A falsy context means no email is selected.
		var selected *assistant.Email
		if truthy(ar.Context) && assistant.WantsSummary(prompt) {
			if selected, err = decodeAssistantEmail(ar.Context, false); err != nil {
				return fmt.Errorf("chat context: %w", err)
			}
		}
		reply, err := ctx.Assistant.Chat(req.Context(), prompt, selected)
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}
		return web.RenderJSON(w, &model.ChatResponse{Response: reply})
	}

	log.Debug().Str("module", "rest").Any("action", ar.Action).Msg("Invalid assistant action")
	return web.RenderError(w, http.StatusBadRequest, "Invalid action")
}

// decodeAssistantRequest reads exactly one JSON value.  Values other than objects carry no
// action, null is rejected.
func decodeAssistantRequest(r io.Reader) (*assistantRequest, error) {
	dec := json.NewDecoder(r)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	raw = bytes.TrimSpace(raw)
	ar := &assistantRequest{}
	switch raw[0] {
	case 'n':
		return nil, errNullRequest
	case '{':
		if err := json.Unmarshal(raw, ar); err != nil {
			return nil, err
		}
	}
	return ar, nil
}

// decodeAssistantEmail converts the wire email for the analyzer.  The body is required, HTML only
// messages are reduced to their text.  withSender also requires from and subject.
func decodeAssistantEmail(raw json.RawMessage, withSender bool) (*assistant.Email, error) {
	var je assistantEmailJSON
	if err := json.Unmarshal(raw, &je); err != nil {
		return nil, err
	}
	if withSender && je.From == nil {
		return nil, errors.New("email has no from")
	}
	if withSender && je.Subject == nil {
		return nil, errors.New("email has no subject")
	}
	var body string
	if je.Body != nil {
		body = *je.Body
	}
	if body == "" && je.HTML != "" {
		body = sanitize.PlainText(je.HTML)
	} else if je.Body == nil {
		return nil, errors.New("email has no body")
	}
	e := &assistant.Email{Body: body}
	if je.From != nil {
		e.From = *je.From
	}
	if je.Subject != nil {
		e.Subject = *je.Subject
	}
	return e, nil
}

// present reports whether a field was sent with a non-null value.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// truthy reports whether a field holds a value other than null, false, 0 or "".
func truthy(raw json.RawMessage) bool {
	if !present(raw) {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	}
	return true
}

func analyzeResponse(insight *assistant.Insight) *model.AnalyzeResponse {
	return &model.AnalyzeResponse{
		Summary:      insight.Summary,
		PhishingRisk: string(insight.PhishingRisk),
		Suggestions:  insight.Suggestions,
	}
}

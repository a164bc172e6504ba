package model

// Assistant actions.
const (
	ActionAnalyze     = "analyze"
	ActionSuggestions = "suggestions"
	ActionChat        = "chat"
)

// AssistantRequest is the body of the assistant endpoint.  Email is required by analyze, Prompt
// and the optional Context by chat.
type AssistantRequest struct {
	Action  string     `json:"action"`
	Email   *JSONEmail `json:"email,omitempty"`
	Prompt  *string    `json:"prompt,omitempty"`
	Context *JSONEmail `json:"context,omitempty"`
}

// AnalyzeResponse is the reply to analyze.
type AnalyzeResponse struct {
	Summary      []string `json:"summary"`
	PhishingRisk string   `json:"phishingRisk"`
	Suggestions  []string `json:"suggestions"`
}

// SuggestionsResponse is the reply to suggestions.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// ChatResponse is the reply to chat.
type ChatResponse struct {
	Response string `json:"response"`
}

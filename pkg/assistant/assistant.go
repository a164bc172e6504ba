// Package assistant produces the canned "AI" replies: a phishing risk heuristic, a short summary,
// safety advice, username suggestions and keyword driven chat.
package assistant

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/instanttempmail/tempmail/pkg/config"
	"github.com/instanttempmail/tempmail/pkg/stringutil"
	"github.com/rs/zerolog/log"
)

// ErrNoEmail is returned by Analyze when there is nothing to analyze.
var ErrNoEmail = errors.New("no email to analyze")

const (
	// SuggestionCount is the number of usernames returned by Suggestions.
	SuggestionCount = 6

	// excerptLen is the number of body characters quoted by the chat summary.
	excerptLen = 100
)

var (
	adjectives = []string{"swift", "clever", "bright", "quick", "sharp", "smart"}
	nouns      = []string{"fox", "wolf", "eagle", "tiger", "falcon", "hawk"}
	suffixes   = []string{"123", "456", "2024", "x", "pro", "dev"}
)

var (
	expAnalyzeTotal  = new(expvar.Int)
	expSuggestTotal  = new(expvar.Int)
	expChatTotal     = new(expvar.Int)
	expHighRiskTotal = new(expvar.Int)
)

func init() {
	m := expvar.NewMap("assistant")
	m.Set("AnalyzeTotal", expAnalyzeTotal)
	m.Set("SuggestTotal", expSuggestTotal)
	m.Set("ChatTotal", expChatTotal)
	m.Set("HighRiskTotal", expHighRiskTotal)
}

// Insight is the result of analyzing an email.
type Insight struct {
	Summary      []string
	PhishingRisk Risk
	Suggestions  []string
}

// Assistant answers assistant requests after an artificial delay.
type Assistant struct {
	Locale       *Locale
	AnalyzeDelay time.Duration
	SuggestDelay time.Duration
	ChatDelay    time.Duration
	// IntN returns a random int in [0,n); defaults to math/rand.
	IntN func(n int) int
}

// New creates an Assistant from configuration.
func New(cfg config.Assistant) (*Assistant, error) {
	locale, err := LookupLocale(cfg.Locale)
	if err != nil {
		return nil, err
	}
	return &Assistant{
		Locale:       locale,
		AnalyzeDelay: cfg.AnalyzeDelay,
		SuggestDelay: cfg.SuggestDelay,
		ChatDelay:    cfg.ChatDelay,
	}, nil
}

// Analyze summarizes e, rates its phishing risk and gives one line of advice.
func (a *Assistant) Analyze(ctx context.Context, e *Email) (*Insight, error) {
	if e == nil {
		return nil, ErrNoEmail
	}
	if err := sleep(ctx, a.AnalyzeDelay); err != nil {
		return nil, err
	}
	matches := Matches(e)
	risk := RiskForScore(len(matches))
	expAnalyzeTotal.Add(1)
	if risk == RiskHigh {
		expHighRiskTotal.Add(1)
	}
	log.Debug().Str("module", "assistant").Strs("indicators", matches).Str("risk", string(risk)).
		Msg("Analyzed email")
	return &Insight{
		Summary:      Summarize(e.Body),
		PhishingRisk: risk,
		Suggestions:  []string{a.Locale.Advice(risk)},
	}, nil
}

// Suggestions generates usernames of the form adjective, noun, suffix.  Duplicates are possible.
func (a *Assistant) Suggestions(ctx context.Context) ([]string, error) {
	if err := sleep(ctx, a.SuggestDelay); err != nil {
		return nil, err
	}
	intn := a.IntN
	if intn == nil {
		intn = rand.Intn
	}
	names := make([]string, SuggestionCount)
	for i := range names {
		names[i] = adjectives[intn(len(adjectives))] +
			nouns[intn(len(nouns))] +
			suffixes[intn(len(suffixes))]
	}
	expSuggestTotal.Add(1)
	return names, nil
}

// Chat answers prompt by keyword, the first matching rule wins.  selected is the email open in the
// detail view, if any.
func (a *Assistant) Chat(ctx context.Context, prompt string, selected *Email) (string, error) {
	if err := sleep(ctx, a.ChatDelay); err != nil {
		return "", err
	}
	expChatTotal.Add(1)
	p := strings.ToLower(prompt)
	switch {
	case WantsSummary(prompt):
		if selected == nil {
			return a.Locale.ChatNoContext, nil
		}
		return fmt.Sprintf(a.Locale.ChatSummary, selected.From, selected.Subject,
			stringutil.Truncate(selected.Body, excerptLen)), nil
	case strings.Contains(p, "safe") || strings.Contains(p, "phishing"):
		return a.Locale.ChatSafety, nil
	case strings.Contains(p, "help"):
		return a.Locale.ChatHelp, nil
	default:
		return a.Locale.ChatDefault, nil
	}
}

// WantsSummary reports whether Chat answers prompt with a summary of the selected email.
func WantsSummary(prompt string) bool {
	p := strings.ToLower(prompt)
	return strings.Contains(p, "summary") || strings.Contains(p, "summarize")
}

// sleep waits for d, or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package assistant

import (
	"strings"
	"unicode"
)

// Risk is the coarse phishing risk label of an email.
type Risk string

// Risk levels.
const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// Score thresholds of the risk levels.
const (
	mediumScore = 2
	highScore   = 4
)

// maxSummary is the number of sentences in a summary.
const maxSummary = 3

// Email is the part of a message the assistant looks at.
type Email struct {
	From    string
	Subject string
	Body    string
}

// Indicator is a single phishing heuristic.
type Indicator struct {
	Name  string
	Match func(e *Email) bool
}

// Indicators lists the phishing heuristics.  Sender checks are case-sensitive, the others are not.
var Indicators = []Indicator{
	{"sender-verify", func(e *Email) bool { return strings.Contains(e.From, "verify") }},
	{"sender-confirm", func(e *Email) bool { return strings.Contains(e.From, "confirm") }},
	{"subject-urgent", func(e *Email) bool { return containsFold(e.Subject, "urgent") }},
	{"subject-action-required", func(e *Email) bool {
		return containsFold(e.Subject, "action required")
	}},
	{"body-click-here", func(e *Email) bool { return containsFold(e.Body, "click here") }},
	{"body-suspended", func(e *Email) bool { return containsFold(e.Body, "suspended") }},
}

// Matches returns the names of the indicators that match e.
func Matches(e *Email) []string {
	var names []string
	for _, ind := range Indicators {
		if ind.Match(e) {
			names = append(names, ind.Name)
		}
	}
	return names
}

// Classify scores e against the Indicators and buckets the score.
func Classify(e *Email) Risk {
	return RiskForScore(len(Matches(e)))
}

// RiskForScore maps a count of matched indicators to a Risk.
func RiskForScore(score int) Risk {
	switch {
	case score >= highScore:
		return RiskHigh
	case score >= mediumScore:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Summarize returns up to the first three sentences of body.  Sentences are split on periods,
// blank fragments are skipped, and each sentence is trimmed and terminated with a period.
func Summarize(body string) []string {
	summary := make([]string, 0, maxSummary)
	for _, s := range strings.Split(body, ".") {
		s = strings.TrimFunc(s, isBlank)
		if s == "" {
			continue
		}
		summary = append(summary, s+".")
		if len(summary) == maxSummary {
			break
		}
	}
	return summary
}

// isBlank matches white space and the byte order mark.
func isBlank(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

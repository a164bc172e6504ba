package assistant

import (
	"fmt"
	"strings"
)

// Locale holds the canned replies of the assistant in one language.
type Locale struct {
	AdviceHigh   string
	AdviceMedium string
	AdviceLow    string

	// ChatSummary is a format taking sender, subject and body excerpt.
	ChatSummary   string
	ChatNoContext string
	ChatSafety    string
	ChatHelp      string
	ChatDefault   string
}

// Advice returns the safety advice line for risk.
func (l *Locale) Advice(risk Risk) string {
	switch risk {
	case RiskHigh:
		return l.AdviceHigh
	case RiskMedium:
		return l.AdviceMedium
	default:
		return l.AdviceLow
	}
}

// Locales maps language codes to replies.
var Locales = map[string]*Locale{
	"hi": {
		AdviceHigh:    "⚠️ यह ईमेल संदिग्ध लग रहा है। किसी भी लिंक पर क्लिक न करें।",
		AdviceMedium:  "⚠️ सावधानी बरतें। भेजने वाले को verify करें।",
		AdviceLow:     "✓ यह ईमेल सुरक्षित लगता है।",
		ChatSummary:   "यह ईमेल %s से है और विषय \"%s\" है। मुख्य बात: %s...",
		ChatNoContext: "कृपया पहले कोई ईमेल चुनें।",
		ChatSafety:    "मैं इस ईमेल की जांच कर रहा हूं। कृपया संदिग्ध लिंक पर क्लिक न करें।",
		ChatHelp: "मैं आपकी ईमेल summarize करने, phishing detect करने, और username " +
			"suggestions देने में मदद कर सकता हूं।",
		ChatDefault: "मैं आपकी मदद करने के लिए यहां हूं। कृपया मुझे बताएं कि आपको क्या चाहिए।",
	},
	"en": {
		AdviceHigh:    "⚠️ This email looks suspicious. Do not click any links.",
		AdviceMedium:  "⚠️ Be careful. Verify the sender.",
		AdviceLow:     "✓ This email looks safe.",
		ChatSummary:   "This email is from %s with the subject \"%s\". Main point: %s...",
		ChatNoContext: "Please select an email first.",
		ChatSafety:    "I am checking this email. Please do not click suspicious links.",
		ChatHelp: "I can help you summarize emails, detect phishing, and suggest " +
			"usernames.",
		ChatDefault: "I am here to help you. Please tell me what you need.",
	},
}

// LookupLocale returns the replies for a language code.
func LookupLocale(name string) (*Locale, error) {
	l, ok := Locales[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported assistant locale %q", name)
	}
	return l, nil
}

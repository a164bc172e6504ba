package assistant_test

import (
	"strings"
	"testing"

	"github.com/instanttempmail/tempmail/pkg/assistant"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name  string
		email assistant.Email
		want  assistant.Risk
	}{
		{
			name:  "clean",
			email: assistant.Email{From: "friend@example.com", Subject: "Lunch", Body: "See you."},
			want:  assistant.RiskLow,
		},
		{
			name:  "one indicator",
			email: assistant.Email{From: "a@b.c", Subject: "URGENT", Body: "Hello."},
			want:  assistant.RiskLow,
		},
		{
			name:  "two indicators",
			email: assistant.Email{From: "verify@bank.com", Subject: "Urgent", Body: "Hello."},
			want:  assistant.RiskMedium,
		},
		{
			name: "three indicators",
			email: assistant.Email{
				From:    "x@y.z",
				Subject: "Action Required",
				Body:    "Click HERE, your account is Suspended.",
			},
			want: assistant.RiskMedium,
		},
		{
			name: "four indicators",
			email: assistant.Email{
				From:    "verify@bank.com",
				Subject: "URGENT: action required",
				Body:    "Please click here.",
			},
			want: assistant.RiskHigh,
		},
		{
			name: "all indicators",
			email: assistant.Email{
				From:    "verify-confirm@bank.com",
				Subject: "Urgent action required",
				Body:    "Your account is suspended, click here.",
			},
			want: assistant.RiskHigh,
		},
		{
			name: "sender checks are case-sensitive",
			email: assistant.Email{
				From:    "VERIFY-CONFIRM@bank.com",
				Subject: "Urgent",
				Body:    "Hello.",
			},
			want: assistant.RiskLow,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, assistant.Classify(&tc.email))
		})
	}
}

func TestMatches(t *testing.T) {
	e := &assistant.Email{From: "confirm@x.com", Subject: "hi", Body: "account SUSPENDED"}
	assert.Equal(t, []string{"sender-confirm", "body-suspended"}, assistant.Matches(e))
	assert.Empty(t, assistant.Matches(&assistant.Email{}))
}

func TestRiskForScore(t *testing.T) {
	want := []assistant.Risk{
		assistant.RiskLow, assistant.RiskLow,
		assistant.RiskMedium, assistant.RiskMedium,
		assistant.RiskHigh, assistant.RiskHigh, assistant.RiskHigh,
	}
	for score, w := range want {
		assert.Equal(t, w, assistant.RiskForScore(score), "score %v", score)
	}
}

func TestSummarize(t *testing.T) {
	testCases := []struct {
		name, body string
		want       []string
	}{
		{"empty", "", []string{}},
		{"only periods", " . .. ", []string{}},
		{"one", "Hello there", []string{"Hello there."}},
		{
			"three of four",
			"One. Two.  Three. Four.",
			[]string{"One.", "Two.", "Three."},
		},
		{
			"blank fragments skipped",
			"First...   . Second.\n. Third",
			[]string{"First.", "Second.", "Third."},
		},
		{
			"byte order mark is blank",
			"\uFEFF. Real.\u00a0.\u2028",
			[]string{"Real."},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := assistant.Summarize(tc.body)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, len(got), 3)
			for _, s := range got {
				assert.NotEqual(t, ".", s)
				assert.True(t, strings.HasSuffix(s, "."))
			}
		})
	}
}

package policy_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/instanttempmail/tempmail/pkg/config"
	"github.com/instanttempmail/tempmail/pkg/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddressFormat(t *testing.T) {
	ap := policy.NewAddressing(config.Inbox{Domain: "TempMail.dev"})
	re := regexp.MustCompile(`^[0-9a-z]{8}@tempmail\.dev$`)
	for i := 0; i < 50; i++ {
		addr := ap.NewAddress()
		assert.Regexp(t, re, addr)
	}
}

func TestNewAddressUsesRandomSource(t *testing.T) {
	n := 0
	ap := &policy.Addressing{
		Domain: "x.org",
		IntN: func(max int) int {
			n++
			return (n + 9) % max
		},
	}
	assert.Equal(t, "abcdefgh@x.org", ap.NewAddress())
}

func TestExtractMailbox(t *testing.T) {
	ap := &policy.Addressing{Domain: "tempmail.dev"}
	testCases := []struct {
		input, want string
	}{
		{"abc12345@tempmail.dev", "abc12345@tempmail.dev"},
		{"ABC12345@TempMail.DEV", "abc12345@tempmail.dev"},
		{"abc12345", "abc12345@tempmail.dev"},
		{" first.last@example.com ", "first.last@example.com"},
		{"o'brien+tag@example.com", "o'brien+tag@example.com"},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ap.ExtractMailbox(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractMailboxInvalid(t *testing.T) {
	ap := &policy.Addressing{Domain: "tempmail.dev"}
	testCases := []string{
		"",
		"@tempmail.dev",
		".abc@tempmail.dev",
		"abc.@tempmail.dev",
		"a..b@tempmail.dev",
		"a b@tempmail.dev",
		`"quoted"@tempmail.dev`,
		"abc@",
		"abc@-bad.com",
		"abc@bad..com",
		strings.Repeat("a", 65) + "@tempmail.dev",
		strings.Repeat("a", 321),
	}
	for _, tc := range testCases {
		t.Run(tc, func(t *testing.T) {
			_, err := ap.ExtractMailbox(tc)
			assert.ErrorIs(t, err, policy.ErrInvalidAddress)
		})
	}
}

func TestShouldAcceptDomain(t *testing.T) {
	ap := &policy.Addressing{Domain: "tempmail.dev"}
	assert.True(t, ap.ShouldAcceptDomain("tempmail.dev"))
	assert.True(t, ap.ShouldAcceptDomain("TEMPMAIL.dev."))
	assert.False(t, ap.ShouldAcceptDomain("a.tempmail.dev"))
	assert.False(t, ap.ShouldAcceptDomain("example.com"))
}

func TestMailboxDomain(t *testing.T) {
	assert.Equal(t, "tempmail.dev", policy.MailboxDomain("abc@tempmail.dev"))
	assert.Equal(t, "", policy.MailboxDomain("abc"))
}

func TestValidateDomainPart(t *testing.T) {
	testCases := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"hostname", true},
		{"github.com", true},
		{"www.github.com.", true},
		{"my_host.example.com", true},
		{"-lead.com", false},
		{"trail-.com", false},
		{"a..b", false},
		{strings.Repeat("a", 64) + ".com", false},
		{"bang!.com", false},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, policy.ValidateDomainPart(tc.input))
		})
	}
}

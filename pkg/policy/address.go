// Package policy decides which addresses exist and how they are named.
package policy

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/instanttempmail/tempmail/pkg/config"
)

const (
	// localPartLen is the length of a generated local part.
	localPartLen = 8
	localPartSet = "0123456789abcdefghijklmnopqrstuvwxyz"
	localSpecial = "!#$%&'*+-/=?^_`{|}~"
)

// ErrInvalidAddress wraps every address validation failure.
var ErrInvalidAddress = errors.New("invalid address")

// Addressing handles email address policy.
type Addressing struct {
	// Domain is the only domain addresses are generated for and mail is accepted for.
	Domain string
	// IntN returns a random int in [0,n); defaults to math/rand.
	IntN func(n int) int
}

// NewAddressing creates an address policy for the configured inbox domain.
func NewAddressing(cfg config.Inbox) *Addressing {
	return &Addressing{Domain: strings.ToLower(cfg.Domain)}
}

// NewAddress generates a random disposable address on the policy domain.
func (a *Addressing) NewAddress() string {
	intn := a.IntN
	if intn == nil {
		intn = rand.Intn
	}
	b := make([]byte, localPartLen)
	for i := range b {
		b[i] = localPartSet[intn(len(localPartSet))]
	}
	return string(b) + "@" + a.Domain
}

// ExtractMailbox validates an address and returns its canonical mailbox name: the lower-cased
// local@domain.  A bare local part is completed with the policy domain.
func (a *Addressing) ExtractMailbox(address string) (string, error) {
	local, domain, err := ParseEmailAddress(address)
	if err != nil {
		return "", err
	}
	if domain == "" {
		domain = a.Domain
	}
	return strings.ToLower(local + "@" + domain), nil
}

// ShouldAcceptDomain indicates if mail for the specified domain may be delivered.
func (a *Addressing) ShouldAcceptDomain(domain string) bool {
	return strings.EqualFold(strings.TrimSuffix(domain, "."), a.Domain)
}

// MailboxDomain returns the domain part of a canonical mailbox name.
func MailboxDomain(mailbox string) string {
	if i := strings.LastIndexByte(mailbox, '@'); i >= 0 {
		return mailbox[i+1:]
	}
	return ""
}

// ParseEmailAddress splits an unquoted address into local and domain parts.  The local part
// follows the RFC 3696 dot-atom rules; the domain part is optional, but validated when present.
func ParseEmailAddress(address string) (local string, domain string, err error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", "", fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}
	if len(address) > 320 {
		return "", "", fmt.Errorf("%w: exceeds 320 characters", ErrInvalidAddress)
	}
	local = address
	if i := strings.LastIndexByte(address, '@'); i >= 0 {
		local, domain = address[:i], address[i+1:]
		if !ValidateDomainPart(domain) {
			return "", "", fmt.Errorf("%w: domain part %q failed validation", ErrInvalidAddress,
				domain)
		}
	}
	if err := validateLocalPart(local); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return local, domain, nil
}

func validateLocalPart(local string) error {
	switch {
	case local == "":
		return errors.New("local part cannot be empty")
	case len(local) > 64:
		return errors.New("local part must not exceed 64 characters")
	case local[0] == '.':
		return errors.New("local part cannot start with a period")
	case local[len(local)-1] == '.':
		return errors.New("local part cannot end with a period")
	case strings.Contains(local, ".."):
		return errors.New("sequence of periods is not permitted")
	}
	for i := 0; i < len(local); i++ {
		c := local[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9', c == '.':
		case strings.IndexByte(localSpecial, c) >= 0:
		default:
			return fmt.Errorf("character %q not permitted", c)
		}
	}
	return nil
}

// ValidateDomainPart returns true if the domain part complies to RFC 3696 and RFC 1035 label
// rules.
func ValidateDomainPart(domain string) bool {
	domain = strings.TrimSuffix(domain, ".")
	if domain == "" || len(domain) > 255 {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			switch {
			case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			case c == '-', c == '_':
			default:
				return false
			}
		}
	}
	return true
}

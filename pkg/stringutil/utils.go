// Package stringutil contains small string helpers shared across packages.
package stringutil

import (
	"net/mail"
	"strings"
)

// StringAddress renders an address for display.  A nil address yields an empty string, and an
// address without a display name is rendered without angle brackets.
func StringAddress(a *mail.Address) string {
	if a == nil {
		return ""
	}
	if a.Name == "" {
		return a.Address
	}
	return a.String()
}

// StringAddressList converts a list of addresses to a list of strings.
func StringAddressList(addrs []*mail.Address) []string {
	s := make([]string, len(addrs))
	for i, a := range addrs {
		s[i] = StringAddress(a)
	}
	return s
}

// MakePathPrefixer returns a func that prefixes paths with the specified base path.
func MakePathPrefixer(basePath string) func(string) string {
	prefix := strings.Trim(basePath, "/")
	if prefix != "" {
		prefix = "/" + prefix
	}
	return func(path string) string {
		return prefix + path
	}
}

// Truncate returns the first n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

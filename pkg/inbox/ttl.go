package inbox

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTTL indicates a TTL that is not one of the offered options.
var ErrInvalidTTL = errors.New("invalid TTL")

// TTLOption is one of the selectable inbox lifetimes.
type TTLOption struct {
	Name  string
	TTL   time.Duration
	Label string
}

// TTLOptions lists the selectable TTLs in ascending order.
var TTLOptions = []TTLOption{
	{Name: "10m", TTL: 10 * time.Minute, Label: "10 मिनट"},
	{Name: "1h", TTL: time.Hour, Label: "1 घंटा"},
	{Name: "6h", TTL: 6 * time.Hour, Label: "6 घंटे"},
	{Name: "24h", TTL: 24 * time.Hour, Label: "24 घंटे"},
}

// ValidTTL returns nil if ttl is one of TTLOptions.
func ValidTTL(ttl time.Duration) error {
	for _, o := range TTLOptions {
		if o.TTL == ttl {
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidTTL, ttl)
}

// ParseTTL accepts an option name ("10m"), any Go duration string equal to an option ("1h0m0s"),
// or a plain number of milliseconds ("600000").
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	var ttl time.Duration
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		ttl = time.Duration(ms) * time.Millisecond
	} else {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, s)
		}
		ttl = d
	}
	if err := ValidTTL(ttl); err != nil {
		return 0, err
	}
	return ttl, nil
}

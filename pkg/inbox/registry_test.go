package inbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryRejectsOddTTL(t *testing.T) {
	_, err := NewRegistry(90 * time.Minute)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestRegistryOpen(t *testing.T) {
	r, err := NewRegistry(time.Hour)
	require.NoError(t, err)
	created := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return created }

	s, isNew := r.Open("abc@tempmail.dev")
	assert.True(t, isNew)
	assert.Equal(t, State{Address: "abc@tempmail.dev", TTL: time.Hour, Created: created}, s)

	require.NoError(t, r.SetTTL("abc@tempmail.dev", 10*time.Minute))
	s, isNew = r.Open("abc@tempmail.dev")
	assert.False(t, isNew)
	assert.Equal(t, 10*time.Minute, s.TTL, "reopening keeps state")
}

func TestRegistryMissingInbox(t *testing.T) {
	r, err := NewRegistry(time.Hour)
	require.NoError(t, err)

	_, err = r.Get("nobody@tempmail.dev")
	assert.ErrorIs(t, err, ErrNotExist)
	assert.ErrorIs(t, r.SetTTL("nobody@tempmail.dev", time.Hour), ErrNotExist)
	assert.ErrorIs(t, r.Select("nobody@tempmail.dev", "1"), ErrNotExist)
	assert.False(t, r.ClearSelectionIf("nobody@tempmail.dev", "1"))
	assert.False(t, r.Close("nobody@tempmail.dev"))
	_, ok := r.TTL("nobody@tempmail.dev")
	assert.False(t, ok)
}

func TestRegistrySetTTL(t *testing.T) {
	r, err := NewRegistry(time.Hour)
	require.NoError(t, err)
	r.Open("abc@tempmail.dev")

	assert.ErrorIs(t, r.SetTTL("abc@tempmail.dev", 5*time.Minute), ErrInvalidTTL)
	require.NoError(t, r.SetTTL("abc@tempmail.dev", 24*time.Hour))

	ttl, ok := r.TTL("abc@tempmail.dev")
	assert.True(t, ok)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestRegistrySelection(t *testing.T) {
	r, err := NewRegistry(time.Hour)
	require.NoError(t, err)
	r.Open("abc@tempmail.dev")

	require.NoError(t, r.Select("abc@tempmail.dev", "2"))
	assert.False(t, r.ClearSelectionIf("abc@tempmail.dev", "1"))
	s, _ := r.Get("abc@tempmail.dev")
	assert.Equal(t, "2", s.Selected)

	assert.True(t, r.ClearSelectionIf("abc@tempmail.dev", "2"))
	s, _ = r.Get("abc@tempmail.dev")
	assert.Empty(t, s.Selected)

	require.NoError(t, r.Select("abc@tempmail.dev", "3"))
	require.NoError(t, r.ClearSelection("abc@tempmail.dev"))
	s, _ = r.Get("abc@tempmail.dev")
	assert.Empty(t, s.Selected)
}

func TestRegistryClose(t *testing.T) {
	r, err := NewRegistry(time.Hour)
	require.NoError(t, err)
	r.Open("a@tempmail.dev")
	r.Open("b@tempmail.dev")
	assert.ElementsMatch(t, []string{"a@tempmail.dev", "b@tempmail.dev"}, r.Addresses())

	assert.True(t, r.Close("a@tempmail.dev"))
	assert.Equal(t, []string{"b@tempmail.dev"}, r.Addresses())
}

func TestParseTTL(t *testing.T) {
	testCases := []struct {
		input string
		want  time.Duration
	}{
		{"10m", 10 * time.Minute},
		{"1h0m0s", time.Hour},
		{"6h", 6 * time.Hour},
		{"86400000", 24 * time.Hour},
		{" 600000 ", 10 * time.Minute},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseTTL(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	for _, bad := range []string{"", "2h", "forever", "1000"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseTTL(bad)
			assert.ErrorIs(t, err, ErrInvalidTTL)
		})
	}
}

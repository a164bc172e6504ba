package log

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenLevels(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	for level, want := range map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
	} {
		closeLog, err := Open(level, "stderr", true)
		require.NoError(t, err, level)
		closeLog()
		assert.Equal(t, want, zerolog.GlobalLevel(), level)
	}
}

func TestOpenRejectsUnknownLevel(t *testing.T) {
	_, err := Open("verbose", "stderr", false)
	assert.ErrorContains(t, err, "verbose")
}

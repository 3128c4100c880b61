package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for logging:
// - ParseLevel accepts zerolog names in any case and defaults to info
// - ParseLevel rejects unknown names with ErrInvalidLevel
// - New filters records below the configured level
// - NewConsole writes human readable lines
// - OpenFile creates the log file under the user cache directory

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{" WARN ", zerolog.WarnLevel, false},
		{"trace", zerolog.TraceLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"chatty", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("path", "a.txt").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "shown", rec["message"])
	assert.Equal(t, "a.txt", rec["path"])
	assert.Contains(t, rec, "time")

	_, err = New(&buf, "nope")
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestNewConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewConsole(&buf, "debug", true)
	require.NoError(t, err)

	logger.Debug().Int("files", 3).Msg("committing")
	out := buf.String()
	assert.Contains(t, out, "DBG")
	assert.Contains(t, out, "committing")
	assert.Contains(t, out, "files=3")
}

func TestOpenFile(t *testing.T) {
	// Not parallel: replaces userCacheDir
	dir := t.TempDir()
	original := userCacheDir
	userCacheDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userCacheDir = original })

	f, err := OpenFile()
	require.NoError(t, err)
	_, err = f.WriteString("hello\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	path, err := LogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "lasr", "log.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

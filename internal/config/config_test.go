package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoaderDefaults(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)

	opts, err := l.Load()
	require.NoError(t, err)
	require.Equal(t, Options{MinimumPlaybackBufferPercent: 0}, opts)
}

func TestLoaderYAMLFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
subtitles_url: "https://example.com/subs.srt"
is_time_sync_disabled: true
minimum_playback_buffer_percent: 0.5
`), 0o644))

	l, err := NewLoader(WithYAMLFile(path))
	require.NoError(t, err)

	opts, err := l.Load()
	require.NoError(t, err)
	require.Equal(t, "https://example.com/subs.srt", opts.SubtitlesURL)
	require.True(t, opts.IsTimeSyncDisabled)
	require.Equal(t, 0.5, opts.MinimumPlaybackBufferPercent)
}

func TestLoaderEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
protocol_prefix: "file-prefix"
`), 0o644))

	t.Setenv("PLAYCORE_PROTOCOL_PREFIX", "env-prefix")

	l, err := NewLoader(WithYAMLFile(path))
	require.NoError(t, err)

	opts, err := l.Load()
	require.NoError(t, err)
	require.Equal(t, "env-prefix", opts.ProtocolPrefix, "env overrides file")
}

func TestLoaderMinimumPlaybackBufferPercentClamped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
minimum_playback_buffer_percent: 1.5
`), 0o644))

	l, err := NewLoader(WithYAMLFile(path))
	require.NoError(t, err)
	opts, err := l.Load()
	require.NoError(t, err)
	require.Equal(t, 1.0, opts.MinimumPlaybackBufferPercent, "clamped to [0,1]")
}

func TestLoaderReloadPicksUpFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`subtitles_delay: 1s`), 0o644))

	l, err := NewLoader(WithYAMLFile(path))
	require.NoError(t, err)
	opts, err := l.Load()
	require.NoError(t, err)
	require.Equal(t, time.Second, opts.SubtitlesDelay)

	require.NoError(t, os.WriteFile(path, []byte(`subtitles_delay: 3s`), 0o644))
	require.NoError(t, l.Reload())

	opts, err = l.Load()
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, opts.SubtitlesDelay)
}

func TestLoaderCustomEnvPrefix(t *testing.T) {
	t.Setenv("CUSTOM_IS_SUBTITLE_DISABLED", "true")

	l, err := NewLoader(WithEnvPrefix("CUSTOM"))
	require.NoError(t, err)
	opts, err := l.Load()
	require.NoError(t, err)
	require.True(t, opts.IsSubtitleDisabled)
}

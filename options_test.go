package playcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMediaOptionsClamped(t *testing.T) {
	require.Equal(t, 0.0, MediaOptions{MinimumPlaybackBufferPercent: -1}.Clamped().MinimumPlaybackBufferPercent)
	require.Equal(t, 1.0, MediaOptions{MinimumPlaybackBufferPercent: 2}.Clamped().MinimumPlaybackBufferPercent)
	require.Equal(t, 0.5, MediaOptions{MinimumPlaybackBufferPercent: 0.5}.Clamped().MinimumPlaybackBufferPercent)
}

func TestMediaOptionsClampedPreservesOtherFields(t *testing.T) {
	o := MediaOptions{
		SubtitlesURL:           "subs.srt",
		IsTimeSyncDisabled:     true,
		MinimumPlaybackBufferPercent: 3,
	}
	got := o.Clamped()
	require.Equal(t, "subs.srt", got.SubtitlesURL)
	require.True(t, got.IsTimeSyncDisabled)
	require.Equal(t, 1.0, got.MinimumPlaybackBufferPercent)
}

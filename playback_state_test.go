package playcore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlaybackStateString(t *testing.T) {
	cases := map[PlaybackState]string{
		Idle:             "Idle",
		Opening:          "Opening",
		Stop:             "Stop",
		Play:             "Play",
		Pause:            "Pause",
		Closing:          "Closing",
		Changing:         "Changing",
		PlaybackState(99): "Unknown",
	}
	for state, want := range cases {
		require.Equal(t, want, state.String())
	}
}

package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/kolibri-av/playcore/internal/block"
	"github.com/kolibri-av/playcore/internal/clock"
	"github.com/kolibri-av/playcore/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T, hooks Hooks) *State {
	t.Helper()
	buffers := block.NewBufferSet(block.TypeVideo, map[block.MediaType]int{
		block.TypeVideo: 4,
		block.TypeAudio: 4,
	})
	ctl := clock.NewController()
	ctl.Setup(clock.SetupParams{
		Video:             clock.StreamInfo{Present: true, EndTime: 10 * time.Second},
		Audio:             clock.StreamInfo{Present: true, EndTime: 10 * time.Second},
		ContainerSeekable: true,
	})
	return NewState(buffers, ctl, hooks, 10*time.Second)
}

func baseHooks() Hooks {
	return Hooks{
		ActiveTypes:            func() []block.MediaType { return []block.MediaType{block.TypeVideo, block.TypeAudio} },
		MainMediaType:          func() block.MediaType { return block.TypeVideo },
		IsCommandPending:       func() bool { return false },
		IsSeeking:               func() bool { return false },
		SeekBlocksAvailable:     func() bool { return true },
		SeekModeIsNormal:        func() bool { return true },
		IsFluidSeekingDisabled:  func() bool { return false },
		IsTimeSyncDisabled:      func() bool { return false },
		UseParallelRendering:    func() bool { return false },
		MinimumBufferPercent:    func() float64 { return 0 },
		IsPlayingState:          func() bool { return false },
		HasDecodingEnded:        func() bool { return false },
		IsAtEndOfStream:         func() bool { return false },
		SetDecodingEnded:        func(bool) {},
		Renderer: func(block.MediaType) (RendererHooks, bool) {
			return RendererHooks{}, false
		},
	}
}

func TestDecodingTickAppendsBlocksAndSignalsBufferChanged(t *testing.T) {
	hooks := baseHooks()
	var videoCalls int
	hooks.ReceiveNextFrame = func(t block.MediaType) (Frame, bool, error) {
		if t != block.TypeVideo || videoCalls > 0 {
			return Frame{}, false, nil
		}
		videoCalls++
		return Frame{Type: t, StartTime: 0, EndTime: time.Second}, true, nil
	}

	s := newTestState(t, hooks)
	require.NoError(t, s.DecodingTick(context.Background()))

	buf := s.Buffers.Get(block.TypeVideo)
	require.Equal(t, 1, buf.Len())

	select {
	case <-s.bufferChanged:
	default:
		t.Fatal("expected buffer-changed signal after appending a block")
	}
}

func TestDecodingTickMarksEndedAtEOFWithNoFrames(t *testing.T) {
	hooks := baseHooks()
	hooks.ReceiveNextFrame = func(block.MediaType) (Frame, bool, error) { return Frame{}, false, nil }
	hooks.IsAtEndOfStream = func() bool { return true }

	var ended bool
	hooks.SetDecodingEnded = func(v bool) { ended = v }

	s := newTestState(t, hooks)
	require.NoError(t, s.DecodingTick(context.Background()))
	require.True(t, ended)
}

// DecodingTick must feed frame sizes into the per-type bit-rate
// tracker, which publishes DecodingBitrateBytesPerSecond once its
// window elapses (spec §4.4 step 3).
func TestDecodingTickFeedsBitrateTracker(t *testing.T) {
	hooks := baseHooks()
	served := false
	hooks.ReceiveNextFrame = func(t block.MediaType) (Frame, bool, error) {
		if t != block.TypeAudio || served {
			return Frame{}, false, nil
		}
		served = true
		return Frame{Type: t, StartTime: 0, EndTime: time.Second, Size: 4000}, true, nil
	}

	s := newTestState(t, hooks)
	require.NoError(t, s.DecodingTick(context.Background()))

	tr := s.bitrateTrackerFor(block.TypeAudio, time.Now().Add(2*time.Second))
	tr.Observe(0, time.Now().Add(2*time.Second))

	got := testutil.ToFloat64(metrics.DecodingBitrateBytesPerSecond.WithLabelValues("audio"))
	require.Greater(t, got, 0.0, "bit-rate gauge should reflect the observed frame size")
}

func TestReadingTickStopsWhenAborted(t *testing.T) {
	hooks := baseHooks()
	hooks.IsReadAborted = func() bool { return true }
	hooks.IsAtEndOfStream = func() bool { return false }
	hooks.IsLiveStreamFlag = func() bool { return false }
	hooks.IsNetworkStreamFlag = func() bool { return false }
	hooks.TotalBufferBytes = func() int64 { return 0 }
	hooks.HasEnoughPackets = func() bool { return false }

	var readCalls int
	hooks.ReadPacket = func(context.Context) (block.MediaType, error) {
		readCalls++
		return block.TypeVideo, nil
	}

	s := newTestState(t, hooks)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, s.ReadingTick(ctx))
	require.Zero(t, readCalls)
}

func TestRenderingTickPausesClockWhenBufferEmpty(t *testing.T) {
	hooks := baseHooks()
	s := newTestState(t, hooks)

	require.NoError(t, s.RenderingTick(context.Background()))
	require.False(t, s.Clock.IsRunning(clock.TypeVideo))
}

func TestRenderingTickDetectsEndOfPlayback(t *testing.T) {
	hooks := baseHooks()
	hooks.HasDecodingEnded = func() bool { return true }

	var ended bool
	hooks.NotifyMediaEnded = func() { ended = true }

	s := newTestState(t, hooks)
	s.Buffers.Get(block.TypeVideo).Add(block.Block{StartTime: 9 * time.Second, EndTime: 10 * time.Second})
	s.Clock.Update(clock.TypeVideo, 10*time.Second)

	require.NoError(t, s.RenderingTick(context.Background()))
	require.True(t, ended)
}

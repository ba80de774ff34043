package seek

import (
	"context"
	"testing"
	"time"

	"github.com/kolibri-av/playcore/internal/block"
	"github.com/kolibri-av/playcore/internal/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, hooks Hooks) (*Engine, *block.BufferSet, *clock.Controller) {
	t.Helper()
	buffers := block.NewBufferSet(block.TypeVideo, map[block.MediaType]int{block.TypeVideo: 8})
	ctl := clock.NewController()
	ctl.Setup(clock.SetupParams{Video: clock.StreamInfo{Present: true, EndTime: 10 * time.Second}, ContainerSeekable: true})

	if hooks.SetSeekBlocksAvailable == nil {
		hooks.SetSeekBlocksAvailable = func(bool) {}
	}
	if hooks.PauseReadDecode == nil {
		hooks.PauseReadDecode = func() {}
	}
	if hooks.ResumePaused == nil {
		hooks.ResumePaused = func() {}
	}
	return New(buffers, ctl, hooks, zerolog.Nop()), buffers, ctl
}

func TestFastPathSkipsContainerSeek(t *testing.T) {
	var called bool
	hooks := Hooks{
		ContainerSeek: func(context.Context, time.Duration) (block.MediaType, block.Block, error) {
			called = true
			return block.TypeVideo, block.Block{}, nil
		},
	}
	e, buffers, ctl := newTestEngine(t, hooks)
	buffers.Get(block.TypeVideo).Add(block.Block{StartTime: 0, EndTime: 2 * time.Second})

	pos, err := e.Run(context.Background(), Operation{Mode: ModeNormal, Target: time.Second})
	require.NoError(t, err)
	require.Equal(t, time.Second, pos)
	require.False(t, called, "fast path must not touch the container")
	require.Equal(t, time.Second, ctl.Position(clock.TypeVideo))
}

func TestSeekOutsideRangeUsesContainerAndLands(t *testing.T) {
	hooks := Hooks{
		ContainerSeek: func(ctx context.Context, target time.Duration) (block.MediaType, block.Block, error) {
			return block.TypeVideo, block.Block{StartTime: target, EndTime: target + time.Second}, nil
		},
		DecodeAvailable: func(ctx context.Context) int { return 0 },
		ShouldReadMore:  func() bool { return false },
	}
	e, buffers, _ := newTestEngine(t, hooks)

	pos, err := e.Run(context.Background(), Operation{Mode: ModeNormal, Target: 5 * time.Second})
	require.NoError(t, err)
	require.InDelta(t, float64(5*time.Second), float64(pos), float64(time.Second))
	require.Equal(t, 1, buffers.Get(block.TypeVideo).Len())
}

func TestSeekLatchAlwaysSetOnContainerError(t *testing.T) {
	var latchSet bool
	hooks := Hooks{
		ContainerSeek: func(context.Context, time.Duration) (block.MediaType, block.Block, error) {
			return block.TypeNone, block.Block{}, assertErr
		},
		SetSeekBlocksAvailable: func(v bool) { latchSet = v },
	}
	e, _, _ := newTestEngine(t, hooks)

	_, err := e.Run(context.Background(), Operation{Mode: ModeNormal, Target: 5 * time.Second})
	require.Error(t, err)
	require.True(t, latchSet, "latch must be left set even after a container failure")
}

var assertErr = errTest{}

type errTest struct{}

func (errTest) Error() string { return "seek failed" }

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance wall time deterministically instead of
// racing against real sleeps.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }
func (f *fakeClock) advance(d time.Duration) {
	f.t = f.t.Add(d)
}

func withFakeNow(t *testing.T) *fakeClock {
	t.Helper()
	f := &fakeClock{t: time.Unix(0, 0)}
	prev := nowFunc
	nowFunc = f.now
	t.Cleanup(func() { nowFunc = prev })
	return f
}

func TestRealTimeClockPlayAdvancesPosition(t *testing.T) {
	f := withFakeNow(t)
	c := New()
	c.Play()
	f.advance(time.Second)
	require.Equal(t, time.Second, c.Position())
}

func TestRealTimeClockPausedDoesNotAdvance(t *testing.T) {
	f := withFakeNow(t)
	c := New()
	f.advance(time.Second)
	require.Equal(t, time.Duration(0), c.Position(), "stopped clock never advances")
}

func TestRealTimeClockPauseFreezesPosition(t *testing.T) {
	f := withFakeNow(t)
	c := New()
	c.Play()
	f.advance(2 * time.Second)
	c.Pause()
	require.False(t, c.IsRunning())

	f.advance(5 * time.Second)
	require.Equal(t, 2*time.Second, c.Position(), "paused clock is frozen despite elapsed wall time")
}

func TestRealTimeClockSpeedRatio(t *testing.T) {
	f := withFakeNow(t)
	c := New()
	c.SetSpeedRatio(2.0)
	c.Play()
	f.advance(time.Second)
	require.Equal(t, 2*time.Second, c.Position())
}

func TestRealTimeClockSpeedRatioChangeTakesEffectFromNow(t *testing.T) {
	f := withFakeNow(t)
	c := New()
	c.Play()
	f.advance(time.Second) // 1s at 1.0x
	c.SetSpeedRatio(2.0)
	f.advance(time.Second) // 2s at 2.0x
	require.Equal(t, 3*time.Second, c.Position())
}

func TestRealTimeClockUpdateDoesNotChangeRunningState(t *testing.T) {
	withFakeNow(t)
	c := New()
	c.Update(5 * time.Second)
	require.False(t, c.IsRunning())
	require.Equal(t, 5*time.Second, c.Position())

	c.Play()
	c.Update(10 * time.Second)
	require.True(t, c.IsRunning())
	require.Equal(t, 10*time.Second, c.Position())
}

func TestRealTimeClockReset(t *testing.T) {
	f := withFakeNow(t)
	c := New()
	c.Play()
	f.advance(time.Second)
	c.Reset()
	require.False(t, c.IsRunning())
	require.Equal(t, time.Duration(0), c.Position())
}

func TestRealTimeClockCopyStateFromPreservesPositionAndRatioNotRunning(t *testing.T) {
	f := withFakeNow(t)
	src := New()
	src.SetSpeedRatio(1.5)
	src.Play()
	f.advance(4 * time.Second)

	dst := New()
	dst.CopyStateFrom(src)
	require.Equal(t, 6*time.Second, dst.Position())
	require.Equal(t, 1.5, dst.SpeedRatio())
	require.False(t, dst.IsRunning(), "CopyStateFrom never starts the destination clock")
}

func TestControllerSharedClockWhenTimeSyncEnabled(t *testing.T) {
	c := NewController()
	c.Setup(SetupParams{
		Audio:             StreamInfo{Present: true, StartTime: 0},
		Video:             StreamInfo{Present: true, StartTime: 5 * time.Second},
		ContainerSeekable: true,
	})
	require.False(t, c.IsDisconnected())

	c.Update(TypeVideo, 10*time.Second)
	require.Equal(t, c.Position(TypeAudio), c.Position(TypeVideo), "shared clock: updating one moves both")
}

func TestControllerDisconnectedClocksIsolated(t *testing.T) {
	c := NewController()
	c.Setup(SetupParams{
		Audio:              StreamInfo{Present: true, StartTime: 0},
		Video:              StreamInfo{Present: true, StartTime: time.Second},
		IsTimeSyncDisabled: true,
		ContainerSeekable:  true,
	})
	require.True(t, c.IsDisconnected(), "disparate start times + sync disabled => disconnected")

	c.Update(TypeAudio, 2*time.Second)
	c.Update(TypeVideo, 9*time.Second)
	require.NotEqual(t, c.Position(TypeAudio), c.Position(TypeVideo))
	require.Equal(t, 2*time.Second, c.Position(TypeAudio))
}

func TestControllerNotDisconnectedWhenStartTimesClose(t *testing.T) {
	c := NewController()
	c.Setup(SetupParams{
		Audio:              StreamInfo{Present: true, StartTime: 0},
		Video:              StreamInfo{Present: true, StartTime: time.Millisecond},
		IsTimeSyncDisabled: true,
		ContainerSeekable:  true,
	})
	require.False(t, c.IsDisconnected(), "start times within threshold stay connected")
}

func TestControllerReferenceAudioForNonSeekable(t *testing.T) {
	c := NewController()
	c.Setup(SetupParams{
		Audio:             StreamInfo{Present: true},
		Video:             StreamInfo{Present: true},
		ContainerSeekable: false,
	})
	require.Equal(t, TypeAudio, c.Reference())
}

func TestControllerReferenceVideoWhenSeekable(t *testing.T) {
	c := NewController()
	c.Setup(SetupParams{
		Audio:             StreamInfo{Present: true},
		Video:             StreamInfo{Present: true},
		ContainerSeekable: true,
	})
	require.Equal(t, TypeVideo, c.Reference())
}

func TestControllerSetupPreservesPositionAndSpeedAcrossChange(t *testing.T) {
	f := withFakeNow(t)
	c := NewController()
	c.Setup(SetupParams{
		Video:             StreamInfo{Present: true},
		ContainerSeekable: true,
	})
	c.SetSpeedRatio(1.5)
	c.Play(TypeNone)
	f.advance(2 * time.Second)
	posBefore := c.Position(TypeNone)

	// Re-setup, as would happen on "change".
	c.Setup(SetupParams{
		Video:             StreamInfo{Present: true},
		ContainerSeekable: true,
	})
	require.Equal(t, posBefore, c.Position(TypeNone), "position is preserved across re-setup")
	require.Equal(t, 1.5, c.clocks[TypeVideo].SpeedRatio(), "speed ratio is preserved across re-setup")
}

func TestControllerPauseResetTypeNoneAppliesToReference(t *testing.T) {
	f := withFakeNow(t)
	c := NewController()
	c.Setup(SetupParams{Video: StreamInfo{Present: true}, ContainerSeekable: true})
	c.Play(TypeNone)
	f.advance(time.Second)
	c.Pause(TypeNone)
	require.False(t, c.IsRunning(TypeNone))

	c.Reset(TypeNone)
	require.Equal(t, time.Duration(0), c.Position(TypeNone))
}

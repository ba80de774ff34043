package playcore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stubContainer is never actually opened in these
// tests: every case here is refused by the command manager's
// admission rules (spec §4.1) before the direct command body would
// touch the container at all.
type stubContainer struct{}

func (stubContainer) Open(ctx context.Context, uri string, cfg ContainerConfiguration) error {
	return nil
}
func (stubContainer) Dispose() error                          { return nil }
func (stubContainer) Read(ctx context.Context) (MediaType, error) { return MediaTypeNone, nil }
func (stubContainer) Seek(ctx context.Context, target time.Duration) (Frame, error) {
	return Frame{}, nil
}
func (stubContainer) Components() Components     { return nil }
func (stubContainer) SignalAbortReads(bool)       {}
func (stubContainer) IsReadAborted() bool         { return false }
func (stubContainer) IsAtEndOfStream() bool       { return false }
func (stubContainer) IsLiveStream() bool          { return false }
func (stubContainer) IsNetworkStream() bool       { return false }
func (stubContainer) IsStreamSeekable() bool      { return true }

func newTestEngine() *Engine {
	return NewEngine(stubContainer{}, nil)
}

func TestEngineCloseRefusedWhenNotOpen(t *testing.T) {
	e := newTestEngine()
	require.False(t, e.Close(context.Background()))
	require.Equal(t, Idle, e.State())
}

func TestEngineChangeRefusedWhenNotOpen(t *testing.T) {
	e := newTestEngine()
	require.False(t, e.Change(context.Background(), MediaOptions{}))
}

func TestEnginePlayPauseStopRefusedWhenNotOpen(t *testing.T) {
	e := newTestEngine()
	require.False(t, e.Play(context.Background()))
	require.False(t, e.Pause(context.Background()))
	require.False(t, e.Stop(context.Background()))
}

func TestEngineSeekRefusedWhenNotOpen(t *testing.T) {
	e := newTestEngine()
	require.False(t, e.Seek(context.Background(), time.Second))
	require.False(t, e.StepForward(context.Background()))
	require.False(t, e.StepBackward(context.Background()))
}

func TestEngineDisposedRefusesEverything(t *testing.T) {
	e := newTestEngine()
	e.Dispose()
	require.False(t, e.Close(context.Background()))
	require.False(t, e.Change(context.Background(), MediaOptions{}))
	require.False(t, e.Play(context.Background()))
}

func TestEngineDisposeIsIdempotent(t *testing.T) {
	e := newTestEngine()
	e.Dispose()
	require.NotPanics(t, func() { e.Dispose() })
}

func TestEngineInitialStateIsIdle(t *testing.T) {
	e := newTestEngine()
	require.Equal(t, Idle, e.State())
	require.Equal(t, time.Duration(0), e.Position())
}

func TestEngineSetRendererRegistersByType(t *testing.T) {
	e := newTestEngine()
	r := &nopRenderer{}
	e.SetRenderer(MediaTypeVideo, r)
	got, ok := e.rendererFor(MediaTypeVideo)
	require.True(t, ok)
	require.Same(t, r, got)
}

type nopRenderer struct{}

func (*nopRenderer) OnStarting() error                        { return nil }
func (*nopRenderer) OnPlay() error                             { return nil }
func (*nopRenderer) OnPause() error                             { return nil }
func (*nopRenderer) OnStop() error                              { return nil }
func (*nopRenderer) OnClose() error                             { return nil }
func (*nopRenderer) OnSeek() error                              { return nil }
func (*nopRenderer) Render(MediaBlock, time.Duration) error     { return nil }
func (*nopRenderer) Update(time.Duration) error                 { return nil }
func (*nopRenderer) WaitForReadyState() error                   { return nil }

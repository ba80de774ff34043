package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWorkerPauseStopsTicking(t *testing.T) {
	defer goleak.VerifyNone(t)

	var ticks atomic.Int32
	w := New("test", func(ctx context.Context) error {
		ticks.Add(1)
		time.Sleep(time.Millisecond)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		w.Serve(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return ticks.Load() > 0 }, time.Second, time.Millisecond)

	w.Pause()
	time.Sleep(10 * time.Millisecond)
	snapshot := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, snapshot, ticks.Load(), "ticks must stop while paused")

	w.Resume()
	require.Eventually(t, func() bool { return ticks.Load() > snapshot }, time.Second, time.Millisecond)

	cancel()
	<-done
}

func TestSetPauseAllAndResumeAll(t *testing.T) {
	defer goleak.VerifyNone(t)

	var reads, decodes, renders atomic.Int32
	tick := func(counter *atomic.Int32) Tick {
		return func(ctx context.Context) error {
			counter.Add(1)
			time.Sleep(time.Millisecond)
			return nil
		}
	}

	set := NewSet(zerolog.Nop(), tick(&reads), tick(&decodes), tick(&renders))
	ctx := context.Background()
	set.Start(ctx)
	defer set.Dispose(time.Second)

	require.Eventually(t, func() bool {
		return reads.Load() > 0 && decodes.Load() > 0 && renders.Load() > 0
	}, time.Second, time.Millisecond)

	set.PauseAll()
	time.Sleep(10 * time.Millisecond)
	r, d, b := reads.Load(), decodes.Load(), renders.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, r, reads.Load())
	require.Equal(t, d, decodes.Load())
	require.Equal(t, b, renders.Load())

	set.ResumeAll()
	require.Eventually(t, func() bool { return reads.Load() > r }, time.Second, time.Millisecond)
}

func TestSetPauseReadDecodeLeavesRenderingRunning(t *testing.T) {
	defer goleak.VerifyNone(t)

	var reads, renders atomic.Int32
	noop := func(ctx context.Context) error { time.Sleep(time.Millisecond); return nil }
	set := NewSet(zerolog.Nop(),
		func(ctx context.Context) error { reads.Add(1); return noop(ctx) },
		noop,
		func(ctx context.Context) error { renders.Add(1); return noop(ctx) },
	)
	ctx := context.Background()
	set.Start(ctx)
	defer set.Dispose(time.Second)

	require.Eventually(t, func() bool { return renders.Load() > 0 }, time.Second, time.Millisecond)

	set.PauseReadDecode()
	snapshot := reads.Load()
	renderSnapshot := renders.Load()
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, snapshot, reads.Load())
	require.Eventually(t, func() bool { return renders.Load() > renderSnapshot }, time.Second, time.Millisecond)

	set.ResumePaused()
}

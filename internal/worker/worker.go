// Package worker implements the three-thread worker pool of spec §4.2:
// packet reading, frame decoding and block rendering, each running as
// an independently pausable/resumable loop supervised by
// thejerf/suture so a panicking tick restarts the loop instead of
// silently killing the pipeline.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
	"golang.org/x/sync/errgroup"
)

// Tick is one iteration of a worker's loop. It returns an error only
// for conditions the supervisor should treat as a crash (suture will
// restart the worker); ordinary end-of-stream / backpressure
// conditions are signaled by the tick sleeping or blocking, not by
// returning an error.
type Tick func(ctx context.Context) error

// Worker is one pausable, resumable, independently restartable loop.
type Worker struct {
	Name string
	tick Tick

	mu     sync.Mutex
	cond   sync.Cond
	paused bool

	resumed chan struct{}
}

// New creates a Worker that calls tick repeatedly until its context is
// cancelled, honoring Pause/Resume in between ticks.
func New(name string, tick Tick) *Worker {
	w := &Worker{Name: name, tick: tick, resumed: make(chan struct{}, 1)}
	w.cond.L = &w.mu
	return w
}

// Serve implements suture.Service. It blocks until ctx is cancelled,
// calling tick on every iteration while not paused.
func (w *Worker) Serve(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		w.mu.Lock()
		for w.paused && ctx.Err() == nil {
			w.cond.Wait()
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return nil
		}

		if err := w.tick(ctx); err != nil {
			return err
		}
	}
}

// Pause marks the worker paused; it takes effect before the next tick.
// It returns at once and does not wait for an in-flight tick to
// return.
func (w *Worker) Pause() {
	w.mu.Lock()
	w.paused = true
	w.mu.Unlock()
}

// Resume clears the pause flag and wakes the loop if it was waiting.
func (w *Worker) Resume() {
	w.mu.Lock()
	w.paused = false
	w.mu.Unlock()
	w.cond.Broadcast()
}

// IsPaused reports the current pause flag.
func (w *Worker) IsPaused() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paused
}

// Set is the three-worker pipeline: reading, decoding, rendering,
// supervised together so a crash in one doesn't take down the others
// (spec §4.2, §5 concurrency model).
type Set struct {
	sup *suture.Supervisor

	Reading   *Worker
	Decoding  *Worker
	Rendering *Worker

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSet builds a worker set from the three tick functions. It does not
// start anything; call Start to begin supervision.
func NewSet(logger zerolog.Logger, reading, decoding, rendering Tick) *Set {
	sup := suture.New("playcore-pipeline", suture.Spec{
		EventHook: func(ev suture.Event) {
			logger.Warn().Str("event", ev.String()).Msg("pipeline worker event")
		},
	})

	s := &Set{
		sup:       sup,
		Reading:   New("packet-reading", reading),
		Decoding:  New("frame-decoding", decoding),
		Rendering: New("block-rendering", rendering),
	}
	sup.Add(s.Reading)
	sup.Add(s.Decoding)
	sup.Add(s.Rendering)
	return s
}

// Start begins supervising all three workers in the background,
// deriving a child context from ctx so Dispose can stop them
// independently of the caller's context lifetime.
func (s *Set) Start(ctx context.Context) {
	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = s.sup.ServeBackground(childCtx)
}

// PauseAll pauses all three workers (spec §4.1: direct commands pause
// the full worker set before running), fanning the three independent
// pause calls out concurrently and waiting for all three calls to
// return; like Pause, it does not wait for in-flight ticks.
func (s *Set) PauseAll() {
	var g errgroup.Group
	g.Go(func() error { s.Reading.Pause(); return nil })
	g.Go(func() error { s.Decoding.Pause(); return nil })
	g.Go(func() error { s.Rendering.Pause(); return nil })
	_ = g.Wait()
}

// ResumeAll resumes all three workers, same bulk wait=true fan-out as
// PauseAll.
func (s *Set) ResumeAll() {
	var g errgroup.Group
	g.Go(func() error { s.Reading.Resume(); return nil })
	g.Go(func() error { s.Decoding.Resume(); return nil })
	g.Go(func() error { s.Rendering.Resume(); return nil })
	_ = g.Wait()
}

// PauseReadDecode pauses only reading and decoding, used by the seek
// engine while the block-rendering worker drains buffered blocks to
// its seek target (spec §4.6).
func (s *Set) PauseReadDecode() {
	s.Reading.Pause()
	s.Decoding.Pause()
}

// ResumePaused resumes any worker currently paused, used after a seek
// completes.
func (s *Set) ResumePaused() {
	s.ResumeAll()
}

// Dispose stops supervision and waits (up to timeout) for the workers
// to exit.
func (s *Set) Dispose(timeout time.Duration) {
	if s.cancel == nil {
		return
	}
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-s.done:
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})
	_ = g.Wait()
}

package playcore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kolibri-av/playcore/internal/block"
	"github.com/kolibri-av/playcore/internal/clock"
	"github.com/kolibri-av/playcore/internal/command"
	"github.com/kolibri-av/playcore/internal/pipeline"
	"github.com/kolibri-av/playcore/internal/seek"
	"github.com/kolibri-av/playcore/internal/worker"
	"github.com/rs/zerolog"
)

// defaultBlockBufferCapacity bounds each media type's block.Buffer,
// used uniformly for video/audio/subtitle until a component reports
// otherwise (spec §6 Container interface has no such signal today).
const defaultBlockBufferCapacity = 64

const workerDisposeTimeout = 3 * time.Second

// Engine is the playback control core of spec §2/§4: the owner of the
// command manager, worker set, pipeline state, seek engine and timing
// controller, presenting the public operation surface of spec §4.1's
// Public Contract table.
//
// Per the "cyclic graphs" design note (spec §9), Engine is the sole
// owner of its command.Manager, pipeline.State and seek.Engine; those
// packages never import this one. They reach back into Engine
// exclusively through the Hooks closures built in engine_hooks.go, so
// there is no literal back-pointer and no import cycle.
type Engine struct {
	connector Connector
	log       zerolog.Logger

	mu        sync.RWMutex
	state     PlaybackState
	options   MediaOptions
	uri       string
	renderers map[MediaType]Renderer
	lastPos   time.Duration

	container Container
	buffers   *block.BufferSet
	clockCtl  *clock.Controller

	cmd           *command.Manager
	workers       *worker.Set
	pipelineState *pipeline.State
	seekEngine    *seek.Engine

	decodingEnded       atomic.Bool
	seekBlocksAvailable atomic.Bool
	seekMode            atomic.Int32
	disposed            atomic.Bool
}

// NewEngine builds an Engine around container, notifying connector of
// lifecycle events. connector may be nil, in which case notifications
// are discarded.
func NewEngine(container Container, connector Connector) *Engine {
	if connector == nil {
		connector = NopConnector{}
	}
	e := &Engine{
		connector: connector,
		container: container,
		clockCtl:  clock.NewController(),
		renderers: make(map[MediaType]Renderer),
		state:     Idle,
	}
	// Forward every log event written through e.log to the connector
	// (spec §6 on_message_logged), in addition to wherever the base
	// logger writes (console, file, ...).
	e.log = log.Hook(zerolog.HookFunc(func(ev *zerolog.Event, level zerolog.Level, msg string) {
		if msg != "" {
			connector.OnMessageLogged(msg)
		}
	}))
	e.seekBlocksAvailable.Store(true)
	e.cmd = command.New(e.newCommandHooks(), e.log)
	return e
}

// Run starts the command manager's background worker. Must be called
// once before any operation reaches the engine.
func (e *Engine) Run(ctx context.Context) {
	e.cmd.Run(ctx)
}

// Dispose tears the engine down: stops the command manager, the
// worker set (if one is running) and disposes the container. Safe to
// call multiple times.
func (e *Engine) Dispose() {
	if e.disposed.Swap(true) {
		return
	}
	e.cmd.Dispose()

	e.mu.Lock()
	workers := e.workers
	e.workers = nil
	container := e.container
	e.mu.Unlock()

	if workers != nil {
		workers.Dispose(workerDisposeTimeout)
	}
	if container != nil {
		_ = container.Dispose()
	}
}

// SetRenderer registers the renderer driving media type t. Renderers
// should only be swapped while no media is open, or while a direct
// command holds the slot (workers paused), to avoid a data race with
// the rendering worker's own renderer lookup.
func (e *Engine) SetRenderer(t MediaType, r Renderer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderers[t] = r
}

// --- public operations (spec §4.1 Public Contract) ---

func (e *Engine) Open(ctx context.Context, uri string, opts MediaOptions) bool {
	e.mu.Lock()
	e.options = opts.Clamped()
	e.mu.Unlock()
	return e.cmd.Open(ctx, uri)
}

func (e *Engine) Close(ctx context.Context) bool { return e.cmd.Close(ctx) }

func (e *Engine) Change(ctx context.Context, opts MediaOptions) bool {
	e.mu.Lock()
	e.options = opts.Clamped()
	e.mu.Unlock()
	return e.cmd.Change(ctx)
}

func (e *Engine) Play(ctx context.Context) bool  { return e.cmd.Play(ctx) }
func (e *Engine) Pause(ctx context.Context) bool { return e.cmd.Pause(ctx) }
func (e *Engine) Stop(ctx context.Context) bool  { return e.cmd.Stop(ctx) }

func (e *Engine) Seek(ctx context.Context, target time.Duration) bool {
	return e.cmd.Seek(ctx, target)
}
func (e *Engine) StepForward(ctx context.Context) bool  { return e.cmd.StepForward(ctx) }
func (e *Engine) StepBackward(ctx context.Context) bool { return e.cmd.StepBackward(ctx) }

// State reports the engine's current observable playback state.
func (e *Engine) State() PlaybackState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Position reports the reference clock's current position.
func (e *Engine) Position() time.Duration {
	return e.clockCtl.Position(clock.TypeNone)
}

// Properties is a point-in-time snapshot of observable engine state,
// useful for UIs that poll rather than subscribe to the Connector.
type Properties struct {
	State     PlaybackState
	Position  time.Duration
	Duration  time.Duration
	IsSeeking bool
	IsOpening bool
	IsClosing bool
	IsChanging bool
}

func (e *Engine) Properties() Properties {
	return Properties{
		State:      e.State(),
		Position:   e.Position(),
		Duration:   e.clockCtl.Duration(clock.TypeNone),
		IsSeeking:  e.cmd.IsSeeking(),
		IsOpening:  e.cmd.IsOpening(),
		IsClosing:  e.cmd.IsClosing(),
		IsChanging: e.cmd.IsChanging(),
	}
}

func (e *Engine) setState(s PlaybackState) {
	e.mu.Lock()
	old := e.state
	e.state = s
	e.mu.Unlock()
	if old != s {
		e.connector.OnMediaStateChanged(old, s)
	}
}

func (e *Engine) optionsSnapshot() MediaOptions {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.options
}

func (e *Engine) activeRenderers() map[MediaType]Renderer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[MediaType]Renderer, len(e.renderers))
	for t, r := range e.renderers {
		out[t] = r
	}
	return out
}

func (e *Engine) rendererFor(t MediaType) (Renderer, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.renderers[t]
	return r, ok
}

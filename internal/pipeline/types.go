// Package pipeline implements the three worker cycles of spec §4.3-4.5:
// packet reading, frame decoding, and block rendering. Each is exposed
// as a worker.Tick closure built by State so the engine can hand them
// straight to worker.NewSet.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/kolibri-av/playcore/internal/block"
	"github.com/kolibri-av/playcore/internal/clock"
	"github.com/kolibri-av/playcore/internal/metrics"
)

// Frame is one decoded unit handed back by the container for a single
// component, before it becomes a block.Block in a buffer.
type Frame struct {
	Type      block.MediaType
	StartTime time.Duration
	EndTime   time.Duration
	Payload   any
	Size      int
}

// QueueStats mirrors the container's on_packet_queue_changed payload
// (spec §6 Container interface).
type QueueStats struct {
	Length         int
	Count          int
	CountThreshold int
	Duration       time.Duration
}

// RendererHooks is the subset of playcore.Renderer the rendering worker
// drives directly, expressed without importing the root package.
type RendererHooks struct {
	OnStarting func() error
	Render     func(blk block.Block, position time.Duration) error
	Update     func(position time.Duration) error
}

// Hooks are the callbacks State uses to reach the container, the
// renderer map and the engine's notification surface, wired up by the
// owning engine at construction time.
type Hooks struct {
	// Container surface (spec §6).
	ReadPacket          func(ctx context.Context) (block.MediaType, error)
	SignalAbortReads    func(immediate bool)
	IsReadAborted       func() bool
	IsAtEndOfStream     func() bool
	IsLiveStreamFlag    func() bool
	IsNetworkStreamFlag func() bool
	TotalBufferBytes    func() int64

	ReceiveNextFrame func(t block.MediaType) (Frame, bool, error)
	BufferLength     func(t block.MediaType) int
	HasEnoughPackets func() bool
	MainMediaType    func() block.MediaType
	ActiveTypes      func() []block.MediaType

	// Renderer surface, one set of hooks per active media type.
	Renderer func(t block.MediaType) (RendererHooks, bool)

	// Preloaded subtitle lookup, consulted in preference to the
	// subtitle block buffer when present (spec §4.5 step 5).
	SubtitleAt func(position time.Duration) (block.Block, bool)

	// Command/seek coordination.
	IsCommandPending    func() bool
	IsSeeking           func() bool
	SeekBlocksAvailable func() bool
	UseParallelRendering func() bool
	IsFluidSeekingDisabled func() bool
	SeekModeIsNormal    func() bool
	IsTimeSyncDisabled  func() bool
	MinimumBufferPercent func() float64
	IsPlayingState      func() bool

	// Notifications.
	NotifyBufferingStarted func()
	NotifyBufferingEnded   func()
	NotifyMediaEnded       func()
	ReportPosition         func(pos time.Duration)
	NotifyBufferChanged    func(QueueStats)

	// Decoding-ended flag, set by the decoding worker and read by the
	// rendering worker for end-of-playback detection (spec Testable
	// Property 7).
	SetDecodingEnded func(bool)
	HasDecodingEnded func() bool
}

// State is the shared pipeline state the three tick functions close
// over: the per-type block buffers, the reference clock controller, and
// a buffer-changed signal used by the reading worker's backoff wait.
type State struct {
	Buffers *block.BufferSet
	Clock   *clock.Controller
	Hooks   Hooks

	mu                 sync.Mutex
	bufferChanged      chan struct{}
	syncBuffering      bool
	lastRenderTime     map[block.MediaType]time.Duration
	lastRenderedIndex  map[block.MediaType]uint64
	playbackEnd        time.Duration
	initialized        bool
	seekBlocksLatchSet bool

	bitrateMu       sync.Mutex
	bitrateTrackers map[block.MediaType]*metrics.BitrateTracker
}

// NewState wires buffers, a clock controller and the container/renderer
// hooks into a pipeline State.
func NewState(buffers *block.BufferSet, ctl *clock.Controller, hooks Hooks, playbackEnd time.Duration) *State {
	return &State{
		Buffers:           buffers,
		Clock:             ctl,
		Hooks:             hooks,
		bufferChanged:     make(chan struct{}, 1),
		lastRenderTime:    make(map[block.MediaType]time.Duration),
		lastRenderedIndex: make(map[block.MediaType]uint64),
		playbackEnd:       playbackEnd,
		bitrateTrackers:   make(map[block.MediaType]*metrics.BitrateTracker),
	}
}

// SignalBufferChanged wakes the reading worker's backoff wait. Called
// by the decoding worker whenever it drains a packet queue.
func (s *State) SignalBufferChanged() {
	select {
	case s.bufferChanged <- struct{}{}:
	default:
	}
}

// IsSyncBuffering reports whether the rendering worker currently has
// the clock paused to let the reader catch up (spec glossary
// Sync-buffering).
func (s *State) IsSyncBuffering() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncBuffering
}

package playcore

import (
	"context"
	"errors"
	"time"

	"github.com/kolibri-av/playcore/internal/block"
	"github.com/kolibri-av/playcore/internal/clock"
	"github.com/kolibri-av/playcore/internal/command"
	"github.com/kolibri-av/playcore/internal/metrics"
	"github.com/kolibri-av/playcore/internal/pipeline"
	"github.com/kolibri-av/playcore/internal/seek"
)

var errUnsupportedStreamInput = errors.New("playcore: stream-object input is not supported by this container")

// newCommandHooks wires the command manager's callbacks to this
// Engine (spec §4.1).
func (e *Engine) newCommandHooks() command.Hooks {
	return command.Hooks{
		PauseClock:    func() { e.clockCtl.Pause(clock.TypeNone) },
		PauseWorkers:  e.pauseWorkers,
		ResumeWorkers: e.resumeWorkers,
		AbortReads:    func(immediate bool) { e.container.SignalAbortReads(immediate) },

		OpenURI: e.doOpen,
		OpenStream: func(ctx context.Context, stream any) error {
			return &Error{Kind: KindOpenFailed, Err: errUnsupportedStreamInput}
		},
		Close:  e.doClose,
		Change: e.doChange,

		CanPlay: func() bool {
			if e.container == nil {
				return false
			}
			if e.decodingEnded.Load() && e.container.IsStreamSeekable() && !e.container.IsLiveStream() {
				return false
			}
			return true
		},
		CanPause: func() bool {
			return e.container != nil && !e.container.IsLiveStream()
		},

		DoPlay: func() {
			e.clockCtl.Play(clock.TypeNone)
			e.setState(Play)
			e.forEachRenderer(func(r Renderer) { _ = r.OnPlay() })
		},
		DoPause: func() {
			e.clockCtl.Pause(clock.TypeNone)
			e.setState(Pause)
			e.forEachRenderer(func(r Renderer) { _ = r.OnPause() })
		},
		DoStop: func(ctx context.Context) error {
			_, err := e.runSeek(ctx, command.SeekOp{Mode: command.SeekModeStop})
			e.clockCtl.Reset(clock.TypeNone)
			e.setState(Stop)
			e.forEachRenderer(func(r Renderer) { _ = r.OnStop() })
			return err
		},

		Seek: func(ctx context.Context, op command.SeekOp) error {
			_, err := e.runSeek(ctx, op)
			return err
		},

		IsClockRunning: func() bool { return e.clockCtl.IsRunning(clock.TypeNone) },
		ResumePlayback: func() {
			e.clockCtl.Play(clock.TypeNone)
			e.setState(Play)
		},

		NotifySeekingStarted: e.connector.OnSeekingStarted,
		NotifySeekingEnded:   e.connector.OnSeekingEnded,
		NotifyMediaFailed:    e.connector.OnMediaFailed,
		SetState:             func(int) {},
	}
}

// runSeek converts a command.SeekOp into a seek.Operation, runs it
// through the seek engine and records outcome metrics. It first stores
// op's mode as the engine's current-seek-mode marker, used by the
// pipeline's fluid vs. precision seeking decision; the marker keeps
// that value until the next seek.
func (e *Engine) runSeek(ctx context.Context, op command.SeekOp) (time.Duration, error) {
	e.seekMode.Store(int32(op.Mode))
	defer e.forEachRenderer(func(r Renderer) { _ = r.OnSeek() })

	pos, err := e.seekEngine.Run(ctx, seek.Operation{Mode: seek.Mode(op.Mode), Target: op.Target})

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.SeeksTotal.WithLabelValues(op.Mode.String(), outcome).Inc()
	return pos, err
}

func (e *Engine) pauseWorkers() {
	e.mu.RLock()
	w := e.workers
	e.mu.RUnlock()
	if w != nil {
		w.PauseAll()
	}
}

func (e *Engine) resumeWorkers() {
	e.mu.RLock()
	w := e.workers
	e.mu.RUnlock()
	if w != nil {
		w.ResumeAll()
	}
}

func (e *Engine) pauseReadDecodeWorkers() {
	e.mu.RLock()
	w := e.workers
	e.mu.RUnlock()
	if w != nil {
		w.PauseReadDecode()
	}
}

func (e *Engine) forEachRenderer(fn func(Renderer)) {
	for _, r := range e.activeRenderers() {
		fn(r)
	}
}

// newPipelineHooks wires the three worker ticks to the container,
// renderer map, clock/seek coordination state and notification
// surface (spec §4.3-§4.5).
func (e *Engine) newPipelineHooks() pipeline.Hooks {
	components := e.container.Components()
	return pipeline.Hooks{
		ReadPacket: func(ctx context.Context) (block.MediaType, error) {
			t, err := e.container.Read(ctx)
			if err == nil && t != MediaTypeNone {
				e.connector.OnPacketRead(t)
			}
			return internalMediaType(t), err
		},
		SignalAbortReads: e.container.SignalAbortReads,
		IsReadAborted:    e.container.IsReadAborted,
		IsAtEndOfStream:  e.container.IsAtEndOfStream,
		IsLiveStreamFlag: e.container.IsLiveStream,
		IsNetworkStreamFlag: e.container.IsNetworkStream,
		// The Container interface doesn't surface cumulative bytes
		// read, so this always reports 0. That only matters when
		// IsNetworkStreamFlag is true: a network stream then always
		// counts as under the byte limit, and the reading worker keeps
		// reading without consulting has_enough_packets.
		TotalBufferBytes: func() int64 { return 0 },

		ReceiveNextFrame: func(t block.MediaType) (pipeline.Frame, bool, error) {
			comp := components.Component(publicMediaType(t))
			if comp == nil {
				return pipeline.Frame{}, false, nil
			}
			frame, ok, err := comp.ReceiveNextFrame()
			if err != nil || !ok {
				return pipeline.Frame{}, false, err
			}
			return pipeline.Frame{Type: t, StartTime: frame.StartTime, EndTime: frame.EndTime, Payload: frame.Payload, Size: frame.Size}, true, nil
		},
		BufferLength: func(t block.MediaType) int {
			comp := components.Component(publicMediaType(t))
			if comp == nil {
				return 0
			}
			return comp.BufferLength()
		},
		HasEnoughPackets: components.HasEnoughPackets,
		MainMediaType:    func() block.MediaType { return internalMediaType(components.MainMediaType()) },
		ActiveTypes: func() []block.MediaType {
			e.mu.RLock()
			defer e.mu.RUnlock()
			if e.buffers == nil {
				return nil
			}
			return e.buffers.Types()
		},

		Renderer: func(t block.MediaType) (pipeline.RendererHooks, bool) {
			r, ok := e.rendererFor(publicMediaType(t))
			if !ok {
				return pipeline.RendererHooks{}, false
			}
			return pipeline.RendererHooks{
				OnStarting: r.OnStarting,
				Render: func(blk block.Block, position time.Duration) error {
					return r.Render(toPublicBlock(blk), position)
				},
				Update: r.Update,
			}, true
		},
		SubtitleAt: func(position time.Duration) (block.Block, bool) { return block.Block{}, false },

		IsCommandPending:       e.cmd.IsDirectInProgress,
		IsSeeking:               e.cmd.IsSeeking,
		SeekBlocksAvailable:     e.seekBlocksAvailable.Load,
		UseParallelRendering:    func() bool { return e.optionsSnapshot().UseParallelRendering },
		IsFluidSeekingDisabled:  func() bool { return e.optionsSnapshot().IsFluidSeekingDisabled },
		SeekModeIsNormal:        func() bool { return command.SeekMode(e.seekMode.Load()) == command.SeekModeNormal },
		IsTimeSyncDisabled:      func() bool { return e.optionsSnapshot().IsTimeSyncDisabled },
		MinimumBufferPercent:    func() float64 { return e.optionsSnapshot().MinimumPlaybackBufferPercent },
		IsPlayingState:          func() bool { return e.State() == Play },

		NotifyBufferingStarted: e.connector.OnBufferingStarted,
		NotifyBufferingEnded:   e.connector.OnBufferingEnded,
		NotifyMediaEnded: func() {
			metrics.MediaEndedTotal.Inc()
			e.connector.OnMediaEnded()
		},
		ReportPosition:      e.reportPosition,
		NotifyBufferChanged: func(pipeline.QueueStats) {},

		SetDecodingEnded: e.decodingEnded.Store,
		HasDecodingEnded: e.decodingEnded.Load,
	}
}

func (e *Engine) reportPosition(pos time.Duration) {
	e.mu.Lock()
	old := e.lastPos
	e.lastPos = pos
	e.mu.Unlock()
	if old != pos {
		e.connector.OnPositionChanged(old, pos)
	}
}

// newSeekHooks wires the seek engine to the container, worker set and
// renderer map (spec §4.6).
func (e *Engine) newSeekHooks() seek.Hooks {
	components := e.container.Components()
	return seek.Hooks{
		PauseReadDecode: e.pauseReadDecodeWorkers,
		ResumePaused:    e.resumeWorkers,

		ContainerSeek: func(ctx context.Context, target time.Duration) (block.MediaType, block.Block, error) {
			frame, err := e.container.Seek(ctx, target)
			if err != nil {
				return block.TypeNone, block.Block{}, err
			}
			t := internalMediaType(frame.Type)
			return t, block.Block{Type: t, StartTime: frame.StartTime, EndTime: frame.EndTime, Payload: frame.Payload}, nil
		},
		DecodeAvailable: func(ctx context.Context) int { return e.decodeAvailable(components) },

		ShouldReadMore: func() bool { return !e.container.IsAtEndOfStream() && !e.container.IsReadAborted() },
		ReadOnePacket:  func(ctx context.Context) error { _, err := e.container.Read(ctx); return err },

		InvalidateRenderers:    func() { e.forEachRenderer(func(r Renderer) { _ = r.OnSeek() }) },
		SetSeekBlocksAvailable: e.seekBlocksAvailable.Store,

		PlaybackRangeStart: func() time.Duration { return e.clockCtl.StartTime(clock.TypeNone) },
		PlaybackRangeEnd:   func() time.Duration { return e.clockCtl.EndTime(clock.TypeNone) },
	}
}

// decodeAvailable drains every currently-available decoded frame from
// every active component into its buffer, used by the seek engine's
// redecode loop (spec §4.6 step 6) which needs many frames pulled
// quickly rather than one per worker tick.
func (e *Engine) decodeAvailable(components Components) int {
	e.mu.RLock()
	buffers := e.buffers
	e.mu.RUnlock()
	if buffers == nil {
		return 0
	}

	appended := 0
	for _, t := range buffers.Types() {
		buf := buffers.Get(t)
		comp := components.Component(publicMediaType(t))
		if buf == nil || comp == nil {
			continue
		}
		for !buf.IsFull() {
			frame, ok, err := comp.ReceiveNextFrame()
			if err != nil || !ok {
				break
			}
			buf.Add(block.Block{Type: t, StartTime: frame.StartTime, EndTime: frame.EndTime, Payload: frame.Payload})
			appended++
		}
	}
	return appended
}

// onQueueChanged builds the per-component packet-queue-changed
// callback: it feeds the Prometheus gauges and wakes the reading
// worker's buffer-changed backoff wait.
func (e *Engine) onQueueChanged(t MediaType) func(PacketQueueStats) {
	label := t.String()
	return func(stats PacketQueueStats) {
		metrics.PacketQueueLength.WithLabelValues(label).Set(float64(stats.Length))
		metrics.PacketQueueCount.WithLabelValues(label).Set(float64(stats.Count))
		e.mu.RLock()
		state := e.pipelineState
		e.mu.RUnlock()
		if state != nil {
			state.SignalBufferChanged()
		}
	}
}

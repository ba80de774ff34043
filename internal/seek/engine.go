// Package seek implements the Seek Engine of spec §4.6: computing an
// effective seek target per mode, a fast path when the target is
// already buffered, and the backward-skewed container-seek-and-redecode
// path otherwise. It is invoked exclusively by the command worker
// (never by the decoding/rendering workers).
package seek

import (
	"context"
	"time"

	"github.com/kolibri-av/playcore/internal/block"
	"github.com/kolibri-av/playcore/internal/clock"
	"github.com/rs/zerolog"
)

// Mode mirrors command.SeekMode, duplicated so this package doesn't
// need to import internal/command for one enum.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeStop
	ModeStepForward
	ModeStepBackward
)

// Operation is one seek request as the engine sees it.
type Operation struct {
	Mode   Mode
	Target time.Duration
}

// Hooks are the container/worker/renderer callbacks the engine drives.
// Wired up by the owning engine, mirroring internal/command.Hooks and
// internal/pipeline.Hooks so the package stays free of import cycles.
type Hooks struct {
	PauseReadDecode func()
	ResumePaused    func()

	ClearQueuedPackets func()
	FlushDecoders      func()

	// ContainerSeek asks the container to seek to target and returns
	// the first decoded frame landed after the seek (spec §6 Container
	// interface: seek(target) → first_frame).
	ContainerSeek func(ctx context.Context, target time.Duration) (block.MediaType, block.Block, error)

	// DecodeAvailable pulls every queued frame currently available from
	// every component into its block buffer (used during re-decode,
	// spec §4.6 step 6); it returns the number of blocks appended.
	DecodeAvailable func(ctx context.Context) int

	ShouldReadMore func() bool
	ReadOnePacket  func(ctx context.Context) error

	InvalidateRenderers func()

	SetSeekBlocksAvailable func(bool)

	PlaybackRangeStart func() time.Duration
	PlaybackRangeEnd   func() time.Duration
}

// Engine is the Seek Engine of spec §4.6.
type Engine struct {
	buffers *block.BufferSet
	clk     *clock.Controller
	hooks   Hooks
	log     zerolog.Logger
}

// New builds an Engine over the given buffers and clock controller.
func New(buffers *block.BufferSet, clk *clock.Controller, hooks Hooks, log zerolog.Logger) *Engine {
	return &Engine{buffers: buffers, clk: clk, hooks: hooks, log: log}
}

// Run performs one seek operation to completion, returning the
// best-effort landed position. It never panics on container failure:
// errors are logged and the seek-blocks-available latch is always left
// set on return, so the rendering worker can never deadlock waiting on
// it (spec Testable Property 5).
func (e *Engine) Run(ctx context.Context, op Operation) (time.Duration, error) {
	defer e.hooks.SetSeekBlocksAvailable(true)

	main := e.buffers.Main()
	mainBuf := e.buffers.Get(main)

	target := e.effectiveTarget(op, mainBuf)

	if mainBuf != nil && mainBuf.IsInRange(target) {
		e.clk.Update(clock.MediaType(main), target)
		return target, nil
	}

	e.hooks.SetSeekBlocksAvailable(false)
	e.hooks.PauseReadDecode()
	defer e.hooks.ResumePaused()

	if e.hooks.ClearQueuedPackets != nil {
		e.hooks.ClearQueuedPackets()
	}
	if e.hooks.FlushDecoders != nil {
		e.hooks.FlushDecoders()
	}

	adjusted := e.backwardSkew(target, mainBuf)

	firstType, firstBlock, err := e.hooks.ContainerSeek(ctx, adjusted)
	if err != nil {
		e.log.Warn().Err(err).Msg("seek: container seek failed, landing best-effort")
		result := e.clampResult(target, mainBuf)
		e.clk.Update(clock.MediaType(main), result)
		return result, err
	}

	e.buffers.ClearAll()
	if e.hooks.InvalidateRenderers != nil {
		e.hooks.InvalidateRenderers()
	}
	if buf := e.buffers.Get(firstType); buf != nil {
		buf.Add(firstBlock)
	}

	landed := e.redecodeUntilLanded(ctx, op, target, mainBuf)
	if landed {
		return target, nil
	}

	e.continueUntilCoveredOrStarved(ctx, mainBuf, target)

	result := e.clampResult(target, mainBuf)
	e.clk.Update(clock.MediaType(main), result)
	return result, nil
}

func (e *Engine) effectiveTarget(op Operation, mainBuf *block.Buffer) time.Duration {
	switch op.Mode {
	case ModeStop:
		if e.hooks.PlaybackRangeStart != nil {
			return e.hooks.PlaybackRangeStart()
		}
		return 0
	case ModeStepForward, ModeStepBackward:
		return e.stepTarget(op.Mode, mainBuf)
	default:
		return op.Target
	}
}

func (e *Engine) stepTarget(mode Mode, mainBuf *block.Buffer) time.Duration {
	if mainBuf == nil {
		return 500 * time.Millisecond
	}
	current := e.clk.Position(clock.MediaType(mainBuf.Type()))
	prev, cur, next, hasPrev, hasCur, hasNext := mainBuf.Neighbors(current)

	if mode == ModeStepForward && hasNext {
		return next.StartTime
	}
	if mode == ModeStepBackward && hasPrev {
		return prev.StartTime
	}

	avg, ok := mainBuf.AverageBlockDuration()
	if !ok {
		avg = 500 * time.Millisecond
	}
	step := time.Duration(1.5 * float64(avg))
	if mode == ModeStepForward {
		if hasCur {
			return cur.StartTime + step
		}
		return current + step
	}
	if hasCur {
		return cur.StartTime - step
	}
	return current - step
}

// backwardSkew implements spec §4.6 step 4: for a monotonic main
// buffer, and a non-origin target, subtract half a buffer's worth of
// duration so re-decoding lands the target near the middle of the
// buffer, leaving room to scrub in either direction.
func (e *Engine) backwardSkew(target time.Duration, mainBuf *block.Buffer) time.Duration {
	if mainBuf == nil || target == 0 || !mainBuf.IsMonotonic() {
		return target
	}
	monotonic, ok := mainBuf.MonotonicDuration()
	if !ok {
		return target
	}
	skew := monotonic * time.Duration(mainBuf.Capacity()/2)
	adjusted := target - skew
	if adjusted < 0 {
		adjusted = 0
	}
	return adjusted
}

// redecodeUntilLanded implements spec §4.6 step 6: repeatedly decode
// every queued frame from every component until buffers are full or the
// context is cancelled, checking after every round whether the main
// block for the requested target has become available.
func (e *Engine) redecodeUntilLanded(ctx context.Context, op Operation, target time.Duration, mainBuf *block.Buffer) bool {
	for {
		if ctx.Err() != nil {
			return false
		}

		appended := 0
		if e.hooks.DecodeAvailable != nil {
			appended = e.hooks.DecodeAvailable(ctx)
		}

		if mainBuf != nil && mainBuf.IsInRange(target) {
			e.landOn(op, target, mainBuf)
			return true
		}
		if appended == 0 {
			return false
		}
	}
}

func (e *Engine) landOn(op Operation, target time.Duration, mainBuf *block.Buffer) {
	main := mainBuf.Type()
	switch op.Mode {
	case ModeStepForward, ModeStepBackward:
		if blk, ok := mainBuf.BlockAt(target); ok {
			e.clk.Update(clock.MediaType(main), blk.StartTime)
		} else {
			e.clk.Update(clock.MediaType(main), target)
		}
	default:
		e.clk.Update(clock.MediaType(main), target)
	}
	e.hooks.SetSeekBlocksAvailable(true)
}

// continueUntilCoveredOrStarved implements spec §4.6 step 7: keep
// reading packets and decoding until the main buffer covers the target
// or the container reports it has no more packets to offer.
func (e *Engine) continueUntilCoveredOrStarved(ctx context.Context, mainBuf *block.Buffer, target time.Duration) {
	for {
		if ctx.Err() != nil {
			return
		}
		if mainBuf != nil && mainBuf.IsInRange(target) {
			return
		}
		if e.hooks.ShouldReadMore != nil && !e.hooks.ShouldReadMore() {
			return
		}
		if e.hooks.ReadOnePacket != nil {
			if err := e.hooks.ReadOnePacket(ctx); err != nil {
				return
			}
		}
		if e.hooks.DecodeAvailable != nil {
			e.hooks.DecodeAvailable(ctx)
		}
	}
}

// clampResult implements spec §4.6 step 8.
func (e *Engine) clampResult(target time.Duration, mainBuf *block.Buffer) time.Duration {
	if mainBuf == nil || mainBuf.Len() == 0 {
		return target
	}
	start, hasStart := mainBuf.RangeStartTime()
	end, hasEnd := mainBuf.RangeEndTime()
	if !hasStart || !hasEnd {
		return target
	}
	if target < start {
		return start
	}
	if target > end {
		return end
	}
	return target
}

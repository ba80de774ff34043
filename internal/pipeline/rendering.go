package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/kolibri-av/playcore/internal/block"
	"github.com/kolibri-av/playcore/internal/clock"
)

const seekBlockWaitStep = 5 * time.Millisecond

// RenderingTick implements the block rendering worker cycle (spec
// §4.5): clock alignment, sync-buffering, per-type rendering with
// de-duplication, end-of-playback detection, and position reporting.
func (s *State) RenderingTick(ctx context.Context) error {
	s.initOnce()

	if s.waitForSeekBlocks(ctx) {
		return nil
	}

	main := s.Hooks.MainMediaType()
	s.alignClock(main)

	s.updateSyncBuffering(main)

	s.renderDue(main)

	s.maybeExitSyncBuffering(main)

	if s.detectEndOfPlayback(main) {
		return nil
	}

	s.reportAndResume(main)
	return nil
}

func (s *State) initOnce() {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true
	s.mu.Unlock()

	for _, t := range s.Hooks.ActiveTypes() {
		if r, ok := s.Hooks.Renderer(t); ok && r.OnStarting != nil {
			_ = r.OnStarting()
		}
	}
}

// waitForSeekBlocks implements spec §4.5 step 2: while a seek is
// actively in progress and the main block for the current position
// isn't available yet, wait briefly. Fluid seeking (normal mode, not
// disabled) breaks out early so the renderer keeps showing whatever it
// has; precision seeking (step/stop modes, or fluid disabled) keeps
// waiting until the latch fires.
func (s *State) waitForSeekBlocks(ctx context.Context) bool {
	if !s.Hooks.IsSeeking() {
		return false
	}
	if s.Hooks.SeekBlocksAvailable() {
		return false
	}
	if s.Hooks.SeekModeIsNormal() && !s.Hooks.IsFluidSeekingDisabled() {
		return false
	}

	select {
	case <-time.After(seekBlockWaitStep):
	case <-ctx.Done():
	}
	return true
}

// alignClock implements spec §4.5 step 3.
func (s *State) alignClock(main block.MediaType) {
	targets := []block.MediaType{main}
	if s.Hooks.IsTimeSyncDisabled() {
		targets = s.Hooks.ActiveTypes()
	}

	for _, t := range targets {
		buf := s.Buffers.Get(t)
		if buf == nil {
			continue
		}
		start, hasStart := buf.RangeStartTime()
		end, hasEnd := buf.RangeEndTime()
		if !hasStart || !hasEnd {
			s.Clock.Pause(toClockType(t))
			continue
		}

		pos := s.Clock.Position(toClockType(t))
		switch {
		case pos < start:
			s.Clock.Update(toClockType(t), start)
		case pos > end:
			if t == block.TypeAudio && s.Hooks.IsTimeSyncDisabled() {
				// Audio in disconnected mode may lead/lag silently
				// (spec §4.5 step 3, §9 design notes).
				continue
			}
			s.Clock.Pause(toClockType(t))
			s.Clock.Update(toClockType(t), end)
		}
	}
}

// updateSyncBuffering implements spec §4.5 step 4.
func (s *State) updateSyncBuffering(main block.MediaType) {
	if s.IsSyncBuffering() {
		return
	}
	if !s.Hooks.IsPlayingState() || s.Hooks.IsCommandPending() || s.Hooks.HasDecodingEnded() {
		return
	}

	mainBuf := s.Buffers.Get(main)
	if mainBuf == nil {
		return
	}
	mainStart, ok := mainBuf.RangeStartTime()
	if !ok {
		return
	}

	for _, t := range s.Hooks.ActiveTypes() {
		if t == main || t == block.TypeSubtitle {
			continue
		}
		buf := s.Buffers.Get(t)
		if buf == nil {
			continue
		}
		start, hasStart := buf.RangeStartTime()
		if !hasStart || start > mainStart {
			s.enterSyncBuffering()
			return
		}
	}
}

func (s *State) enterSyncBuffering() {
	s.mu.Lock()
	already := s.syncBuffering
	s.syncBuffering = true
	s.mu.Unlock()
	if !already {
		s.Clock.Pause(clock.TypeNone)
		if s.Hooks.NotifyBufferingStarted != nil {
			s.Hooks.NotifyBufferingStarted()
		}
	}
}

// maybeExitSyncBuffering implements spec §4.5 step 6.
func (s *State) maybeExitSyncBuffering(main block.MediaType) {
	if !s.IsSyncBuffering() {
		return
	}

	exit := s.Hooks.HasDecodingEnded() || s.Hooks.IsAtEndOfStream() || s.Hooks.IsCommandPending() || s.Hooks.IsTimeSyncDisabled()
	if !exit {
		mainBuf := s.Buffers.Get(main)
		if mainBuf != nil {
			if mid, ok := mainBuf.RangeMidTime(); ok {
				exit = true
				for _, t := range s.Hooks.ActiveTypes() {
					if t == main || t == block.TypeSubtitle {
						continue
					}
					buf := s.Buffers.Get(t)
					if buf == nil {
						continue
					}
					end, ok := buf.RangeEndTime()
					if !ok || end < mid {
						exit = false
						break
					}
				}
			}
		}
	}

	if exit {
		s.mu.Lock()
		s.syncBuffering = false
		s.mu.Unlock()
		if s.Hooks.NotifyBufferingEnded != nil {
			s.Hooks.NotifyBufferingEnded()
		}
	}
}

// renderDue implements spec §4.5 step 5: pick the due block per media
// type, skip duplicate non-repeating blocks, and dispatch to renderers
// (optionally in parallel).
func (s *State) renderDue(main block.MediaType) {
	position := s.Clock.Position(toClockType(main))
	types := s.Hooks.ActiveTypes()

	dispatch := func(t block.MediaType) {
		blk, ok := s.blockDueAt(t, position)
		if !ok {
			return
		}
		if s.isDuplicate(t, blk) {
			return
		}

		r, ok := s.Hooks.Renderer(t)
		if !ok || r.Render == nil {
			return
		}
		_ = r.Render(blk, position)

		s.mu.Lock()
		s.lastRenderTime[t] = position
		s.lastRenderedIndex[t] = blk.Index
		s.mu.Unlock()
	}

	if s.Hooks.UseParallelRendering != nil && s.Hooks.UseParallelRendering() {
		var wg sync.WaitGroup
		for _, t := range types {
			wg.Add(1)
			go func(t block.MediaType) {
				defer wg.Done()
				dispatch(t)
			}(t)
		}
		wg.Wait()
		return
	}

	for _, t := range types {
		dispatch(t)
	}
}

func (s *State) blockDueAt(t block.MediaType, position time.Duration) (block.Block, bool) {
	if t == block.TypeSubtitle && s.Hooks.SubtitleAt != nil {
		if blk, ok := s.Hooks.SubtitleAt(position); ok {
			return blk, true
		}
	}
	buf := s.Buffers.Get(t)
	if buf == nil {
		return block.Block{}, false
	}
	return buf.BlockAt(position)
}

func (s *State) isDuplicate(t block.MediaType, blk block.Block) bool {
	if t == block.TypeAudio || blk.IsAttachedPicture {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	last, seen := s.lastRenderedIndex[t]
	return seen && last == blk.Index
}

// detectEndOfPlayback implements spec §4.5 step 7 and Testable
// Property 7.
func (s *State) detectEndOfPlayback(main block.MediaType) bool {
	if s.Hooks.IsCommandPending() || !s.Hooks.HasDecodingEnded() {
		return false
	}
	position := s.Clock.Position(toClockType(main))
	if position < s.playbackEnd {
		return false
	}

	s.Clock.Pause(toClockType(main))
	s.Clock.Update(toClockType(main), s.playbackEnd)
	if s.Hooks.NotifyMediaEnded != nil {
		s.Hooks.NotifyMediaEnded()
	}
	return true
}

// reportAndResume implements spec §4.5 step 8.
func (s *State) reportAndResume(main block.MediaType) {
	if s.IsSyncBuffering() || s.Hooks.IsCommandPending() {
		return
	}

	position := s.Clock.Position(toClockType(main))
	if s.Hooks.ReportPosition != nil {
		s.Hooks.ReportPosition(position)
	}

	if !s.Hooks.IsPlayingState() {
		return
	}
	mainBuf := s.Buffers.Get(main)
	if mainBuf == nil || mainBuf.Len() == 0 {
		return
	}
	if s.Hooks.MinimumBufferPercent != nil {
		percent := s.bufferingProgress(main)
		if percent < s.Hooks.MinimumBufferPercent() {
			return
		}
	}
	if !s.Clock.IsRunning(toClockType(main)) {
		s.Clock.Play(toClockType(main))
	}
}

func (s *State) bufferingProgress(main block.MediaType) float64 {
	buf := s.Buffers.Get(main)
	if buf == nil || buf.Capacity() == 0 {
		return 1
	}
	return float64(buf.Len()) / float64(buf.Capacity())
}

func toClockType(t block.MediaType) clock.MediaType { return clock.MediaType(t) }

package command

import (
	"context"
	"time"
)

// Seek admits and enqueues a normal-mode deferred seek to target. If a
// seek is already running, the queued-next seek's target is overwritten
// rather than a second one being appended (spec §4.6 Coalescing): at
// most one extra seek is ever pending past the one currently executing
// (spec Testable Property 2). Returns false if the manager refuses the
// command outright (disposed, no media open, a direct command holds the
// slot); returns true once the seek is accepted, which may be before it
// has actually run.
func (m *Manager) Seek(ctx context.Context, target time.Duration) bool {
	return m.submitSeek(ctx, SeekOp{Mode: SeekModeNormal, Target: target})
}

// StepForward enqueues a single-step-forward deferred seek; its
// effective target is computed at execution time from the current
// block-buffer state (spec §4.6 step 1).
func (m *Manager) StepForward(ctx context.Context) bool {
	return m.submitSeek(ctx, SeekOp{Mode: SeekModeStepForward})
}

// StepBackward enqueues a single-step-backward deferred seek.
func (m *Manager) StepBackward(ctx context.Context) bool {
	return m.submitSeek(ctx, SeekOp{Mode: SeekModeStepBackward})
}

func (m *Manager) submitSeek(ctx context.Context, op SeekOp) bool {
	if ctx.Err() != nil {
		return false
	}
	if m.disposed.Load() || !m.mediaOpen.Load() || m.directInProgress.Load() {
		return false
	}

	m.mu.Lock()
	wasIdle := m.runningSeek == nil && m.queuedSeek == nil
	if m.runningSeek == nil {
		op := op
		m.runningSeek = &op
	} else {
		op := op
		m.queuedSeek = &op
	}
	if wasIdle {
		m.playAfterSeek = op.Mode == SeekModeNormal && m.hooks.IsClockRunning != nil && m.hooks.IsClockRunning()
		m.isSeeking.Store(true)
	}
	m.mu.Unlock()

	if wasIdle && m.hooks.NotifySeekingStarted != nil {
		m.hooks.NotifySeekingStarted()
	}

	m.notifyWake()
	return true
}

// executeSeek runs one seek to completion via the Seek hook, then either
// promotes a coalesced queued-next seek to running (without firing
// seeking-ended, per spec §4.6: a coalesced run is still one contiguous
// seeking episode) or clears the running seek and fires
// on_seeking_ended, resuming playback if play-after-seek was latched.
func (m *Manager) executeSeek(ctx context.Context, op SeekOp) {
	if m.hooks.Seek != nil {
		if err := m.hooks.Seek(ctx, op); err != nil && m.hooks.NotifyMediaFailed != nil {
			m.hooks.NotifyMediaFailed(err)
		}
	}

	m.mu.Lock()
	if m.queuedSeek != nil {
		m.runningSeek = m.queuedSeek
		m.queuedSeek = nil
		m.mu.Unlock()
		return
	}
	m.runningSeek = nil
	m.isSeeking.Store(false)
	playAfterSeek := m.playAfterSeek
	m.playAfterSeek = false
	m.directCond.Broadcast()
	m.mu.Unlock()

	if m.hooks.NotifySeekingEnded != nil {
		m.hooks.NotifySeekingEnded()
	}
	if playAfterSeek && m.hooks.ResumePlayback != nil {
		m.hooks.ResumePlayback()
	}
}

package command

import "context"

type priorityRequest struct {
	kind PriorityKind
	done chan bool
}

// Play admits and enqueues the "play" priority command, blocking until
// the command worker executes it (or ctx is cancelled). Refused if
// media isn't open, a direct command is in progress, a priority
// command is already pending, or the media has reached its end on a
// non-live seekable stream.
func (m *Manager) Play(ctx context.Context) bool {
	return m.submitPriority(ctx, PriorityPlay, m.hooks.CanPlay)
}

// Pause admits and enqueues the "pause" priority command. Refused if
// CanPause reports false (e.g. a live stream).
func (m *Manager) Pause(ctx context.Context) bool {
	return m.submitPriority(ctx, PriorityPause, m.hooks.CanPause)
}

// Stop admits and enqueues the "stop" priority command: seek(origin)
// composed with a clock reset and transition to the Stop state.
func (m *Manager) Stop(ctx context.Context) bool {
	return m.submitPriority(ctx, PriorityStop, func() bool { return true })
}

func (m *Manager) submitPriority(ctx context.Context, kind PriorityKind, gate func() bool) bool {
	if m.disposed.Load() || !m.mediaOpen.Load() || m.directInProgress.Load() {
		return false
	}
	if gate != nil && !gate() {
		return false
	}

	req := &priorityRequest{kind: kind, done: make(chan bool, 1)}
	m.mu.Lock()
	if m.pendingPrio != nil {
		m.mu.Unlock()
		return false
	}
	m.pendingPrio = req
	m.mu.Unlock()
	m.notifyWake()

	select {
	case ok := <-req.done:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (m *Manager) executePriority(ctx context.Context, req *priorityRequest) {
	var ok bool
	switch req.kind {
	case PriorityPlay:
		if m.hooks.CanPlay == nil || m.hooks.CanPlay() {
			m.hooks.DoPlay()
			ok = true
		}
	case PriorityPause:
		if m.hooks.CanPause == nil || m.hooks.CanPause() {
			m.hooks.DoPause()
			ok = true
		}
	case PriorityStop:
		ok = m.hooks.DoStop(ctx) == nil
	}

	req.done <- ok

	m.mu.Lock()
	m.directCond.Broadcast()
	m.mu.Unlock()
}

package command

import "context"

// Open admits and executes the "open(uri)" direct command. It returns
// false without raising if open isn't currently eligible (media
// already open, another direct command in progress, or the manager is
// disposed); it returns false (with NotifyMediaFailed already called)
// if OpenURI itself fails.
func (m *Manager) Open(ctx context.Context, uri string) bool {
	return m.runDirect(ctx, DirectOpen, func(ctx context.Context) error {
		return m.hooks.OpenURI(ctx, uri)
	})
}

// OpenStream is like Open, but from a custom input object rather than
// a URI string.
func (m *Manager) OpenStream(ctx context.Context, stream any) bool {
	return m.runDirect(ctx, DirectOpen, func(ctx context.Context) error {
		return m.hooks.OpenStream(ctx, stream)
	})
}

// Close admits and executes the "close" direct command. Refused if no
// media is open.
func (m *Manager) Close(ctx context.Context) bool {
	return m.runDirect(ctx, DirectClose, m.hooks.Close)
}

// Change admits and executes the "change" direct command. Refused if
// no media is open.
func (m *Manager) Change(ctx context.Context) bool {
	return m.runDirect(ctx, DirectChange, m.hooks.Change)
}

// IsOpening, IsClosing, IsChanging, IsSeeking report the observable
// atomics of the direct-command and seek sub-state (spec §4.1).
func (m *Manager) IsOpening() bool  { return m.isOpening.Load() }
func (m *Manager) IsClosing() bool  { return m.isClosing.Load() }
func (m *Manager) IsChanging() bool { return m.isChanging.Load() }
func (m *Manager) IsSeeking() bool  { return m.isSeeking.Load() }

// IsMediaOpen reports whether media is currently open (including
// while a change is in progress).
func (m *Manager) IsMediaOpen() bool { return m.mediaOpen.Load() }

// IsDirectInProgress reports whether a direct command currently holds
// the slot (spec Testable Property 1).
func (m *Manager) IsDirectInProgress() bool { return m.directInProgress.Load() }

func (m *Manager) runDirect(ctx context.Context, kind DirectKind, op func(context.Context) error) bool {
	if m.disposed.Load() {
		return false
	}
	if !m.admitDirect(kind) {
		return false
	}
	defer m.directInProgress.Store(false)
	m.setDirectFlag(kind, true)
	defer m.setDirectFlag(kind, false)

	correlationID := newCorrelationID()
	log := m.log.With().Str("command", kind.String()).Str("correlation_id", correlationID).Logger()
	log.Debug().Msg("direct command started")

	m.preemptForDirect(kind)

	m.hooks.PauseClock()
	m.hooks.PauseWorkers()

	err := op(ctx)

	ok := m.finishDirect(kind, err)
	if ok {
		log.Debug().Msg("direct command finished")
	} else {
		log.Warn().Err(err).Msg("direct command failed")
	}
	return ok
}

func (m *Manager) finishDirect(kind DirectKind, err error) bool {
	switch kind {
	case DirectOpen:
		if err != nil {
			m.mediaOpen.Store(false)
			m.hooks.NotifyMediaFailed(err)
			return false
		}
		m.mediaOpen.Store(true)
		m.hooks.ResumeWorkers()
		return true
	case DirectClose:
		m.mediaOpen.Store(false)
		if err != nil {
			m.hooks.NotifyMediaFailed(err)
			return false
		}
		return true
	case DirectChange:
		if err != nil {
			m.hooks.NotifyMediaFailed(err)
			m.hooks.ResumeWorkers()
			return false
		}
		m.hooks.ResumeWorkers()
		return true
	default:
		return err == nil
	}
}

func (m *Manager) admitDirect(kind DirectKind) bool {
	if !m.directInProgress.CompareAndSwap(false, true) {
		return false
	}
	switch kind {
	case DirectOpen:
		if m.mediaOpen.Load() {
			m.directInProgress.Store(false)
			return false
		}
	case DirectClose, DirectChange:
		if !m.mediaOpen.Load() {
			m.directInProgress.Store(false)
			return false
		}
	}
	return true
}

func (m *Manager) setDirectFlag(kind DirectKind, v bool) {
	switch kind {
	case DirectOpen:
		m.isOpening.Store(v)
	case DirectClose:
		m.isClosing.Store(v)
	case DirectChange:
		m.isChanging.Store(v)
	}
}

// preemptForDirect implements "drains the priority queue, cancels any
// queued seek" (spec §4.1): it discards the pending priority command
// and the queued-next seek immediately, then waits for the command
// worker to finish whatever single unit of work it is currently in
// the middle of. It does not forcibly interrupt a running seek by
// itself — for kind == DirectClose it calls AbortReads first, which is
// what makes an in-flight demuxer read (and so the seek waiting on it)
// return promptly instead of running to natural completion.
func (m *Manager) preemptForDirect(kind DirectKind) {
	m.mu.Lock()
	m.pendingPrio = nil
	m.queuedSeek = nil
	m.mu.Unlock()

	if kind == DirectClose {
		m.hooks.AbortReads(true)
	}

	m.mu.Lock()
	for m.runningSeek != nil {
		m.directCond.Wait()
	}
	m.mu.Unlock()
}

package command

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Hooks are the callbacks the owning engine wires up so the Manager
// can drive playback without importing the root package. Every hook
// is required unless stated otherwise; Manager panics at first use if
// a required hook is nil, which surfaces wiring mistakes immediately
// rather than deadlocking silently.
type Hooks struct {
	// PauseClock pauses the timing controller's reference clock (or
	// all clocks). Called before every direct command.
	PauseClock func()

	// PauseWorkers sets the pause flag on the worker set's three
	// workers; a tick already in progress is not waited for.
	PauseWorkers func()

	// ResumeWorkers resumes every paused worker.
	ResumeWorkers func()

	// AbortReads signals the container to abort in-flight reads.
	// Called before Close.
	AbortReads func(immediate bool)

	// OpenURI opens media from a URI. Returns an error (wrapped with
	// the appropriate Kind by the engine) on failure.
	OpenURI func(ctx context.Context, uri string) error

	// OpenStream opens media from a custom input object.
	OpenStream func(ctx context.Context, stream any) error

	// Close tears down the currently open media.
	Close func(ctx context.Context) error

	// Change applies the current options to the open media without
	// reopening it; playback position and state are left as they are.
	Change func(ctx context.Context) error

	// CanPlay reports whether Play is currently admissible (false at
	// end-of-media for non-live seekable streams).
	CanPlay func() bool

	// CanPause reports whether Pause is currently admissible (false
	// e.g. for live streams).
	CanPause func() bool

	// DoPlay resumes playback (clock + workers).
	DoPlay func()

	// DoPause pauses playback.
	DoPause func()

	// DoStop performs seek(origin) composed with a clock reset and
	// transition to the Stop state.
	DoStop func(ctx context.Context) error

	// Seek executes one seek operation synchronously, landing the
	// clock on its (possibly clamped) result position.
	Seek func(ctx context.Context, op SeekOp) error

	// IsClockRunning reports whether the reference clock is currently
	// playing, used to latch play-after-seek.
	IsClockRunning func() bool

	// ResumePlayback resumes playback after a seek run completes, iff
	// play-after-seek was latched.
	ResumePlayback func()

	// NotifySeekingStarted / NotifySeekingEnded fire the Connector's
	// on_seeking_started / on_seeking_ended notifications.
	NotifySeekingStarted func()
	NotifySeekingEnded   func()

	// NotifyMediaFailed fires on_media_failed with the causing error.
	NotifyMediaFailed func(err error)

	// SetState updates the externally observable playback state.
	SetState func(state int)
}

// Manager is the Command Manager of spec §4.1.
type Manager struct {
	hooks Hooks
	log   zerolog.Logger

	disposed  atomic.Bool
	mediaOpen atomic.Bool

	directInProgress atomic.Bool
	isOpening        atomic.Bool
	isClosing        atomic.Bool
	isChanging       atomic.Bool
	isSeeking        atomic.Bool

	mu            sync.Mutex
	directCond    sync.Cond // broadcast when a seek run finishes and after a priority command runs
	pendingPrio   *priorityRequest
	runningSeek   *SeekOp
	queuedSeek    *SeekOp
	playAfterSeek bool

	wake chan struct{}
	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates a Manager wired to hooks, logging open/change lifecycle
// events through log with a per-command correlation id (spec §4.1).
// The manager starts with no media open.
func New(hooks Hooks, log zerolog.Logger) *Manager {
	m := &Manager{
		hooks: hooks,
		log:   log,
		wake:  make(chan struct{}, 1),
	}
	m.directCond.L = &m.mu
	return m
}

// newCorrelationID generates a fresh id for one direct command's
// lifecycle log lines, letting a reader join its "started" and
// "finished" entries even when other commands interleave.
func newCorrelationID() string {
	return uuid.New().String()
}

// Run starts the background command-worker goroutine (spec §5
// Ordering guarantees): it drains one pending priority command to
// completion, then one seek at a time, then idles until woken or
// ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	m.stop = make(chan struct{})
	m.wg.Add(1)
	go m.loop(ctx)
}

// Dispose stops the background worker and refuses all future
// operations. Safe to call multiple times.
func (m *Manager) Dispose() {
	if m.disposed.Swap(true) {
		return
	}
	if m.stop != nil {
		close(m.stop)
	}
	m.wg.Wait()
}

func (m *Manager) loop(ctx context.Context) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		default:
		}

		if m.runOnePriorityOrSeek(ctx) {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case <-m.wake:
		}
	}
}

// runOnePriorityOrSeek performs at most one unit of work (one priority
// command, or one seek operation) and reports whether it did
// anything, so the loop can keep draining without idling between
// units.
func (m *Manager) runOnePriorityOrSeek(ctx context.Context) bool {
	m.mu.Lock()
	prio := m.pendingPrio
	m.pendingPrio = nil
	m.mu.Unlock()

	if prio != nil {
		m.executePriority(ctx, prio)
		return true
	}

	m.mu.Lock()
	op := m.runningSeek
	m.mu.Unlock()
	if op == nil {
		return false
	}

	m.executeSeek(ctx, *op)
	return true
}

func (m *Manager) notifyWake() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

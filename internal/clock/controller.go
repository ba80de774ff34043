package clock

import (
	"sync"
	"time"
)

// disconnectThreshold is the minimum difference between two streams'
// start times above which, combined with IsTimeSyncDisabled, the
// controller switches to disconnected clocks (spec §4.7).
const disconnectThreshold = 50 * time.Millisecond

// MediaType mirrors playcore.MediaType / block.MediaType, duplicated to
// avoid an import cycle (see internal/block/block.go for the same
// rationale).
type MediaType uint8

const (
	TypeNone MediaType = iota
	TypeAudio
	TypeVideo
	TypeSubtitle
)

// StreamInfo carries the per-component metadata the controller needs
// at setup time: whether the stream exists, its start/end time and
// duration, and whether it's seekable (only meaningful for the
// container as a whole, repeated per component for convenience).
type StreamInfo struct {
	Present    bool
	StartTime  time.Duration
	EndTime    time.Duration
	Duration   time.Duration
	Seekable   bool
}

// SetupParams bundles the setup-time inputs: one StreamInfo per
// concrete media type, whether the host disabled time-sync, and
// whether the container as a whole is seekable.
type SetupParams struct {
	Audio               StreamInfo
	Video               StreamInfo
	Subtitle            StreamInfo
	IsTimeSyncDisabled  bool
	ContainerSeekable   bool
	// PreferredReference, if non-zero, picks the reference for seekable
	// containers (and for non-seekable ones without audio) in place of
	// the default of video when present, else audio. It does not
	// override the audio reference of a non-seekable container.
	PreferredReference MediaType
}

// Controller is the Timing Controller of spec §4.7: it owns up to two
// independent [RealTimeClock]s (audio, video — subtitle always aliases
// video), a "reference" alias for whichever type drives playback
// position, and the per-type start-time offsets used to report
// positions.
type Controller struct {
	mu           sync.RWMutex
	clocks       map[MediaType]*RealTimeClock // keys: TypeAudio, TypeVideo
	offsets      map[MediaType]time.Duration
	reference    MediaType
	disconnected bool
	meta         map[MediaType]StreamInfo
}

// NewController creates a controller with no clocks set up yet. Call
// Setup before using Position/Play/Pause/etc.
func NewController() *Controller {
	return &Controller{
		clocks:  make(map[MediaType]*RealTimeClock),
		offsets: make(map[MediaType]time.Duration),
		meta:    make(map[MediaType]StreamInfo),
	}
}

// Setup (re-)configures the controller for a newly opened or changed
// media source, per the rules in spec §4.7:
//   - disconnected clocks are used when IsTimeSyncDisabled is set and
//     the present streams' start times differ by more than a small
//     threshold;
//   - otherwise a single clock is shared across media types;
//   - the reference is audio for non-seekable containers with audio,
//     else PreferredReference if given, else video when present and
//     audio otherwise;
//   - position and speed ratio from any previous clocks are preserved
//     onto the new ones.
func (c *Controller) Setup(p SetupParams) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.meta = map[MediaType]StreamInfo{
		TypeAudio:    p.Audio,
		TypeVideo:    p.Video,
		TypeSubtitle: p.Subtitle,
	}

	disconnect := p.IsTimeSyncDisabled && p.Audio.Present && p.Video.Present &&
		absDuration(p.Audio.StartTime-p.Video.StartTime) > disconnectThreshold
	c.disconnected = disconnect

	reference := p.PreferredReference
	if !p.ContainerSeekable && p.Audio.Present {
		reference = TypeAudio
	} else if reference == TypeNone {
		if p.Video.Present {
			reference = TypeVideo
		} else {
			reference = TypeAudio
		}
	}
	c.reference = reference

	prevClocks := c.clocks
	c.clocks = make(map[MediaType]*RealTimeClock)

	if disconnect {
		c.clocks[TypeAudio] = newClockPreserving(prevClocks[TypeAudio])
		c.clocks[TypeVideo] = newClockPreserving(prevClocks[TypeVideo])
		// subtitle aliases video
	} else {
		shared := newClockPreserving(firstNonNil(prevClocks[TypeVideo], prevClocks[TypeAudio]))
		c.clocks[TypeAudio] = shared
		c.clocks[TypeVideo] = shared
	}

	c.offsets = map[MediaType]time.Duration{
		TypeAudio:    p.Audio.StartTime,
		TypeVideo:    p.Video.StartTime,
		TypeSubtitle: p.Video.StartTime,
	}
}

func newClockPreserving(prev *RealTimeClock) *RealTimeClock {
	c := New()
	if prev != nil {
		c.CopyStateFrom(prev)
	}
	return c
}

func firstNonNil(a, b *RealTimeClock) *RealTimeClock {
	if a != nil {
		return a
	}
	return b
}

// IsDisconnected reports whether audio and video currently run on
// independent clocks.
func (c *Controller) IsDisconnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.disconnected
}

// Reference returns the media type currently acting as the reference
// component for global playback position.
func (c *Controller) Reference() MediaType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reference
}

// clockFor resolves the effective clock key for t: TypeNone aliases the
// reference clock, and TypeSubtitle always aliases the video clock,
// whether or not the clocks are disconnected.
func (c *Controller) clockFor(t MediaType) *RealTimeClock {
	if t == TypeNone {
		t = c.reference
	}
	if t == TypeSubtitle {
		t = TypeVideo
	}
	return c.clocks[t]
}

// offsetFor returns the configured start-time offset for t, resolving
// TypeNone to the reference (or, in disconnected mode, leaving t as
// given since each type has its own offset).
func (c *Controller) offsetFor(t MediaType) time.Duration {
	key := t
	if key == TypeNone {
		key = c.reference
	}
	if !c.disconnected {
		key = c.reference
	}
	return c.offsets[key]
}

// Position returns position(t) = clock[t].position + offset(t), per
// spec §4.7. t = TypeNone means "the reference clock".
func (c *Controller) Position(t MediaType) time.Duration {
	c.mu.RLock()
	clk := c.clockFor(t)
	offset := c.offsetFor(t)
	c.mu.RUnlock()
	if clk == nil {
		return 0
	}
	return clk.Position() + offset
}

// Update sets the position of the clock(s) addressed by t. TypeNone
// updates every clock currently in use (both, if disconnected).
func (c *Controller) Update(t MediaType, pos time.Duration) {
	c.forEachClock(t, func(clk *RealTimeClock, offset time.Duration) {
		clk.Update(pos - offset)
	})
}

// Play starts the clock(s) addressed by t.
func (c *Controller) Play(t MediaType) {
	c.forEachClock(t, func(clk *RealTimeClock, _ time.Duration) { clk.Play() })
}

// Pause stops the clock(s) addressed by t.
func (c *Controller) Pause(t MediaType) {
	c.forEachClock(t, func(clk *RealTimeClock, _ time.Duration) { clk.Pause() })
}

// Reset resets the clock(s) addressed by t to zero, stopped.
func (c *Controller) Reset(t MediaType) {
	c.forEachClock(t, func(clk *RealTimeClock, _ time.Duration) { clk.Reset() })
}

// IsRunning reports whether the clock addressed by t (TypeNone meaning
// the reference) is currently running.
func (c *Controller) IsRunning(t MediaType) bool {
	c.mu.RLock()
	clk := c.clockFor(t)
	c.mu.RUnlock()
	if clk == nil {
		return false
	}
	return clk.IsRunning()
}

// SetSpeedRatio applies a single speed ratio to the audio and video
// clocks (subtitle always follows video).
func (c *Controller) SetSpeedRatio(ratio float64) {
	c.mu.RLock()
	clocks := []*RealTimeClock{c.clocks[TypeAudio], c.clocks[TypeVideo]}
	c.mu.RUnlock()
	seen := make(map[*RealTimeClock]bool, 2)
	for _, clk := range clocks {
		if clk == nil || seen[clk] {
			continue
		}
		seen[clk] = true
		clk.SetSpeedRatio(ratio)
	}
}

// Duration, StartTime and EndTime return the component metadata
// recorded at Setup time for t (TypeNone resolving to the reference).
func (c *Controller) Duration(t MediaType) time.Duration  { return c.metaFor(t).Duration }
func (c *Controller) StartTime(t MediaType) time.Duration { return c.metaFor(t).StartTime }
func (c *Controller) EndTime(t MediaType) time.Duration   { return c.metaFor(t).EndTime }

func (c *Controller) metaFor(t MediaType) StreamInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t == TypeNone {
		t = c.reference
	}
	return c.meta[t]
}

func (c *Controller) forEachClock(t MediaType, fn func(clk *RealTimeClock, offset time.Duration)) {
	c.mu.RLock()
	var targets []MediaType
	if t == TypeNone {
		if c.disconnected {
			targets = []MediaType{TypeAudio, TypeVideo}
		} else {
			targets = []MediaType{c.reference}
		}
	} else {
		targets = []MediaType{t}
	}
	seen := make(map[*RealTimeClock]bool, len(targets))
	type pair struct {
		clk    *RealTimeClock
		offset time.Duration
	}
	var pairs []pair
	for _, typ := range targets {
		clk := c.clockFor(typ)
		if clk == nil || seen[clk] {
			continue
		}
		seen[clk] = true
		pairs = append(pairs, pair{clk, c.offsetFor(typ)})
	}
	c.mu.RUnlock()

	for _, p := range pairs {
		fn(p.clk, p.offset)
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

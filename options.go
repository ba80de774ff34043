package playcore

import "time"

// MediaOptions carries the per-open/per-change configuration
// recognized by the core (spec §3, §6). Zero value is valid and uses
// every default.
type MediaOptions struct {
	// SubtitlesURL names a side-loaded subtitle track. When set (and
	// subtitles are not disabled) the engine creates a subtitle block
	// buffer; nothing in this module loads the track from this
	// location.
	SubtitlesURL string

	// SubtitlesDelay is carried through configuration loading; the
	// engine does not apply it to subtitle presentation times.
	SubtitlesDelay time.Duration

	// IsSubtitleDisabled suppresses subtitle rendering entirely
	// (embedded or side-loaded).
	IsSubtitleDisabled bool

	// IsTimeSyncDisabled allows the timing controller to fall back to
	// disconnected per-component clocks when streams don't share a
	// timebase (spec §4.7).
	IsTimeSyncDisabled bool

	// UseParallelRendering lets the block rendering worker dispatch to
	// renderers for each media type concurrently (spec §4.5 step 5).
	UseParallelRendering bool

	// IsFluidSeekingDisabled forces precision seeking: the renderer
	// always waits for the exact seek target block rather than
	// presenting intermediate frames (spec §4.5 step 2).
	IsFluidSeekingDisabled bool

	// MinimumPlaybackBufferPercent is the buffering progress, in
	// [0,1], required before the rendering worker resumes the clock
	// after sync-buffering (spec §4.5 step 8). Clamped to [0,1];
	// default 0.
	MinimumPlaybackBufferPercent float64

	// ProtocolPrefix is prepended to a normalized URI's scheme when
	// the container requires it (e.g. a custom IO protocol).
	ProtocolPrefix string

	// ForcedInputFormat overrides container format auto-detection,
	// either set directly or derived from a device://host?query or
	// format://host?query URI (spec §6).
	ForcedInputFormat string
}

// Clamped returns a copy of o with MinimumPlaybackBufferPercent
// clamped into [0,1].
func (o MediaOptions) Clamped() MediaOptions {
	switch {
	case o.MinimumPlaybackBufferPercent < 0:
		o.MinimumPlaybackBufferPercent = 0
	case o.MinimumPlaybackBufferPercent > 1:
		o.MinimumPlaybackBufferPercent = 1
	}
	return o
}

// ContainerConfiguration is the subset of MediaOptions that shapes how
// the Container collaborator itself opens the source, as opposed to
// how the core renders/times it. In this implementation it is the
// same struct; it is named separately because spec §3 and §6 name it
// separately, and a host wiring its own Container may want to type
// against just this shape.
type ContainerConfiguration = MediaOptions

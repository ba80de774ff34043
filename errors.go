package playcore

import "errors"

// Kind identifies one of the closed set of error categories the core
// can raise (spec §7). Kind implements error so it can be used both as
// a sentinel (errors.Is(err, playcore.KindOpenFailed)) and wrapped
// inside an [Error].
type Kind string

const (
	// KindMediaContainer covers demuxer/codec-level failures surfaced
	// by the Container collaborator.
	KindMediaContainer Kind = "media_container_error"
	// KindOpenFailed means open() completed but neither audio nor
	// video components were present, or the input kind (a stream
	// object) cannot be opened at all.
	KindOpenFailed Kind = "open_failed"
	// KindInvalidCommand means a request reached the command manager
	// in a state that forbids it. Returned as a refusal (false), never
	// raised — this Kind exists for logging/metrics purposes only.
	KindInvalidCommand Kind = "invalid_command"
	// KindSeekOutOfRange means the seek target could not be reached
	// within any component's available block range after best-effort
	// decoding; the result is clamped and logged as a warning.
	KindSeekOutOfRange Kind = "seek_out_of_range"
	// KindSubtitlePreloadFailed means side-loaded subtitles were
	// unavailable; playback continues without them.
	KindSubtitlePreloadFailed Kind = "subtitle_preload_failed"
)

func (k Kind) Error() string { return string(k) }

// Error wraps an underlying cause with its [Kind], so callers can both
// match on category (errors.Is(err, playcore.KindOpenFailed)) and
// retrieve the original error (errors.Unwrap / %w).
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	if k, ok := target.(Kind); ok {
		return e.Kind == k
	}
	return false
}

// wrapErr builds an *Error of the given kind around err, or nil if err
// is nil.
func wrapErr(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Sentinel errors matching the collection declared by the teacher
// package for its own narrower initialization surface; kept and
// generalized here since open() can still fail for these reasons
// before any container-level error kind applies.
var (
	ErrNoAudioOrVideo  = errors.New("media has neither audio nor video streams")
	ErrAlreadyDisposed = errors.New("engine has been disposed")
)

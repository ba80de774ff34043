package playcore

import (
	"context"
	"time"
)

// PacketQueueStats is passed to a Component's packet-queue-changed
// callback (spec §6), driving the frame decoding worker's bit-rate and
// buffering-percent statistics.
type PacketQueueStats struct {
	Length         int
	Count          int
	CountThreshold int
	Duration       time.Duration
}

// Frame is a single decoded unit returned directly by the container
// (from Read-driven decoding or from Seek's first-frame result),
// before the frame decoding worker turns it into a buffered
// [MediaBlock].
type Frame struct {
	Type      MediaType
	StartTime time.Duration
	EndTime   time.Duration
	Payload   any

	// Size is the decoded payload's byte size, used by the frame
	// decoding worker to derive DecodingBitrateBytesPerSecond (spec
	// §4.4 step 3). Zero is a valid "unknown" value; it just never
	// contributes to the rolling bit-rate window.
	Size int
}

// Component is the per-media-type view of the demuxer/decoder
// collaborator (spec §6).
type Component interface {
	// ReceiveNextFrame returns the next already-decoded frame for this
	// component, if one is available. found is false (frame is the
	// zero value) when nothing is ready yet.
	ReceiveNextFrame() (frame Frame, found bool, err error)

	// BufferLength reports the component's internal packet queue
	// depth, used to decide whether the frame decoding worker should
	// pull more from this component this cycle.
	BufferLength() int

	// OnPacketQueueChanged registers a callback invoked whenever this
	// component's packet queue changes, carrying the stats needed to
	// drive buffering/bit-rate reporting. At most one callback is kept;
	// registering again replaces the previous one.
	OnPacketQueueChanged(fn func(PacketQueueStats))
}

// Components is the demuxer's component table (spec §6).
type Components interface {
	// MainMediaType is the component whose block buffer and clock
	// drive global playback position (spec glossary: "main/reference
	// component").
	MainMediaType() MediaType

	// Component returns the per-type view, or nil if that stream isn't
	// present in the opened media.
	Component(t MediaType) Component

	// HasEnoughPackets reports whether the demuxer judges its internal
	// queues sufficiently filled, used by the packet reading worker's
	// should_read_more_packets predicate (spec §4.3).
	HasEnoughPackets() bool
}

// Container is the external demuxer/decoder collaborator (spec §6).
// Its internals (container formats, codec details, hardware
// acceleration) are explicitly out of scope (spec §1); only this
// contract is specified. [reisencontainer.Container] is the concrete
// adapter wired against github.com/erparts/reisen.
type Container interface {
	// Open prepares the container to read from uri under the given
	// configuration. It must be called before Read/Seek/Components.
	Open(ctx context.Context, uri string, cfg ContainerConfiguration) error

	// Dispose releases all resources. The container is unusable
	// afterwards.
	Dispose() error

	// Read drives one demuxer read, enqueuing (at most) one packet
	// into the appropriate component's queue, and reports which
	// component it belonged to (MediaTypeNone if no packet was
	// produced this call). MediaContainerError-kind failures are
	// expected to be swallowed internally by the container so reading
	// can continue; only unrecoverable errors should be returned here.
	Read(ctx context.Context) (MediaType, error)

	// Seek moves the underlying demuxer to target and returns the
	// first decoded frame at or after it.
	Seek(ctx context.Context, target time.Duration) (Frame, error)

	// Components exposes the per-type component table.
	Components() Components

	// SignalAbortReads requests that any blocking Read return promptly.
	// immediate additionally cancels in-flight I/O rather than waiting
	// for the current operation to finish naturally.
	SignalAbortReads(immediate bool)

	IsReadAborted() bool
	IsAtEndOfStream() bool
	IsLiveStream() bool
	IsNetworkStream() bool
	IsStreamSeekable() bool
}

// Package metrics exposes Prometheus instrumentation for the packet
// reading and frame decoding workers: queue depth/backpressure from the
// container's on_packet_queue_changed callback, and decoding bit-rate
// derived from block sizes over time (spec §4.3, §4.4).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketQueueLength tracks the current per-component packet queue
	// length reported via on_packet_queue_changed.
	PacketQueueLength = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "playcore_packet_queue_length",
		Help: "Current packet queue length, by media type.",
	}, []string{"media_type"})

	// PacketQueueCount tracks the per-component packet count reported
	// via on_packet_queue_changed.
	PacketQueueCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "playcore_packet_queue_count",
		Help: "Current packet queue count, by media type.",
	}, []string{"media_type"})

	// BlockBufferLength tracks how many decoded blocks are currently
	// held per media type.
	BlockBufferLength = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "playcore_block_buffer_length",
		Help: "Current number of decoded blocks buffered, by media type.",
	}, []string{"media_type"})

	// DecodingBitrateBytesPerSecond reports the decoder's observed
	// throughput, by media type.
	DecodingBitrateBytesPerSecond = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "playcore_decoding_bitrate_bytes_per_second",
		Help: "Observed decoding bit-rate in bytes per second, by media type.",
	}, []string{"media_type"})

	// SeeksTotal counts completed seek operations, by mode and outcome.
	SeeksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playcore_seeks_total",
		Help: "Total number of completed seek operations, by mode and outcome.",
	}, []string{"mode", "outcome"})

	// SyncBufferingSecondsTotal accumulates time spent sync-buffering.
	SyncBufferingSecondsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "playcore_sync_buffering_seconds_total",
		Help: "Cumulative time spent in sync-buffering.",
	})

	// MediaEndedTotal counts end-of-media events.
	MediaEndedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "playcore_media_ended_total",
		Help: "Total number of media-ended events.",
	})
)

// BitrateTracker derives a rolling bytes/second figure from successive
// block sizes, used by the decoding worker to feed
// DecodingBitrateBytesPerSecond without needing a dedicated goroutine.
type BitrateTracker struct {
	windowStart time.Time
	bytesInWindow int64
	mediaType   string
}

// NewBitrateTracker creates a tracker for one media type label.
func NewBitrateTracker(mediaType string, now time.Time) *BitrateTracker {
	return &BitrateTracker{windowStart: now, mediaType: mediaType}
}

// Observe records a newly decoded block's size and, once a full second
// has elapsed since the window started, publishes the rate and resets
// the window.
func (t *BitrateTracker) Observe(size int, now time.Time) {
	t.bytesInWindow += int64(size)
	elapsed := now.Sub(t.windowStart)
	if elapsed < time.Second {
		return
	}
	rate := float64(t.bytesInWindow) / elapsed.Seconds()
	DecodingBitrateBytesPerSecond.WithLabelValues(t.mediaType).Set(rate)
	t.bytesInWindow = 0
	t.windowStart = now
}

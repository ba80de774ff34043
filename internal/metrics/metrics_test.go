package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBitrateTrackerPublishesAfterOneSecondWindow(t *testing.T) {
	start := time.Unix(0, 0)
	tr := NewBitrateTracker("test_video", start)

	tr.Observe(1000, start.Add(200*time.Millisecond))
	require.Equal(t, float64(0), testutil.ToFloat64(DecodingBitrateBytesPerSecond.WithLabelValues("test_video")),
		"no publish before the window elapses")

	tr.Observe(9000, start.Add(1100*time.Millisecond))
	got := testutil.ToFloat64(DecodingBitrateBytesPerSecond.WithLabelValues("test_video"))
	require.InDelta(t, 10000.0/1.1, got, 1.0)
}

func TestBitrateTrackerResetsWindowAfterPublish(t *testing.T) {
	start := time.Unix(0, 0)
	tr := NewBitrateTracker("test_audio", start)

	tr.Observe(2000, start.Add(1*time.Second))
	first := testutil.ToFloat64(DecodingBitrateBytesPerSecond.WithLabelValues("test_audio"))
	require.InDelta(t, 2000.0, first, 0.1)

	tr.Observe(500, start.Add(1500*time.Millisecond))
	require.Equal(t, first, testutil.ToFloat64(DecodingBitrateBytesPerSecond.WithLabelValues("test_audio")),
		"no publish mid-window")

	tr.Observe(500, start.Add(2*time.Second))
	second := testutil.ToFloat64(DecodingBitrateBytesPerSecond.WithLabelValues("test_audio"))
	require.InDelta(t, 1000.0, second, 0.1, "window reset, new rate computed only from post-reset bytes")
}

func TestGaugeVecsAcceptMediaTypeLabel(t *testing.T) {
	PacketQueueLength.WithLabelValues("video").Set(42)
	require.Equal(t, float64(42), testutil.ToFloat64(PacketQueueLength.WithLabelValues("video")))

	BlockBufferLength.WithLabelValues("audio").Set(7)
	require.Equal(t, float64(7), testutil.ToFloat64(BlockBufferLength.WithLabelValues("audio")))
}

func TestSeeksTotalCounterIncrementsByModeAndOutcome(t *testing.T) {
	before := testutil.ToFloat64(SeeksTotal.WithLabelValues("normal", "success"))
	SeeksTotal.WithLabelValues("normal", "success").Inc()
	after := testutil.ToFloat64(SeeksTotal.WithLabelValues("normal", "success"))
	require.Equal(t, before+1, after)
}

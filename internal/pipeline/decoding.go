package pipeline

import (
	"context"
	"time"

	"github.com/kolibri-av/playcore/internal/block"
	"github.com/kolibri-av/playcore/internal/metrics"
)

// mediaTypeLabel gives block.MediaType the same Prometheus label text
// the root package's MediaType.String() uses, without importing the
// root package (which would create an import cycle).
func mediaTypeLabel(t block.MediaType) string {
	switch t {
	case block.TypeAudio:
		return "audio"
	case block.TypeVideo:
		return "video"
	case block.TypeSubtitle:
		return "subtitle"
	default:
		return "none"
	}
}

// bitrateTrackerFor returns (creating if needed) this type's rolling
// bit-rate tracker.
func (s *State) bitrateTrackerFor(t block.MediaType, now time.Time) *metrics.BitrateTracker {
	s.bitrateMu.Lock()
	defer s.bitrateMu.Unlock()
	tr, ok := s.bitrateTrackers[t]
	if !ok {
		tr = metrics.NewBitrateTracker(mediaTypeLabel(t), now)
		s.bitrateTrackers[t] = tr
	}
	return tr
}

// DecodingTick implements the frame decoding worker cycle (spec §4.4):
// for every media type whose block buffer is not full, pull the next
// decoded frame and append it; detect end-of-decoding when no component
// yielded a frame this cycle and the container is at end of stream.
func (s *State) DecodingTick(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	anyAppended := false
	anyFrameAvailable := false

	for _, t := range s.Hooks.ActiveTypes() {
		buf := s.Buffers.Get(t)
		if buf == nil || buf.IsFull() {
			continue
		}

		frame, ok, err := s.Hooks.ReceiveNextFrame(t)
		if err != nil || !ok {
			continue
		}
		anyFrameAvailable = true

		buf.Add(block.Block{
			Type:      t,
			StartTime: frame.StartTime,
			EndTime:   frame.EndTime,
			Payload:   frame.Payload,
		})
		if frame.Size > 0 {
			now := time.Now()
			s.bitrateTrackerFor(t, now).Observe(frame.Size, now)
		}
		anyAppended = true
		s.SignalBufferChanged()
	}

	if !anyFrameAvailable && s.Hooks.IsAtEndOfStream() {
		s.Hooks.SetDecodingEnded(true)
	} else if anyAppended {
		s.Hooks.SetDecodingEnded(false)
	}

	return nil
}

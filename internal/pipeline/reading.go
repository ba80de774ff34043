package pipeline

import (
	"context"
	"time"
)

const (
	maxNetworkBufferBytes = 16 << 20 // 16 MiB, spec §4.3
	readWaitTimeout        = 5 * time.Millisecond
)

// ReadingTick implements the packet reading worker cycle (spec §4.3): it
// drains should_read_more_packets as fast as the container allows, then
// waits on the buffer-changed signal (or a short timeout) once no more
// packets are currently wanted.
func (s *State) ReadingTick(ctx context.Context) error {
	for s.shouldReadMorePackets() {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := s.Hooks.ReadPacket(ctx); err != nil {
			// Container-level errors are swallowed here (spec §4.3
			// step 1); persistent failure surfaces through
			// is_at_end_of_stream / has_enough_packets instead.
			continue
		}
	}

	select {
	case <-s.bufferChanged:
	case <-time.After(readWaitTimeout):
	case <-ctx.Done():
	}
	return nil
}

func (s *State) shouldReadMorePackets() bool {
	h := s.Hooks
	if h.IsReadAborted() || h.IsAtEndOfStream() {
		return false
	}
	if h.IsLiveStreamFlag() {
		return true
	}
	if h.IsNetworkStreamFlag() && h.TotalBufferBytes() < maxNetworkBufferBytes {
		return true
	}
	return !h.HasEnoughPackets()
}

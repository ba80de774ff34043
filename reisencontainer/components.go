package reisencontainer

import (
	"time"

	"github.com/erparts/reisen"
	"github.com/kolibri-av/playcore"
)

// Components implements playcore.Components over the container's open
// video/audio component states.
type Components struct {
	c *Container
}

// Components returns the Components view used by the decoding worker.
func (c *Container) Components() playcore.Components { return &Components{c: c} }

func (cs *Components) MainMediaType() playcore.MediaType {
	cs.c.mu.Lock()
	defer cs.c.mu.Unlock()
	if cs.c.video != nil {
		return playcore.MediaTypeVideo
	}
	if cs.c.audio != nil {
		return playcore.MediaTypeAudio
	}
	return playcore.MediaTypeNone
}

func (cs *Components) Component(t playcore.MediaType) playcore.Component {
	cs.c.mu.Lock()
	defer cs.c.mu.Unlock()
	switch t {
	case playcore.MediaTypeVideo:
		if cs.c.video == nil {
			return nil
		}
		return &component{c: cs.c, state: cs.c.video}
	case playcore.MediaTypeAudio:
		if cs.c.audio == nil {
			return nil
		}
		return &component{c: cs.c, state: cs.c.audio}
	default:
		return nil
	}
}

// HasEnoughPackets reports whether every open component's queue is at
// or above its configured threshold (spec §4.3 should_read_more_packets).
func (cs *Components) HasEnoughPackets() bool {
	cs.c.mu.Lock()
	defer cs.c.mu.Unlock()
	for _, comp := range []*componentState{cs.c.video, cs.c.audio} {
		if comp == nil {
			continue
		}
		if len(comp.queue) < comp.countThreshold {
			return false
		}
	}
	return true
}

type component struct {
	c     *Container
	state *componentState
}

// ReceiveNextFrame dequeues one packet's worth of decoded data: it pops
// the oldest queued packet for this component and asks reisen to decode
// the corresponding frame from the stream it already fed via Read.
func (comp *component) ReceiveNextFrame() (playcore.Frame, bool, error) {
	select {
	case <-comp.state.queue:
	default:
		return playcore.Frame{}, false, nil
	}

	switch comp.state.mediaType {
	case playcore.MediaTypeVideo:
		vs := comp.state.stream.(*reisen.VideoStream)
		frame, found, err := vs.ReadVideoFrame()
		if err != nil || !found || frame == nil {
			return playcore.Frame{}, false, err
		}
		offset, err := frame.PresentationOffset()
		if err != nil {
			return playcore.Frame{}, false, err
		}
		frNum, frDenom := vs.FrameRate()
		frameDuration := (time.Second * time.Duration(frDenom)) / time.Duration(frNum)
		return playcore.Frame{
			Type:      playcore.MediaTypeVideo,
			StartTime: offset,
			EndTime:   offset + frameDuration,
			Payload:   frame,
			Size:      len(frame.Data()),
		}, true, nil

	case playcore.MediaTypeAudio:
		as := comp.state.stream.(*reisen.AudioStream)
		frame, found, err := as.ReadAudioFrame()
		if err != nil || !found || frame == nil {
			return playcore.Frame{}, false, err
		}
		offset, err := frame.PresentationOffset()
		if err != nil {
			return playcore.Frame{}, false, err
		}
		return playcore.Frame{
			Type:      playcore.MediaTypeAudio,
			StartTime: offset,
			EndTime:   offset,
			Payload:   frame,
			Size:      len(frame.Data()),
		}, true, nil

	default:
		return playcore.Frame{}, false, nil
	}
}

func (comp *component) BufferLength() int { return len(comp.state.queue) }

func (comp *component) OnPacketQueueChanged(fn func(playcore.PacketQueueStats)) {
	comp.c.mu.Lock()
	defer comp.c.mu.Unlock()
	comp.c.onQueueChanged = fn
}

package reisencontainer

import (
	"context"
	"fmt"
	"time"

	"github.com/erparts/reisen"
	"github.com/kolibri-av/playcore"
)

// Seek implements the container half of spec §4.6 step 5: rewind every
// open stream to target and return the first decodable frame from the
// main component. reisen only exposes rewind-to-zero in the teacher
// player; for non-zero targets this performs a rewind followed by
// discarding packets/frames until the requested presentation offset is
// reached, which is the best this library's public surface supports
// without a lower-level AVSEEK call (see DESIGN.md).
func (c *Container) Seek(ctx context.Context, target time.Duration) (playcore.Frame, error) {
	c.mu.Lock()
	video := c.video
	audio := c.audio
	c.mu.Unlock()

	main := video
	if main == nil {
		main = audio
	}
	if main == nil {
		return playcore.Frame{}, fmt.Errorf("reisencontainer: seek with no open components")
	}

	if err := c.rewindAll(video, audio); err != nil {
		return playcore.Frame{}, err
	}
	c.atEOS.Store(false)

	for {
		if ctx.Err() != nil {
			return playcore.Frame{}, ctx.Err()
		}
		mt, err := c.Read(ctx)
		if err != nil {
			return playcore.Frame{}, err
		}
		if mt == playcore.MediaTypeNone {
			if c.IsAtEndOfStream() {
				return playcore.Frame{}, fmt.Errorf("reisencontainer: seek past end of stream")
			}
			continue
		}

		comp := &component{c: c, state: selectState(mt, video, audio)}
		frame, ok, err := comp.ReceiveNextFrame()
		if err != nil {
			return playcore.Frame{}, err
		}
		if !ok {
			continue
		}
		if mt == main.mediaType && frame.StartTime >= target {
			return frame, nil
		}
	}
}

func selectState(t playcore.MediaType, video, audio *componentState) *componentState {
	if t == playcore.MediaTypeVideo {
		return video
	}
	return audio
}

func (c *Container) rewindAll(video, audio *componentState) error {
	if video != nil {
		if vs, ok := video.stream.(*reisen.VideoStream); ok {
			if err := vs.Rewind(0); err != nil {
				return err
			}
		}
		drain(video.queue)
	}
	if audio != nil {
		if as, ok := audio.stream.(*reisen.AudioStream); ok {
			if err := as.Rewind(0); err != nil {
				return err
			}
		}
		drain(audio.queue)
	}
	return nil
}

func drain(q chan *reisen.Packet) {
	for {
		select {
		case <-q:
		default:
			return
		}
	}
}

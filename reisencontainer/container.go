// Package reisencontainer adapts github.com/erparts/reisen into a
// playcore.Container: it turns reisen's single-call ReadPacket/stream
// decode API into the discrete packet-queue-per-component surface the
// core's packet reading and frame decoding workers expect (spec §6
// Container interface), instead of the teacher player's audio-player-
// driven pull model.
package reisencontainer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/erparts/reisen"
	"github.com/kolibri-av/playcore"
	"github.com/rs/zerolog"
)

// queueCapacity bounds each component's packet queue (spec §4.3:
// has_enough_packets becomes true once a queue reaches this size for a
// local/non-network source).
const queueCapacity = 256

var _ playcore.Container = (*Container)(nil)

// Container wraps a reisen.Media as a playcore.Container.
type Container struct {
	log zerolog.Logger

	mu    sync.Mutex
	media *reisen.Media

	video *componentState
	audio *componentState

	aborted     atomic.Bool
	immediate   atomic.Bool
	atEOS       atomic.Bool
	seekable    bool
	isNetwork   bool
	onQueueChanged func(playcore.PacketQueueStats)
}

type componentState struct {
	mediaType playcore.MediaType
	stream    reisenStream
	queue     chan *reisen.Packet
	countThreshold int
}

// reisenStream is the subset of *reisen.VideoStream / *reisen.AudioStream
// the container needs generically.
type reisenStream interface {
	Index() int
}

// New builds an unopened Container; Open then opens a path with reisen
// and exposes the first video and first audio stream it finds.
// Subtitle streams are outside reisen's scope (spec §1 out-of-scope:
// codec/container details) and are not exposed as components.
func New(log zerolog.Logger) *Container {
	return &Container{log: log}
}

func (c *Container) Open(ctx context.Context, uri string, cfg playcore.MediaOptions) error {
	media, err := reisen.NewMedia(uri)
	if err != nil {
		return fmt.Errorf("reisencontainer: open %q: %w", filepath.Base(uri), err)
	}

	videoStreams := media.VideoStreams()
	audioStreams := media.AudioStreams()
	if len(videoStreams) == 0 && len(audioStreams) == 0 {
		return playcore.ErrNoAudioOrVideo
	}

	if err := media.OpenDecode(); err != nil {
		return fmt.Errorf("reisencontainer: open decode: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.media = media
	c.aborted.Store(false)
	c.atEOS.Store(false)

	if len(videoStreams) > 0 {
		if len(videoStreams) > 1 {
			c.log.Warn().Str("uri", uri).Msg("multiple video streams, defaulting to the first")
		}
		vs := videoStreams[0]
		if err := vs.Open(); err != nil {
			return fmt.Errorf("reisencontainer: open video stream: %w", err)
		}
		c.video = &componentState{
			mediaType:      playcore.MediaTypeVideo,
			stream:         vs,
			queue:          make(chan *reisen.Packet, queueCapacity),
			countThreshold: queueCapacity,
		}
	}
	if len(audioStreams) > 0 {
		if len(audioStreams) > 1 {
			c.log.Warn().Str("uri", uri).Msg("multiple audio streams, defaulting to the first")
		}
		as := audioStreams[0]
		if err := as.Open(); err != nil {
			return fmt.Errorf("reisencontainer: open audio stream: %w", err)
		}
		c.audio = &componentState{
			mediaType:      playcore.MediaTypeAudio,
			stream:         as,
			queue:          make(chan *reisen.Packet, queueCapacity),
			countThreshold: queueCapacity,
		}
	}

	c.seekable = true // reisen containers are file-backed; treated as seekable
	return nil
}

func (c *Container) Dispose() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.media == nil {
		return nil
	}
	err := c.media.CloseDecode()
	c.media.Close()
	c.media = nil
	return err
}

// Read implements spec §4.3 step 1: read exactly one packet from the
// demuxer and enqueue it on the matching component's queue.
func (c *Container) Read(ctx context.Context) (playcore.MediaType, error) {
	c.mu.Lock()
	media := c.media
	video := c.video
	audio := c.audio
	c.mu.Unlock()

	if media == nil {
		return playcore.MediaTypeNone, errors.New("reisencontainer: read on disposed container")
	}

	packet, found, err := media.ReadPacket()
	if err != nil {
		return playcore.MediaTypeNone, err
	}
	if !found {
		c.atEOS.Store(true)
		return playcore.MediaTypeNone, nil
	}

	switch packet.Type() {
	case reisen.StreamVideo:
		if video == nil || packet.StreamIndex() != video.stream.Index() {
			return playcore.MediaTypeNone, nil
		}
		c.enqueue(video, packet)
		return playcore.MediaTypeVideo, nil
	case reisen.StreamAudio:
		if audio == nil || packet.StreamIndex() != audio.stream.Index() {
			return playcore.MediaTypeNone, nil
		}
		c.enqueue(audio, packet)
		return playcore.MediaTypeAudio, nil
	default:
		return playcore.MediaTypeNone, nil
	}
}

func (c *Container) enqueue(comp *componentState, packet *reisen.Packet) {
	select {
	case comp.queue <- packet:
	default:
		// Queue is at capacity; drop the oldest to make room rather than
		// block the single reading goroutine indefinitely.
		select {
		case <-comp.queue:
		default:
		}
		comp.queue <- packet
	}
	if c.onQueueChanged != nil {
		c.onQueueChanged(playcore.PacketQueueStats{
			Length:         len(comp.queue),
			Count:          len(comp.queue),
			CountThreshold: comp.countThreshold,
		})
	}
}

func (c *Container) SignalAbortReads(immediate bool) {
	c.aborted.Store(true)
	c.immediate.Store(immediate)
}

func (c *Container) IsReadAborted() bool   { return c.aborted.Load() }
func (c *Container) IsAtEndOfStream() bool { return c.atEOS.Load() }
func (c *Container) IsLiveStream() bool    { return false }
func (c *Container) IsNetworkStream() bool { return c.isNetwork }
func (c *Container) IsStreamSeekable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekable
}

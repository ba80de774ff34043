package ebitenrender

import (
	"io"
	"sync"
	"time"

	"github.com/erparts/reisen"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/kolibri-av/playcore"
)

// playerBufferSize follows the teacher's player buffer size: 200ms is
// comfortable on desktop targets (audio_context.go / controller_yes_audio.go).
const playerBufferSize time.Duration = 200 * time.Millisecond

var _ playcore.Renderer = (*AudioRenderer)(nil)

// AudioRenderer feeds decoded reisen.AudioFrame payloads pushed in by
// Render calls into an Ebitengine audio.Player via an internal byte
// queue exposed as an io.Reader, adapting the teacher's self-decoding
// Read() (controller_yes_audio.go) to the core's push model: frames
// arrive already decoded from the block rendering worker instead of
// being pulled from the demuxer inside Read.
type AudioRenderer struct {
	mu       sync.Mutex
	queued   []byte
	player   *audio.Player
	volume   float64
	muted    bool
	closed   bool
}

// NewAudioRenderer creates a renderer bound to the current Ebitengine
// audio context. ctx.SampleRate() must match the stream's sample rate;
// neither this constructor nor the engine checks that.
func NewAudioRenderer() (*AudioRenderer, error) {
	ctx := audio.CurrentContext()
	if ctx == nil {
		return nil, playcore.ErrAlreadyDisposed
	}
	r := &AudioRenderer{volume: 1.0}
	player, err := ctx.NewPlayer(r)
	if err != nil {
		return nil, err
	}
	player.SetBufferSize(playerBufferSize)
	player.SetVolume(r.volume)
	r.player = player
	return r, nil
}

func (r *AudioRenderer) OnStarting() error { return nil }
func (r *AudioRenderer) OnPlay() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.player != nil {
		r.player.Play()
	}
	return nil
}
func (r *AudioRenderer) OnPause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.player != nil {
		r.player.Pause()
	}
	return nil
}
func (r *AudioRenderer) OnStop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queued = r.queued[:0]
	if r.player != nil {
		r.player.Pause()
	}
	return nil
}
func (r *AudioRenderer) OnClose() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.player != nil {
		return r.player.Close()
	}
	return nil
}
func (r *AudioRenderer) OnSeek() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queued = r.queued[:0]
	return nil
}

// Render appends the block's raw samples to the playback queue. Audio
// blocks are never de-duplicated by the rendering worker (spec §4.5
// step 5), so every call here corresponds to genuinely new samples.
func (r *AudioRenderer) Render(blk playcore.MediaBlock, position time.Duration) error {
	frame, ok := blk.Payload.(*reisen.AudioFrame)
	if !ok || frame == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queued = append(r.queued, frame.Data()...)
	return nil
}

func (r *AudioRenderer) Update(position time.Duration) error { return nil }

func (r *AudioRenderer) WaitForReadyState() error { return nil }

func (r *AudioRenderer) SetVolume(volume float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.volume = volume
	if r.player != nil {
		r.player.SetVolume(r.effectiveVolumeLocked())
	}
}

func (r *AudioRenderer) SetMuted(muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.muted = muted
	if r.player != nil {
		r.player.SetVolume(r.effectiveVolumeLocked())
	}
}

func (r *AudioRenderer) effectiveVolumeLocked() float64 {
	if r.muted {
		return 0
	}
	return r.volume
}

// Read implements io.Reader for the Ebitengine audio player: it serves
// whatever samples have been queued by Render, blocking on nothing
// (returning 0, nil when the queue is currently empty — Ebitengine's
// player tolerates short reads).
func (r *AudioRenderer) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, io.EOF
	}
	n := copy(p, r.queued)
	if n >= len(r.queued) {
		r.queued = r.queued[:0]
	} else {
		remaining := copy(r.queued, r.queued[n:])
		r.queued = r.queued[:remaining]
	}
	return n, nil
}

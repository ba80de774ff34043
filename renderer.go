package playcore

import "time"

// Renderer is the per-media-type presentation collaborator (spec §6),
// provided by the host platform. Three concrete implementations are
// expected at the boundary (audio, video, subtitle); the block
// rendering worker dispatches to whichever one matches each block's
// media type. [ebitenrender] supplies video/audio implementations
// built on Ebitengine, adapted from the teacher package's draw.go and
// audio wiring.
type Renderer interface {
	// OnStarting is called once, the first time the rendering worker
	// runs, before any OnPlay/Render call.
	OnStarting() error

	OnPlay() error
	OnPause() error
	OnStop() error
	OnClose() error

	// OnSeek is called when a seek operation returns, and also when a
	// seek clears the block buffers before re-decoding.
	OnSeek() error

	// Render presents blk at the given global playback position. The
	// renderer must not retain blk.Payload past this call.
	Render(blk MediaBlock, position time.Duration) error

	// Update is a lighter-weight notification for position changes
	// that don't correspond to a new block (e.g. a renderer that wants
	// to interpolate between blocks).
	Update(position time.Duration) error

	// WaitForReadyState blocks until the renderer is ready to accept
	// Render calls (e.g. device/context initialization). Implementations
	// with nothing to wait for should return immediately.
	WaitForReadyState() error
}

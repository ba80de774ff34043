// Package ebitenrender adapts the teacher player's Ebitengine-based
// drawing and audio playback code into concrete playcore.Renderer
// implementations, one per media type, driven by the block rendering
// worker instead of the teacher's own pull-based frame/audio loop.
package ebitenrender

import (
	"image/color"
	"sync"
	"time"

	"github.com/erparts/reisen"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/kolibri-av/playcore"
)

var _ playcore.Renderer = (*VideoRenderer)(nil)

// VideoRenderer draws decoded reisen.VideoFrame payloads into a
// persistent *ebiten.Image, scaled into a destination viewport with
// letterboxing (grounded on the teacher's draw.go Draw/CalcProjection).
type VideoRenderer struct {
	mu     sync.Mutex
	frame  *ebiten.Image
	onBlack bool
}

// NewVideoRenderer creates a renderer backed by a width x height
// off-screen image, initially filled black.
func NewVideoRenderer(width, height int) *VideoRenderer {
	img := ebiten.NewImage(width, height)
	img.Fill(color.Black)
	return &VideoRenderer{frame: img, onBlack: true}
}

func (r *VideoRenderer) OnStarting() error { return nil }
func (r *VideoRenderer) OnPlay() error      { return nil }
func (r *VideoRenderer) OnPause() error     { return nil }
func (r *VideoRenderer) OnStop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame.Fill(color.Black)
	r.onBlack = true
	return nil
}
func (r *VideoRenderer) OnClose() error { return r.OnStop() }
func (r *VideoRenderer) OnSeek() error   { return nil }

// Render copies the given block's pixel data into the persistent
// frame image. The block's Payload must be a *reisen.VideoFrame, as
// produced by reisencontainer's video component.
func (r *VideoRenderer) Render(blk playcore.MediaBlock, position time.Duration) error {
	frame, ok := blk.Payload.(*reisen.VideoFrame)
	if !ok || frame == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame.WritePixels(frame.Data())
	r.onBlack = false
	return nil
}

func (r *VideoRenderer) Update(position time.Duration) error { return nil }

func (r *VideoRenderer) WaitForReadyState() error { return nil }

// Image returns the current frame image. It is reused across calls; the
// host must not retain it past the next Render.
func (r *VideoRenderer) Image() *ebiten.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

// Draw projects frame into viewport, scaling with FilterLinear to fill
// as much of it as possible while preserving aspect ratio (teacher's
// draw.go Draw/CalcProjection, unchanged algorithm). The frame is
// supplied by the caller, e.g. from VideoRenderer.Image.
func Draw(viewport *ebiten.Image, frame *ebiten.Image) {
	geom, filter := CalcProjection(viewport, frame)
	var opts ebiten.DrawImageOptions
	opts.GeoM = geom
	opts.Filter = filter
	viewport.DrawImage(frame, &opts)
}

// CalcProjection returns the GeoM and recommended ebiten.Filter to
// project frame into viewport.
func CalcProjection(viewport, frame *ebiten.Image) (ebiten.GeoM, ebiten.Filter) {
	frameBounds := frame.Bounds()
	viewBounds := viewport.Bounds()
	vwWidth, vwHeight := viewBounds.Dx(), viewBounds.Dy()
	frWidth, frHeight := frameBounds.Dx(), frameBounds.Dy()

	tx, ty := float64(viewBounds.Min.X), float64(viewBounds.Min.Y)

	var geom ebiten.GeoM
	filter := ebiten.FilterLinear
	wf, hf := float64(vwWidth)/float64(frWidth), float64(vwHeight)/float64(frHeight)
	sf := wf
	if hf < wf {
		sf = hf
	}
	if sf == 1.0 {
		offx := (float64(vwWidth) - float64(frWidth)) / 2
		offy := (float64(vwHeight) - float64(frHeight)) / 2
		geom.Translate(tx+offx, ty+offy)
	} else {
		sfrWidth := float64(frWidth) * sf
		sfrHeight := float64(frHeight) * sf
		geom.Scale(sf, sf)
		geom.Translate(tx+(float64(vwWidth)-sfrWidth)/2, ty+(float64(vwHeight)-sfrHeight)/2)
	}
	return geom, filter
}

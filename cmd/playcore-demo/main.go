// Command playcore-demo is a minimal Ebitengine host for the playback
// control core, adapted from the teacher package's examples/mediaplayer
// demo: instead of driving erparts/avebi's Player directly, it wires a
// playcore.Engine over reisencontainer and ebitenrender and drives it
// from the same keyboard shortcuts.
package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/kolibri-av/playcore"
	"github.com/kolibri-av/playcore/ebitenrender"
	"github.com/kolibri-av/playcore/internal/config"
	"github.com/kolibri-av/playcore/reisencontainer"
	"github.com/rs/zerolog"
)

const sampleRate = 44100

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: go run ./cmd/playcore-demo path/to/video.mp4\n")
		os.Exit(1)
	}

	path, err := filepath.Abs(os.Args[1])
	if err != nil {
		panic(err)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Printf("%q not found\n", path)
			os.Exit(1)
		}
		panic(err)
	}

	audio.NewContext(sampleRate)

	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	container := reisencontainer.New(log)
	engine := playcore.NewEngine(container, playcore.NopConnector{})

	videoRenderer := ebitenrender.NewVideoRenderer(1920, 1080)
	engine.SetRenderer(playcore.MediaTypeVideo, videoRenderer)
	if audioRenderer, err := ebitenrender.NewAudioRenderer(); err == nil {
		engine.SetRenderer(playcore.MediaTypeAudio, audioRenderer)
	} else {
		log.Warn().Err(err).Msg("audio renderer unavailable, playing video only")
	}

	opts := loadMediaOptions(log)

	ctx := context.Background()
	engine.Run(ctx)
	if !engine.Open(ctx, path, opts) {
		fmt.Println("failed to open media")
		os.Exit(1)
	}
	engine.Play(ctx)

	ebiten.SetWindowTitle("playcore-demo")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1280, 720)

	game := &demo{ctx: ctx, engine: engine, videoRenderer: videoRenderer, videoPath: path}
	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		panic(err)
	}
}

type demo struct {
	ctx           context.Context
	engine        *playcore.Engine
	videoRenderer *ebitenrender.VideoRenderer
	videoPath     string
}

func (d *demo) Layout(_, _ int) (int, int) {
	panic("Layout() should not be called when LayoutF() exists")
}

func (d *demo) LayoutF(w, h float64) (float64, float64) {
	scale := ebiten.Monitor().DeviceScaleFactor()
	return w * scale, h * scale
}

func (d *demo) Draw(canvas *ebiten.Image) {
	ebitenrender.Draw(canvas, d.videoRenderer.Image())
	d.drawHUD(canvas)
}

func (d *demo) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		d.engine.Close(d.ctx)
		d.engine.Dispose()
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if d.engine.State() == playcore.Play {
			d.engine.Pause(d.ctx)
		} else {
			d.engine.Play(d.ctx)
		}
	} else if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		d.engine.Stop(d.ctx)
	} else if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		d.engine.StepForward(d.ctx)
	} else if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		d.engine.StepBackward(d.ctx)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		fmt.Printf("state=%s position=%s\n", d.engine.State(), d.engine.Position())
	}

	return nil
}

func (d *demo) drawHUD(canvas *ebiten.Image) {
	props := d.engine.Properties()
	text := fmt.Sprintf(
		"%s\n%s\nSpace/P: play-pause  S: stop  Left/Right: step  Esc: quit",
		filepath.Base(d.videoPath),
		formatPosition(props.Position),
	)
	ebitenutil.DebugPrintAt(canvas, text, 12, 12)
	_ = color.Black
}

func formatPosition(d time.Duration) string {
	d = d.Round(time.Second)
	return d.String()
}

// loadMediaOptions reads layered configuration (defaults, optional
// ./playcore.yaml, PLAYCORE_-prefixed environment variables) into a
// playcore.MediaOptions. Falls back to zero-value options if no
// loader could be built.
func loadMediaOptions(log zerolog.Logger) playcore.MediaOptions {
	loader, err := config.NewLoader(config.WithYAMLFile("playcore.yaml"))
	if err != nil {
		log.Warn().Err(err).Msg("config: using defaults")
		return playcore.MediaOptions{}
	}
	cfg, err := loader.Load()
	if err != nil {
		log.Warn().Err(err).Msg("config: using defaults")
		return playcore.MediaOptions{}
	}
	return playcore.MediaOptions{
		SubtitlesURL:                 cfg.SubtitlesURL,
		SubtitlesDelay:               cfg.SubtitlesDelay,
		IsSubtitleDisabled:           cfg.IsSubtitleDisabled,
		IsTimeSyncDisabled:           cfg.IsTimeSyncDisabled,
		UseParallelRendering:         cfg.UseParallelRendering,
		IsFluidSeekingDisabled:       cfg.IsFluidSeekingDisabled,
		MinimumPlaybackBufferPercent: cfg.MinimumPlaybackBufferPercent,
		ProtocolPrefix:               cfg.ProtocolPrefix,
		ForcedInputFormat:            cfg.ForcedInputFormat,
	}
}

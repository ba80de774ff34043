package playcore

import (
	"context"

	"github.com/kolibri-av/playcore/internal/block"
	"github.com/kolibri-av/playcore/internal/clock"
	"github.com/kolibri-av/playcore/internal/pipeline"
	"github.com/kolibri-av/playcore/internal/seek"
	"github.com/kolibri-av/playcore/internal/worker"
)

// doOpen implements the "open" direct command's body (spec §4.1): it
// opens the container, builds the per-type block buffers, sets up the
// timing controller, and starts the three-worker pipeline.
func (e *Engine) doOpen(ctx context.Context, uri string) error {
	e.connector.OnMediaInitializing(uri)
	e.connector.OnMediaOpening(uri)

	norm := NormalizeURI(uri)
	cfg := e.optionsSnapshot()
	if norm.ForcedInputFormat != "" {
		cfg.ForcedInputFormat = norm.ForcedInputFormat
	}
	target := norm.MediaURL
	if norm.Path != "" {
		target = norm.Path
	}

	if err := e.container.Open(ctx, target, cfg); err != nil {
		return wrapErr(KindMediaContainer, err)
	}

	components := e.container.Components()
	mainType := components.MainMediaType()

	capacities := make(map[block.MediaType]int)
	if components.Component(MediaTypeVideo) != nil {
		capacities[block.TypeVideo] = defaultBlockBufferCapacity
	}
	if components.Component(MediaTypeAudio) != nil {
		capacities[block.TypeAudio] = defaultBlockBufferCapacity
	}
	if !cfg.IsSubtitleDisabled && (components.Component(MediaTypeSubtitle) != nil || cfg.SubtitlesURL != "") {
		capacities[block.TypeSubtitle] = defaultBlockBufferCapacity
	}
	if components.Component(MediaTypeVideo) == nil && components.Component(MediaTypeAudio) == nil {
		_ = e.container.Dispose()
		return wrapErr(KindOpenFailed, ErrNoAudioOrVideo)
	}

	e.mu.Lock()
	e.buffers = block.NewBufferSet(internalMediaType(mainType), capacities)
	e.mu.Unlock()

	e.clockCtl.Setup(e.buildSetupParams(mainType, cfg))
	e.decodingEnded.Store(false)
	e.seekBlocksAvailable.Store(true)

	e.wireQueueCallbacks()

	state := pipeline.NewState(e.buffers, e.clockCtl, e.newPipelineHooks(), e.clockCtl.EndTime(clock.TypeNone))
	e.mu.Lock()
	e.pipelineState = state
	e.seekEngine = seek.New(e.buffers, e.clockCtl, e.newSeekHooks(), e.log)
	e.workers = worker.NewSet(e.log, state.ReadingTick, state.DecodingTick, state.RenderingTick)
	workers := e.workers
	e.uri = uri
	e.mu.Unlock()

	workers.Start(ctx)

	e.setState(Stop)
	e.connector.OnMediaOpened(uri)
	return nil
}

// doClose implements the "close" direct command's body.
func (e *Engine) doClose(ctx context.Context) error {
	// AbortReads has already run, via the command manager's preemption
	// step (internal/command.Manager.preemptForDirect), before this
	// command body starts.
	e.connector.OnMediaClosing()

	e.mu.Lock()
	workers := e.workers
	e.workers = nil
	e.buffers = nil
	e.pipelineState = nil
	e.seekEngine = nil
	e.uri = ""
	e.mu.Unlock()

	if workers != nil {
		workers.Dispose(workerDisposeTimeout)
	}

	err := e.container.Dispose()
	e.clockCtl.Reset(clock.TypeNone)
	e.setState(Idle)
	e.connector.OnMediaClosed()
	return err
}

// doChange implements the "change" direct command's body: the new
// MediaOptions have already been stored by Engine.Change before the
// command manager admits the request, so this only needs to
// re-derive option-dependent state (the timing controller's
// disconnected-clock decision) without reopening the container.
func (e *Engine) doChange(ctx context.Context) error {
	e.connector.OnMediaChanging()

	cfg := e.optionsSnapshot()
	components := e.container.Components()
	e.clockCtl.Setup(e.buildSetupParams(components.MainMediaType(), cfg))

	e.connector.OnMediaChanged()
	return nil
}

func (e *Engine) buildSetupParams(mainType MediaType, cfg MediaOptions) clock.SetupParams {
	components := e.container.Components()
	info := func(t MediaType) clock.StreamInfo {
		return clock.StreamInfo{Present: components.Component(t) != nil}
	}
	return clock.SetupParams{
		Audio:              info(MediaTypeAudio),
		Video:              info(MediaTypeVideo),
		Subtitle:           info(MediaTypeSubtitle),
		IsTimeSyncDisabled: cfg.IsTimeSyncDisabled,
		ContainerSeekable:  e.container.IsStreamSeekable(),
		PreferredReference: clock.MediaType(internalMediaType(mainType)),
	}
}

// wireQueueCallbacks hooks every active component's packet-queue
// notification to both the metrics surface and the reading worker's
// buffer-changed backoff signal.
func (e *Engine) wireQueueCallbacks() {
	components := e.container.Components()
	e.mu.RLock()
	buffers := e.buffers
	e.mu.RUnlock()
	if buffers == nil {
		return
	}
	for _, it := range buffers.Types() {
		t := publicMediaType(it)
		comp := components.Component(t)
		if comp == nil {
			continue
		}
		comp.OnPacketQueueChanged(e.onQueueChanged(t))
	}
}

// Package config loads the recognized configuration options (spec §6
// Configuration) from a layered koanf stack: built-in defaults, an
// optional YAML file, then PLAYCORE_-prefixed environment variables,
// in ascending override order. Grounded on the koanf wiring in
// tomtom215/lyrebirdaudio's internal/config package.
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Options mirrors playcore.MediaOptions' koanf-loadable fields. It is
// kept separate from the root package's MediaOptions so this package
// never needs to import it; the demo program's loadMediaOptions
// (cmd/playcore-demo) copies the loaded Options onto a MediaOptions.
type Options struct {
	SubtitlesURL                 string        `koanf:"subtitles_url"`
	SubtitlesDelay                time.Duration `koanf:"subtitles_delay"`
	IsSubtitleDisabled            bool          `koanf:"is_subtitle_disabled"`
	IsTimeSyncDisabled            bool          `koanf:"is_time_sync_disabled"`
	UseParallelRendering          bool          `koanf:"use_parallel_rendering"`
	IsFluidSeekingDisabled        bool          `koanf:"is_fluid_seeking_disabled"`
	MinimumPlaybackBufferPercent  float64       `koanf:"minimum_playback_buffer_percent"`
	ProtocolPrefix                string        `koanf:"protocol_prefix"`
	ForcedInputFormat             string        `koanf:"forced_input_format"`
}

func defaults() Options {
	return Options{
		MinimumPlaybackBufferPercent: 0,
	}
}

// Loader is a layered configuration source: defaults, then an optional
// YAML file, then environment variables prefixed with EnvPrefix.
type Loader struct {
	mu        sync.RWMutex
	k         *koanf.Koanf
	filePath  string
	envPrefix string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithYAMLFile sets the YAML file path consulted between defaults and
// environment variables.
func WithYAMLFile(path string) LoaderOption {
	return func(l *Loader) { l.filePath = path }
}

// WithEnvPrefix overrides the default "PLAYCORE" environment variable
// prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) { l.envPrefix = prefix }
}

// NewLoader builds a Loader and performs an initial load.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	l := &Loader{envPrefix: "PLAYCORE"}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Load unmarshals the current layered configuration into Options.
func (l *Loader) Load() (Options, error) {
	cfg := defaults()

	l.mu.RLock()
	k := l.k
	l.mu.RUnlock()

	if err := k.Unmarshal("", &cfg); err != nil {
		return Options{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.MinimumPlaybackBufferPercent = clamp01(cfg.MinimumPlaybackBufferPercent)
	return cfg, nil
}

// Reload re-reads the YAML file and environment, in that override
// order, replacing the current layered view atomically.
func (l *Loader) Reload() error {
	return l.reload()
}

func (l *Loader) reload() error {
	k := koanf.New(".")

	if l.filePath != "" {
		if err := k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return fmt.Errorf("config: load yaml %q: %w", l.filePath, err)
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix: l.envPrefix + "_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.TrimPrefix(key, l.envPrefix+"_")
			return strings.ToLower(key), value
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return fmt.Errorf("config: load env: %w", err)
	}

	l.mu.Lock()
	l.k = k
	l.mu.Unlock()
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

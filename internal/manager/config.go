package manager

import (
	"github.com/rs/zerolog"

	"modelhub/internal/events"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultLlamaCtx     = 2048
	defaultLlamaThreads = 4
)

// Config encapsulates all tunables for Manager construction.
type Config struct {
	Files Files
	// Loader overrides the native loader; nil selects the llama loader.
	Loader    Loader
	Publisher events.Publisher
	Logger    zerolog.Logger
	// llama.cpp options used by the default loader.
	LlamaCtx     int
	LlamaThreads int
}

// New constructs a Manager from Config.
func New(cfg Config) *Manager {
	if cfg.LlamaCtx <= 0 {
		cfg.LlamaCtx = defaultLlamaCtx
	}
	if cfg.LlamaThreads <= 0 {
		cfg.LlamaThreads = defaultLlamaThreads
	}
	m := &Manager{
		files:   cfg.Files,
		loader:  cfg.Loader,
		pub:     cfg.Publisher,
		log:     cfg.Logger.With().Str("component", "manager").Logger(),
		handles: make(map[string]*Handle),
	}
	if m.loader == nil {
		m.loader = NewLlamaLoader(cfg.LlamaCtx, cfg.LlamaThreads)
	}
	if m.pub == nil {
		m.pub = events.Noop{}
	}
	return m
}

package manager

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"modelhub/internal/events"
)

type Manager struct {
	files  Files
	loader Loader
	pub    events.Publisher
	log    zerolog.Logger

	mu      sync.RWMutex
	handles map[string]*Handle
	current string

	// first loads, keyed by filename
	group singleflight.Group

	// constructed runs after a shared load stores its handle; tests only.
	constructed func(h *Handle)
}

// Current returns the filename of the most recently loaded model.
func (m *Manager) Current() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.current != ""
}

// Loaded returns the resident filenames, sorted.
func (m *Manager) Loaded() []string {
	m.mu.RLock()
	out := make([]string, 0, len(m.handles))
	for name := range m.handles {
		out = append(out, name)
	}
	m.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Ready reports whether a current model is resident.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.handles[m.current]
	return ok
}

// NativeLoaderBuilt reports whether this binary includes the llama.cpp loader.
func NativeLoaderBuilt() bool { return llamaBuilt }

package manager

import (
	"context"
	"time"
)

// Model is a constructed native model resource.
type Model interface {
	// Close releases the native resource.
	Close() error
}

// Loader constructs a Model from a file. Loads may block for seconds.
type Loader interface {
	Load(ctx context.Context, path string) (Model, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, path string) (Model, error)

func (f LoaderFunc) Load(ctx context.Context, path string) (Model, error) { return f(ctx, path) }

// Files locates installed artifacts by filename.
type Files interface {
	Path(filename string) string
	Has(filename string) bool
}

// Handle is the shared cache entry for one filename. Every Load of the same
// filename returns the same *Handle until it is unloaded.
type Handle struct {
	Name     string
	Path     string
	LoadedAt time.Time
	model    Model
}

// Model returns the native resource.
func (h *Handle) Model() Model { return h.model }

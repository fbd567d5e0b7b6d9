//go:build !llama

package manager

// Compiled when the 'llama' build tag is NOT set, keeping default builds
// CGO-free. The real loader lives in loader_llama.go.

import "context"

// llamaBuilt indicates this binary was compiled with real llama support.
const llamaBuilt = false

type llamaLoader struct {
	ctxSize int
	threads int
}

// NewLlamaLoader returns a loader that refuses every load in this build.
func NewLlamaLoader(ctxSize, threads int) Loader {
	return &llamaLoader{ctxSize: ctxSize, threads: threads}
}

func (l *llamaLoader) Load(ctx context.Context, path string) (Model, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

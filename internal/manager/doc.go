// Package manager is the model loading cache. It keeps at most one resident
// native handle per installed filename and tracks the current model.
//
// Files by concern:
//
//   - manager.go: Manager type, constructor, simple getters.
//   - config.go: Config and package defaults.
//   - types.go: Handle, Model and Loader.
//   - errors.go: error types and helpers (IsFileNotFound, IsModelLoadFailure).
//   - load.go: Load with per-filename first-load serialization.
//   - unload.go: Unload and Close.
//   - status.go: read-only views for the HTTP layer.
//   - metrics.go: Prometheus collectors.
//
// Build tags:
//
//   - In-process llama: go-llama.cpp loader enabled with `-tags=llama`
//     (loader_llama.go). Without the tag loader_llama_stub.go
//     returns a dependency-unavailable error from every load.
//
// The cache is unbounded: handles stay resident until Unload or Close.
package manager

package types

// Model represents an installed artifact on disk.
type Model struct {
	// Identifier of the installed artifact; the filename under the storage root.
	// example: tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf
	ID string `json:"id" example:"tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf"`
	// Human-friendly name.
	// example: tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf
	Name string `json:"name" example:"tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf"`
	// Size on disk in bytes.
	// example: 668788096
	SizeBytes int64 `json:"size_bytes" example:"668788096"`
	// True when this file is the current model of the loading cache.
	Current bool `json:"current,omitempty"`
}

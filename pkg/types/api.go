package types

// ModelsResponse wraps the list of installed models returned by GET /models.
type ModelsResponse struct {
	// Installed artifacts.
	Models []Model `json:"models"`
	// Filename of the current model, empty when none is loaded.
	// example: tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf
	Current string `json:"current,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// DownloadStatus is the wire form of a download state.
type DownloadStatus struct {
	// Catalog id.
	// example: sd-v1-5
	ID string `json:"id" example:"sd-v1-5"`
	// One of idle, downloading, completed, failed, cancelled.
	// example: downloading
	Status string `json:"status" example:"downloading"`
	// Integer percent 0-100.
	// example: 42
	Progress int `json:"progress" example:"42"`
	// example: 1008000000
	BytesDownloaded int64 `json:"bytes_downloaded" example:"1008000000"`
	// Zero when the server did not send Content-Length.
	// example: 2400000000
	TotalBytes int64 `json:"total_bytes" example:"2400000000"`
	// Advisory size from the catalog.
	// example: 2400000000
	ExpectedBytes int64 `json:"expected_bytes,omitempty" example:"2400000000"`
	// Failure detail, present only when status is failed.
	Error string `json:"error,omitempty"`
	// Identifier of the transfer that produced this state.
	TransferID string `json:"transfer_id,omitempty"`
	// Unix seconds of the last state change.
	// example: 1700000000
	UpdatedUnix int64 `json:"updated_unix,omitempty" example:"1700000000"`
}

// DownloadsResponse lists retained download states.
type DownloadsResponse struct {
	Downloads []DownloadStatus `json:"downloads"`
}

// ActionResponse reports the outcome of a start/cancel/delete command.
type ActionResponse struct {
	// Catalog id the command was applied to.
	// example: sd-v1-5
	ID string `json:"id" example:"sd-v1-5"`
	// Outcome of the command (started, already_installed, already_downloading, cancelled, deleted).
	// example: started
	Outcome string `json:"outcome" example:"started"`
	// State after the command.
	Status *DownloadStatus `json:"status,omitempty"`
}

// CatalogEntry is a descriptor annotated with local state.
type CatalogEntry struct {
	// example: sd-v1-5
	ID string `json:"id" example:"sd-v1-5"`
	// example: Stable Diffusion v1.5
	Name string `json:"name" example:"Stable Diffusion v1.5"`
	// example: stable-diffusion-v1-5-Q4_1.gguf
	Filename string `json:"filename" example:"stable-diffusion-v1-5-Q4_1.gguf"`
	// example: https://huggingface.co/gpustack/stable-diffusion-v1-5-GGUF/resolve/main/stable-diffusion-v1-5-Q4_1.gguf
	URL string `json:"url"`
	// example: 2400000000
	SizeBytes int64 `json:"size_bytes" example:"2400000000"`
	// text or image.
	// example: image
	Kind        string         `json:"kind" example:"image"`
	Description string         `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	// True when the artifact file is present under the storage root.
	Installed bool `json:"installed"`
	// Current download state.
	Download DownloadStatus `json:"download"`
}

// CatalogResponse is returned by GET /catalog.
type CatalogResponse struct {
	Models []CatalogEntry `json:"models"`
}

// LoadRequest is the body of POST /models/load and /models/unload.
type LoadRequest struct {
	// Installed filename to load.
	// example: tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf
	Name string `json:"name" example:"tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf"`
}

// CurrentModelResponse reports the current model of the loading cache.
type CurrentModelResponse struct {
	// Empty when no model has been loaded.
	// example: tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf
	Name string `json:"name" example:"tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf"`
	// Whether a model is loaded.
	Loaded bool `json:"loaded"`
	// Filenames resident in the cache.
	Resident []string `json:"resident,omitempty"`
}

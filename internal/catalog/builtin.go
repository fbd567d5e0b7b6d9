package catalog

func hf(repo, file string) string {
	return "https://huggingface.co/" + repo + "/resolve/main/" + file
}

// textModels are GGUF chat/instruct models runnable by llama.cpp.
var textModels = []Descriptor{
	{
		ID:                "tinyllama-1.1b-chat",
		Name:              "TinyLlama 1.1B Chat",
		Filename:          "tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf",
		SourceURL:         hf("TheBloke/TinyLlama-1.1B-Chat-v1.0-GGUF", "tinyllama-1.1b-chat-v1.0.Q4_K_M.gguf"),
		ExpectedSizeBytes: 669_000_000,
		Kind:              KindText,
		Description:       "Fast and small, good for testing.",
		Metadata:          map[string]any{"family": "llama", "parameters": "1.1B", "quant": "Q4_K_M", "context": 2048},
	},
	{
		ID:                "phi-3-mini-4k",
		Name:              "Phi-3 Mini 4K Instruct",
		Filename:          "Phi-3-mini-4k-instruct-q4.gguf",
		SourceURL:         hf("microsoft/Phi-3-mini-4k-instruct-gguf", "Phi-3-mini-4k-instruct-q4.gguf"),
		ExpectedSizeBytes: 2_400_000_000,
		Kind:              KindText,
		Description:       "Strong reasoning for its size.",
		Metadata:          map[string]any{"family": "phi3", "parameters": "3.8B", "quant": "Q4", "context": 4096},
	},
	{
		ID:                "qwen2.5-1.5b-instruct",
		Name:              "Qwen 2.5 1.5B Instruct",
		Filename:          "qwen2.5-1.5b-instruct-q4_k_m.gguf",
		SourceURL:         hf("Qwen/Qwen2.5-1.5B-Instruct-GGUF", "qwen2.5-1.5b-instruct-q4_k_m.gguf"),
		ExpectedSizeBytes: 986_000_000,
		Kind:              KindText,
		Description:       "Fast multilingual model.",
		Metadata:          map[string]any{"family": "qwen2", "parameters": "1.5B", "quant": "Q4_K_M", "context": 4096},
	},
	{
		ID:                "llama-3.2-1b-instruct",
		Name:              "Llama 3.2 1B Instruct",
		Filename:          "llama-3.2-1b-instruct-q4_k_m.gguf",
		SourceURL:         hf("hugging-quants/Llama-3.2-1B-Instruct-Q4_K_M-GGUF", "llama-3.2-1b-instruct-q4_k_m.gguf"),
		ExpectedSizeBytes: 750_000_000,
		Kind:              KindText,
		Description:       "Compact and capable.",
		Metadata:          map[string]any{"family": "llama", "parameters": "1B", "quant": "Q4_K_M", "context": 4096},
	},
	{
		ID:                "llama-3.1-8b-instruct",
		Name:              "Llama 3.1 8B Instruct",
		Filename:          "Meta-Llama-3.1-8B-Instruct-Q4_K_M.gguf",
		SourceURL:         hf("bartowski/Meta-Llama-3.1-8B-Instruct-GGUF", "Meta-Llama-3.1-8B-Instruct-Q4_K_M.gguf"),
		ExpectedSizeBytes: 4_900_000_000,
		Kind:              KindText,
		Description:       "Full-size general purpose model.",
		Metadata:          map[string]any{"family": "llama", "parameters": "8B", "quant": "Q4_K_M", "context": 8192},
	},
	{
		ID:                "gemma-2-2b-instruct",
		Name:              "Gemma 2 2B Instruct",
		Filename:          "gemma-2-2b-it-Q4_K_M.gguf",
		SourceURL:         hf("bartowski/gemma-2-2b-it-GGUF", "gemma-2-2b-it-Q4_K_M.gguf"),
		ExpectedSizeBytes: 1_600_000_000,
		Kind:              KindText,
		Metadata:          map[string]any{"family": "gemma", "parameters": "2B", "quant": "Q4_K_M", "context": 8192},
	},
	{
		ID:                "mistral-7b-instruct",
		Name:              "Mistral 7B Instruct v0.3",
		Filename:          "Mistral-7B-Instruct-v0.3-Q4_K_M.gguf",
		SourceURL:         hf("bartowski/Mistral-7B-Instruct-v0.3-GGUF", "Mistral-7B-Instruct-v0.3-Q4_K_M.gguf"),
		ExpectedSizeBytes: 4_370_000_000,
		Kind:              KindText,
		Metadata:          map[string]any{"family": "mistral", "parameters": "7B", "quant": "Q4_K_M", "context": 8192},
	},
}

// imageModels are quantized Stable Diffusion style models for
// stable-diffusion.cpp.
var imageModels = []Descriptor{
	{
		ID:                "sd-v1-4",
		Name:              "Stable Diffusion v1.4",
		Filename:          "sd-v1-4-f16.gguf",
		SourceURL:         hf("gpustack/stable-diffusion-v1-4-GGUF", "sd-v1-4-f16.gguf"),
		ExpectedSizeBytes: 4_000_000_000,
		Kind:              KindImage,
		Description:       "Original SD 1.4 baseline.",
		Metadata:          map[string]any{"tier": "standard", "width": 512, "height": 512, "steps": 20},
	},
	{
		ID:                "sd-v1-5",
		Name:              "Stable Diffusion v1.5",
		Filename:          "stable-diffusion-v1-5-Q4_1.gguf",
		SourceURL:         hf("gpustack/stable-diffusion-v1-5-GGUF", "stable-diffusion-v1-5-Q4_1.gguf"),
		ExpectedSizeBytes: 2_400_000_000,
		Kind:              KindImage,
		Description:       "SD 1.5, quantized.",
		Metadata:          map[string]any{"tier": "standard", "width": 512, "height": 512, "steps": 20},
	},
	{
		ID:                "sdxl-turbo",
		Name:              "SDXL Turbo",
		Filename:          "stable-diffusion-xl-1.0-turbo-Q4_0.gguf",
		SourceURL:         hf("gpustack/stable-diffusion-xl-1.0-turbo-GGUF", "stable-diffusion-xl-1.0-turbo-Q4_0.gguf"),
		ExpectedSizeBytes: 4_000_000_000,
		Kind:              KindImage,
		Description:       "Single-step generation.",
		Metadata:          map[string]any{"tier": "turbo", "width": 512, "height": 512, "steps": 1},
	},
	{
		ID:                "moondream2",
		Name:              "Moondream 2 (Vision)",
		Filename:          "moondream2-text-model-f16.gguf",
		SourceURL:         hf("moondream/moondream2-gguf", "moondream2-text-model-f16.gguf"),
		ExpectedSizeBytes: 2_800_000_000,
		Kind:              KindImage,
		Metadata:          map[string]any{"tier": "small", "width": 512, "height": 512, "steps": 25, "vision": true},
	},
}

// TextSource returns the built-in text model registry.
func TextSource() *StaticSource { return NewStaticSource("text", textModels) }

// ImageSource returns the built-in image model registry.
func ImageSource() *StaticSource { return NewStaticSource("image", imageModels) }

// Default resolves text models first, then image models.
func Default() *Resolver { return NewResolver(TextSource(), ImageSource()) }

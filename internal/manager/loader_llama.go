//go:build llama

package manager

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
const llamaBuilt = true

type llamaLoader struct {
	ctxSize int
	threads int
}

// NewLlamaLoader returns a Loader backed by in-process llama.cpp.
func NewLlamaLoader(ctxSize, threads int) Loader {
	return &llamaLoader{ctxSize: ctxSize, threads: threads}
}

// LlamaModel owns a loaded llama.cpp context.
type LlamaModel struct {
	model   *llama.LLama
	threads int
}

func (l *llamaLoader) Load(ctx context.Context, path string) (Model, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("model path is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := llama.New(path, llama.SetContext(l.ctxSize))
	if err != nil {
		return nil, err
	}
	return &LlamaModel{model: m, threads: l.threads}, nil
}

// Predict runs a completion on the loaded model.
func (s *LlamaModel) Predict(prompt string, maxTokens int) (string, error) {
	if s.model == nil {
		return "", errors.New("llama model not initialized")
	}
	if maxTokens <= 0 {
		maxTokens = 128
	}
	return s.model.Predict(prompt, llama.SetTokens(maxTokens), llama.SetThreads(max(1, s.threads)))
}

func (s *LlamaModel) Close() error {
	if s.model != nil {
		s.model.Free()
		s.model = nil
	}
	return nil
}

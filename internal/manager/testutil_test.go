package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"modelhub/internal/events"
	"modelhub/internal/registry"
)

// createModelFile writes a small placeholder artifact under dir.
func createModelFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("GGUF"), 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}
	return p
}

type fakeModel struct {
	path   string
	closed atomic.Bool
}

func (m *fakeModel) Close() error {
	m.closed.Store(true)
	return nil
}

// fakeLoader counts constructions and can block them on gate.
type fakeLoader struct {
	calls   atomic.Int32
	gate    chan struct{}
	entered chan string
	err     error

	mu     sync.Mutex
	models []*fakeModel
}

func (f *fakeLoader) Load(ctx context.Context, path string) (Model, error) {
	f.calls.Add(1)
	if f.entered != nil {
		f.entered <- filepath.Base(path)
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	m := &fakeModel{path: path}
	f.mu.Lock()
	f.models = append(f.models, m)
	f.mu.Unlock()
	return m, nil
}

func newTestManager(t *testing.T, loader Loader) (*Manager, string, *events.Memory) {
	t.Helper()
	dir := t.TempDir()
	store, err := registry.Open(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	pub := events.NewMemory()
	m := New(Config{Files: store, Loader: loader, Publisher: pub, Logger: zerolog.Nop()})
	t.Cleanup(func() { _ = m.Close() })
	return m, dir, pub
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

var errBoom = errors.New("boom")

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"modelhub/internal/catalog"
	"modelhub/internal/download"
	"modelhub/internal/events"
	"modelhub/internal/httpapi"
	"modelhub/internal/manager"
	"modelhub/internal/registry"
)

type stubModel struct{ path string }

func (stubModel) Close() error { return nil }

// stack is a full in-process service wired the way serve does it, with a
// stub loader in place of llama.cpp.
type stack struct {
	srv   *httptest.Server
	store *registry.Store
	orch  *download.Orchestrator
	mgr   *manager.Manager
	hub   *events.Hub
	mem   *events.Memory
}

func newStack(t *testing.T, entries ...catalog.Descriptor) *stack {
	t.Helper()
	store, err := registry.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	hub := events.NewHub(zerolog.Nop())
	go hub.Run(ctx)
	mem := events.NewMemory()
	pub := events.Multi{hub, mem}

	cat := catalog.NewResolver(catalog.NewStaticSource("test", entries), catalog.TextSource(), catalog.ImageSource())
	orch := download.New(cat, store, download.Options{ChunkSize: 1024, ProgressEvery: time.Millisecond, Publisher: pub})
	mgr := manager.New(manager.Config{
		Files:     store,
		Publisher: pub,
		Loader: manager.LoaderFunc(func(_ context.Context, path string) (manager.Model, error) {
			return stubModel{path: path}, nil
		}),
	})
	srv := httptest.NewServer(httpapi.NewMux(httpapi.Deps{
		Catalog:   cat,
		Downloads: orch,
		Installed: store,
		Models:    mgr,
		Events:    hub,
	}))
	t.Cleanup(func() {
		srv.Close()
		_ = orch.Close(context.Background())
		_ = mgr.Close()
		cancel()
	})
	return &stack{srv: srv, store: store, orch: orch, mgr: mgr, hub: hub, mem: mem}
}

func httpDo(t *testing.T, method, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, body)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func decodeJSON[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("decode %q: %v", b, err)
	}
	return v
}

// gatedRemote serves size bytes, pausing after the first half until release
// is closed or the client goes away.
type gatedRemote struct {
	*httptest.Server
	release chan struct{}
	once    sync.Once
}

func newGatedRemote(t *testing.T, size int) *gatedRemote {
	g := &gatedRemote{release: make(chan struct{})}
	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", itoa(size))
		half := bytes.Repeat([]byte("a"), size/2)
		_, _ = w.Write(half)
		w.(http.Flusher).Flush()
		select {
		case <-g.release:
			_, _ = w.Write(bytes.Repeat([]byte("b"), size-size/2))
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		g.open()
		g.Close()
	})
	return g
}

func (g *gatedRemote) open() { g.once.Do(func() { close(g.release) }) }

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

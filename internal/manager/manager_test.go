package manager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"modelhub/internal/events"
)

func TestLoad_MissingFile(t *testing.T) {
	fl := &fakeLoader{}
	m, _, _ := newTestManager(t, fl)
	_, err := m.Load(testCtx(t), "absent.gguf")
	if !IsFileNotFound(err) {
		t.Fatalf("expected file not found, got %v", err)
	}
	if _, err := m.Load(testCtx(t), "../escape.gguf"); !IsFileNotFound(err) {
		t.Fatalf("expected file not found for traversal, got %v", err)
	}
	if fl.calls.Load() != 0 {
		t.Fatalf("loader must not run for missing files")
	}
	if _, ok := m.Current(); ok {
		t.Fatalf("current must stay empty")
	}
}

func TestLoad_CacheHitReturnsSameHandle(t *testing.T) {
	fl := &fakeLoader{}
	m, dir, pub := newTestManager(t, fl)
	createModelFile(t, dir, "a.gguf")

	h1, err := m.Load(testCtx(t), "a.gguf")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	h2, err := m.Load(testCtx(t), "a.gguf")
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected identical handle on cache hit")
	}
	if got := fl.calls.Load(); got != 1 {
		t.Fatalf("loader calls = %d, want 1", got)
	}
	if cur, ok := m.Current(); !ok || cur != "a.gguf" {
		t.Fatalf("current = %q/%v", cur, ok)
	}
	if !m.Ready() {
		t.Fatalf("expected ready")
	}
	want := []string{events.LoadStart, events.LoadReady, events.LoadHit}
	got := pub.Names("a.gguf")
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestLoad_CacheHitMovesCurrent(t *testing.T) {
	m, dir, _ := newTestManager(t, &fakeLoader{})
	createModelFile(t, dir, "a.gguf")
	createModelFile(t, dir, "b.gguf")
	ctx := testCtx(t)
	if _, err := m.Load(ctx, "a.gguf"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Load(ctx, "b.gguf"); err != nil {
		t.Fatal(err)
	}
	if cur, _ := m.Current(); cur != "b.gguf" {
		t.Fatalf("current = %q, want b.gguf", cur)
	}
	if _, err := m.Load(ctx, "a.gguf"); err != nil {
		t.Fatal(err)
	}
	if cur, _ := m.Current(); cur != "a.gguf" {
		t.Fatalf("current = %q, want a.gguf", cur)
	}
	if got := m.Loaded(); len(got) != 2 || got[0] != "a.gguf" || got[1] != "b.gguf" {
		t.Fatalf("loaded = %v", got)
	}
}

func TestLoad_ConcurrentFirstLoadsConstructOnce(t *testing.T) {
	fl := &fakeLoader{gate: make(chan struct{})}
	m, dir, _ := newTestManager(t, fl)
	createModelFile(t, dir, "a.gguf")

	const n = 16
	handles := make([]*Handle, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = m.Load(context.Background(), "a.gguf")
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(fl.gate)
	wg.Wait()

	if got := fl.calls.Load(); got != 1 {
		t.Fatalf("loader calls = %d, want 1", got)
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("load %d: %v", i, errs[i])
		}
		if handles[i] != handles[0] {
			t.Fatalf("load %d returned a different handle", i)
		}
	}
}

func TestLoad_CachedNameDoesNotWaitOnOtherLoad(t *testing.T) {
	fl := &fakeLoader{}
	m, dir, _ := newTestManager(t, fl)
	createModelFile(t, dir, "a.gguf")
	createModelFile(t, dir, "b.gguf")
	if _, err := m.Load(testCtx(t), "a.gguf"); err != nil {
		t.Fatal(err)
	}

	fl.gate = make(chan struct{})
	fl.entered = make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		_, err := m.Load(context.Background(), "b.gguf")
		done <- err
	}()
	<-fl.entered

	hit := make(chan struct{})
	go func() {
		_, _ = m.Load(context.Background(), "a.gguf")
		close(hit)
	}()
	select {
	case <-hit:
	case <-time.After(time.Second):
		t.Fatalf("cached load blocked behind another filename's load")
	}
	close(fl.gate)
	if err := <-done; err != nil {
		t.Fatalf("load b: %v", err)
	}
}

func TestLoad_FailureCachesNothing(t *testing.T) {
	fl := &fakeLoader{err: errBoom}
	m, dir, pub := newTestManager(t, fl)
	createModelFile(t, dir, "a.gguf")

	_, err := m.Load(testCtx(t), "a.gguf")
	if !IsModelLoadFailure(err) || !errors.Is(err, errBoom) {
		t.Fatalf("expected model load failure wrapping cause, got %v", err)
	}
	if len(m.Loaded()) != 0 {
		t.Fatalf("failed load must not be cached")
	}
	if _, ok := m.Current(); ok {
		t.Fatalf("current must stay empty after failure")
	}
	fl.err = nil
	if _, err := m.Load(testCtx(t), "a.gguf"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if fl.calls.Load() != 2 {
		t.Fatalf("expected retry to reach loader")
	}
	names := pub.Names("a.gguf")
	if names[1] != events.LoadFailed {
		t.Fatalf("expected load_failed event, got %v", names)
	}
}

func TestLoad_CallerCancelDoesNotAbortSharedLoad(t *testing.T) {
	fl := &fakeLoader{gate: make(chan struct{}), entered: make(chan string, 1)}
	m, dir, _ := newTestManager(t, fl)
	createModelFile(t, dir, "a.gguf")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := m.Load(ctx, "a.gguf")
		errCh <- err
	}()
	<-fl.entered
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	close(fl.gate)
	h, err := m.Load(testCtx(t), "a.gguf")
	if err != nil || h == nil {
		t.Fatalf("load after cancel: %v", err)
	}
	if fl.calls.Load() != 1 {
		t.Fatalf("loader calls = %d, want 1", fl.calls.Load())
	}
}

func TestLoad_UnloadBeforeUseReloads(t *testing.T) {
	fl := &fakeLoader{}
	m, dir, _ := newTestManager(t, fl)
	createModelFile(t, dir, "a.gguf")
	var once sync.Once
	m.constructed = func(h *Handle) {
		once.Do(func() { _ = m.Unload(h.Name) })
	}

	h, err := m.Load(testCtx(t), "a.gguf")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fl.calls.Load() != 2 {
		t.Fatalf("loader calls = %d, want 2", fl.calls.Load())
	}
	if h.model != fl.models[1] {
		t.Fatalf("returned handle is not the reloaded one")
	}
	if !fl.models[0].closed.Load() || fl.models[1].closed.Load() {
		t.Fatalf("only the unloaded model may be released")
	}
	if cur, ok := m.Current(); !ok || cur != "a.gguf" {
		t.Fatalf("current = %q, %v", cur, ok)
	}
	if !m.Ready() {
		t.Fatalf("returned handle must be resident")
	}
}

func TestLoaderFunc(t *testing.T) {
	var got string
	m, dir, _ := newTestManager(t, LoaderFunc(func(_ context.Context, path string) (Model, error) {
		got = path
		return &fakeModel{path: path}, nil
	}))
	p := createModelFile(t, dir, "x.gguf")
	h, err := m.Load(testCtx(t), "x.gguf")
	if err != nil {
		t.Fatal(err)
	}
	if got != p || h.Path != p || h.Model().(*fakeModel).path != p {
		t.Fatalf("unexpected path %q / %q", got, h.Path)
	}
	st := m.Status()
	if !st.Loaded || st.Name != "x.gguf" || len(st.Resident) != 1 {
		t.Fatalf("unexpected status %+v", st)
	}
}

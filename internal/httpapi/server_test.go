package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"modelhub/internal/catalog"
	"modelhub/internal/download"
	"modelhub/internal/manager"
	"modelhub/pkg/types"
)

type mockCatalog struct{ entries []catalog.Descriptor }

func (m *mockCatalog) All() []catalog.Descriptor { return m.entries }

func (m *mockCatalog) Resolve(id string) (catalog.Descriptor, error) {
	for _, d := range m.entries {
		if d.ID == id {
			return d, nil
		}
	}
	return catalog.Descriptor{}, fmt.Errorf("%w: %s", download.ErrNotFound, id)
}

type mockDownloads struct {
	startOutcome download.Outcome
	startErr     error
	states       map[string]download.State
	cancelErr    error
	deleteErr    error
	started      []string
	deleted      []string
}

func (m *mockDownloads) Start(id string) (download.Outcome, error) {
	m.started = append(m.started, id)
	return m.startOutcome, m.startErr
}

func (m *mockDownloads) Status(id string) download.State {
	if s, ok := m.states[id]; ok {
		return s
	}
	return download.Idle(id)
}

func (m *mockDownloads) List() []download.State {
	var out []download.State
	for _, s := range m.states {
		out = append(out, s)
	}
	return out
}

func (m *mockDownloads) Cancel(_ context.Context, id string) (download.State, error) {
	if m.cancelErr != nil {
		return download.Idle(id), m.cancelErr
	}
	return download.State{ID: id, Status: download.StatusCancelled, Progress: 40}, nil
}

func (m *mockDownloads) Delete(id string) error {
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}

type mockInstalled struct {
	names []string
	err   error
}

func (m *mockInstalled) Models() ([]types.Model, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]types.Model, 0, len(m.names))
	for _, n := range m.names {
		out = append(out, types.Model{ID: n, Name: n})
	}
	return out, nil
}

func (m *mockInstalled) ListInstalled() ([]string, error) { return m.names, m.err }

type mockModels struct {
	current  string
	loadErr  error
	loaded   []string
	unloaded []string
}

func (m *mockModels) Load(_ context.Context, filename string) (*manager.Handle, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	m.loaded = append(m.loaded, filename)
	m.current = filename
	return &manager.Handle{Name: filename}, nil
}

func (m *mockModels) Unload(filename string) error {
	if filename != m.current {
		return manager.ErrNotLoaded(filename)
	}
	m.unloaded = append(m.unloaded, filename)
	m.current = ""
	return nil
}

func (m *mockModels) Status() types.CurrentModelResponse {
	return types.CurrentModelResponse{Name: m.current, Loaded: m.current != ""}
}

func (m *mockModels) Current() (string, bool) { return m.current, m.current != "" }

type fixture struct {
	cat *mockCatalog
	dl  *mockDownloads
	ins *mockInstalled
	mod *mockModels
	h   http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		cat: &mockCatalog{entries: []catalog.Descriptor{
			{ID: "tiny", Name: "Tiny", Filename: "Tiny.gguf", SourceURL: "http://x/tiny", Kind: catalog.KindText},
			{ID: "sd", Name: "SD", Filename: "sd.gguf", SourceURL: "http://x/sd", Kind: catalog.KindImage},
		}},
		dl:  &mockDownloads{startOutcome: download.OutcomeStarted, states: map[string]download.State{}},
		ins: &mockInstalled{},
		mod: &mockModels{},
	}
	f.h = NewMux(Deps{Catalog: f.cat, Downloads: f.dl, Installed: f.ins, Models: f.mod})
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	f.h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	f := newFixture()
	rr := f.do(http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
}

func TestReadyz_StorageUnavailable(t *testing.T) {
	f := newFixture()
	if rr := f.do(http.MethodGet, "/readyz", ""); rr.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rr.Code)
	}
	f.ins.err = errors.New("permission denied")
	if rr := f.do(http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with broken storage: %d", rr.Code)
	}
}

func TestCatalog_AnnotatesInstalledCaseInsensitive(t *testing.T) {
	f := newFixture()
	f.ins.names = []string{"tiny.GGUF"}
	f.dl.states["sd"] = download.State{ID: "sd", Status: download.StatusDownloading, Progress: 12}

	rr := f.do(http.MethodGet, "/catalog", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("catalog: %d", rr.Code)
	}
	resp := decode[types.CatalogResponse](t, rr)
	if len(resp.Models) != 2 {
		t.Fatalf("expected 2 entries, got %+v", resp.Models)
	}
	if !resp.Models[0].Installed || resp.Models[0].Download.Status != "idle" {
		t.Fatalf("tiny: %+v", resp.Models[0])
	}
	if resp.Models[1].Installed || resp.Models[1].Download.Progress != 12 || resp.Models[1].Kind != "image" {
		t.Fatalf("sd: %+v", resp.Models[1])
	}
}

func TestModels_MarksCurrent(t *testing.T) {
	f := newFixture()
	f.ins.names = []string{"a.gguf", "b.gguf"}
	f.mod.current = "b.gguf"
	resp := decode[types.ModelsResponse](t, f.do(http.MethodGet, "/models", ""))
	if resp.Current != "b.gguf" || resp.Models[0].Current || !resp.Models[1].Current {
		t.Fatalf("unexpected: %+v", resp)
	}
}

func TestStartDownload_StatusCodes(t *testing.T) {
	cases := []struct {
		name    string
		outcome download.Outcome
		err     error
		code    int
	}{
		{"started", download.OutcomeStarted, nil, http.StatusAccepted},
		{"already installed", download.OutcomeAlreadyInstalled, nil, http.StatusOK},
		{"already downloading", download.OutcomeAlreadyDownloading, nil, http.StatusOK},
		{"unknown id", "", fmt.Errorf("%w: nope", download.ErrNotFound), http.StatusNotFound},
		{"closed", "", download.ErrClosed, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.dl.startOutcome, f.dl.startErr = tc.outcome, tc.err
			rr := f.do(http.MethodPost, "/downloads/tiny", "")
			if rr.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, rr.Code, rr.Body.String())
			}
			if tc.err == nil {
				resp := decode[types.ActionResponse](t, rr)
				if resp.Outcome != string(tc.outcome) || resp.ID != "tiny" || resp.Status == nil {
					t.Fatalf("unexpected body: %+v", resp)
				}
			} else {
				resp := decode[types.ErrorResponse](t, rr)
				if resp.Code != tc.code || resp.Error == "" {
					t.Fatalf("unexpected error body: %+v", resp)
				}
			}
		})
	}
}

func TestDownloadStatus_UnknownIsIdle(t *testing.T) {
	f := newFixture()
	resp := decode[types.DownloadStatus](t, f.do(http.MethodGet, "/downloads/whatever", ""))
	if resp.Status != "idle" || resp.ID != "whatever" {
		t.Fatalf("unexpected: %+v", resp)
	}
}

func TestDownloads_List(t *testing.T) {
	f := newFixture()
	f.dl.states["sd"] = download.State{ID: "sd", Status: download.StatusFailed, Error: "HTTP 404"}
	resp := decode[types.DownloadsResponse](t, f.do(http.MethodGet, "/downloads", ""))
	if len(resp.Downloads) != 1 || resp.Downloads[0].Error != "HTTP 404" {
		t.Fatalf("unexpected: %+v", resp)
	}
}

func TestCancelDownload(t *testing.T) {
	f := newFixture()
	rr := f.do(http.MethodPost, "/downloads/tiny/cancel", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("cancel: %d", rr.Code)
	}
	resp := decode[types.ActionResponse](t, rr)
	if resp.Outcome != "cancelled" || resp.Status.Status != "cancelled" || resp.Status.Progress != 40 {
		t.Fatalf("unexpected: %+v", resp)
	}

	f.dl.cancelErr = download.ErrNotActive
	if rr := f.do(http.MethodPost, "/downloads/tiny/cancel", ""); rr.Code != http.StatusConflict {
		t.Fatalf("cancel idle: %d", rr.Code)
	}
	f.dl.cancelErr = fmt.Errorf("%w: x", download.ErrNotFound)
	if rr := f.do(http.MethodPost, "/downloads/x/cancel", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("cancel unknown: %d", rr.Code)
	}
}

func TestDeleteArtifact_UnloadsResidentModel(t *testing.T) {
	f := newFixture()
	f.mod.current = "Tiny.gguf"
	rr := f.do(http.MethodDelete, "/artifacts/tiny", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", rr.Code, rr.Body.String())
	}
	if len(f.mod.unloaded) != 1 || f.mod.unloaded[0] != "Tiny.gguf" {
		t.Fatalf("expected model release, got %v", f.mod.unloaded)
	}

	// not loaded is fine
	if rr := f.do(http.MethodDelete, "/artifacts/sd", ""); rr.Code != http.StatusOK {
		t.Fatalf("delete not loaded: %d", rr.Code)
	}

	f.dl.deleteErr = fmt.Errorf("%w: sd.gguf", download.ErrFileNotFound)
	if rr := f.do(http.MethodDelete, "/artifacts/sd", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("delete missing file: %d", rr.Code)
	}
}

func TestLoad(t *testing.T) {
	f := newFixture()
	rr := f.do(http.MethodPost, "/models/load", `{"name":"a.gguf"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("load: %d %s", rr.Code, rr.Body.String())
	}
	resp := decode[types.CurrentModelResponse](t, rr)
	if resp.Name != "a.gguf" || !resp.Loaded {
		t.Fatalf("unexpected: %+v", resp)
	}
	cur := decode[types.CurrentModelResponse](t, f.do(http.MethodGet, "/models/current", ""))
	if cur.Name != "a.gguf" {
		t.Fatalf("current: %+v", cur)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		ctype string
		err   error
		code  int
	}{
		{"bad json", `{`, "application/json", nil, http.StatusBadRequest},
		{"unknown field", `{"model":"x"}`, "application/json", nil, http.StatusBadRequest},
		{"empty name", `{}`, "application/json", nil, http.StatusBadRequest},
		{"wrong content type", `name=x`, "text/plain", nil, http.StatusUnsupportedMediaType},
		{"missing file", `{"name":"x.gguf"}`, "application/json", manager.ErrFileNotFound("x.gguf"), http.StatusNotFound},
		{"no native loader", `{"name":"x.gguf"}`, "application/json", manager.ErrDependencyUnavailable("llama not built"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.mod.loadErr = tc.err
			req := httptest.NewRequest(http.MethodPost, "/models/load", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", tc.ctype)
			rr := httptest.NewRecorder()
			f.h.ServeHTTP(rr, req)
			if rr.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestLoad_BodyTooLarge(t *testing.T) {
	SetMaxBodyBytes(16)
	defer SetMaxBodyBytes(0)
	f := newFixture()
	rr := f.do(http.MethodPost, "/models/load", `{"name":"`+strings.Repeat("a", 64)+`.gguf"}`)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
}

func TestUnload(t *testing.T) {
	f := newFixture()
	if rr := f.do(http.MethodPost, "/models/unload", `{}`); rr.Code != http.StatusConflict {
		t.Fatalf("unload with nothing loaded: %d", rr.Code)
	}
	f.mod.current = "a.gguf"
	if rr := f.do(http.MethodPost, "/models/unload", `{"name":"b.gguf"}`); rr.Code != http.StatusConflict {
		t.Fatalf("unload non-resident: %d", rr.Code)
	}
	rr := f.do(http.MethodPost, "/models/unload", `{}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("unload current: %d %s", rr.Code, rr.Body.String())
	}
	if resp := decode[types.CurrentModelResponse](t, rr); resp.Loaded {
		t.Fatalf("expected nothing loaded: %+v", resp)
	}
}

func TestCORS_Preflight(t *testing.T) {
	SetCORSOptions(true, []string{"http://ui.local"}, []string{"GET", "POST"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)
	f := newFixture()
	req := httptest.NewRequest(http.MethodOptions, "/catalog", nil)
	req.Header.Set("Origin", "http://ui.local")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr := httptest.NewRecorder()
	f.h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://ui.local" {
		t.Fatalf("expected allow-origin header, got %q", got)
	}
}

func TestEventsRouteMounted(t *testing.T) {
	f := newFixture()
	called := false
	h := NewMux(Deps{Catalog: f.cat, Downloads: f.dl, Installed: f.ins, Models: f.mod,
		Events: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { called = true })})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events", nil))
	if !called {
		t.Fatalf("events handler not mounted")
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{download.ErrNotFound, http.StatusNotFound},
		{download.ErrFileNotFound, http.StatusNotFound},
		{manager.ErrFileNotFound("x"), http.StatusNotFound},
		{fmt.Errorf("wrap: %w", download.ErrNotActive), http.StatusConflict},
		{manager.ErrNotLoaded("x"), http.StatusConflict},
		{download.ErrClosed, http.StatusServiceUnavailable},
		{manager.ErrDependencyUnavailable("x"), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{fmt.Errorf("load: %w", context.Canceled), http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Fatalf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

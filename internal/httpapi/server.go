package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modelhub/internal/catalog"
	"modelhub/internal/download"
	"modelhub/internal/manager"
	"modelhub/pkg/types"
)

// Catalog lists and resolves downloadable artifacts.
type Catalog interface {
	All() []catalog.Descriptor
	Resolve(id string) (catalog.Descriptor, error)
}

// Downloads drives transfers for catalog ids.
type Downloads interface {
	Start(id string) (download.Outcome, error)
	Status(id string) download.State
	List() []download.State
	Cancel(ctx context.Context, id string) (download.State, error)
	Delete(id string) error
}

// Installed reports artifacts present under the storage root.
type Installed interface {
	Models() ([]types.Model, error)
	ListInstalled() ([]string, error)
}

// Models is the loading cache.
type Models interface {
	Load(ctx context.Context, filename string) (*manager.Handle, error)
	Unload(filename string) error
	Status() types.CurrentModelResponse
	Current() (string, bool)
}

// Deps are the services the router dispatches to. Events may be nil.
type Deps struct {
	Catalog   Catalog
	Downloads Downloads
	Installed Installed
	Models    Models
	Events    http.Handler
}

// NewMux builds the HTTP router.
func NewMux(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsAllowedOrigins,
			AllowedMethods:   corsAllowedMethods,
			AllowedHeaders:   corsAllowedHeaders,
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := d.Installed.ListInstalled(); err != nil {
			zl().Error().Err(err).Msg("storage root not accessible")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("storage unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())
	if d.Events != nil {
		r.Handle("/events", d.Events)
	}

	h := &handlers{Deps: d}
	r.Group(func(r chi.Router) {
		// websocket upgrades must not pass through the compressor
		r.Use(middleware.Compress(5))
		r.Get("/catalog", h.catalog)
		r.Get("/models", h.models)
		r.Get("/models/current", h.current)
		r.Post("/models/load", h.load)
		r.Post("/models/unload", h.unload)
		r.Get("/downloads", h.downloads)
		r.Post("/downloads/{id}", h.startDownload)
		r.Get("/downloads/{id}", h.downloadStatus)
		r.Post("/downloads/{id}/cancel", h.cancelDownload)
		r.Delete("/artifacts/{id}", h.deleteArtifact)
	})

	MountSwagger(r)
	return r
}

type handlers struct {
	Deps
}

// catalog godoc
// @Summary List catalog
// @Description Catalog descriptors annotated with install and download state.
// @Tags catalog
// @Produce json
// @Success 200 {object} types.CatalogResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /catalog [get]
func (h *handlers) catalog(w http.ResponseWriter, _ *http.Request) {
	names, err := h.Installed.ListInstalled()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	installed := make(map[string]bool, len(names))
	for _, n := range names {
		installed[lower(n)] = true
	}
	all := h.Catalog.All()
	out := types.CatalogResponse{Models: make([]types.CatalogEntry, 0, len(all))}
	for _, d := range all {
		out.Models = append(out.Models, types.CatalogEntry{
			ID:          d.ID,
			Name:        d.Name,
			Filename:    d.Filename,
			URL:         d.SourceURL,
			SizeBytes:   d.ExpectedSizeBytes,
			Kind:        string(d.Kind),
			Description: d.Description,
			Metadata:    d.Metadata,
			Installed:   installed[lower(d.Filename)],
			Download:    h.Downloads.Status(d.ID).Wire(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// models godoc
// @Summary List installed models
// @Tags models
// @Produce json
// @Success 200 {object} types.ModelsResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /models [get]
func (h *handlers) models(w http.ResponseWriter, _ *http.Request) {
	models, err := h.Installed.Models()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cur, _ := h.Models.Current()
	for i := range models {
		models[i].Current = models[i].ID == cur
	}
	writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models, Current: cur})
}

// current godoc
// @Summary Current model
// @Tags models
// @Produce json
// @Success 200 {object} types.CurrentModelResponse
// @Router /models/current [get]
func (h *handlers) current(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Models.Status())
}

// load godoc
// @Summary Load a model
// @Description Loads an installed model into the cache and makes it current.
// @Tags models
// @Accept json
// @Produce json
// @Param body body types.LoadRequest true "Model to load"
// @Success 200 {object} types.CurrentModelResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 415 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Failure 503 {object} types.ErrorResponse
// @Router /models/load [post]
func (h *handlers) load(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, ok := decodeLoadRequest(w, r)
	if !ok {
		return
	}
	if req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	ctx, cancel := commandContext(r)
	defer cancel()
	_, err := h.Models.Load(ctx, req.Name)
	if err != nil {
		status := statusFor(err)
		logCommand(r, "load", req.Name, status, start, err)
		writeJSONError(w, status, err.Error())
		return
	}
	logCommand(r, "load", req.Name, http.StatusOK, start, nil)
	writeJSON(w, http.StatusOK, h.Models.Status())
}

// unload godoc
// @Summary Unload a model
// @Description Releases a resident model; an empty name unloads the current one.
// @Tags models
// @Accept json
// @Produce json
// @Param body body types.LoadRequest true "Model to unload"
// @Success 200 {object} types.CurrentModelResponse
// @Failure 409 {object} types.ErrorResponse
// @Router /models/unload [post]
func (h *handlers) unload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req, ok := decodeLoadRequest(w, r)
	if !ok {
		return
	}
	name := req.Name
	if name == "" {
		name, _ = h.Models.Current()
	}
	if name == "" {
		writeJSONError(w, http.StatusConflict, "no model loaded")
		return
	}
	if err := h.Models.Unload(name); err != nil {
		status := statusFor(err)
		logCommand(r, "unload", name, status, start, err)
		writeJSONError(w, status, err.Error())
		return
	}
	logCommand(r, "unload", name, http.StatusOK, start, nil)
	writeJSON(w, http.StatusOK, h.Models.Status())
}

// downloads godoc
// @Summary List downloads
// @Description Every retained non-idle download state.
// @Tags downloads
// @Produce json
// @Success 200 {object} types.DownloadsResponse
// @Router /downloads [get]
func (h *handlers) downloads(w http.ResponseWriter, _ *http.Request) {
	states := h.Downloads.List()
	out := types.DownloadsResponse{Downloads: make([]types.DownloadStatus, 0, len(states))}
	for _, s := range states {
		out.Downloads = append(out.Downloads, s.Wire())
	}
	writeJSON(w, http.StatusOK, out)
}

// startDownload godoc
// @Summary Start a download
// @Tags downloads
// @Produce json
// @Param id path string true "Catalog id"
// @Success 202 {object} types.ActionResponse
// @Success 200 {object} types.ActionResponse "already installed or downloading"
// @Failure 404 {object} types.ErrorResponse
// @Failure 503 {object} types.ErrorResponse
// @Router /downloads/{id} [post]
func (h *handlers) startDownload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	outcome, err := h.Downloads.Start(id)
	if err != nil {
		status := statusFor(err)
		logCommand(r, "download.start", id, status, start, err)
		writeJSONError(w, status, err.Error())
		return
	}
	status := http.StatusOK
	if outcome == download.OutcomeStarted {
		status = http.StatusAccepted
	}
	st := h.Downloads.Status(id).Wire()
	logCommand(r, "download.start", id, status, start, nil)
	writeJSON(w, status, types.ActionResponse{ID: id, Outcome: string(outcome), Status: &st})
}

// downloadStatus godoc
// @Summary Download status
// @Description Unknown ids report idle.
// @Tags downloads
// @Produce json
// @Param id path string true "Catalog id"
// @Success 200 {object} types.DownloadStatus
// @Router /downloads/{id} [get]
func (h *handlers) downloadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Downloads.Status(chi.URLParam(r, "id")).Wire())
}

// cancelDownload godoc
// @Summary Cancel a download
// @Tags downloads
// @Produce json
// @Param id path string true "Catalog id"
// @Success 200 {object} types.ActionResponse
// @Failure 404 {object} types.ErrorResponse
// @Failure 409 {object} types.ErrorResponse "nothing in flight"
// @Router /downloads/{id}/cancel [post]
func (h *handlers) cancelDownload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	ctx, cancel := commandContext(r)
	defer cancel()
	st, err := h.Downloads.Cancel(ctx, id)
	if err != nil {
		status := statusFor(err)
		logCommand(r, "download.cancel", id, status, start, err)
		writeJSONError(w, status, err.Error())
		return
	}
	wire := st.Wire()
	logCommand(r, "download.cancel", id, http.StatusOK, start, nil)
	writeJSON(w, http.StatusOK, types.ActionResponse{ID: id, Outcome: string(download.OutcomeCancelled), Status: &wire})
}

// deleteArtifact godoc
// @Summary Delete an installed artifact
// @Description Removes the file and releases it from the loading cache.
// @Tags downloads
// @Produce json
// @Param id path string true "Catalog id"
// @Success 200 {object} types.ActionResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /artifacts/{id} [delete]
func (h *handlers) deleteArtifact(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	if err := h.Downloads.Delete(id); err != nil {
		status := statusFor(err)
		logCommand(r, "artifact.delete", id, status, start, err)
		writeJSONError(w, status, err.Error())
		return
	}
	if d, err := h.Catalog.Resolve(id); err == nil {
		if err := h.Models.Unload(d.Filename); err != nil && !manager.IsNotLoaded(err) {
			zl().Warn().Err(err).Str("id", id).Msg("release deleted model")
		}
	}
	st := h.Downloads.Status(id).Wire()
	logCommand(r, "artifact.delete", id, http.StatusOK, start, nil)
	writeJSON(w, http.StatusOK, types.ActionResponse{ID: id, Outcome: string(download.OutcomeDeleted), Status: &st})
}

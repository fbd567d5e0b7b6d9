package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"modelhub/internal/download"
	"modelhub/internal/events"
	"modelhub/internal/httpapi"
	"modelhub/internal/manager"
)

const shutdownTimeout = 10 * time.Second

// errStorageUnavailable marks the one startup failure serve logs itself;
// main exits non-zero without printing it again.
var errStorageUnavailable = errors.New("storage root not accessible")

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP API",
		Example: "  modelhub serve --addr :8080 --storage-root ~/models",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.String("addr", "", "HTTP listen address (default :8080)")
	f.String("sweep-interval", "", "Orphan sweep interval, 0 disables (default 15m)")
	f.String("orphan-grace", "", "Minimum age of a .part file before it is swept (default 10m)")
	f.Bool("cors-enabled", false, "Enable CORS middleware")
	f.String("cors-origins", "", "Comma-separated allowed origins")
	f.String("cors-methods", "", "Comma-separated allowed methods")
	f.String("cors-headers", "", "Comma-separated allowed headers")
	f.Int64("max-body-bytes", 0, "Maximum JSON request body size")
	f.Int("llama-ctx", 0, "llama.cpp context size")
	f.Int("llama-threads", 0, "llama.cpp threads")
	bindFlags(a.v, f, "addr", "sweep-interval", "orphan-grace",
		"cors-enabled", "cors-origins", "cors-methods", "cors-headers",
		"max-body-bytes", "llama-ctx", "llama-threads")
	return cmd
}

func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log := a.log.Logger

	store, err := a.openStore()
	if err != nil {
		log.Error().Err(err).Str("storage_root", a.cfg.StorageRoot).Msg("storage root not accessible")
		return fmt.Errorf("%w: %w", errStorageUnavailable, err)
	}
	cat, err := a.resolver()
	if err != nil {
		return err
	}

	hub := events.NewHub(a.log.Component("events"))
	go hub.Run(ctx)

	orch := download.New(cat, store, download.Options{
		ChunkSize: a.cfg.ChunkSizeBytes,
		Publisher: hub,
		Logger:    log,
	})
	mgr := manager.New(manager.Config{
		Files:        store,
		Publisher:    hub,
		Logger:       log,
		LlamaCtx:     a.cfg.LlamaCtx,
		LlamaThreads: a.cfg.LlamaThreads,
	})
	if !manager.NativeLoaderBuilt() {
		log.Warn().Msg("built without the llama tag; model loads will report dependency unavailable")
	}

	var sweeper *download.Sweeper
	if every, _ := a.cfg.SweepEvery(); every > 0 {
		grace, _ := a.cfg.OrphanGraceDuration()
		sweeper, err = download.NewSweeper(orch, every, grace)
		if err != nil {
			return err
		}
		sweeper.Start()
	}

	httpapi.SetLogger(a.log.Component("http"))
	httpapi.SetBaseContext(ctx)
	httpapi.SetMaxBodyBytes(a.cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(a.cfg.CORSEnabled, a.cfg.CORSOrigins, a.cfg.CORSMethods, a.cfg.CORSHeaders)
	mux := httpapi.NewMux(httpapi.Deps{
		Catalog:   cat,
		Downloads: orch,
		Installed: store,
		Models:    mgr,
		Events:    hub,
	})
	srv := &http.Server{Addr: a.cfg.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.cfg.Addr).Str("storage_root", store.Root()).Strs("catalog", cat.Sources()).Msg("modelhub listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
		if serveErr != nil {
			log.Error().Err(serveErr).Msg("server error")
		}
		stop()
	}

	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var errs []error
	if err := srv.Shutdown(shCtx); err != nil {
		errs = append(errs, err)
	}
	if sweeper != nil {
		if err := sweeper.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := orch.Close(shCtx); err != nil {
		errs = append(errs, err)
	}
	if err := mgr.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown")
	}
	log.Info().Msg("modelhub stopped")
	return serveErr
}

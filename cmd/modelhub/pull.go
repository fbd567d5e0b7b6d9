package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"modelhub/internal/download"
)

func newPullCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "pull <id>",
		Short:   "Download a catalog artifact in the foreground",
		Example: "  modelhub pull tinyllama-1.1b-chat",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.pull(ctx, args[0], cmd.OutOrStdout())
		},
	}
}

func (a *app) pull(ctx context.Context, id string, out io.Writer) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	cat, err := a.resolver()
	if err != nil {
		return err
	}
	orch := download.New(cat, store, download.Options{ChunkSize: a.cfg.ChunkSizeBytes, Logger: a.log.Logger})
	defer orch.Close(context.Background())

	outcome, err := orch.Start(id)
	if err != nil {
		return err
	}
	d, err := cat.Resolve(id)
	if err != nil {
		return err
	}
	if outcome != download.OutcomeStarted {
		fmt.Fprintf(out, "%s: %s\n", id, strings.ReplaceAll(string(outcome), "_", " "))
		return nil
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	waitCtx, cancelWait := context.WithCancel(context.Background())
	defer cancelWait()
	done := make(chan download.State, 1)
	go func() {
		st, _ := orch.Wait(waitCtx, id)
		done <- st
	}()

	for {
		select {
		case <-ticker.C:
			fmt.Fprint(out, "\r"+progressLine(orch.Status(id)))
		case <-ctx.Done():
			st, err := orch.Cancel(context.Background(), id)
			if err != nil && !errors.Is(err, download.ErrNotActive) {
				return err
			}
			fmt.Fprintln(out, "\r"+progressLine(st))
			return ctx.Err()
		case st := <-done:
			fmt.Fprintln(out, "\r"+progressLine(st))
			switch st.Status {
			case download.StatusFailed:
				return fmt.Errorf("download %s failed: %s", id, st.Error)
			case download.StatusCancelled:
				return fmt.Errorf("download %s cancelled", id)
			}
			fmt.Fprintf(out, "installed %s\n", store.Path(d.Filename))
			return nil
		}
	}
}

// progressLine renders a fixed-width text progress bar.
func progressLine(s download.State) string {
	const width = 30
	filled := s.Progress * width / 100
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", width-filled)
	size := humanize.Bytes(uint64(s.BytesDownloaded))
	if s.TotalBytes > 0 {
		size += " / " + humanize.Bytes(uint64(s.TotalBytes))
	} else if s.ExpectedBytes > 0 {
		size += " / ~" + humanize.Bytes(uint64(s.ExpectedBytes))
	}
	return fmt.Sprintf("[%s] %3d%% %s %s", bar, s.Progress, size, s.Status)
}

package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"modelhub/internal/catalog"
	"modelhub/internal/common/fsutil"
	"modelhub/internal/events"
)

// run drives one transfer to a terminal state. It owns e.state until then.
func (o *Orchestrator) run(ctx context.Context, e *entry, t *transfer, d catalog.Descriptor) {
	defer o.wg.Done()
	defer activeTransfers.Dec()

	tmp := o.store.TempPath(d.Filename)
	final := o.store.Path(d.Filename)
	err := o.fetch(ctx, e, d, tmp)
	if o.afterFetch != nil {
		o.afterFetch(t.id)
	}

	e.mu.Lock()
	status := StatusCompleted
	switch {
	case ctx.Err() != nil:
		// Covers a cancel that landed after the last chunk but before install.
		status = StatusCancelled
	case err != nil:
		status = StatusFailed
	default:
		if rerr := os.Rename(tmp, final); rerr != nil {
			err = fmt.Errorf("install %s: %w", d.Filename, rerr)
			status = StatusFailed
		}
	}
	if status != StatusCompleted {
		if _, rmErr := fsutil.RemoveIfExists(tmp); rmErr != nil {
			o.log.Warn().Err(rmErr).Str("path", tmp).Msg("remove temp file")
		}
	}
	s := e.state
	s.Status = status
	s.UpdatedAt = time.Now()
	switch status {
	case StatusCompleted:
		s.Progress = 100
	case StatusFailed:
		s.Error = err.Error()
	}
	e.state = s
	t.final = s
	e.mu.Unlock()

	o.release(t)
	t.cancel()
	close(t.done)

	transfersFinished.WithLabelValues(string(status)).Inc()
	log := o.log.With().Str("id", d.ID).Str("transfer_id", s.TransferID).Int64("bytes", s.BytesDownloaded).Logger()
	switch status {
	case StatusCompleted:
		log.Info().Str("path", final).Dur("elapsed", s.UpdatedAt.Sub(s.StartedAt)).Msg("download completed")
		o.publish(events.DownloadCompleted, s)
	case StatusCancelled:
		log.Info().Msg("download cancelled")
		o.publish(events.DownloadCancelled, s)
	default:
		log.Warn().Str("error", s.Error).Msg("download failed")
		o.publish(events.DownloadFailed, s)
	}
}

// fetch streams d.SourceURL into tmp, updating progress after each chunk.
// The file is closed on return; removal is left to run.
func (o *Orchestrator) fetch(ctx context.Context, e *entry, d catalog.Descriptor, tmp string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.SourceURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", o.userAgent)
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, d.SourceURL)
	}

	var total int64
	if resp.ContentLength > 0 {
		total = resp.ContentLength
	}
	e.update(func(s *State) { s.TotalBytes = total })

	if err := os.MkdirAll(filepath.Dir(tmp), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}

	buf := make([]byte, o.chunkSize)
	var written int64
	lastPct := 0
	lastPub := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			f.Close()
			return err
		}
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				f.Close()
				return fmt.Errorf("write temp file: %w", err)
			}
			written += int64(n)
			bytesDownloaded.Add(float64(n))
			pct := percent(written, total)
			s := e.update(func(s *State) {
				s.BytesDownloaded = written
				s.Progress = pct
			})
			if pct != lastPct || time.Since(lastPub) >= o.progressEvery {
				o.publish(events.DownloadProgress, s)
				lastPct, lastPub = pct, time.Now()
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			f.Close()
			return fmt.Errorf("read body: %w", readErr)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if total > 0 && written != total {
		return fmt.Errorf("short body: got %d of %d bytes", written, total)
	}
	return nil
}

func (e *entry) update(fn func(*State)) State {
	e.mu.Lock()
	fn(&e.state)
	e.state.UpdatedAt = time.Now()
	s := e.state
	e.mu.Unlock()
	return s
}

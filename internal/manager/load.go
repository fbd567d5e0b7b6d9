package manager

import (
	"context"
	"strings"
	"time"

	"modelhub/internal/events"
)

// Load returns the resident handle for filename, constructing it on first
// use. Concurrent first loads of one filename share a single construction;
// loads of resident filenames never wait on another filename's load. Every
// successful Load makes filename the current model, and the returned handle
// is resident at that moment.
func (m *Manager) Load(ctx context.Context, filename string) (*Handle, error) {
	if !validName(filename) {
		return nil, ErrFileNotFound(filename)
	}

	for {
		if h, ok := m.useResident(filename); ok {
			cacheHits.Inc()
			m.pub.Publish(events.Event{Name: events.LoadHit, Subject: filename, Time: time.Now()})
			return h, nil
		}

		if m.files == nil || !m.files.Has(filename) {
			return nil, ErrFileNotFound(filename)
		}

		ch := m.group.DoChan(filename, func() (any, error) {
			// A racing first load may have finished between the read above and here.
			m.mu.RLock()
			h, ok := m.handles[filename]
			m.mu.RUnlock()
			if ok {
				return h, nil
			}
			// Waiters share this construction, so one caller's cancellation
			// must not abort it.
			h, err := m.construct(context.WithoutCancel(ctx), filename)
			if err == nil && m.constructed != nil {
				m.constructed(h)
			}
			return h, err
		})

		select {
		case res := <-ch:
			if res.Err != nil {
				return nil, res.Err
			}
			h := res.Val.(*Handle)
			if m.setCurrent(h) {
				return h, nil
			}
			// Unloaded before this caller got to it; load again.
			m.log.Debug().Str("model", filename).Msg("handle unloaded before use, reloading")
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (m *Manager) construct(ctx context.Context, filename string) (*Handle, error) {
	path := m.files.Path(filename)
	log := m.log.With().Str("model", filename).Logger()
	log.Info().Str("path", path).Msg("loading model")
	m.pub.Publish(events.Event{Name: events.LoadStart, Subject: filename, Time: time.Now()})

	start := time.Now()
	mdl, err := m.loader.Load(ctx, path)
	loadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		cacheLoads.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("model load failed")
		m.pub.Publish(events.Event{Name: events.LoadFailed, Subject: filename, Time: time.Now(), Fields: map[string]any{"error": err.Error()}})
		if IsDependencyUnavailable(err) {
			return nil, err
		}
		return nil, modelLoadError{name: filename, err: err}
	}

	h := &Handle{Name: filename, Path: path, LoadedAt: time.Now(), model: mdl}
	m.mu.Lock()
	m.handles[filename] = h
	m.current = filename
	resident := len(m.handles)
	m.mu.Unlock()

	cacheLoads.WithLabelValues("ok").Inc()
	cacheResident.Set(float64(resident))
	log.Info().Dur("elapsed", time.Since(start)).Int("resident", resident).Msg("model ready")
	m.pub.Publish(events.Event{Name: events.LoadReady, Subject: filename, Time: h.LoadedAt})
	return h, nil
}

// useResident makes filename current if it is resident and returns its handle.
func (m *Manager) useResident(filename string) (*Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.handles[filename]
	if ok {
		m.current = filename
	}
	return h, ok
}

// setCurrent makes h current if h is still the resident handle for its name.
func (m *Manager) setCurrent(h *Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handles[h.Name] != h {
		return false
	}
	m.current = h.Name
	return true
}

func validName(filename string) bool {
	return filename != "" && filename != "." && filename != ".." && !strings.ContainsAny(filename, `/\`)
}

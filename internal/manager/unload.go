package manager

import (
	"errors"
	"time"

	"modelhub/internal/events"
)

// Unload releases the handle for filename and clears the current model if
// it pointed there. Handles already returned to callers become invalid.
func (m *Manager) Unload(filename string) error {
	m.mu.Lock()
	h, ok := m.handles[filename]
	if !ok {
		m.mu.Unlock()
		return notLoadedError{name: filename}
	}
	delete(m.handles, filename)
	if m.current == filename {
		m.current = ""
	}
	resident := len(m.handles)
	m.mu.Unlock()

	cacheUnloads.Inc()
	cacheResident.Set(float64(resident))
	err := h.model.Close()
	if err != nil {
		m.log.Warn().Err(err).Str("model", filename).Msg("release model")
	}
	m.log.Info().Str("model", filename).Msg("model unloaded")
	m.pub.Publish(events.Event{Name: events.UnloadDone, Subject: filename, Time: time.Now()})
	return err
}

// Close releases every resident handle.
func (m *Manager) Close() error {
	var errs []error
	for _, name := range m.Loaded() {
		if err := m.Unload(name); err != nil && !IsNotLoaded(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Package events carries lifecycle notifications from the download
// orchestrator and the model cache to interested consumers.
package events

import (
	"sync"
	"time"
)

// Event names.
const (
	DownloadStarted   = "download_started"
	DownloadProgress  = "download_progress"
	DownloadCompleted = "download_completed"
	DownloadFailed    = "download_failed"
	DownloadCancelled = "download_cancelled"
	ArtifactDeleted   = "artifact_deleted"
	OrphanSwept       = "orphan_swept"
	LoadStart         = "load_start"
	LoadReady         = "load_ready"
	LoadFailed        = "load_failed"
	LoadHit           = "load_hit"
	UnloadDone        = "unload_done"
)

// Event is a lifecycle notification. Subject is the catalog id for
// download events and the filename for model events.
type Event struct {
	Name    string
	Subject string
	Fields  map[string]any
	Time    time.Time
}

// Publisher receives events. Implementations must be non-blocking and must
// not panic.
type Publisher interface {
	Publish(Event)
}

// Noop drops events.
type Noop struct{}

func (Noop) Publish(Event) {}

// Multi fans an event out to several publishers.
type Multi []Publisher

func (m Multi) Publish(e Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(e)
		}
	}
}

// Memory stores events in-memory for tests.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory { return &Memory{} }

func (p *Memory) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *Memory) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Names returns the names of recorded events for subject, in order.
func (p *Memory) Names(subject string) []string {
	var out []string
	for _, e := range p.Events() {
		if e.Subject == subject {
			out = append(out, e.Name)
		}
	}
	return out
}

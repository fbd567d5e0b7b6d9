// Package download runs artifact transfers from catalog sources into the
// storage root. Each id has at most one transfer in flight; state lives in
// memory only and is observed through Status.
package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"modelhub/internal/catalog"
	"modelhub/internal/events"
	"modelhub/internal/registry"
)

const (
	defaultChunkSize     = 1 << 20
	defaultProgressEvery = 500 * time.Millisecond
	defaultUserAgent     = "modelhub/1"
)

// Resolver maps a catalog id to its descriptor.
type Resolver interface {
	Resolve(id string) (catalog.Descriptor, error)
}

// Options tunes an Orchestrator. Zero values select defaults.
type Options struct {
	Client        *http.Client
	ChunkSize     int
	UserAgent     string
	ProgressEvery time.Duration
	Publisher     events.Publisher
	Logger        zerolog.Logger
}

// Orchestrator owns per-id download state and the transfers that write it.
type Orchestrator struct {
	catalog       Resolver
	store         *registry.Store
	client        *http.Client
	chunkSize     int
	userAgent     string
	progressEvery time.Duration
	pub           events.Publisher
	log           zerolog.Logger

	// id -> *entry; entries are never removed, a cleared entry reads as idle.
	entries sync.Map

	baseCtx context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup

	// mu guards closed, owners and wg.Add. Taken before any entry lock.
	mu     sync.Mutex
	closed bool
	// filename -> transfer writing it; one temp file has one writer.
	owners map[string]*transfer

	// afterFetch runs between the last chunk and install; tests only.
	afterFetch func(id string)
}

type entry struct {
	mu    sync.Mutex
	state State
	cur   *transfer
}

// transfer is one run of the fetch loop. final is written before done closes.
type transfer struct {
	id       string
	filename string
	cancel   context.CancelFunc
	done     chan struct{}
	final    State
}

// New builds an orchestrator over the given catalog and storage root.
func New(cat Resolver, store *registry.Store, opts Options) *Orchestrator {
	o := &Orchestrator{
		catalog:       cat,
		store:         store,
		client:        opts.Client,
		chunkSize:     opts.ChunkSize,
		userAgent:     opts.UserAgent,
		progressEvery: opts.ProgressEvery,
		pub:           opts.Publisher,
		log:           opts.Logger.With().Str("component", "download").Logger(),
		owners:        make(map[string]*transfer),
	}
	if o.client == nil {
		// No overall timeout: large artifacts take as long as they take.
		o.client = &http.Client{}
	}
	if o.chunkSize <= 0 {
		o.chunkSize = defaultChunkSize
	}
	if o.userAgent == "" {
		o.userAgent = defaultUserAgent
	}
	if o.progressEvery <= 0 {
		o.progressEvery = defaultProgressEvery
	}
	if o.pub == nil {
		o.pub = events.Noop{}
	}
	o.baseCtx, o.stop = context.WithCancel(context.Background())
	return o
}

func (o *Orchestrator) resolve(id string) (catalog.Descriptor, error) {
	d, err := o.catalog.Resolve(id)
	if err != nil {
		return catalog.Descriptor{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return d, nil
}

func (o *Orchestrator) entry(id string) (*entry, bool) {
	v, ok := o.entries.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

// Start begins downloading id in the background and returns immediately.
// An installed artifact or an in-flight transfer is reported through the
// outcome without touching state. A transfer of another id that writes the
// same filename also counts as in flight.
func (o *Orchestrator) Start(id string) (Outcome, error) {
	d, err := o.resolve(id)
	if err != nil {
		return "", err
	}
	if o.store.IsInstalled(d) {
		return OutcomeAlreadyInstalled, nil
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return "", ErrClosed
	}
	if owner, ok := o.owners[d.Filename]; ok && owner.id != id {
		o.mu.Unlock()
		o.log.Debug().Str("id", id).Str("filename", d.Filename).Str("owner", owner.id).Msg("filename already being written")
		return OutcomeAlreadyDownloading, nil
	}

	v, _ := o.entries.LoadOrStore(id, &entry{})
	e := v.(*entry)

	e.mu.Lock()
	if e.state.Status == StatusDownloading {
		e.mu.Unlock()
		o.mu.Unlock()
		return OutcomeAlreadyDownloading, nil
	}
	ctx, cancel := context.WithCancel(o.baseCtx)
	now := time.Now()
	t := &transfer{id: id, filename: d.Filename, cancel: cancel, done: make(chan struct{})}
	e.state = State{
		ID:            id,
		Status:        StatusDownloading,
		ExpectedBytes: d.ExpectedSizeBytes,
		TransferID:    uuid.NewString(),
		StartedAt:     now,
		UpdatedAt:     now,
	}
	e.cur = t
	started := e.state
	o.owners[d.Filename] = t
	o.wg.Add(1)
	e.mu.Unlock()
	o.mu.Unlock()

	transfersStarted.Inc()
	activeTransfers.Inc()
	o.log.Info().Str("id", id).Str("transfer_id", started.TransferID).Str("url", d.SourceURL).Msg("download started")
	o.publish(events.DownloadStarted, started)

	go o.run(ctx, e, t, d)
	return OutcomeStarted, nil
}

// Status returns the retained state for id, or the idle state.
func (o *Orchestrator) Status(id string) State {
	e, ok := o.entry(id)
	if !ok {
		return Idle(id)
	}
	e.mu.Lock()
	s := e.state
	e.mu.Unlock()
	if s.Status == "" {
		return Idle(id)
	}
	return s
}

// List returns every retained non-idle state sorted by id.
func (o *Orchestrator) List() []State {
	var out []State
	o.entries.Range(func(_, v any) bool {
		e := v.(*entry)
		e.mu.Lock()
		s := e.state
		e.mu.Unlock()
		if s.Status != "" && s.Status != StatusIdle {
			out = append(out, s)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Cancel signals the in-flight transfer for id and waits until it has
// reached its terminal state, which is returned. If ctx ends first the
// transfer still finishes in the background and ctx.Err() is returned.
func (o *Orchestrator) Cancel(ctx context.Context, id string) (State, error) {
	if _, err := o.resolve(id); err != nil {
		return State{}, err
	}
	e, ok := o.entry(id)
	if !ok {
		return Idle(id), ErrNotActive
	}
	e.mu.Lock()
	if e.state.Status != StatusDownloading || e.cur == nil {
		s := e.state
		e.mu.Unlock()
		if s.Status == "" {
			s = Idle(id)
		}
		return s, ErrNotActive
	}
	t := e.cur
	// Cancelled under the lock so the transfer's install step observes it.
	t.cancel()
	e.mu.Unlock()

	o.log.Debug().Str("id", id).Msg("cancel requested")
	select {
	case <-t.done:
		return t.final, nil
	case <-ctx.Done():
		return o.Status(id), ctx.Err()
	}
}

// Delete removes the installed file for id and clears its retained state.
func (o *Orchestrator) Delete(id string) error {
	d, err := o.resolve(id)
	if err != nil {
		return err
	}
	if !o.store.Has(d.Filename) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, d.Filename)
	}
	removed, err := o.store.Remove(d.Filename)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: %s", ErrFileNotFound, d.Filename)
	}
	if e, ok := o.entry(id); ok {
		e.mu.Lock()
		if e.state.Status != StatusDownloading {
			e.state = State{}
			e.cur = nil
		}
		e.mu.Unlock()
	}
	o.log.Info().Str("id", id).Str("filename", d.Filename).Msg("artifact deleted")
	o.pub.Publish(events.Event{Name: events.ArtifactDeleted, Subject: id, Time: time.Now(), Fields: map[string]any{"filename": d.Filename}})
	return nil
}

// Wait blocks until the transfer currently running for id (if any) ends and
// returns the state it left behind.
func (o *Orchestrator) Wait(ctx context.Context, id string) (State, error) {
	e, ok := o.entry(id)
	if !ok {
		return Idle(id), nil
	}
	e.mu.Lock()
	t := e.cur
	s := e.state
	e.mu.Unlock()
	if t == nil || s.Status != StatusDownloading {
		return o.Status(id), nil
	}
	select {
	case <-t.done:
		return t.final, nil
	case <-ctx.Done():
		return o.Status(id), ctx.Err()
	}
}

// activeFilenames reports the filenames with a transfer in flight.
func (o *Orchestrator) activeFilenames() map[string]bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]bool, len(o.owners))
	for name := range o.owners {
		out[name] = true
	}
	return out
}

// release drops t's claim on its filename once t is terminal.
func (o *Orchestrator) release(t *transfer) {
	o.mu.Lock()
	if o.owners[t.filename] == t {
		delete(o.owners, t.filename)
	}
	o.mu.Unlock()
}

// Close cancels every in-flight transfer and waits for them to clean up.
func (o *Orchestrator) Close(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.mu.Unlock()
	o.stop()
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("transfers still running"), ctx.Err())
	}
}

func (o *Orchestrator) publish(name string, s State) {
	o.pub.Publish(events.Event{
		Name:    name,
		Subject: s.ID,
		Time:    s.UpdatedAt,
		Fields: map[string]any{
			"status":           string(s.Status),
			"progress":         s.Progress,
			"bytes_downloaded": s.BytesDownloaded,
			"total_bytes":      s.TotalBytes,
			"transfer_id":      s.TransferID,
			"error":            s.Error,
		},
	})
}

package download

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"modelhub/internal/events"
)

// DefaultOrphanGrace is how old a temp file must be before it is swept.
const DefaultOrphanGrace = 10 * time.Minute

// SweepOrphans removes temp files older than grace that no in-flight
// transfer owns. Temp files left by a previous process are never resumed.
func (o *Orchestrator) SweepOrphans(grace time.Duration) (int, error) {
	orphans, err := o.store.Orphans(time.Now().Add(-grace))
	if err != nil {
		return 0, err
	}
	active := o.activeFilenames()
	removed := 0
	for _, orphan := range orphans {
		if active[orphan.Filename] {
			continue
		}
		ok, err := o.store.RemoveTemp(orphan.Filename)
		if err != nil {
			o.log.Warn().Err(err).Str("filename", orphan.Filename).Msg("sweep orphan")
			continue
		}
		if ok {
			removed++
			orphansSwept.Inc()
			o.log.Info().Str("filename", orphan.Filename).Time("modified", orphan.ModTime).Msg("orphaned temp file removed")
			o.pub.Publish(events.Event{Name: events.OrphanSwept, Subject: orphan.Filename, Time: time.Now()})
		}
	}
	return removed, nil
}

// Sweeper runs SweepOrphans on a fixed interval, starting immediately.
type Sweeper struct {
	sched gocron.Scheduler
}

// NewSweeper schedules the orphan sweep. Call Start to begin.
func NewSweeper(o *Orchestrator, interval, grace time.Duration) (*Sweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	if grace <= 0 {
		grace = DefaultOrphanGrace
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := o.SweepOrphans(grace); err != nil {
				o.log.Error().Err(err).Msg("orphan sweep failed")
			}
		}),
		gocron.WithName("orphan-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule orphan sweep: %w", err)
	}
	return &Sweeper{sched: s}, nil
}

func (s *Sweeper) Start() { s.sched.Start() }

func (s *Sweeper) Stop() error { return s.sched.Shutdown() }

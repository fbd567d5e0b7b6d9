package download

import (
	"time"

	"modelhub/pkg/types"
)

// Status is the lifecycle of one artifact's download.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusDownloading Status = "downloading"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusCancelled   Status = "cancelled"
)

// Terminal reports whether no further transition happens without a new Start.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// State is a snapshot of one artifact's download.
type State struct {
	ID              string
	Status          Status
	Progress        int
	BytesDownloaded int64
	// TotalBytes is 0 when the remote did not announce a length.
	TotalBytes int64
	// ExpectedBytes is the catalog's advisory size.
	ExpectedBytes int64
	// Error is set only when Status is StatusFailed.
	Error      string
	TransferID string
	StartedAt  time.Time
	UpdatedAt  time.Time
}

// Idle is the state reported for ids with no retained entry.
func Idle(id string) State { return State{ID: id, Status: StatusIdle} }

// Wire converts s to its JSON form.
func (s State) Wire() types.DownloadStatus {
	out := types.DownloadStatus{
		ID:              s.ID,
		Status:          string(s.Status),
		Progress:        s.Progress,
		BytesDownloaded: s.BytesDownloaded,
		TotalBytes:      s.TotalBytes,
		ExpectedBytes:   s.ExpectedBytes,
		Error:           s.Error,
		TransferID:      s.TransferID,
	}
	if !s.UpdatedAt.IsZero() {
		out.UpdatedUnix = s.UpdatedAt.Unix()
	}
	return out
}

// Outcome is the result of a Start, Cancel or Delete command.
type Outcome string

const (
	OutcomeStarted            Outcome = "started"
	OutcomeAlreadyInstalled   Outcome = "already_installed"
	OutcomeAlreadyDownloading Outcome = "already_downloading"
	OutcomeCancelled          Outcome = "cancelled"
	OutcomeDeleted            Outcome = "deleted"
)

// Err maps non-started outcomes to their sentinel so callers that prefer
// errors can use errors.Is.
func (o Outcome) Err() error {
	switch o {
	case OutcomeAlreadyInstalled:
		return ErrAlreadyInstalled
	case OutcomeAlreadyDownloading:
		return ErrAlreadyDownloading
	default:
		return nil
	}
}

func percent(done, total int64) int {
	if total <= 0 || done <= 0 {
		return 0
	}
	if done >= total {
		return 100
	}
	return int(done * 100 / total)
}

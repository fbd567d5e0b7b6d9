package download

import "errors"

var (
	// ErrNotFound means the id is not in the catalog.
	ErrNotFound = errors.New("artifact not found in catalog")
	// ErrAlreadyInstalled means the final file is already present.
	ErrAlreadyInstalled = errors.New("artifact already installed")
	// ErrAlreadyDownloading means a transfer for the id is in flight.
	ErrAlreadyDownloading = errors.New("download already in progress")
	// ErrNotActive means there is no in-flight transfer to cancel.
	ErrNotActive = errors.New("no active download")
	// ErrFileNotFound means the artifact file is not installed.
	ErrFileNotFound = errors.New("artifact file not found")
	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("orchestrator closed")
)

// IsNotFound reports whether err means the id or its file is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrFileNotFound)
}

// Package registry reports which artifacts are present under the storage
// root. It never caches: every call reflects the filesystem at call time.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"modelhub/internal/catalog"
	"modelhub/internal/common/fsutil"
	"modelhub/pkg/types"
)

const (
	// ArtifactExt is the extension of installed model files (matched case-insensitively).
	ArtifactExt = catalog.ArtifactExt
	// TempSuffix marks in-flight downloads written next to their final path.
	TempSuffix = ".part"
)

// Store is the storage root holding installed artifacts.
type Store struct {
	root string
}

// Open resolves dir (expanding a leading '~') and creates it if missing.
// An error here means the storage root is unusable.
func Open(dir string) (*Store, error) {
	abs, err := fsutil.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("storage root %q: %w", dir, err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute storage root.
func (s *Store) Root() string { return s.root }

// Path returns the final install path for filename.
func (s *Store) Path(filename string) string { return filepath.Join(s.root, filename) }

// TempPath returns the sibling path a transfer writes to before install.
func (s *Store) TempPath(filename string) string { return s.Path(filename) + TempSuffix }

func (s *Store) ensureRoot() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create storage root: %w", err)
	}
	return nil
}

// ListInstalled returns the sorted names of artifact files under the root.
func (s *Store) ListInstalled() ([]string, error) {
	if err := s.ensureRoot(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ArtifactExt) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// IsInstalled reports whether the descriptor's final file exists.
func (s *Store) IsInstalled(d catalog.Descriptor) bool {
	return s.Has(d.Filename)
}

// Has reports whether root/filename is a regular file.
func (s *Store) Has(filename string) bool {
	if !validName(filename) {
		return false
	}
	return fsutil.IsRegularFile(s.Path(filename))
}

// Remove deletes an installed file. It reports false when nothing was there.
func (s *Store) Remove(filename string) (bool, error) {
	if !validName(filename) {
		return false, nil
	}
	removed, err := fsutil.RemoveIfExists(s.Path(filename))
	if err != nil {
		return false, fmt.Errorf("remove %s: %w", filename, err)
	}
	return removed, nil
}

// Models lists installed artifacts with their on-disk size.
func (s *Store) Models() ([]types.Model, error) {
	names, err := s.ListInstalled()
	if err != nil {
		return nil, err
	}
	out := make([]types.Model, 0, len(names))
	for _, n := range names {
		m := types.Model{ID: n, Name: n, Path: s.Path(n)}
		if fi, err := os.Stat(m.Path); err == nil {
			m.SizeBytes = fi.Size()
		}
		out = append(out, m)
	}
	return out, nil
}

// Orphan is a leftover temp file from an interrupted transfer.
type Orphan struct {
	Filename string
	ModTime  time.Time
}

// Orphans lists temp files last modified before cutoff.
func (s *Store) Orphans(cutoff time.Time) ([]Orphan, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []Orphan
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), TempSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			out = append(out, Orphan{Filename: strings.TrimSuffix(e.Name(), TempSuffix), ModTime: info.ModTime()})
		}
	}
	return out, nil
}

// RemoveTemp deletes the temp file for filename if present.
func (s *Store) RemoveTemp(filename string) (bool, error) {
	if !validName(filename) {
		return false, nil
	}
	return fsutil.RemoveIfExists(s.TempPath(filename))
}

// LoadDir scans dir for installed artifacts. ID is the full filename.
func LoadDir(dir string) ([]types.Model, error) {
	s, err := Open(dir)
	if err != nil {
		return nil, err
	}
	return s.Models()
}

func validName(filename string) bool {
	return filename != "" && filename != "." && filename != ".." && !strings.ContainsAny(filename, `/\`)
}

// Package catalog resolves artifact identifiers to immutable descriptors.
// Descriptors come from an ordered list of sources; the first source that
// knows an id wins, so new artifact kinds are added by appending a source.
package catalog

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

// ArtifactExt is the required extension of every descriptor filename,
// matched case-insensitively.
const ArtifactExt = ".gguf"

// ErrNotFound is returned when no source contains the requested id.
var ErrNotFound = errors.New("artifact not found in catalog")

// Kind classifies what an artifact is used for.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Descriptor describes one downloadable model file.
type Descriptor struct {
	ID                string         `json:"id" yaml:"id"`
	Name              string         `json:"name" yaml:"name"`
	Filename          string         `json:"filename" yaml:"filename"`
	SourceURL         string         `json:"url" yaml:"url"`
	ExpectedSizeBytes int64          `json:"size_bytes" yaml:"size_bytes"`
	Kind              Kind           `json:"kind" yaml:"kind"`
	Description       string         `json:"description,omitempty" yaml:"description"`
	Metadata          map[string]any `json:"metadata,omitempty" yaml:"metadata"`
}

// clone returns a copy that shares no mutable state with d.
func (d Descriptor) clone() Descriptor {
	d.Metadata = maps.Clone(d.Metadata)
	return d
}

// Validate checks the fields the download path depends on.
func (d Descriptor) Validate() error {
	switch {
	case strings.TrimSpace(d.ID) == "":
		return errors.New("descriptor id is empty")
	case strings.TrimSpace(d.Filename) == "":
		return fmt.Errorf("descriptor %q: filename is empty", d.ID)
	case strings.ContainsAny(d.Filename, `/\`) || d.Filename == "." || d.Filename == "..":
		return fmt.Errorf("descriptor %q: filename must be a bare file name", d.ID)
	case !strings.HasSuffix(strings.ToLower(d.Filename), ArtifactExt) || len(d.Filename) == len(ArtifactExt):
		return fmt.Errorf("descriptor %q: filename %q must end in %s", d.ID, d.Filename, ArtifactExt)
	case strings.TrimSpace(d.SourceURL) == "":
		return fmt.Errorf("descriptor %q: url is empty", d.ID)
	}
	return nil
}

// Source is a read-only registry of descriptors.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Lookup returns the descriptor with exactly this id.
	Lookup(id string) (Descriptor, bool)
	// Descriptors lists every descriptor in a stable order.
	Descriptors() []Descriptor
}

// StaticSource is a Source backed by a fixed slice built at startup.
type StaticSource struct {
	name    string
	entries []Descriptor
	byID    map[string]int
}

// NewStaticSource copies entries into a new source. Later duplicates of an
// id are ignored.
func NewStaticSource(name string, entries []Descriptor) *StaticSource {
	s := &StaticSource{name: name, byID: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, dup := s.byID[e.ID]; dup {
			continue
		}
		s.byID[e.ID] = len(s.entries)
		s.entries = append(s.entries, e.clone())
	}
	return s
}

func (s *StaticSource) Name() string { return s.name }

func (s *StaticSource) Lookup(id string) (Descriptor, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Descriptor{}, false
	}
	return s.entries[i].clone(), true
}

func (s *StaticSource) Descriptors() []Descriptor {
	out := make([]Descriptor, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}

// Resolver consults its sources in order.
type Resolver struct {
	sources []Source
}

// NewResolver builds a resolver; nil sources are skipped.
func NewResolver(sources ...Source) *Resolver {
	r := &Resolver{}
	for _, s := range sources {
		if s != nil {
			r.sources = append(r.sources, s)
		}
	}
	return r
}

// Resolve returns the first descriptor whose id equals id.
func (r *Resolver) Resolve(id string) (Descriptor, error) {
	for _, s := range r.sources {
		if d, ok := s.Lookup(id); ok {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// All lists descriptors from every source in resolution order. An id
// shadowed by an earlier source is reported once.
func (r *Resolver) All() []Descriptor {
	seen := make(map[string]struct{})
	var out []Descriptor
	for _, s := range r.sources {
		for _, d := range s.Descriptors() {
			if _, ok := seen[d.ID]; ok {
				continue
			}
			seen[d.ID] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}

// Sources returns the names of the configured sources in order.
func (r *Resolver) Sources() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}

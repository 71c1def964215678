// Package store loads traces and location registries from URL-addressable
// storage and persists finished forests.
package store

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/viant/afs"
	"github.com/viant/provenance/graph"
	"github.com/viant/provenance/loc"
	"github.com/viant/provenance/trace"
	"gopkg.in/yaml.v3"
)

// Service reads and writes the artifacts of an assembly run. URLs accept
// any scheme the afs service supports (file, mem, s3, gs, ...).
type Service struct {
	fs     afs.Service
	logger *slog.Logger
}

// New creates a storage service.
func New() *Service {
	return &Service{fs: afs.New(), logger: slog.Default()}
}

// WithLogger replaces the logger used for decode diagnostics.
func (s *Service) WithLogger(logger *slog.Logger) *Service {
	s.logger = logger
	return s
}

// LoadTrace reads an event log to end-of-stream. Decoding is best-effort:
// a malformed or truncated tail is dropped with a diagnostic, not treated
// as a hard error, since partial data is more useful than none.
func (s *Service) LoadTrace(ctx context.Context, URL string) ([]*trace.Event, error) {
	reader, err := s.fs.OpenURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace %s: %w", URL, err)
	}
	defer reader.Close()

	decoder := trace.NewDecoder(reader)
	var events []*trace.Event
	for decoder.More() {
		evt, err := decoder.Decode()
		if err != nil {
			break
		}
		events = append(events, evt)
	}
	if err := decoder.Err(); err != nil {
		if len(events) == 0 {
			return nil, fmt.Errorf("failed to decode trace %s: %w", URL, err)
		}
		s.logger.Warn("dropped undecodable trace tail",
			"trace", URL, "events", len(events), "err", err)
	}
	return events, nil
}

// LoadRegistry reads and parses a yaml location registry.
func (s *Service) LoadRegistry(ctx context.Context, URL string) (*loc.Registry, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read location registry %s: %w", URL, err)
	}
	registry, err := loc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("registry %s: %w", URL, err)
	}
	return registry, nil
}

// SaveForest writes the forest as yaml.
func (s *Service) SaveForest(ctx context.Context, URL string, graphs *graph.Graphs) error {
	data, err := yaml.Marshal(graphs)
	if err != nil {
		return fmt.Errorf("failed to marshal forest: %w", err)
	}
	return s.upload(ctx, URL, data)
}

// SaveFlat writes the flattened node/edge export of the forest as yaml.
func (s *Service) SaveFlat(ctx context.Context, URL string, graphs *graph.Graphs) error {
	data, err := yaml.Marshal(graph.Flatten(graphs))
	if err != nil {
		return fmt.Errorf("failed to marshal flat export: %w", err)
	}
	return s.upload(ctx, URL, data)
}

func (s *Service) upload(ctx context.Context, URL string, data []byte) error {
	if err := s.fs.Upload(ctx, URL, os.FileMode(0644), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", URL, err)
	}
	return nil
}

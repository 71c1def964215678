// Package loc resolves the opaque location references carried by trace
// events into function identities, block/statement indices and operand
// metadata, using the registry emitted by the instrumentation alongside the
// trace.
package loc

import (
	"fmt"

	"github.com/viant/provenance/graph"
	"github.com/viant/provenance/trace"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the newest registry format this package understands;
// any registry of the same major version loads.
const SupportedVersion = "v1.0.0"

// Entry is one instrumented location as recorded in the registry document.
type Entry struct {
	Ref       trace.LocRef   `yaml:"ref"`
	Func      string         `yaml:"func"` // stable function path
	Block     uint32         `yaml:"block"`
	Statement uint32         `yaml:"statement"`
	Meta      trace.Metadata `yaml:"metadata,omitempty"`
}

// Document is the on-disk registry format, versioned with the
// instrumentation runtime release that produced it.
type Document struct {
	Version   string  `yaml:"version"`
	Locations []Entry `yaml:"locations"`
}

// Loc is a fully resolved location: identities are interned fingerprints
// and the call-boundary transfer rule is already applied. SrcFunc and
// DestFunc are the functions a transferred value leaves and enters; without
// a transfer both equal Func.
type Loc struct {
	Func      graph.Func
	Block     uint32
	Statement uint32
	SrcFunc   graph.Func
	DestFunc  graph.Func
	Meta      *trace.Metadata
}

// Registry maps location references to resolved locations.
type Registry struct {
	version   string
	locations map[trace.LocRef]*Loc
	funcs     map[string]graph.Func
}

// Parse unmarshals a yaml registry document and builds a Registry from it.
func Parse(data []byte) (*Registry, error) {
	doc := &Document{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse location registry: %w", err)
	}
	return New(doc)
}

// New builds a Registry from a document, gating on the registry version and
// interning every function path once.
func New(doc *Document) (*Registry, error) {
	if !semver.IsValid(doc.Version) {
		return nil, fmt.Errorf("invalid registry version %q", doc.Version)
	}
	if semver.Major(doc.Version) != semver.Major(SupportedVersion) {
		return nil, fmt.Errorf("incompatible registry version %s: supported %s", doc.Version, semver.Major(SupportedVersion))
	}
	registry := &Registry{
		version:   doc.Version,
		locations: make(map[trace.LocRef]*Loc, len(doc.Locations)),
		funcs:     make(map[string]graph.Func),
	}
	for i := range doc.Locations {
		entry := &doc.Locations[i]
		resolved, err := registry.resolve(entry)
		if err != nil {
			return nil, fmt.Errorf("location %d: %w", entry.Ref, err)
		}
		registry.locations[entry.Ref] = resolved
	}
	return registry, nil
}

// Version returns the version of the loaded registry document.
func (r *Registry) Version() string {
	return r.version
}

// Len returns the number of registered locations.
func (r *Registry) Len() int {
	return len(r.locations)
}

// Resolve returns the location for ref. Absence is the caller's
// skip-and-log case; resolution itself never fails.
func (r *Registry) Resolve(ref trace.LocRef) (*Loc, bool) {
	resolved, ok := r.locations[ref]
	return resolved, ok
}

// Func interns a function path into its fingerprint identity.
func (r *Registry) Func(path string) (graph.Func, error) {
	if fn, ok := r.funcs[path]; ok {
		return fn, nil
	}
	fn, err := graph.FuncOf(path)
	if err != nil {
		return graph.Func{}, err
	}
	r.funcs[path] = fn
	return fn, nil
}

// resolve interns the entry's function identities and applies the
// call-boundary transfer rule.
func (r *Registry) resolve(entry *Entry) (*Loc, error) {
	fn, err := r.Func(entry.Func)
	if err != nil {
		return nil, err
	}
	meta := entry.Meta
	resolved := &Loc{
		Func:      fn,
		Block:     entry.Block,
		Statement: entry.Statement,
		SrcFunc:   fn,
		DestFunc:  fn,
		Meta:      &meta,
	}
	switch meta.Transfer.Kind {
	case trace.TransferNone:
	case trace.TransferArg:
		if resolved.DestFunc, err = r.Func(meta.Transfer.Func); err != nil {
			return nil, err
		}
		// an argument is observed as if freshly introduced at the entry
		// point of the callee
		resolved.Block, resolved.Statement = 0, 0
	case trace.TransferRet:
		if resolved.SrcFunc, err = r.Func(meta.Transfer.Func); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown transfer kind %d", meta.Transfer.Kind)
	}
	return resolved, nil
}

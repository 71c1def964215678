// Package builder assembles a forest of pointer provenance graphs from an
// ordered trace of memory events. Each graph is the lineage of one
// allocation or address-taking operation; each node records one operation
// and points at the earlier node its pointer value was derived from.
//
// Assembly is a single streaming pass: events must be consumed in recorded
// order and nothing already appended is ever revised. The only state is the
// forest plus two trackers — a provenance table keyed by live pointer value
// and a latest-assignment table keyed by (function, variable slot) — both
// threaded explicitly through the Builder.
package builder

import (
	"fmt"
	"log/slog"

	"github.com/viant/provenance/graph"
	"github.com/viant/provenance/loc"
	"github.com/viant/provenance/trace"
)

// Builder folds trace events into a graph forest. It owns the forest
// exclusively for the duration of the pass; use Graphs to hand the result
// off once the trace is exhausted.
type Builder struct {
	registry   *loc.Registry
	graphs     *graph.Graphs
	provenance map[trace.Pointer]graph.NodeRef
	logger     *slog.Logger
}

// New creates a builder resolving locations against the given registry.
func New(registry *loc.Registry, options ...Option) *Builder {
	b := &Builder{
		registry:   registry,
		graphs:     graph.NewGraphs(),
		provenance: make(map[trace.Pointer]graph.NodeRef),
		logger:     slog.Default(),
	}
	for _, option := range options {
		option(b)
	}
	return b
}

// Graphs returns the forest built so far.
func (b *Builder) Graphs() *graph.Graphs {
	return b.graphs
}

// AddEvent folds one event into the forest and returns the reference of the
// node it produced, if any. Events are best-effort: an event whose location
// is unknown is logged and skipped, never escalated.
func (b *Builder) AddEvent(evt *trace.Event) (graph.NodeRef, bool) {
	node, ok := nodeOf(evt)
	if !ok {
		return graph.NodeRef{}, false
	}
	resolved, ok := b.registry.Resolve(evt.Loc)
	if !ok {
		b.logger.Warn("skipping event with unknown location",
			"loc", uint64(evt.Loc), "kind", evt.Kind.String())
		return graph.NodeRef{}, false
	}
	meta := resolved.Meta

	// head: the node that last produced this pointer's numeric value
	var head *graph.NodeRef
	if subject, ok := evt.Subject(); ok {
		if ref, ok := b.provenance[subject]; ok {
			head = &ref
		}
	}

	// ptr: within head's graph, an exact match on the declared source
	// operand beats the raw provenance hit, since a numeric value can be
	// reused across unrelated writes
	var ptr *graph.NodeRef
	if head != nil && meta.Source != nil {
		if nid, ok := b.graphs.Graph(head.Graph).LastMatchingDest(meta.Source); ok {
			ptr = &graph.NodeRef{Graph: head.Graph, Node: nid}
		}
	}

	source := b.resolveSource(evt, meta, resolved.SrcFunc, head, ptr)

	chained := func(ref *graph.NodeRef) *graph.NodeRef {
		if ref == nil || !evt.Kind.Chains() {
			return nil
		}
		return ref
	}

	node.Func = resolved.DestFunc
	node.Block = resolved.Block
	node.Statement = resolved.Statement
	node.Dest = meta.Dest.Clone()
	if parent := chained(source); parent != nil {
		// the graph component is implied: a source always lies within the
		// graph the node is appended to
		nid := parent.Node
		node.Source = &nid
	}

	target := chained(source)
	if target == nil {
		target = chained(ptr)
	}
	if target == nil {
		target = chained(head)
	}
	var graphID graph.GraphID
	if target != nil {
		graphID = target.Graph
	} else {
		graphID = b.graphs.AddGraph()
	}
	nodeID := b.graphs.Graph(graphID).AddNode(node)
	ref := graph.NodeRef{Graph: graphID, Node: nodeID}

	b.updateProvenance(evt, meta, ref)
	b.updateLatestAssignment(meta.Dest, resolved.DestFunc, ref)
	return ref, true
}

// resolveSource picks the predecessor candidate, in documented precedence
// order: the exact operand match, then the latest assignment of the
// declared source slot (with the field-run chase for projected operands),
// then the raw provenance hit. Downstream consumers depend on this exact
// tie-breaking, so the order is not to be simplified.
func (b *Builder) resolveSource(evt *trace.Event, meta *trace.Metadata, srcFn graph.Func, head, ptr *graph.NodeRef) *graph.NodeRef {
	if ptr != nil {
		return ptr
	}
	src := meta.Source
	if src == nil {
		return nil
	}
	latest, hasLatest := b.graphs.LatestAssignment(srcFn, src.Local)
	if src.Projected() && hasLatest {
		// chained field accesses resolve to the innermost field node, not
		// the base object
		if nid, ok := b.graphs.Graph(latest.Graph).LastFieldRun(); ok {
			return &graph.NodeRef{Graph: latest.Graph, Node: nid}
		}
	}
	switch {
	case !src.Projected(), evt.Kind == trace.KindField:
		if !hasLatest {
			return nil
		}
		return &latest
	default:
		return head
	}
}

// updateProvenance rebinds pointer values produced by the event to the new
// node. Copies follow an at-most-one-writer policy: an already tracked
// pointer keeps its entry.
func (b *Builder) updateProvenance(evt *trace.Event, meta *trace.Metadata, ref graph.NodeRef) {
	switch evt.Kind {
	case trace.KindAlloc, trace.KindAddrOfLocal:
		b.provenance[evt.Ptr] = ref
	case trace.KindRealloc, trace.KindOffset:
		b.provenance[evt.New] = ref
	case trace.KindCopyPtr:
		if _, ok := b.provenance[evt.Ptr]; ok {
			b.logger.Warn("pointer copied from an untracked source",
				"ptr", fmt.Sprintf("0x%x", uint64(evt.Ptr)))
			return
		}
		b.provenance[evt.Ptr] = ref
	case trace.KindCopyRef:
		if meta.Dest == nil {
			b.logger.Warn("reference copy without a destination operand")
			return
		}
		b.provenance[trace.Pointer(meta.Dest.Local)] = ref
	}
}

// updateLatestAssignment records the node as the most recent write of its
// destination slot. A field write must not displace the anchor left by the
// last whole-object write of the same slot.
func (b *Builder) updateLatestAssignment(dest *trace.Operand, fn graph.Func, ref graph.NodeRef) {
	if dest == nil {
		return
	}
	previous, had := b.graphs.SetLatestAssignment(fn, dest.Local, ref)
	if !had || !dest.Projected() {
		return
	}
	previousDest := b.graphs.Node(previous).Dest
	if previousDest != nil && !previousDest.Projected() {
		b.graphs.SetLatestAssignment(fn, dest.Local, previous)
	}
}

// Construct folds a complete trace into a graph forest.
func Construct(registry *loc.Registry, events []*trace.Event, options ...Option) *graph.Graphs {
	b := New(registry, options...)
	for _, evt := range events {
		b.AddEvent(evt)
	}
	b.logAssignments()
	return b.graphs
}

func (b *Builder) logAssignments() {
	for key, ref := range b.graphs.LatestAssignments {
		b.logger.Debug("final assignment",
			"func", key.Func.String(), "local", uint32(key.Local),
			"graph", int(ref.Graph), "node", int(ref.Node))
	}
}

package graph

import (
	"github.com/viant/provenance/trace"
)

// Graph is one provenance lineage: an append-only node sequence rooted at an
// allocation or address-taking operation.
type Graph struct {
	Nodes []Node `yaml:"nodes"`
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// AddNode appends a node and returns its id. Ids are never reused.
func (g *Graph) AddNode(node Node) NodeID {
	g.Nodes = append(g.Nodes, node)
	return NodeID(len(g.Nodes) - 1)
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) *Node {
	return &g.Nodes[id]
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// LastMatchingDest scans the graph backward for the most recent node whose
// destination descriptor exactly equals operand. A pointer value can be
// reused across unrelated writes, so an exact variable+projection match is
// preferred over the last numeric value seen.
func (g *Graph) LastMatchingDest(operand *trace.Operand) (NodeID, bool) {
	for i := len(g.Nodes) - 1; i >= 0; i-- {
		if g.Nodes[i].Dest.Equal(operand) {
			return NodeID(i), true
		}
	}
	return 0, false
}

// LastFieldRun returns the most recent node of the contiguous run of Field
// nodes at the tail of the graph. The scan stops at the first non-Field
// node, so chained field accesses resolve to the innermost field rather
// than the base object.
func (g *Graph) LastFieldRun() (NodeID, bool) {
	for i := len(g.Nodes) - 1; i >= 0; i-- {
		if g.Nodes[i].Kind != KindField {
			break
		}
		return NodeID(i), true
	}
	return 0, false
}

// Assignment keys the latest-assignment table: one variable slot within one
// function.
type Assignment struct {
	Func  Func
	Local trace.LocalID
}

// Graphs is the top-level arena: every lineage built from one trace plus
// the latest-assignment table. It is the sole mutable state of an assembly
// pass and is threaded explicitly, never held as ambient state.
type Graphs struct {
	Graphs            []*Graph               `yaml:"graphs"`
	LatestAssignments map[Assignment]NodeRef `yaml:"-"`
}

// NewGraphs creates an empty forest.
func NewGraphs() *Graphs {
	return &Graphs{LatestAssignments: make(map[Assignment]NodeRef)}
}

// AddGraph appends an empty graph to the arena and returns its id.
func (g *Graphs) AddGraph() GraphID {
	g.Graphs = append(g.Graphs, NewGraph())
	return GraphID(len(g.Graphs) - 1)
}

// Graph returns the graph with the given id.
func (g *Graphs) Graph(id GraphID) *Graph {
	return g.Graphs[id]
}

// Len returns the number of graphs in the arena.
func (g *Graphs) Len() int {
	return len(g.Graphs)
}

// Node resolves a cross-forest node reference.
func (g *Graphs) Node(ref NodeRef) *Node {
	return g.Graphs[ref.Graph].Node(ref.Node)
}

// LatestAssignment returns the node that most recently wrote the given slot.
func (g *Graphs) LatestAssignment(fn Func, local trace.LocalID) (NodeRef, bool) {
	ref, ok := g.LatestAssignments[Assignment{Func: fn, Local: local}]
	return ref, ok
}

// SetLatestAssignment records ref as the most recent write of the given
// slot, returning the previous entry if any.
func (g *Graphs) SetLatestAssignment(fn Func, local trace.LocalID, ref NodeRef) (NodeRef, bool) {
	key := Assignment{Func: fn, Local: local}
	previous, had := g.LatestAssignments[key]
	g.LatestAssignments[key] = ref
	return previous, had
}

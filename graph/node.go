package graph

import (
	"fmt"

	"github.com/viant/provenance/trace"
)

// Func is the stable identity of a function: a fingerprint of its path name.
// Identities are comparable and usable as map keys.
type Func struct {
	Hash uint64 `yaml:"hash"`
	Name string `yaml:"name,omitempty"`
}

func (f Func) String() string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("fn:%016x", f.Hash)
}

// GraphID indexes a graph within the Graphs arena.
type GraphID int

// NodeID indexes a node within one graph.
type NodeID int

// NodeRef addresses one node across the whole forest.
type NodeRef struct {
	Graph GraphID `yaml:"graph"`
	Node  NodeID  `yaml:"node"`
}

// Node is one memory operation in a provenance graph. Nodes are immutable
// once appended; Source, when set, indexes an earlier node of the same
// graph.
type Node struct {
	Func      Func           `yaml:"func"`
	Block     uint32         `yaml:"block"`
	Statement uint32         `yaml:"statement"`
	Kind      NodeKind       `yaml:"kind"`
	Count     uint64         `yaml:"count,omitempty"` // Malloc
	Field     uint32         `yaml:"field,omitempty"` // Field
	Local     trace.LocalID  `yaml:"local,omitempty"` // AddrOfLocal
	Delta     int64          `yaml:"delta,omitempty"` // Offset
	Source    *NodeID        `yaml:"source,omitempty"`
	Dest      *trace.Operand `yaml:"dest,omitempty"`
}

func (n *Node) String() string {
	source := "-"
	if n.Source != nil {
		source = fmt.Sprintf("n%d", *n.Source)
	}
	return fmt.Sprintf("%s %s b%d:s%d source=%s", n.Kind, n.Func, n.Block, n.Statement, source)
}

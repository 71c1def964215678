package graph

import (
	"fmt"
)

// FlatNode represents a node in the flattened export of a forest.
type FlatNode struct {
	ID         string                 `yaml:"id"`   // stable id across exports, "g<graph>:n<node>"
	Type       string                 `yaml:"type"` // node kind name
	Properties map[string]interface{} `yaml:"properties,omitempty"`
}

// FlatEdge represents a derived-from edge in the flattened export.
type FlatEdge struct {
	Source     string                 `yaml:"source"`
	Target     string                 `yaml:"target"`
	Type       string                 `yaml:"type"`
	Properties map[string]interface{} `yaml:"properties,omitempty"`
}

// FlatGraph holds the nodes and edges of a flattened forest.
type FlatGraph struct {
	Nodes []FlatNode `yaml:"nodes"`
	Edges []FlatEdge `yaml:"edges"`
}

// Exporter sends a flattened forest to a storage backend (e.g. a graph
// database).
type Exporter interface {
	Export(graph *FlatGraph) error
}

// flatID builds the stable export id of one node.
func flatID(gid GraphID, nid NodeID) string {
	return fmt.Sprintf("g%d:n%d", gid, nid)
}

// Flatten converts the forest into a flat node/edge list. Every in-graph
// source link becomes a "derives" edge from the node to its predecessor.
func Flatten(graphs *Graphs) *FlatGraph {
	flat := &FlatGraph{}
	for gid, g := range graphs.Graphs {
		for nid := range g.Nodes {
			node := &g.Nodes[nid]
			properties := map[string]interface{}{
				"func":      node.Func.String(),
				"block":     node.Block,
				"statement": node.Statement,
			}
			switch node.Kind {
			case KindMalloc:
				properties["count"] = node.Count
			case KindField:
				properties["field"] = node.Field
			case KindAddrOfLocal:
				properties["local"] = uint32(node.Local)
			case KindOffset:
				properties["delta"] = node.Delta
			}
			flat.Nodes = append(flat.Nodes, FlatNode{
				ID:         flatID(GraphID(gid), NodeID(nid)),
				Type:       node.Kind.String(),
				Properties: properties,
			})
			if node.Source != nil {
				flat.Edges = append(flat.Edges, FlatEdge{
					Source: flatID(GraphID(gid), NodeID(nid)),
					Target: flatID(GraphID(gid), *node.Source),
					Type:   "derives",
				})
			}
		}
	}
	return flat
}

package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/provenance/trace"
	"gopkg.in/yaml.v3"
)

func TestGraph_AddNode(t *testing.T) {
	g := NewGraph()
	first := g.AddNode(Node{Kind: KindMalloc, Count: 1})
	second := g.AddNode(Node{Kind: KindCopy})
	assert.Equal(t, NodeID(0), first)
	assert.Equal(t, NodeID(1), second)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, KindCopy, g.Node(second).Kind)
}

func TestGraph_LastMatchingDest(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{Kind: KindMalloc, Dest: &trace.Operand{Local: 1}})
	g.AddNode(Node{Kind: KindCopy, Dest: &trace.Operand{Local: 2}})
	g.AddNode(Node{Kind: KindCopy, Dest: &trace.Operand{Local: 1}})
	g.AddNode(Node{Kind: KindCopy})

	// the most recent write of slot 1 wins, not the first
	id, ok := g.LastMatchingDest(&trace.Operand{Local: 1})
	if assert.True(t, ok) {
		assert.Equal(t, NodeID(2), id)
	}

	_, ok = g.LastMatchingDest(&trace.Operand{Local: 9})
	assert.False(t, ok)
	_, ok = g.LastMatchingDest(nil)
	assert.False(t, ok)
}

func TestGraph_LastFieldRun(t *testing.T) {
	g := NewGraph()
	g.AddNode(Node{Kind: KindMalloc})
	g.AddNode(Node{Kind: KindField, Field: 1})

	id, ok := g.LastFieldRun()
	if assert.True(t, ok) {
		assert.Equal(t, NodeID(1), id)
	}

	// a non-field tail hides earlier field nodes
	g.AddNode(Node{Kind: KindCopy})
	_, ok = g.LastFieldRun()
	assert.False(t, ok)

	_, ok = NewGraph().LastFieldRun()
	assert.False(t, ok)
}

func TestGraphs_LatestAssignment(t *testing.T) {
	fn, err := FuncOf("a")
	assert.NoError(t, err)

	graphs := NewGraphs()
	_, ok := graphs.LatestAssignment(fn, 1)
	assert.False(t, ok)

	first := NodeRef{Graph: 0, Node: 0}
	_, had := graphs.SetLatestAssignment(fn, 1, first)
	assert.False(t, had)

	second := NodeRef{Graph: 0, Node: 1}
	previous, had := graphs.SetLatestAssignment(fn, 1, second)
	assert.True(t, had)
	assert.Equal(t, first, previous)

	latest, ok := graphs.LatestAssignment(fn, 1)
	assert.True(t, ok)
	assert.Equal(t, second, latest)
}

func TestFuncOf_Stable(t *testing.T) {
	first, err := FuncOf("pkg::fn")
	assert.NoError(t, err)
	second, err := FuncOf("pkg::fn")
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotZero(t, first.Hash)
}

func TestFlatten(t *testing.T) {
	graphs := NewGraphs()
	gid := graphs.AddGraph()
	g := graphs.Graph(gid)
	g.AddNode(Node{Kind: KindMalloc, Count: 1})
	source := NodeID(0)
	g.AddNode(Node{Kind: KindField, Field: 2, Source: &source})

	flat := Flatten(graphs)
	if !assert.Len(t, flat.Nodes, 2) {
		t.FailNow()
	}
	assert.Equal(t, "g0:n0", flat.Nodes[0].ID)
	assert.Equal(t, "Malloc", flat.Nodes[0].Type)
	assert.EqualValues(t, 1, flat.Nodes[0].Properties["count"])
	assert.EqualValues(t, 2, flat.Nodes[1].Properties["field"])

	if assert.Len(t, flat.Edges, 1) {
		assert.Equal(t, "g0:n1", flat.Edges[0].Source)
		assert.Equal(t, "g0:n0", flat.Edges[0].Target)
		assert.Equal(t, "derives", flat.Edges[0].Type)
	}
}

func TestGraphs_MarshalYAML(t *testing.T) {
	fn, err := FuncOf("a")
	assert.NoError(t, err)

	graphs := NewGraphs()
	gid := graphs.AddGraph()
	graphs.Graph(gid).AddNode(Node{Func: fn, Kind: KindMalloc, Count: 1})
	graphs.SetLatestAssignment(fn, 1, NodeRef{})

	data, err := yaml.Marshal(graphs)
	assert.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "kind: Malloc")
	assert.Contains(t, text, "name: a")
	// the latest-assignment table is scratch state, not output
	assert.False(t, strings.Contains(text, "latestassignments"), "latest assignments leaked into export:\n%s", text)
}

package builder

import (
	"github.com/viant/provenance/graph"
	"github.com/viant/provenance/trace"
)

// nodeOf maps an event onto the node it contributes to the graph, carrying
// over the per-kind payload. Ret and Done events produce no node. The
// switch enumerates every trace kind; keep it in sync with trace.Kind when
// the event vocabulary grows.
func nodeOf(evt *trace.Event) (graph.Node, bool) {
	var node graph.Node
	switch evt.Kind {
	case trace.KindAlloc, trace.KindRealloc:
		node.Kind, node.Count = graph.KindMalloc, 1
	case trace.KindFree:
		node.Kind = graph.KindFree
	case trace.KindCopyPtr, trace.KindCopyRef:
		node.Kind = graph.KindCopy
	case trace.KindField:
		node.Kind, node.Field = graph.KindField, evt.Field
	case trace.KindLoadAddr:
		node.Kind = graph.KindLoadAddr
	case trace.KindStoreAddr:
		node.Kind = graph.KindStoreAddr
	case trace.KindLoadValue:
		node.Kind = graph.KindLoadValue
	case trace.KindStoreValue:
		node.Kind = graph.KindStoreValue
	case trace.KindAddrOfLocal:
		node.Kind, node.Local = graph.KindAddrOfLocal, evt.Local
	case trace.KindToInt:
		node.Kind = graph.KindPtrToInt
	case trace.KindFromInt:
		node.Kind = graph.KindIntToPtr
	case trace.KindOffset:
		node.Kind, node.Delta = graph.KindOffset, evt.Delta
	case trace.KindRet, trace.KindDone:
		return node, false
	default:
		return node, false
	}
	return node, true
}

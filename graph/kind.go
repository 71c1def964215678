package graph

import "fmt"

// NodeKind enumerates the memory operations that appear in a provenance
// graph. It is the subset of trace event kinds that produce nodes.
type NodeKind uint8

const (
	KindMalloc NodeKind = iota // heap allocation (count on the node)
	KindFree
	KindCopy
	KindField // field index on the node
	KindLoadAddr
	KindStoreAddr
	KindLoadValue
	KindStoreValue
	KindAddrOfLocal // stack slot on the node
	KindPtrToInt
	KindIntToPtr
	KindOffset // element delta on the node
	nodeKindCount
)

var nodeKindNames = [nodeKindCount]string{
	"Malloc", "Free", "Copy", "Field", "LoadAddr", "StoreAddr",
	"LoadValue", "StoreValue", "AddrOfLocal", "PtrToInt", "IntToPtr",
	"Offset",
}

func (k NodeKind) String() string {
	if k >= nodeKindCount {
		return fmt.Sprintf("NodeKind(%d)", uint8(k))
	}
	return nodeKindNames[k]
}

// MarshalYAML renders the kind by name rather than by ordinal.
func (k NodeKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

package trace

import "fmt"

// Pointer is a raw address value observed by the instrumentation at runtime.
type Pointer uint64

// LocalID identifies a variable slot within a function body.
type LocalID uint32

// LocRef is an opaque reference into the location registry recorded with
// every event by the instrumentation.
type LocRef uint64

// Kind enumerates the memory operations the instrumentation can observe.
type Kind uint8

const (
	KindAlloc Kind = iota // heap allocation [ptr, size]
	KindRealloc           // reallocation [old ptr, new ptr, size]
	KindFree              // deallocation [ptr]
	KindCopyPtr           // pointer value copied between locals [ptr]
	KindCopyRef           // reference copied without a usable address value
	KindField             // field projection [base ptr, field index]
	KindLoadAddr          // address loaded through a pointer [ptr]
	KindStoreAddr         // address stored through a pointer [ptr]
	KindLoadValue         // value loaded through a pointer [ptr]
	KindStoreValue        // value stored through a pointer [ptr]
	KindAddrOfLocal       // address of a stack slot taken [ptr, local]
	KindToInt             // pointer cast to integer [ptr]
	KindFromInt           // integer cast back to pointer [ptr]
	KindOffset            // pointer arithmetic [ptr, delta, new ptr]
	KindRet               // value returned from a function [ptr]
	KindDone              // end of instrumented execution
	kindCount
)

var kindNames = [kindCount]string{
	"Alloc", "Realloc", "Free", "CopyPtr", "CopyRef", "Field",
	"LoadAddr", "StoreAddr", "LoadValue", "StoreValue", "AddrOfLocal",
	"ToInt", "FromInt", "Offset", "Ret", "Done",
}

// Valid reports whether k is a known event kind.
func (k Kind) Valid() bool {
	return k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Chains reports whether an event of this kind may attach to a predecessor
// node. Allocation-like events start a new lineage and never chain.
func (k Kind) Chains() bool {
	switch k {
	case KindAlloc, KindRealloc, KindAddrOfLocal, KindDone:
		return false
	default:
		return true
	}
}

// Event is one observed memory operation. Payload fields are populated per
// kind; unused fields stay zero.
type Event struct {
	Kind  Kind    `yaml:"kind"`
	Loc   LocRef  `yaml:"loc"`
	Ptr   Pointer `yaml:"ptr,omitempty"`    // subject pointer (old pointer for Realloc)
	New   Pointer `yaml:"new,omitempty"`    // result pointer for Realloc and Offset
	Size  uint64  `yaml:"size,omitempty"`   // allocation size for Alloc and Realloc
	Field uint32  `yaml:"field,omitempty"`  // field index for Field
	Local LocalID `yaml:"local,omitempty"`  // stack slot for AddrOfLocal
	Delta int64   `yaml:"delta,omitempty"`  // element delta for Offset
}

// Subject returns the pointer value of interest for provenance lookup.
// CopyRef and Done carry no usable pointer.
func (e *Event) Subject() (Pointer, bool) {
	switch e.Kind {
	case KindAlloc, KindFree, KindCopyPtr, KindField, KindLoadAddr,
		KindStoreAddr, KindLoadValue, KindStoreValue, KindAddrOfLocal,
		KindToInt, KindFromInt, KindOffset, KindRet:
		return e.Ptr, true
	case KindRealloc:
		return e.Ptr, true // provenance of the old allocation
	case KindCopyRef, KindDone:
		return 0, false
	default:
		return 0, false
	}
}

func (e *Event) String() string {
	return fmt.Sprintf("%s@%d ptr=0x%x", e.Kind, e.Loc, uint64(e.Ptr))
}

package trace

// Operand identifies the memory location an event reads or writes: a
// variable slot plus an optional field-projection path into it.
type Operand struct {
	Local      LocalID  `yaml:"local"`
	Projection []uint32 `yaml:"projection,omitempty"`
}

// Equal reports whether both descriptors name the same slot and the exact
// same projection path.
func (o *Operand) Equal(other *Operand) bool {
	if o == nil || other == nil {
		return false
	}
	if o.Local != other.Local || len(o.Projection) != len(other.Projection) {
		return false
	}
	for i, p := range o.Projection {
		if other.Projection[i] != p {
			return false
		}
	}
	return true
}

// Projected reports whether the descriptor names a field of the slot rather
// than the whole object.
func (o *Operand) Projected() bool {
	return o != nil && len(o.Projection) > 0
}

// Clone returns a deep copy safe to retain past the event's lifetime.
func (o *Operand) Clone() *Operand {
	if o == nil {
		return nil
	}
	clone := &Operand{Local: o.Local}
	if len(o.Projection) > 0 {
		clone.Projection = append([]uint32(nil), o.Projection...)
	}
	return clone
}

// TransferKind marks an event whose value crosses a function-call boundary.
type TransferKind uint8

const (
	TransferNone TransferKind = iota // value stays within the enclosing function
	TransferArg                      // value passed as a call argument
	TransferRet                      // value returned to the caller
)

// Transfer carries the transfer kind and, for Arg/Ret, the stable path of
// the function on the far side of the call boundary.
type Transfer struct {
	Kind TransferKind `yaml:"kind"`
	Func string       `yaml:"func,omitempty"`
}

// Metadata describes the operands of one instrumented location. It lives in
// the location registry, keyed by LocRef, not on the trace wire.
type Metadata struct {
	Source   *Operand `yaml:"source,omitempty"`
	Dest     *Operand `yaml:"dest,omitempty"`
	Transfer Transfer `yaml:"transfer,omitempty"`
}

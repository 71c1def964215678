package trace

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Encoder writes events to an output stream in the trace wire format.
//
// Events produced by the Encoder are always lexically correct; logical
// consistency with instrumentation-produced traces is the responsibility of
// the caller. It exists for tools and tests that feed the builder.
type Encoder struct {
	w       io.Writer
	err     error
	started bool
	scratch [binary.MaxVarintLen64]byte
}

// NewEncoder returns a new encoder that emits events to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Err returns the first error that occurred during encoding; once an error
// occurs all future calls return the same value.
func (e *Encoder) Err() error {
	return e.err
}

// Emit writes a single event to the output stream. A non-nil error is
// permanent.
func (e *Encoder) Emit(evt *Event) error {
	if e.err != nil {
		return e.err
	}
	if !evt.Kind.Valid() {
		return fmt.Errorf("emit: unknown kind %d", uint8(evt.Kind))
	}
	if !e.started {
		if _, err := e.w.Write(header[:]); err != nil {
			e.err = fmt.Errorf("trace header: %w", err)
			return e.err
		}
		e.started = true
	}
	if err := e.encodeEvent(evt); err != nil {
		e.err = err
		return e.err
	}
	return nil
}

func (e *Encoder) encodeEvent(evt *Event) error {
	if _, err := e.w.Write([]byte{byte(evt.Kind)}); err != nil {
		return err
	}
	if err := e.uvarints(uint64(evt.Loc)); err != nil {
		return err
	}
	switch evt.Kind {
	case KindAlloc:
		return e.uvarints(uint64(evt.Ptr), evt.Size)
	case KindRealloc:
		return e.uvarints(uint64(evt.Ptr), uint64(evt.New), evt.Size)
	case KindFree, KindCopyPtr, KindLoadAddr, KindStoreAddr,
		KindLoadValue, KindStoreValue, KindToInt, KindFromInt, KindRet:
		return e.uvarints(uint64(evt.Ptr))
	case KindCopyRef, KindDone:
		return nil
	case KindField:
		return e.uvarints(uint64(evt.Ptr), uint64(evt.Field))
	case KindAddrOfLocal:
		return e.uvarints(uint64(evt.Ptr), uint64(evt.Local))
	case KindOffset:
		return e.uvarints(uint64(evt.Ptr), zigzag(evt.Delta), uint64(evt.New))
	}
	return nil
}

func (e *Encoder) uvarints(values ...uint64) error {
	for _, v := range values {
		n := binary.PutUvarint(e.scratch[:], v)
		if _, err := e.w.Write(e.scratch[:n]); err != nil {
			return err
		}
	}
	return nil
}

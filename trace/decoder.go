package trace

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// header opens every trace stream; the trailing byte is the wire version.
var header = [8]byte{'p', 'r', 'o', 'v', 't', 'r', 0, Version}

// Version is the trace wire format version this package reads and writes.
const Version = 1

// Decoder reads events from a trace stream produced by the instrumentation
// runtime (or by an Encoder).
type Decoder struct {
	buf     *bufio.Reader
	err     error
	count   int
	started bool
}

// NewDecoder returns a new decoder that reads from r. If the given r is a
// bufio.Reader then the decoder will use it for buffering, otherwise it
// creates a new bufio.Reader.
func NewDecoder(r io.Reader) *Decoder {
	buf, ok := r.(*bufio.Reader)
	if !ok {
		buf = bufio.NewReader(r)
	}
	return &Decoder{buf: buf}
}

// Err returns the first error that occurred during decoding. If that error
// was io.EOF the decoding stopped cleanly at end of stream and Err returns
// nil.
func (d *Decoder) Err() error {
	if d.err == io.EOF {
		return nil
	}
	return d.err
}

// Count returns the number of events decoded so far.
func (d *Decoder) Count() int {
	return d.count
}

// More returns true while events may still be retrieved. The first time More
// returns false all future calls return false.
func (d *Decoder) More() bool {
	if d.err != nil {
		return false
	}
	if d.buf.Buffered() == 0 {
		_, d.err = d.buf.Peek(1)
	}
	return d.err == nil
}

// Decode returns the next event from the stream. A non-nil error is
// permanent; if it is io.EOF the stream ended on an event boundary, any
// other error means the tail of the stream could not be decoded.
func (d *Decoder) Decode() (*Event, error) {
	if d.err != nil {
		return nil, d.err
	}
	if !d.started {
		if d.err = d.readHeader(); d.err != nil {
			return nil, d.err
		}
		d.started = true
	}
	evt, err := d.decodeEvent()
	if err != nil {
		d.err = err
		return nil, err
	}
	d.count++
	return evt, nil
}

func (d *Decoder) readHeader() error {
	var got [8]byte
	if _, err := io.ReadFull(d.buf, got[:]); err != nil {
		return fmt.Errorf("trace header: %w", err)
	}
	if got != header {
		return fmt.Errorf("trace header: unexpected magic %q", got[:])
	}
	return nil
}

func (d *Decoder) decodeEvent() (*Event, error) {
	kind, err := d.buf.ReadByte()
	if err != nil {
		return nil, err // io.EOF here is a clean end of stream
	}
	evt := &Event{Kind: Kind(kind)}
	if !evt.Kind.Valid() {
		return nil, fmt.Errorf("event %d: unknown kind %d", d.count, kind)
	}
	loc, err := d.uvarint()
	if err != nil {
		return nil, err
	}
	evt.Loc = LocRef(loc)

	switch evt.Kind {
	case KindAlloc:
		err = d.fields(&evt.Ptr, &evt.Size)
	case KindRealloc:
		err = d.fields(&evt.Ptr, &evt.New, &evt.Size)
	case KindFree, KindCopyPtr, KindLoadAddr, KindStoreAddr,
		KindLoadValue, KindStoreValue, KindToInt, KindFromInt, KindRet:
		err = d.fields(&evt.Ptr)
	case KindCopyRef, KindDone:
		// no payload
	case KindField:
		var field uint64
		if err = d.fields(&evt.Ptr, &field); err == nil {
			evt.Field = uint32(field)
		}
	case KindAddrOfLocal:
		var local uint64
		if err = d.fields(&evt.Ptr, &local); err == nil {
			evt.Local = LocalID(local)
		}
	case KindOffset:
		var delta uint64
		if err = d.fields(&evt.Ptr, &delta, &evt.New); err == nil {
			evt.Delta = unzigzag(delta)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("event %d (%s): %w", d.count, evt.Kind, err)
	}
	return evt, nil
}

// fields decodes consecutive uvarint payload fields into the given targets.
func (d *Decoder) fields(targets ...interface{}) error {
	for _, target := range targets {
		v, err := d.uvarint()
		if err != nil {
			return err
		}
		switch t := target.(type) {
		case *Pointer:
			*t = Pointer(v)
		case *uint64:
			*t = v
		default:
			return fmt.Errorf("unsupported payload target %T", target)
		}
	}
	return nil
}

func (d *Decoder) uvarint() (uint64, error) {
	v, err := binary.ReadUvarint(d.buf)
	if err == io.EOF {
		// a partial event is a truncated stream, not a clean end
		return 0, io.ErrUnexpectedEOF
	}
	return v, err
}

func unzigzag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

func zigzag(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

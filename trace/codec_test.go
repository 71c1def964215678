package trace

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleEvents() []*Event {
	return []*Event{
		{Kind: KindAlloc, Loc: 1, Ptr: 0x1000, Size: 64},
		{Kind: KindRealloc, Loc: 2, Ptr: 0x1000, New: 0x2000, Size: 128},
		{Kind: KindCopyPtr, Loc: 3, Ptr: 0x2000},
		{Kind: KindCopyRef, Loc: 4},
		{Kind: KindField, Loc: 5, Ptr: 0x2000, Field: 3},
		{Kind: KindAddrOfLocal, Loc: 6, Ptr: 0x3000, Local: 7},
		{Kind: KindOffset, Loc: 7, Ptr: 0x2000, Delta: -4, New: 0x1fe0},
		{Kind: KindLoadValue, Loc: 8, Ptr: 0x1fe0},
		{Kind: KindStoreAddr, Loc: 9, Ptr: 0x1fe0},
		{Kind: KindToInt, Loc: 10, Ptr: 0x1fe0},
		{Kind: KindFromInt, Loc: 11, Ptr: 0x1fe0},
		{Kind: KindFree, Loc: 12, Ptr: 0x2000},
		{Kind: KindRet, Loc: 13, Ptr: 0x2000},
		{Kind: KindDone, Loc: 14},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	encoder := NewEncoder(&buf)
	events := sampleEvents()
	for _, evt := range events {
		if !assert.NoError(t, encoder.Emit(evt)) {
			t.FailNow()
		}
	}

	decoder := NewDecoder(&buf)
	var decoded []*Event
	for decoder.More() {
		evt, err := decoder.Decode()
		if err != nil {
			break
		}
		decoded = append(decoded, evt)
	}
	assert.NoError(t, decoder.Err())
	assert.Equal(t, len(events), decoder.Count())
	assert.Equal(t, events, decoded)
}

func TestDecoder_TruncatedTail(t *testing.T) {
	var buf bytes.Buffer
	encoder := NewEncoder(&buf)
	events := sampleEvents()
	for _, evt := range events {
		assert.NoError(t, encoder.Emit(evt))
	}
	// chop the last event mid-payload
	data := buf.Bytes()[:buf.Len()-1]

	decoder := NewDecoder(bytes.NewReader(data))
	var decoded int
	var err error
	for decoder.More() {
		if _, err = decoder.Decode(); err != nil {
			break
		}
		decoded++
	}
	assert.Error(t, err)
	assert.Error(t, decoder.Err())
	assert.Equal(t, len(events)-1, decoded)
}

func TestDecoder_BadHeader(t *testing.T) {
	decoder := NewDecoder(bytes.NewReader([]byte("not a trace")))
	_, err := decoder.Decode()
	assert.Error(t, err)
	assert.Error(t, decoder.Err())
}

func TestDecoder_EmptyStream(t *testing.T) {
	decoder := NewDecoder(bytes.NewReader(nil))
	assert.False(t, decoder.More())
	assert.NoError(t, decoder.Err())

	decoder = NewDecoder(bytes.NewReader(nil))
	_, err := decoder.Decode()
	assert.ErrorContains(t, err, "trace header")
}

func TestDecoder_UnknownKind(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(header[:])
	buf.WriteByte(0xff)

	decoder := NewDecoder(&buf)
	_, err := decoder.Decode()
	assert.ErrorContains(t, err, "unknown kind")
}

func TestEncoder_RejectsUnknownKind(t *testing.T) {
	encoder := NewEncoder(io.Discard)
	assert.Error(t, encoder.Emit(&Event{Kind: Kind(200)}))
}

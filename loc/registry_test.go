package loc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/provenance/trace"
)

func TestRegistry_Parse(t *testing.T) {
	data := []byte(`
version: v1.0.0
locations:
  - ref: 1
    func: a
    block: 2
    statement: 3
  - ref: 2
    func: a
    block: 4
    statement: 5
    metadata:
      source: {local: 1}
      dest: {local: 2, projection: [0, 3]}
      transfer: {kind: 1, func: b}
`)
	registry, err := Parse(data)
	if !assert.NoError(t, err) {
		t.FailNow()
	}
	assert.Equal(t, "v1.0.0", registry.Version())
	assert.Equal(t, 2, registry.Len())

	resolved, ok := registry.Resolve(2)
	if !assert.True(t, ok) {
		t.FailNow()
	}
	assert.EqualValues(t, 1, resolved.Meta.Source.Local)
	assert.Equal(t, []uint32{0, 3}, resolved.Meta.Dest.Projection)
	assert.Equal(t, "b", resolved.DestFunc.Name)
}

func TestRegistry_TransferRule(t *testing.T) {
	tests := []struct {
		description   string
		entry         Entry
		expectedSrc   string
		expectedDest  string
		expectedBlock uint32
		expectedStmt  uint32
	}{
		{
			description:   "no transfer keeps the enclosing function",
			entry:         Entry{Ref: 1, Func: "a", Block: 3, Statement: 4},
			expectedSrc:   "a",
			expectedDest:  "a",
			expectedBlock: 3,
			expectedStmt:  4,
		},
		{
			description: "argument enters the callee at its entry point",
			entry: Entry{Ref: 1, Func: "a", Block: 3, Statement: 4, Meta: trace.Metadata{
				Transfer: trace.Transfer{Kind: trace.TransferArg, Func: "b"},
			}},
			expectedSrc:   "a",
			expectedDest:  "b",
			expectedBlock: 0,
			expectedStmt:  0,
		},
		{
			description: "return value arrives from the callee",
			entry: Entry{Ref: 1, Func: "a", Block: 3, Statement: 4, Meta: trace.Metadata{
				Transfer: trace.Transfer{Kind: trace.TransferRet, Func: "b"},
			}},
			expectedSrc:   "b",
			expectedDest:  "a",
			expectedBlock: 3,
			expectedStmt:  4,
		},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			registry, err := New(&Document{Version: "v1.0.0", Locations: []Entry{tc.entry}})
			if !assert.NoError(t, err) {
				t.FailNow()
			}
			resolved, ok := registry.Resolve(1)
			if !assert.True(t, ok) {
				t.FailNow()
			}
			assert.Equal(t, tc.expectedSrc, resolved.SrcFunc.Name)
			assert.Equal(t, tc.expectedDest, resolved.DestFunc.Name)
			assert.Equal(t, tc.expectedBlock, resolved.Block)
			assert.Equal(t, tc.expectedStmt, resolved.Statement)
			assert.Equal(t, "a", resolved.Func.Name)
		})
	}
}

func TestRegistry_VersionGate(t *testing.T) {
	_, err := New(&Document{Version: "not-semver"})
	assert.ErrorContains(t, err, "invalid registry version")

	_, err = New(&Document{Version: "v2.0.0"})
	assert.ErrorContains(t, err, "incompatible registry version")

	_, err = New(&Document{Version: "v1.9.3"})
	assert.NoError(t, err, "same major must load")
}

func TestRegistry_UnknownRef(t *testing.T) {
	registry, err := New(&Document{Version: "v1.0.0"})
	assert.NoError(t, err)
	_, ok := registry.Resolve(42)
	assert.False(t, ok)
}

func TestRegistry_FuncInterning(t *testing.T) {
	registry, err := New(&Document{Version: "v1.0.0"})
	assert.NoError(t, err)

	first, err := registry.Func("pkg::fn")
	assert.NoError(t, err)
	second, err := registry.Func("pkg::fn")
	assert.NoError(t, err)
	other, err := registry.Func("pkg::other")
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first.Hash, other.Hash)
}

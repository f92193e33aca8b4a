package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOp_Constructors(t *testing.T) {
	idle := Idle[int]()
	assert.True(t, idle.IsIdle())
	_, ok := idle.Value()
	assert.False(t, ok)

	pending := Pending[int]("req-1")
	assert.True(t, pending.IsPending())
	assert.Equal(t, "req-1", pending.RequestID())
	_, _, failed := pending.Err()
	assert.False(t, failed, "pending op must not carry an error")

	done := Succeeded(42)
	v, ok := done.Value()
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, "", done.RequestID())

	bad := Failed[int](ErrorKindAPI, "boom")
	kind, msg, ok := bad.Err()
	assert.True(t, ok)
	assert.Equal(t, ErrorKindAPI, kind)
	assert.Equal(t, "boom", msg)
	assert.Equal(t, 7, bad.ValueOr(7))
}

func TestOp_Accepts(t *testing.T) {
	op := Pending[string]("a")
	assert.True(t, op.Accepts("a"))
	assert.False(t, op.Accepts("b"))
	assert.False(t, Succeeded("x").Accepts(""))
	assert.False(t, Idle[string]().Accepts(""))
}

func TestOp_String(t *testing.T) {
	tests := []struct {
		op   Op[int]
		want string
	}{
		{Idle[int](), "idle"},
		{Pending[int]("r"), "pending(r)"},
		{Succeeded(1), "succeeded"},
		{Failed[int](ErrorKindNetwork, "down"), "failed(network: down)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.op.String())
	}
	assert.Equal(t, "unknown", Status(99).String())
}

package ui

import (
	"testing"
	"time"
)

func TestDebouncer_OnlyLatestFires(t *testing.T) {
	d := NewDebouncer("search", 10*time.Millisecond)

	first := d.Trigger()()
	second := d.Trigger()()

	if d.Fire(first) {
		t.Error("superseded tick should not fire")
	}
	if !d.Fire(second) {
		t.Error("latest tick should fire")
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer("search", time.Millisecond)
	msg := d.Trigger()()
	d.Cancel()
	if d.Fire(msg) {
		t.Error("cancelled tick should not fire")
	}
}

func TestDebouncer_TagsAreIndependent(t *testing.T) {
	a := NewDebouncer("a", time.Millisecond)
	b := NewDebouncer("b", time.Millisecond)
	msg := a.Trigger()()
	b.Trigger()
	if b.Fire(msg) {
		t.Error("tick from another debouncer should not fire")
	}
	if !a.Fire(msg) {
		t.Error("own tick should fire")
	}
	if a.Fire("not a tick") {
		t.Error("unrelated message should not fire")
	}
}

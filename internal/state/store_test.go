package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type counter struct {
	N int
}

type add struct{ By int }

func (add) ActionName() string { return "test/add" }

type noop struct{}

func (noop) ActionName() string { return "test/noop" }

func reduceCounter(s counter, a Action) counter {
	switch a := a.(type) {
	case add:
		s.N += a.By
	}
	return s
}

func TestStore_Dispatch(t *testing.T) {
	s := NewStore(counter{}, reduceCounter)

	got := s.Dispatch(add{By: 2})
	assert.Equal(t, 2, got.N)

	s.Dispatch(noop{})
	assert.Equal(t, 2, s.State().N)
}

func TestStore_Middleware(t *testing.T) {
	var seen []string
	mw := func(a Action, before, after counter) {
		seen = append(seen, a.ActionName())
		if _, ok := a.(add); ok {
			assert.Less(t, before.N, after.N)
		}
	}
	s := NewStore(counter{}, reduceCounter, mw)
	s.Dispatch(add{By: 1})
	s.Dispatch(noop{})

	assert.Equal(t, []string{"test/add", "test/noop"}, seen)
}

func TestStore_SubscribeNewestWins(t *testing.T) {
	s := NewStore(counter{}, reduceCounter)
	ch, cancel := s.Subscribe()
	defer cancel()

	for i := 0; i < 5; i++ {
		s.Dispatch(add{By: 1})
	}

	latest := <-ch
	assert.Equal(t, 5, latest.N)

	select {
	case extra := <-ch:
		t.Fatalf("expected no buffered state, got %+v", extra)
	default:
	}
}

func TestStore_CancelClosesChannel(t *testing.T) {
	s := NewStore(counter{}, reduceCounter)
	ch, cancel := s.Subscribe()
	cancel()
	cancel()

	_, open := <-ch
	require.False(t, open)

	// Dispatch after cancel must not panic on a closed channel.
	s.Dispatch(add{By: 1})
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	s := NewStore(counter{}, reduceCounter)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(add{By: 1})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.State().N)
}

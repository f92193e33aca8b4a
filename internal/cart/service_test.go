package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/state"
	"storefront/internal/types"
)

func newTestService() (*Service, *state.Store[State]) {
	st := state.NewStore(State{}, Reduce)
	svc := NewService(DefaultPricing(), func(a state.Action) { st.Dispatch(a) }, st.State)
	return svc, st
}

func TestService_AddAndTotals(t *testing.T) {
	svc, _ := newTestService()
	shoe := types.Product{ID: 1, Name: "Shoe", Price: dec("20")}
	sock := types.Product{ID: 2, Name: "Sock", Price: dec("5")}

	svc.Add(shoe, 2)
	svc.Add(sock, 0)

	assert.Equal(t, 3, svc.Cart().Count())
	got := svc.Totals()
	assert.Equal(t, "59.50", Format(got.Total))
	assert.Equal(t, "5.00", Format(svc.FreeShippingGap()))
}

func TestService_SetQuantityRejectsBelowOne(t *testing.T) {
	svc, st := newTestService()
	svc.Add(types.Product{ID: 1, Price: dec("3")}, 1)

	err := svc.SetQuantity(1, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Equal(t, ErrInvalidQuantity.Error(), st.State().LastError)
	assert.Equal(t, 1, svc.Cart().Count())

	require.NoError(t, svc.SetQuantity(1, 4))
	assert.Empty(t, st.State().LastError)
	assert.Equal(t, 4, svc.Cart().Count())

	assert.ErrorIs(t, svc.SetQuantity(9, 2), ErrNotInCart)
}

func TestService_RemoveAndClear(t *testing.T) {
	svc, _ := newTestService()
	svc.Add(types.Product{ID: 1, Price: dec("3")}, 1)
	svc.Add(types.Product{ID: 2, Price: dec("4")}, 1)

	svc.Remove(1)
	assert.Equal(t, 1, svc.Cart().Len())

	svc.Clear()
	assert.True(t, svc.Cart().IsEmpty())
	assert.True(t, svc.Totals().Subtotal.IsZero())
}

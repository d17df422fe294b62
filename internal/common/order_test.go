package common

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnpack_Limit(t *testing.T) {
	order, err := Unpack(NewLimitEvent(Buy, 7, decimal.NewFromInt(10), 5))
	require.NoError(t, err)

	assert.Equal(t, int64(7), order.ID)
	assert.Equal(t, LimitOrder, order.OrderType)
	assert.Equal(t, Buy, order.Side)
	assert.True(t, decimal.NewFromInt(10).Equal(order.LimitPrice))
	assert.Equal(t, int64(5), order.Quantity)
	assert.Equal(t, int64(5), order.TotalQuantity)
	assert.Equal(t, int64(5), order.Displayed())
}

func TestUnpack_Iceberg(t *testing.T) {
	order, err := Unpack(NewIcebergEvent(Sell, 3, decimal.NewFromInt(10), 9, 4))
	require.NoError(t, err)

	assert.Equal(t, IcebergOrder, order.OrderType)
	assert.Equal(t, int64(4), order.Peak)
	assert.Equal(t, int64(4), order.Displayed())

	// A peak above the total only shows what is there.
	order, err = Unpack(NewIcebergEvent(Sell, 4, decimal.NewFromInt(10), 2, 4))
	require.NoError(t, err)
	assert.Equal(t, int64(2), order.Displayed())
}

func TestUnpack_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Event)
	}{
		{"missing type", func(e *Event) { e.Type = nil }},
		{"missing body", func(e *Event) { e.Order = nil }},
		{"missing id", func(e *Event) { e.Order.ID = nil }},
		{"missing direction", func(e *Event) { e.Order.Direction = nil }},
		{"missing price", func(e *Event) { e.Order.Price = nil }},
		{"missing quantity", func(e *Event) { e.Order.Quantity = nil }},
		{"iceberg without peak", func(e *Event) {
			typeOf := "Iceberg"
			e.Type = &typeOf
		}},
		{"limit with peak", func(e *Event) {
			peak := int64(2)
			e.Order.Peak = &peak
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := NewLimitEvent(Buy, 1, decimal.NewFromInt(10), 5)
			tt.mutate(&event)
			_, err := Unpack(event)
			assert.ErrorIs(t, err, ErrMalformedOrder)
		})
	}
}

func TestValidate(t *testing.T) {
	valid, err := Unpack(NewIcebergEvent(Buy, 1, decimal.NewFromInt(10), 9, 3))
	require.NoError(t, err)
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Order)
	}{
		{"unknown type", func(o *Order) { o.OrderType = UnknownOrder }},
		{"unknown side", func(o *Order) { o.Side = SideUnknown }},
		{"negative price", func(o *Order) { o.LimitPrice = decimal.NewFromInt(-1) }},
		{"negative quantity", func(o *Order) { o.Quantity = -1 }},
		{"zero peak", func(o *Order) { o.Peak = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := valid
			tt.mutate(&order)
			assert.ErrorIs(t, order.Validate(), ErrRejectedOrder)
		})
	}
}

func TestUnpack_UnknownStringsAreRejectedNotMalformed(t *testing.T) {
	event := NewLimitEvent(Buy, 1, decimal.NewFromInt(10), 5)
	direction := "Hold"
	event.Order.Direction = &direction

	order, err := Unpack(event)
	require.NoError(t, err)
	assert.Equal(t, SideUnknown, order.Side)
	assert.ErrorIs(t, order.Validate(), ErrRejectedOrder)
}

func TestWithReducedQuantity(t *testing.T) {
	order, err := Unpack(NewLimitEvent(Buy, 1, decimal.NewFromInt(10), 5))
	require.NoError(t, err)

	reduced, err := order.WithReducedQuantity(2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), reduced.Quantity)
	// The original value is untouched.
	assert.Equal(t, int64(5), order.Quantity)

	_, err = order.WithReducedQuantity(6)
	assert.ErrorIs(t, err, ErrInvalidFill)
	_, err = order.WithReducedQuantity(-1)
	assert.ErrorIs(t, err, ErrInvalidFill)
}

func TestWithReducedQuantity_Iceberg(t *testing.T) {
	order, err := Unpack(NewIcebergEvent(Sell, 1, decimal.NewFromInt(10), 9, 3))
	require.NoError(t, err)

	// Cannot fill past the displayed clip.
	_, err = order.WithReducedQuantity(4)
	assert.ErrorIs(t, err, ErrInvalidFill)

	reduced, err := order.WithReducedQuantity(3)
	require.NoError(t, err)
	assert.Equal(t, int64(6), reduced.Quantity)
	assert.Equal(t, int64(3), reduced.Peak)
	assert.True(t, reduced.ClipExhausted())

	replenished := reduced.Replenished()
	assert.Equal(t, int64(3), replenished.Displayed())
	assert.False(t, replenished.ClipExhausted())
}

func TestWithQuantity(t *testing.T) {
	order, err := Unpack(NewIcebergEvent(Buy, 1, decimal.NewFromInt(10), 9, 3))
	require.NoError(t, err)

	partial, err := order.WithReducedQuantity(2)
	require.NoError(t, err)

	amended := partial.WithQuantity(20)
	assert.Equal(t, int64(20), amended.Quantity)
	assert.Equal(t, int64(22), amended.TotalQuantity)
	assert.Equal(t, int64(1), amended.Displayed(), "keeps what is left of the clip")

	shrunk := partial.WithQuantity(0)
	assert.Equal(t, int64(0), shrunk.Displayed())
}

func TestSizingComparisons(t *testing.T) {
	small, err := Unpack(NewLimitEvent(Buy, 1, decimal.NewFromInt(10), 4))
	require.NoError(t, err)
	large, err := Unpack(NewIcebergEvent(Sell, 2, decimal.NewFromInt(10), 100, 5))
	require.NoError(t, err)

	assert.True(t, small.SmallerThan(large))
	assert.True(t, large.LargerThan(small))
	assert.False(t, small.LargerThan(small))
}

func TestSide(t *testing.T) {
	assert.Equal(t, Buy, ParseSide("Buy"))
	assert.Equal(t, Sell, ParseSide("Sell"))
	assert.Equal(t, SideUnknown, ParseSide("buy"))
	assert.Equal(t, Sell, Buy.Opposite())
	assert.Equal(t, Buy, Sell.Opposite())
	assert.Equal(t, "Unknown", SideUnknown.String())
}

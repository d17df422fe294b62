package common

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Order is a value: every fill, replenishment or amendment returns a new
// Order rather than editing one in place, so a copy held by the book and one
// held by a match in progress can never disagree.
type Order struct {
	ID            int64           // Externally assigned order id
	OrderType     OrderType       //
	Side          Side            // Order side
	LimitPrice    decimal.Decimal // Limiting price, fixed for the order's life
	Quantity      int64           // Remaining quantity
	TotalQuantity int64           // Total volume requested
	Peak          int64           // Iceberg display clip
	Visible       int64           // Iceberg quantity currently displayed
	Sequence      uint64          // Position of arrival into the book
}

// Unpack builds an Order out of a decoded feed event. Only presence and shape
// are checked here, values are checked by Validate.
func Unpack(event Event) (Order, error) {
	if event.Type == nil {
		return Order{}, fmt.Errorf("%w: missing type", ErrMalformedOrder)
	}
	if event.Order == nil {
		return Order{}, fmt.Errorf("%w: missing order body", ErrMalformedOrder)
	}

	body := event.Order
	switch {
	case body.ID == nil:
		return Order{}, fmt.Errorf("%w: missing id", ErrMalformedOrder)
	case body.Direction == nil:
		return Order{}, fmt.Errorf("%w: order %d missing direction", ErrMalformedOrder, *body.ID)
	case body.Price == nil:
		return Order{}, fmt.Errorf("%w: order %d missing price", ErrMalformedOrder, *body.ID)
	case body.Quantity == nil:
		return Order{}, fmt.Errorf("%w: order %d missing quantity", ErrMalformedOrder, *body.ID)
	}

	order := Order{
		ID:            *body.ID,
		OrderType:     ParseOrderType(*event.Type),
		Side:          ParseSide(*body.Direction),
		LimitPrice:    *body.Price,
		Quantity:      *body.Quantity,
		TotalQuantity: *body.Quantity,
	}

	switch order.OrderType {
	case IcebergOrder:
		if body.Peak == nil {
			return Order{}, fmt.Errorf("%w: iceberg order %d missing peak", ErrMalformedOrder, order.ID)
		}
		order.Peak = *body.Peak
		order.Visible = min(order.Peak, order.Quantity)
	case LimitOrder:
		if body.Peak != nil {
			return Order{}, fmt.Errorf("%w: limit order %d carries a peak", ErrMalformedOrder, order.ID)
		}
	}
	return order, nil
}

// Validate checks the order's values. Every failure wraps ErrRejectedOrder
// with the reason.
func (order Order) Validate() error {
	switch {
	case order.OrderType != LimitOrder && order.OrderType != IcebergOrder:
		return fmt.Errorf("%w: order %d type must be Limit or Iceberg", ErrRejectedOrder, order.ID)
	case order.Side != Buy && order.Side != Sell:
		return fmt.Errorf("%w: order %d direction must be Buy or Sell", ErrRejectedOrder, order.ID)
	case order.LimitPrice.IsNegative():
		return fmt.Errorf("%w: order %d price cannot be negative", ErrRejectedOrder, order.ID)
	case order.Quantity < 0:
		return fmt.Errorf("%w: order %d quantity cannot be negative", ErrRejectedOrder, order.ID)
	case order.OrderType == IcebergOrder && order.Peak <= 0:
		return fmt.Errorf("%w: iceberg order %d peak must be positive", ErrRejectedOrder, order.ID)
	}
	return nil
}

// Displayed is the quantity the order shows to the book: the current clip
// for an iceberg, everything for a limit order.
func (order Order) Displayed() int64 {
	if order.OrderType == IcebergOrder {
		return order.Visible
	}
	return order.Quantity
}

// SmallerThan compares displayed quantities. It sizes a match step and says
// nothing about priority.
func (order Order) SmallerThan(other Order) bool {
	return order.Displayed() < other.Displayed()
}

// LargerThan compares displayed quantities, see SmallerThan.
func (order Order) LargerThan(other Order) bool {
	return order.Displayed() > other.Displayed()
}

// WithReducedQuantity returns the order after a fill of amount. An iceberg
// can only be filled out of its displayed clip.
func (order Order) WithReducedQuantity(amount int64) (Order, error) {
	if amount < 0 || amount > order.Quantity ||
		(order.OrderType == IcebergOrder && amount > order.Visible) {
		return order, fmt.Errorf(
			"%w: order %d holds %d (displayed %d), cannot fill %d",
			ErrInvalidFill, order.ID, order.Quantity, order.Displayed(), amount,
		)
	}

	order.Quantity -= amount
	if order.OrderType == IcebergOrder {
		order.Visible -= amount
	}
	return order, nil
}

// ClipExhausted reports an iceberg whose displayed clip is gone while hidden
// quantity remains.
func (order Order) ClipExhausted() bool {
	return order.OrderType == IcebergOrder && order.Visible == 0 && order.Quantity > 0
}

// Replenished returns the iceberg with a fresh clip shown.
func (order Order) Replenished() Order {
	if order.OrderType == IcebergOrder {
		order.Visible = min(order.Peak, order.Quantity)
	}
	return order
}

// WithQuantity returns the order amended to a new remaining quantity. Price,
// type and side never change. An iceberg keeps what is left of its clip, or
// shows a fresh one if nothing is left.
func (order Order) WithQuantity(quantity int64) Order {
	filled := order.TotalQuantity - order.Quantity
	order.Quantity = quantity
	order.TotalQuantity = filled + quantity
	if order.OrderType == IcebergOrder {
		order.Visible = min(order.Visible, quantity)
		if order.Visible == 0 {
			order.Visible = min(order.Peak, quantity)
		}
	}
	return order
}

func (order Order) String() string {
	return fmt.Sprintf(
		`ID:            %d
OrderType:     %v
Side:          %v
LimitPrice:    %s
Quantity:      %d (Total: %d)
Displayed:     %d
Sequence:      %d`,
		order.ID,
		order.OrderType,
		order.Side,
		order.LimitPrice,
		order.Quantity,
		order.TotalQuantity,
		order.Displayed(),
		order.Sequence,
	)
}

package common

import "github.com/shopspring/decimal"

// Event is one decoded entry of the order feed:
//
//	{"type": "Iceberg", "order": {"direction": "Buy", "id": 1, "price": 10, "quantity": 9, "peak": 3}}
//
// Every field is optional at this level so that Unpack can tell a missing
// field apart from a zero value.
type Event struct {
	Type  *string     `json:"type"`
	Order *EventOrder `json:"order"`
}

type EventOrder struct {
	Direction *string          `json:"direction"`
	ID        *int64           `json:"id"`
	Price     *decimal.Decimal `json:"price"`
	Quantity  *int64           `json:"quantity"`
	Peak      *int64           `json:"peak,omitempty"`
}

// NewLimitEvent builds the event a feed would produce for a limit order.
func NewLimitEvent(side Side, id int64, price decimal.Decimal, quantity int64) Event {
	typeOf := LimitOrder.String()
	direction := side.String()
	return Event{
		Type: &typeOf,
		Order: &EventOrder{
			Direction: &direction,
			ID:        &id,
			Price:     &price,
			Quantity:  &quantity,
		},
	}
}

// NewIcebergEvent builds the event a feed would produce for an iceberg order.
func NewIcebergEvent(side Side, id int64, price decimal.Decimal, quantity, peak int64) Event {
	event := NewLimitEvent(side, id, price, quantity)
	typeOf := IcebergOrder.String()
	event.Type = &typeOf
	event.Order.Peak = &peak
	return event
}

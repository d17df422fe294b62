package common

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Trade is one ledger entry: a single discrete execution between a buy and a
// sell order. Each iceberg clip traded is its own Trade.
type Trade struct {
	BuyOrderID  int64
	SellOrderID int64
	Price       decimal.Decimal
	MatchQty    int64
}

func (t Trade) String() string {
	return fmt.Sprintf(
		`BuyOrderID:     %d
SellOrderID:    %d
MatchQty:       %d
Price:          %s`,
		t.BuyOrderID,
		t.SellOrderID,
		t.MatchQty,
		t.Price,
	)
}

// RestingOrder is the displayed view of an order sitting in the book.
type RestingOrder struct {
	ID       int64
	Price    decimal.Decimal
	Quantity int64
}

// String renders the order as id@price x quantity.
func (o RestingOrder) String() string {
	return fmt.Sprintf("%d@%sx%d", o.ID, o.Price, o.Quantity)
}

// BookSnapshot lists the resting orders of each side by ascending id.
type BookSnapshot struct {
	Buy  []RestingOrder
	Sell []RestingOrder
}

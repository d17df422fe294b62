package engine

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"fenrir/internal/common"

	"github.com/rs/zerolog"
)

var (
	// ErrHalted is returned by a book that has seen an invalid fill. It wraps
	// the original diagnostic.
	ErrHalted = errors.New("order book halted")
)

// OrderBook is a single instrument's two sided book. It is not safe for
// concurrent use: one goroutine submits events and runs every match to
// completion before the next event.
type OrderBook struct {
	// Sorted by price, then requeue generation, then id.
	bids *PriceLevels
	asks *PriceLevels

	snapshot *Snapshot
	ledger   *Ledger

	priceRule PriceRule
	logger    zerolog.Logger

	sequence uint64 // Arrival counter, stamped on every new order.
	halted   error  // Set once an invalid fill is observed.
}

func New(opts ...Option) *OrderBook {
	book := &OrderBook{
		bids:      newPriceLevels(common.Buy),
		asks:      newPriceLevels(common.Sell),
		snapshot:  newSnapshot(),
		ledger:    &Ledger{},
		priceRule: ConsumedSidePrice,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(book)
	}
	return book
}

// Submit takes one feed event through the book: it is unpacked, validated,
// rested (or amended, if the id is already resting on its side) and then
// matched against the opposite side until the book no longer crosses.
//
// Malformed and rejected events leave the book untouched and are returned as
// errors so the caller can carry on with the next one. Any error wrapping
// common.ErrInvalidFill halts the book.
//
// Returns the trades this event produced, in execution order.
func (book *OrderBook) Submit(event common.Event) ([]common.Trade, error) {
	if book.halted != nil {
		return nil, fmt.Errorf("%w: %w", ErrHalted, book.halted)
	}

	order, err := common.Unpack(event)
	if err != nil {
		book.logger.Debug().Err(err).Msg("dropping event")
		return nil, err
	}
	if err := order.Validate(); err != nil {
		book.logger.Debug().Err(err).Msg("dropping event")
		return nil, err
	}

	mark := book.ledger.Len()
	if err := book.place(order); err != nil {
		book.logger.Debug().Err(err).Msg("dropping event")
		return nil, err
	}
	err = book.match()
	return book.ledger.Since(mark), err
}

// place rests an order on its own side. An id already resting on that side
// is an amendment of its quantity.
func (book *OrderBook) place(order common.Order) error {
	own, opposite := book.sides(order.Side)

	if _, ok := opposite.Get(order.ID); ok {
		return fmt.Errorf(
			"%w: order %d already rests on the %v side",
			common.ErrRejectedOrder, order.ID, order.Side.Opposite(),
		)
	}

	if resting, ok := own.Get(order.ID); ok {
		book.amend(own, resting, order.Quantity)
		return nil
	}

	// Nothing to rest.
	if order.Quantity == 0 {
		book.logger.Debug().Int64("id", order.ID).Msg("ignoring empty order")
		return nil
	}

	book.sequence++
	order.Sequence = book.sequence
	own.Insert(order)
	book.snapshot.Upsert(order)

	book.logger.Debug().
		Int64("id", order.ID).
		Stringer("side", order.Side).
		Stringer("type", order.OrderType).
		Stringer("price", order.LimitPrice).
		Int64("quantity", order.Quantity).
		Msg("order rested")
	return nil
}

// amend replaces the quantity of a resting order in place. Price and
// priority are kept, zero removes the order.
func (book *OrderBook) amend(levels *PriceLevels, resting common.Order, quantity int64) {
	amended := resting.WithQuantity(quantity)
	if amended.Quantity == 0 {
		levels.Remove(amended.ID)
		book.snapshot.Remove(amended.Side, amended.ID)
	} else {
		levels.Upsert(amended)
		book.snapshot.Upsert(amended)
	}

	book.logger.Debug().
		Int64("id", amended.ID).
		Int64("from", resting.Quantity).
		Int64("to", amended.Quantity).
		Msg("order amended")
}

// sides returns the side an order of the given direction rests on, and the
// side it trades against.
func (book *OrderBook) sides(side common.Side) (own, opposite *PriceLevels) {
	if side == common.Buy {
		return book.bids, book.asks
	}
	return book.asks, book.bids
}

func (book *OrderBook) BestBid() (common.Order, bool) {
	return book.bids.Best()
}

func (book *OrderBook) BestAsk() (common.Order, bool) {
	return book.asks.Best()
}

// Resting looks an order up on either side.
func (book *OrderBook) Resting(id int64) (common.Order, bool) {
	if order, ok := book.bids.Get(id); ok {
		return order, true
	}
	return book.asks.Get(id)
}

// Depth returns the number of resting orders per side.
func (book *OrderBook) Depth() (bids, asks int) {
	return book.bids.Len(), book.asks.Len()
}

// Bids lists the resting buy orders in priority order.
func (book *OrderBook) Bids() []common.Order {
	return book.bids.Orders()
}

// Asks lists the resting sell orders in priority order.
func (book *OrderBook) Asks() []common.Order {
	return book.asks.Orders()
}

// Ledger returns every trade executed so far.
func (book *OrderBook) Ledger() []common.Trade {
	return book.ledger.Entries()
}

// Snapshot returns the incrementally maintained view of resting orders.
func (book *OrderBook) Snapshot() common.BookSnapshot {
	return book.snapshot.Value()
}

// DeriveSnapshot rebuilds the resting view from the sides themselves. It
// always agrees with Snapshot.
func (book *OrderBook) DeriveSnapshot() common.BookSnapshot {
	return common.BookSnapshot{
		Buy:  deriveSide(book.bids),
		Sell: deriveSide(book.asks),
	}
}

func deriveSide(levels *PriceLevels) []common.RestingOrder {
	orders := levels.Orders()
	resting := make([]common.RestingOrder, 0, len(orders))
	for _, order := range orders {
		resting = append(resting, displayOf(order))
	}
	slices.SortFunc(resting, func(a, b common.RestingOrder) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return resting
}

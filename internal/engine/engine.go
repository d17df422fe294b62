package engine

import (
	"fmt"

	"fenrir/internal/common"

	"github.com/shopspring/decimal"
)

// This is the matching part of the order book.

// match consumes the top of book while it crosses (i.e., bid >= ask), one
// step at a time. A step trades the smaller of the two displayed quantities,
// so an iceberg only ever gives up its current clip; once that clip is gone
// it is replenished and sent to the back of its price, which may hand the top
// of book to another order at the same price.
//
// Every step trades at least one unit out of the authoritative remaining
// quantities, so the loop always terminates.
func (book *OrderBook) match() error {
	for {
		bestBid, bidOk := book.bids.Best()
		bestAsk, askOk := book.asks.Best()

		// If either side is empty, or prices don't cross, we are done.
		if !bidOk || !askOk || bestBid.LimitPrice.LessThan(bestAsk.LimitPrice) {
			return nil
		}

		if err := book.step(bestBid, bestAsk); err != nil {
			book.halted = err
			book.logger.Error().Err(err).Msg("matching halted")
			return err
		}
	}
}

// Sweep drains any pair still crossing at the top of the book. It is run
// once the feed is exhausted. Returns the trades it produced.
func (book *OrderBook) Sweep() ([]common.Trade, error) {
	if book.halted != nil {
		return nil, fmt.Errorf("%w: %w", ErrHalted, book.halted)
	}
	mark := book.ledger.Len()
	err := book.match()
	return book.ledger.Since(mark), err
}

// step resolves one discrete execution between the best bid and best ask.
func (book *OrderBook) step(bid, ask common.Order) error {
	var quantity int64
	var price decimal.Decimal
	switch {
	case bid.SmallerThan(ask):
		// The bid is fully consumed, the ask partially.
		quantity, price = bid.Displayed(), bid.LimitPrice
	case bid.LargerThan(ask):
		// The ask is fully consumed, the bid partially.
		quantity, price = ask.Displayed(), ask.LimitPrice
	default:
		// Both are consumed, the sell side sets the price.
		quantity, price = ask.Displayed(), ask.LimitPrice
	}

	if book.priceRule == RestingPrice {
		price = maker(bid, ask).LimitPrice
	}

	if quantity <= 0 {
		return fmt.Errorf(
			"%w: nothing displayed between bid %d and ask %d",
			common.ErrInvalidFill, bid.ID, ask.ID,
		)
	}

	filledBid, err := bid.WithReducedQuantity(quantity)
	if err != nil {
		return err
	}
	filledAsk, err := ask.WithReducedQuantity(quantity)
	if err != nil {
		return err
	}

	trade := common.Trade{
		BuyOrderID:  bid.ID,
		SellOrderID: ask.ID,
		Price:       price,
		MatchQty:    quantity,
	}
	book.ledger.Append(trade)

	book.settle(book.bids, filledBid)
	book.settle(book.asks, filledAsk)

	book.logger.Debug().
		Int64("buy", trade.BuyOrderID).
		Int64("sell", trade.SellOrderID).
		Int64("taker", taker(bid, ask).ID).
		Stringer("price", trade.Price).
		Int64("quantity", trade.MatchQty).
		Msg("trade")
	return nil
}

// settle puts an order back after a fill: gone if fully filled, requeued
// with a fresh clip if an iceberg's clip ran out, otherwise replaced in
// place with its priority intact.
func (book *OrderBook) settle(levels *PriceLevels, order common.Order) {
	switch {
	case order.Quantity == 0:
		levels.Remove(order.ID)
		book.snapshot.Remove(order.Side, order.ID)
	case order.ClipExhausted():
		order = order.Replenished()
		levels.Requeue(order)
		book.snapshot.Upsert(order)
		book.logger.Debug().
			Int64("id", order.ID).
			Int64("clip", order.Visible).
			Int64("remaining", order.Quantity).
			Msg("iceberg replenished")
	default:
		levels.Upsert(order)
		book.snapshot.Upsert(order)
	}
}

// maker is whichever order was in the book first. The earlier order must be
// the resting one.
func maker(bid, ask common.Order) common.Order {
	if bid.Sequence < ask.Sequence {
		return bid
	}
	return ask
}

// taker is the order whose arrival caused the cross.
func taker(bid, ask common.Order) common.Order {
	if bid.Sequence < ask.Sequence {
		return ask
	}
	return bid
}

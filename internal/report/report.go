package report

import (
	"encoding/json"
	"fmt"
	"io"

	"fenrir/internal/common"
)

// Reporter receives the results of a run. The matching path never formats
// anything itself: it hands values to a Reporter between events.
type Reporter interface {
	// ReportEvent is called after every accepted event with the trades it
	// produced. snapshot returns the book as it stands and is only worth
	// calling when the book is actually written out.
	ReportEvent(line int, trades []common.Trade, snapshot func() common.BookSnapshot) error
	// ReportRejection is called for every dropped event.
	ReportRejection(line int, err error) error
	// ReportFinal is called once the feed is exhausted and swept.
	ReportFinal(snapshot common.BookSnapshot, ledger []common.Trade) error
}

type restingOrderJSON struct {
	ID       int64       `json:"id"`
	Price    json.Number `json:"price"`
	Quantity int64       `json:"quantity"`
}

type snapshotJSON struct {
	BuyOrders  []restingOrderJSON `json:"buyOrders"`
	SellOrders []restingOrderJSON `json:"sellOrders"`
}

type tradeJSON struct {
	BuyOrderID  int64       `json:"buyOrderId"`
	SellOrderID int64       `json:"sellOrderId"`
	Price       json.Number `json:"price"`
	Quantity    int64       `json:"quantity"`
}

type rejectionJSON struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// JSONReporter writes one JSON object per line. In live mode every accepted
// event is followed by its trades and the current snapshot; otherwise only
// rejections and the final snapshot and ledger are written.
type JSONReporter struct {
	enc  *json.Encoder
	live bool
}

var _ Reporter = (*JSONReporter)(nil)

func NewJSONReporter(w io.Writer, live bool) *JSONReporter {
	return &JSONReporter{
		enc:  json.NewEncoder(w),
		live: live,
	}
}

func (r *JSONReporter) ReportEvent(line int, trades []common.Trade, snapshot func() common.BookSnapshot) error {
	if !r.live {
		return nil
	}
	if err := r.writeTrades(trades); err != nil {
		return err
	}
	return r.write(toSnapshotJSON(snapshot()))
}

func (r *JSONReporter) ReportRejection(line int, err error) error {
	return r.write(rejectionJSON{Line: line, Error: err.Error()})
}

func (r *JSONReporter) ReportFinal(snapshot common.BookSnapshot, ledger []common.Trade) error {
	if err := r.write(toSnapshotJSON(snapshot)); err != nil {
		return err
	}
	return r.writeTrades(ledger)
}

func (r *JSONReporter) writeTrades(trades []common.Trade) error {
	for _, trade := range trades {
		if err := r.write(tradeJSON{
			BuyOrderID:  trade.BuyOrderID,
			SellOrderID: trade.SellOrderID,
			Price:       json.Number(trade.Price.String()),
			Quantity:    trade.MatchQty,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *JSONReporter) write(v any) error {
	if err := r.enc.Encode(v); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	return nil
}

func toSnapshotJSON(snapshot common.BookSnapshot) snapshotJSON {
	return snapshotJSON{
		BuyOrders:  toRestingJSON(snapshot.Buy),
		SellOrders: toRestingJSON(snapshot.Sell),
	}
}

// Always a non-nil slice so an empty side is written as [].
func toRestingJSON(orders []common.RestingOrder) []restingOrderJSON {
	out := make([]restingOrderJSON, 0, len(orders))
	for _, order := range orders {
		out = append(out, restingOrderJSON{
			ID:       order.ID,
			Price:    json.Number(order.Price.String()),
			Quantity: order.Quantity,
		})
	}
	return out
}

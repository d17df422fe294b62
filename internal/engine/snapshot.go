package engine

import (
	"cmp"

	"fenrir/internal/common"

	rbt "github.com/emirpasic/gods/v2/trees/redblacktree"
)

// Snapshot is the displayed view of the resting orders, kept in step with
// the book by explicit upserts and removals. It only ever stores copies and
// is never read by the matching loop.
type Snapshot struct {
	buy  *rbt.Tree[int64, common.RestingOrder]
	sell *rbt.Tree[int64, common.RestingOrder]
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		buy:  rbt.NewWith[int64, common.RestingOrder](cmp.Compare[int64]),
		sell: rbt.NewWith[int64, common.RestingOrder](cmp.Compare[int64]),
	}
}

func (s *Snapshot) side(side common.Side) *rbt.Tree[int64, common.RestingOrder] {
	if side == common.Buy {
		return s.buy
	}
	return s.sell
}

// Upsert records the order's displayed quantity, or drops it once nothing is
// displayed.
func (s *Snapshot) Upsert(order common.Order) {
	if order.Displayed() == 0 {
		s.Remove(order.Side, order.ID)
		return
	}
	s.side(order.Side).Put(order.ID, displayOf(order))
}

func (s *Snapshot) Remove(side common.Side, id int64) {
	s.side(side).Remove(id)
}

func (s *Snapshot) Value() common.BookSnapshot {
	return common.BookSnapshot{
		Buy:  s.buy.Values(),
		Sell: s.sell.Values(),
	}
}

func displayOf(order common.Order) common.RestingOrder {
	return common.RestingOrder{
		ID:       order.ID,
		Price:    order.LimitPrice,
		Quantity: order.Displayed(),
	}
}

package engine

import (
	"fenrir/internal/common"

	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// levelKey places an order in its side's priority order: price first, then
// generation, then id. New orders take the side's current generation and a
// requeue opens the next one, so a replenished clip goes behind everything
// resting at its price while nothing that arrives later can get ahead of it.
// Within a generation the lower id goes first.
type levelKey struct {
	price      decimal.Decimal
	generation uint64
	id         int64
}

type restingOrder struct {
	key   levelKey
	order common.Order
}

// PriceLevels holds one side of the book. The tree only carries keys, the
// order values live in the id index and are swapped out whole on every
// change.
type PriceLevels struct {
	side       common.Side
	keys       *btree.BTreeG[levelKey]
	orders     map[int64]restingOrder
	generation uint64
}

func newPriceLevels(side common.Side) *PriceLevels {
	less := askLess
	if side == common.Buy {
		less = bidLess
	}
	return &PriceLevels{
		side: side,
		// The book is single writer, no need for the tree's own locking.
		keys:   btree.NewBTreeGOptions(less, btree.Options{NoLocks: true}),
		orders: make(map[int64]restingOrder),
	}
}

// Sorted greatest price first.
func bidLess(a, b levelKey) bool {
	if c := a.price.Cmp(b.price); c != 0 {
		return c > 0
	}
	return queueLess(a, b)
}

// Sorted least price first.
func askLess(a, b levelKey) bool {
	if c := a.price.Cmp(b.price); c != 0 {
		return c < 0
	}
	return queueLess(a, b)
}

func queueLess(a, b levelKey) bool {
	if a.generation != b.generation {
		return a.generation < b.generation
	}
	return a.id < b.id
}

func (levels *PriceLevels) Len() int {
	return len(levels.orders)
}

// Best returns the order at the top of the side.
func (levels *PriceLevels) Best() (common.Order, bool) {
	key, ok := levels.keys.Min()
	if !ok {
		return common.Order{}, false
	}
	return levels.orders[key.id].order, true
}

// PopBest removes and returns the order at the top of the side.
func (levels *PriceLevels) PopBest() (common.Order, bool) {
	key, ok := levels.keys.PopMin()
	if !ok {
		return common.Order{}, false
	}
	resting := levels.orders[key.id]
	delete(levels.orders, key.id)
	return resting.order, true
}

func (levels *PriceLevels) Get(id int64) (common.Order, bool) {
	resting, ok := levels.orders[id]
	return resting.order, ok
}

// Insert rests a new order. An order already resting under the same id is
// replaced, priority included.
func (levels *PriceLevels) Insert(order common.Order) {
	levels.Remove(order.ID)
	levels.set(order, levels.generation)
}

// Upsert replaces a resting order's value keeping its priority. A zero
// quantity removes it. Returns false if the id is not resting on this side.
func (levels *PriceLevels) Upsert(order common.Order) bool {
	resting, ok := levels.orders[order.ID]
	if !ok {
		return false
	}
	if order.Quantity == 0 {
		levels.Remove(order.ID)
		return true
	}
	resting.order = order
	levels.orders[order.ID] = resting
	return true
}

// Requeue moves a resting order behind everything currently at its price.
func (levels *PriceLevels) Requeue(order common.Order) {
	levels.Remove(order.ID)
	levels.generation++
	levels.set(order, levels.generation)
}

func (levels *PriceLevels) Remove(id int64) (common.Order, bool) {
	resting, ok := levels.orders[id]
	if !ok {
		return common.Order{}, false
	}
	levels.keys.Delete(resting.key)
	delete(levels.orders, id)
	return resting.order, true
}

// Orders lists the side in priority order.
func (levels *PriceLevels) Orders() []common.Order {
	orders := make([]common.Order, 0, levels.keys.Len())
	levels.keys.Scan(func(key levelKey) bool {
		orders = append(orders, levels.orders[key.id].order)
		return true
	})
	return orders
}

func (levels *PriceLevels) set(order common.Order, generation uint64) {
	key := levelKey{
		price:      order.LimitPrice,
		generation: generation,
		id:         order.ID,
	}
	levels.keys.Set(key)
	levels.orders[order.ID] = restingOrder{key: key, order: order}
}

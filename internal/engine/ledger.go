package engine

import (
	"slices"

	"fenrir/internal/common"
)

// Ledger is the append-only record of executions, in the order they were
// resolved.
type Ledger struct {
	trades []common.Trade
}

func (l *Ledger) Append(trade common.Trade) {
	l.trades = append(l.trades, trade)
}

func (l *Ledger) Len() int {
	return len(l.trades)
}

// Entries returns a copy of every trade so far.
func (l *Ledger) Entries() []common.Trade {
	return slices.Clone(l.trades)
}

// Since returns a copy of the trades appended after the first n.
func (l *Ledger) Since(n int) []common.Trade {
	if n >= len(l.trades) {
		return nil
	}
	return slices.Clone(l.trades[max(n, 0):])
}

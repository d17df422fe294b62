package engine

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// PriceRule decides the execution price of a match step.
type PriceRule int

const (
	// ConsumedSidePrice executes at the price of the order whose displayed
	// quantity the step exhausts. When both are exhausted the sell price
	// wins.
	ConsumedSidePrice PriceRule = iota
	// RestingPrice executes at the price of whichever order arrived first,
	// the usual exchange convention.
	RestingPrice
)

var priceRuleName = map[PriceRule]string{
	ConsumedSidePrice: "consumed",
	RestingPrice:      "resting",
}

func (r PriceRule) String() string {
	return priceRuleName[r]
}

func ParsePriceRule(name string) (PriceRule, error) {
	for rule, ruleName := range priceRuleName {
		if strings.EqualFold(name, ruleName) {
			return rule, nil
		}
	}
	return 0, fmt.Errorf("unknown price rule %q", name)
}

type Option func(*OrderBook)

func WithPriceRule(rule PriceRule) Option {
	return func(book *OrderBook) {
		book.priceRule = rule
	}
}

// WithLogger sets where the book logs its decisions. By default it is silent.
func WithLogger(logger zerolog.Logger) Option {
	return func(book *OrderBook) {
		book.logger = logger
	}
}

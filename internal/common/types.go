package common

type Side int

const (
	SideUnknown Side = iota - 1
	Buy
	Sell
)

var sideName = map[Side]string{
	Buy:  "Buy",
	Sell: "Sell",
}

func (s Side) String() string {
	if name, ok := sideName[s]; ok {
		return name
	}
	return "Unknown"
}

// Opposite returns the side an order of side s trades against.
func (s Side) Opposite() Side {
	switch s {
	case Buy:
		return Sell
	case Sell:
		return Buy
	}
	return SideUnknown
}

// ParseSide maps a feed direction onto a Side. Unrecognised directions map
// to SideUnknown and are rejected later by validation.
func ParseSide(direction string) Side {
	for side, name := range sideName {
		if name == direction {
			return side
		}
	}
	return SideUnknown
}

type OrderType int

const (
	UnknownOrder OrderType = iota - 1
	// Limit orders are an order to buy or sell at a specified price or
	// better. The whole remaining quantity is displayed while resting.
	LimitOrder
	// Iceberg orders are limit orders that only display a clip (the peak)
	// of their remaining quantity. Once a clip is consumed a new one is
	// shown, until the total quantity is exhausted.
	IcebergOrder
)

var orderTypeName = map[OrderType]string{
	LimitOrder:   "Limit",
	IcebergOrder: "Iceberg",
}

func (t OrderType) String() string {
	if name, ok := orderTypeName[t]; ok {
		return name
	}
	return "Unknown"
}

// ParseOrderType maps a feed type onto an OrderType, UnknownOrder otherwise.
func ParseOrderType(typeOf string) OrderType {
	for orderType, name := range orderTypeName {
		if name == typeOf {
			return orderType
		}
	}
	return UnknownOrder
}

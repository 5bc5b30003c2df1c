package core

import (
	"fmt"
	"strings"
)

// OrderSide represents the direction of an order (buy opens long, sell opens short).
type OrderSide int

// Order side constants define the direction of a trade.
const (
	// SideBuy opens a long position.
	SideBuy OrderSide = iota
	// SideSell opens a short position.
	SideSell
)

// String returns the string representation of the order side ("buy" or "sell").
func (s OrderSide) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return fmt.Sprintf("OrderSide(%d)", int(s))
	}
}

// WireType returns the value WEEX expects in the order "type" field:
// "1" opens long, "2" opens short.
func (s OrderSide) WireType() string {
	if s == SideSell {
		return "2"
	}
	return "1"
}

// MarshalJSON implements json.Marshaler for OrderSide.
func (s OrderSide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderSide.
func (s *OrderSide) UnmarshalJSON(data []byte) error {
	side, err := ParseOrderSide(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// ParseOrderSide accepts "buy" or "sell" in any case.
func ParseOrderSide(s string) (OrderSide, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return SideBuy, nil
	case "sell":
		return SideSell, nil
	}
	return 0, &InvalidValueError{Field: "side", Value: s, Reason: "must be buy or sell"}
}

// OrderType represents how an order is matched.
type OrderType int

// Order type constants.
const (
	// TypeLimit rests at the given price.
	TypeLimit OrderType = iota
	// TypeMarket executes at the best available price.
	TypeMarket
)

// String returns "limit" or "market".
func (t OrderType) String() string {
	switch t {
	case TypeLimit:
		return "limit"
	case TypeMarket:
		return "market"
	default:
		return fmt.Sprintf("OrderType(%d)", int(t))
	}
}

// MatchPrice returns the WEEX "match_price" flag: "0" limit, "1" market.
func (t OrderType) MatchPrice() string {
	if t == TypeMarket {
		return "1"
	}
	return "0"
}

// MarshalJSON implements json.Marshaler for OrderType.
func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderType.
func (t *OrderType) UnmarshalJSON(data []byte) error {
	ot, err := ParseOrderType(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*t = ot
	return nil
}

// ParseOrderType accepts "limit" or "market" in any case.
func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "limit":
		return TypeLimit, nil
	case "market":
		return TypeMarket, nil
	}
	return 0, &InvalidValueError{Field: "type", Value: s, Reason: "must be market or limit"}
}

// MarginMode selects cross or isolated margin.
type MarginMode int

const (
	MarginCross    MarginMode = 1
	MarginIsolated MarginMode = 2
)

// String returns "cross" or "isolated".
func (m MarginMode) String() string {
	switch m {
	case MarginCross:
		return "cross"
	case MarginIsolated:
		return "isolated"
	default:
		return fmt.Sprintf("MarginMode(%d)", int(m))
	}
}

// ParseMarginMode accepts the numeric wire values 1 and 2.
func ParseMarginMode(v int) (MarginMode, error) {
	switch MarginMode(v) {
	case MarginCross, MarginIsolated:
		return MarginMode(v), nil
	}
	return 0, &InvalidValueError{Field: "margin mode", Value: fmt.Sprint(v), Reason: "must be 1 (cross) or 2 (isolated)"}
}

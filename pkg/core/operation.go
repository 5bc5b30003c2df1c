package core

import "fmt"

// Operation represents a type of action that can be performed on the exchange.
type Operation int

// Operation constants define all supported exchange operations.
const (
	// OpGetAssets retrieves contract account assets.
	OpGetAssets Operation = iota
	// OpGetTicker retrieves the current ticker for a symbol.
	OpGetTicker
	// OpGetCurrentOrders retrieves open orders for a symbol.
	OpGetCurrentOrders
	// OpGetOrderHistory retrieves historical orders for a symbol.
	OpGetOrderHistory
	// OpGetFills retrieves trade fills for a symbol.
	OpGetFills
	// OpGetPosition retrieves the position held in a single contract.
	OpGetPosition
	// OpGetLeverage retrieves leverage settings for a symbol.
	OpGetLeverage
	// OpSetLeverage changes margin mode and leverage for a symbol.
	OpSetLeverage
	// OpPlaceOrder submits a new order.
	OpPlaceOrder
	// OpCancelOrder cancels an existing order.
	OpCancelOrder
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	names := [...]string{
		"GET_ASSETS",
		"GET_TICKER",
		"GET_CURRENT_ORDERS",
		"GET_ORDER_HISTORY",
		"GET_FILLS",
		"GET_POSITION",
		"GET_LEVERAGE",
		"SET_LEVERAGE",
		"PLACE_ORDER",
		"CANCEL_ORDER",
	}
	if o < 0 || int(o) >= len(names) {
		return fmt.Sprintf("Operation(%d)", int(o))
	}
	return names[o]
}

// IsTrading reports whether the operation changes account state.
func (o Operation) IsTrading() bool {
	return o == OpSetLeverage || o == OpPlaceOrder || o == OpCancelOrder
}

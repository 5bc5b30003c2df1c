package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op       Operation
		expected string
		trading  bool
	}{
		{OpGetAssets, "GET_ASSETS", false},
		{OpGetTicker, "GET_TICKER", false},
		{OpGetCurrentOrders, "GET_CURRENT_ORDERS", false},
		{OpGetOrderHistory, "GET_ORDER_HISTORY", false},
		{OpGetFills, "GET_FILLS", false},
		{OpGetPosition, "GET_POSITION", false},
		{OpGetLeverage, "GET_LEVERAGE", false},
		{OpSetLeverage, "SET_LEVERAGE", true},
		{OpPlaceOrder, "PLACE_ORDER", true},
		{OpCancelOrder, "CANCEL_ORDER", true},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.op.String())
			assert.Equal(t, tt.trading, tt.op.IsTrading())
		})
	}
}

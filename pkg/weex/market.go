package weex

import (
	"context"

	"weex/pkg/core"
)

// GetAssets returns the contract account assets.
func (c *Client) GetAssets(ctx context.Context) (any, error) {
	return c.call(ctx, core.OpGetAssets, nil)
}

// GetTicker returns the ticker of symbol. It does not require credentials.
func (c *Client) GetTicker(ctx context.Context, symbol string) (any, error) {
	return c.call(ctx, core.OpGetTicker, core.Params{"symbol": symbol})
}

// GetCurrentOrders returns the open orders of symbol. The exchange answers
// with a bare array or wraps it in "data" or "list"; anything else yields an
// empty slice.
func (c *Client) GetCurrentOrders(ctx context.Context, symbol string) ([]any, error) {
	payload, err := c.call(ctx, core.OpGetCurrentOrders, core.Params{"symbol": symbol})
	if err != nil {
		return nil, err
	}
	return unwrapList(payload), nil
}

// GetOrderHistory returns up to pageSize historical orders. A zero pageSize
// means DefaultPageSize.
func (c *Client) GetOrderHistory(ctx context.Context, symbol string, pageSize int) (any, error) {
	return c.call(ctx, core.OpGetOrderHistory, core.Params{"symbol": symbol, "pageSize": pageSize})
}

// GetFills returns up to pageSize fills. A zero pageSize means DefaultPageSize.
func (c *Client) GetFills(ctx context.Context, symbol string, pageSize int) (any, error) {
	return c.call(ctx, core.OpGetFills, core.Params{"symbol": symbol, "pageSize": pageSize})
}

// GetLeverage returns the leverage settings of symbol.
func (c *Client) GetLeverage(ctx context.Context, symbol string) (any, error) {
	return c.call(ctx, core.OpGetLeverage, core.Params{"symbol": symbol})
}

func unwrapList(payload any) []any {
	switch v := payload.(type) {
	case []any:
		return v
	case map[string]any:
		for _, key := range []string{"data", "list"} {
			if list, ok := v[key].([]any); ok {
				return list
			}
		}
	}
	return []any{}
}

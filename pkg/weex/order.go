package weex

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"weex/pkg/auth"
	"weex/pkg/core"
)

var validate = validator.New()

// OrderRequest describes an order before normalization. Price is required for
// limit orders and ignored for market orders.
type OrderRequest struct {
	Symbol    string         `json:"symbol" validate:"required"`
	Side      core.OrderSide `json:"side" validate:"min=0,max=1"`
	Type      core.OrderType `json:"type" validate:"min=0,max=1"`
	Size      string         `json:"size" validate:"required"`
	Price     string         `json:"price,omitempty"`
	ClientOID string         `json:"client_oid,omitempty" validate:"omitempty,max=40"`
}

// PreparedOrder is an order whose size and price have been normalized, ready
// to be sent.
type PreparedOrder struct {
	Symbol    string         `json:"symbol"`
	Side      core.OrderSide `json:"side"`
	Type      core.OrderType `json:"type"`
	Size      string         `json:"size"`
	Price     string         `json:"price"`
	ClientOID string         `json:"client_oid"`
}

// OrderResult is the outcome of PlaceOrder. Unknown is set when the exchange
// accepted the order without returning an id.
type OrderResult struct {
	OrderID string        `json:"order_id"`
	Unknown bool          `json:"unknown,omitempty"`
	Order   PreparedOrder `json:"order"`
	Raw     any           `json:"raw"`
}

// PrepareOrder validates req and normalizes its size, and its price for limit
// orders, against the pair table. Market orders carry price "0". Nothing is
// sent.
func (c *Client) PrepareOrder(req *OrderRequest) (*PreparedOrder, error) {
	if req == nil {
		return nil, &core.InvalidValueError{Field: "order", Value: "", Reason: "must not be nil"}
	}
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	size, err := c.normalizer.NormalizeSize(req.Symbol, req.Size)
	if err != nil {
		return nil, err
	}

	price := "0"
	if req.Type == core.TypeLimit {
		if req.Price == "" {
			return nil, &core.InvalidValueError{Field: "price", Value: "", Reason: "required for limit orders"}
		}
		if price, err = c.normalizer.NormalizePrice(req.Symbol, req.Price); err != nil {
			return nil, err
		}
	}

	clientOID := req.ClientOID
	if clientOID == "" {
		clientOID = auth.Timestamp(c.now())
	}

	spec, _ := c.normalizer.Table().Lookup(req.Symbol)
	return &PreparedOrder{
		Symbol:    spec.Symbol,
		Side:      req.Side,
		Type:      req.Type,
		Size:      size,
		Price:     price,
		ClientOID: clientOID,
	}, nil
}

// PlaceOrder normalizes and submits req. Local errors are returned before any
// request is made.
func (c *Client) PlaceOrder(ctx context.Context, req *OrderRequest) (*OrderResult, error) {
	order, err := c.PrepareOrder(req)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("symbol", order.Symbol).
		Str("side", order.Side.String()).
		Str("type", order.Type.String()).
		Str("size", order.Size).
		Str("price", order.Price).
		Msg("placing order")

	payload, err := c.call(ctx, core.OpPlaceOrder, core.Params{
		"symbol":      order.Symbol,
		"client_oid":  order.ClientOID,
		"size":        order.Size,
		"type":        order.Side.WireType(),
		"order_type":  "0",
		"match_price": order.Type.MatchPrice(),
		"price":       order.Price,
	})
	if err != nil {
		return nil, err
	}

	id := orderID(payload)
	return &OrderResult{
		OrderID: id,
		Unknown: id == "",
		Order:   *order,
		Raw:     payload,
	}, nil
}

// CancelOrder cancels the order with the given id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (any, error) {
	return c.call(ctx, core.OpCancelOrder, core.Params{"orderId": orderID})
}

// LeverageRequest changes margin mode and leverage of one symbol.
type LeverageRequest struct {
	Symbol        string          `json:"symbol" validate:"required"`
	MarginMode    core.MarginMode `json:"margin_mode" validate:"oneof=1 2"`
	LongLeverage  int             `json:"long_leverage" validate:"min=1,max=125"`
	ShortLeverage int             `json:"short_leverage" validate:"min=1,max=125"`
}

// SetLeverage applies req. The leverages travel as strings, the margin mode as
// a number.
func (c *Client) SetLeverage(ctx context.Context, req *LeverageRequest) (any, error) {
	if req == nil {
		return nil, &core.InvalidValueError{Field: "leverage", Value: "", Reason: "must not be nil"}
	}
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if _, err := c.normalizer.Table().Lookup(req.Symbol); err != nil {
		return nil, err
	}
	return c.call(ctx, core.OpSetLeverage, core.Params{
		"symbol":        req.Symbol,
		"marginMode":    req.MarginMode,
		"longLeverage":  strconv.Itoa(req.LongLeverage),
		"shortLeverage": strconv.Itoa(req.ShortLeverage),
	})
}

// orderID reads the id from order_id, orderId or data, looking one level
// into data when it is an object.
func orderID(payload any) string {
	m, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"order_id", "orderId", "data"} {
		switch v := m[key].(type) {
		case nil:
			continue
		case map[string]any:
			if id := orderID(v); id != "" {
				return id
			}
		case []any:
			continue
		default:
			if id := stringify(v); id != "" {
				return id
			}
		}
	}
	return ""
}

func validationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		fe := errs[0]
		return &core.InvalidValueError{
			Field:  fe.Field(),
			Value:  fmt.Sprint(fe.Value()),
			Reason: fmt.Sprintf("failed %q validation", fe.Tag()),
		}
	}
	return err
}

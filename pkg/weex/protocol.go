package weex

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"weex/pkg/core"
	"weex/pkg/precision"
)

// ExchangeName identifies WEEX in errors and logs.
const ExchangeName = "weex"

// REST endpoints of the contract API.
const (
	PathAccountAssets  = "/capi/v2/account/assets"
	PathTicker         = "/capi/v2/market/ticker"
	PathCurrentOrders  = "/capi/v2/order/current"
	PathOrderHistory   = "/capi/v2/order/history"
	PathFills          = "/capi/v2/order/fills"
	PathSinglePosition = "/capi/v2/account/position/singlePosition"
	PathLeverage       = "/capi/v2/account/leverage"
	PathPlaceOrder     = "/capi/v2/order/placeOrder"
	PathCancelOrder    = "/capi/v2/order/cancel_order"
)

// Rate limit groups.
const (
	BucketMarket  = "market"
	BucketAccount = "account"
	BucketTrade   = "trade"
)

// DefaultPageSize is used by history and fills queries when none is given.
const DefaultPageSize = 10

// Protocol turns operations into core.Requests and exchange error bodies into
// core.ExchangeErrors. It performs no I/O.
type Protocol struct{}

func NewProtocol() *Protocol {
	return &Protocol{}
}

// BuildRequest creates the request for op from params. Symbols are
// canonicalized; POST bodies are typed structs so their field order is fixed.
func (p *Protocol) BuildRequest(op core.Operation, params core.Params) (*core.Request, error) {
	switch op {
	case core.OpGetAssets:
		return core.NewRequest(http.MethodGet, PathAccountAssets).
			SetBucket(BucketAccount).
			SetRequireAuth(true), nil
	case core.OpGetTicker:
		return p.symbolQuery(http.MethodGet, PathTicker, BucketMarket, false, params)
	case core.OpGetCurrentOrders:
		return p.symbolQuery(http.MethodGet, PathCurrentOrders, BucketAccount, true, params)
	case core.OpGetOrderHistory:
		return p.pagedQuery(PathOrderHistory, params)
	case core.OpGetFills:
		return p.pagedQuery(PathFills, params)
	case core.OpGetPosition:
		return p.symbolQuery(http.MethodGet, PathSinglePosition, BucketAccount, true, params)
	case core.OpGetLeverage:
		return p.symbolQuery(http.MethodGet, PathLeverage, BucketAccount, true, params)
	case core.OpSetLeverage:
		return p.buildSetLeverage(params)
	case core.OpPlaceOrder:
		return p.buildPlaceOrder(params)
	case core.OpCancelOrder:
		return p.buildCancelOrder(params)
	default:
		return nil, fmt.Errorf("unsupported operation: %s", op)
	}
}

func (p *Protocol) symbolQuery(method, path, bucket string, auth bool, params core.Params) (*core.Request, error) {
	symbol, err := getRequiredStringParam(params, "symbol")
	if err != nil {
		return nil, err
	}
	return core.NewRequest(method, path).
		SetQuery("symbol", precision.Canonicalize(symbol)).
		SetBucket(bucket).
		SetRequireAuth(auth), nil
}

func (p *Protocol) pagedQuery(path string, params core.Params) (*core.Request, error) {
	req, err := p.symbolQuery(http.MethodGet, path, BucketAccount, true, params)
	if err != nil {
		return nil, err
	}
	size := DefaultPageSize
	if v, ok := params["pageSize"].(int); ok && v != 0 {
		size = v
	}
	if size < 1 || size > 100 {
		return nil, &core.InvalidValueError{Field: "pageSize", Value: strconv.Itoa(size), Reason: "must be between 1 and 100"}
	}
	return req.SetQuery("pageSize", size), nil
}

type placeOrderBody struct {
	Symbol     string `json:"symbol"`
	ClientOID  string `json:"client_oid"`
	Size       string `json:"size"`
	Type       string `json:"type"`
	OrderType  string `json:"order_type"`
	MatchPrice string `json:"match_price"`
	Price      string `json:"price"`
}

func (p *Protocol) buildPlaceOrder(params core.Params) (*core.Request, error) {
	var body placeOrderBody
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"symbol", &body.Symbol},
		{"client_oid", &body.ClientOID},
		{"size", &body.Size},
		{"type", &body.Type},
		{"match_price", &body.MatchPrice},
		{"price", &body.Price},
	} {
		v, err := getRequiredStringParam(params, f.key)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	body.Symbol = precision.Canonicalize(body.Symbol)
	body.OrderType = getStringParamWithDefault(params, "order_type", "0")

	return core.NewRequest(http.MethodPost, PathPlaceOrder).
		SetBody(body).
		SetBucket(BucketTrade).
		SetRequireAuth(true), nil
}

type cancelOrderBody struct {
	OrderID string `json:"orderId"`
}

func (p *Protocol) buildCancelOrder(params core.Params) (*core.Request, error) {
	id, err := getRequiredStringParam(params, "orderId")
	if err != nil {
		return nil, err
	}
	return core.NewRequest(http.MethodPost, PathCancelOrder).
		SetBody(cancelOrderBody{OrderID: strings.TrimSpace(id)}).
		SetBucket(BucketTrade).
		SetRequireAuth(true), nil
}

type setLeverageBody struct {
	Symbol        string `json:"symbol"`
	MarginMode    int    `json:"marginMode"`
	LongLeverage  string `json:"longLeverage"`
	ShortLeverage string `json:"shortLeverage"`
}

func (p *Protocol) buildSetLeverage(params core.Params) (*core.Request, error) {
	symbol, err := getRequiredStringParam(params, "symbol")
	if err != nil {
		return nil, err
	}
	mode, ok := params["marginMode"].(core.MarginMode)
	if !ok {
		return nil, fmt.Errorf("missing required parameter: marginMode")
	}
	long, err := getRequiredStringParam(params, "longLeverage")
	if err != nil {
		return nil, err
	}
	short, err := getRequiredStringParam(params, "shortLeverage")
	if err != nil {
		return nil, err
	}
	return core.NewRequest(http.MethodPost, PathLeverage).
		SetBody(setLeverageBody{
			Symbol:        precision.Canonicalize(symbol),
			MarginMode:    int(mode),
			LongLeverage:  long,
			ShortLeverage: short,
		}).
		SetBucket(BucketTrade).
		SetRequireAuth(true), nil
}

type apiError struct {
	Code    any    `json:"code"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

// ParseError converts an HTTP error response into a core.ExchangeError. Bodies
// of the form {code,msg} or {code,message} keep the exchange code.
func (p *Protocol) ParseError(status int, body []byte) *core.ExchangeError {
	var e apiError
	if err := core.JSON.Unmarshal(body, &e); err == nil {
		code := stringify(e.Code)
		msg := e.Msg
		if msg == "" {
			msg = e.Message
		}
		if code != "" || msg != "" {
			if msg == "" {
				msg = http.StatusText(status)
			}
			return core.NewExchangeErrorWithCode(ExchangeName, mapErrorCode(code, status), status, code, msg)
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 100 {
		text = text[:100]
	}
	msg := fmt.Sprintf("HTTP %d", status)
	if text != "" {
		msg += ": " + text
	}
	return core.NewExchangeError(ExchangeName, core.ErrorTypeForStatus(status), status, msg)
}

// mapErrorCode classifies WEEX error codes, falling back to the HTTP status.
func mapErrorCode(code string, status int) core.ErrorType {
	switch code {
	case "40001", "40002", "40003", "40004", "40005", "40006", "40008", "40009", "40011", "40012", "40014":
		return core.ErrorTypeAuthentication
	case "40017", "40019", "40020":
		return core.ErrorTypeBadRequest
	case "429", "40010", "43011":
		return core.ErrorTypeRateLimit
	case "40754", "43012":
		return core.ErrorTypeInsufficientFunds
	}
	return core.ErrorTypeForStatus(status)
}

func getRequiredStringParam(params core.Params, key string) (string, error) {
	val, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter: %s", key)
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string", key)
	}

	if strings.TrimSpace(str) == "" {
		return "", &core.InvalidValueError{Field: key, Value: str, Reason: "must not be empty"}
	}

	return str, nil
}

func getStringParamWithDefault(params core.Params, key, def string) string {
	if val, ok := params[key]; ok {
		if str, ok := val.(string); ok && str != "" {
			return str
		}
	}
	return def
}

// stringify renders a decoded JSON scalar as text. Missing and null values
// are empty.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

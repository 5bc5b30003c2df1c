package weex

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weex/internal/circuitbreaker"
	"weex/pkg/core"
)

func TestPositionFromMap_Aliases(t *testing.T) {
	p := PositionFromMap("cmt_btcusdt", map[string]any{
		"positionSide":    "LONG",
		"amount":          "0.5",
		"unrealizedPNL":   "12.3",
		"openValue":       "40000",
		"margin_size":     "4000",
		"liquidate_price": "70000",
	})

	assert.Equal(t, "cmt_btcusdt", p.Symbol)
	assert.Equal(t, "LONG", p.Side)
	assert.Equal(t, "0.5", p.Size)
	assert.Equal(t, "1", p.Leverage)
	assert.Equal(t, "12.3", p.UnrealizedPnL)
	assert.Equal(t, "40000", p.OpenValue)
	assert.Equal(t, "4000", p.MarginSize)
	assert.Equal(t, "70000", p.LiquidatePrice)
}

func TestPositionFromMap_Defaults(t *testing.T) {
	p := PositionFromMap("cmt_ethusdt", map[string]any{})

	assert.Equal(t, "unknown", p.Side)
	assert.Equal(t, "0", p.Size)
	assert.Equal(t, "1", p.Leverage)
	assert.Equal(t, "0", p.OpenValue)
	assert.Equal(t, "0", p.MarginSize)
	assert.Equal(t, "0", p.UnrealizedPnL)
	assert.Empty(t, p.LiquidatePrice)
	assert.False(t, p.IsOpen())
}

func TestPosition_IsOpen(t *testing.T) {
	tests := []struct {
		name string
		size string
		pnl  string
		want bool
	}{
		{"size only", "1", "0", true},
		{"pnl only", "0", "-0.01", true},
		{"flat", "0", "0", false},
		{"zero with decimals", "0.000", "0.0", false},
		{"negative size", "-1", "0", false},
		{"unparseable size", "n/a", "0", true},
		{"unparseable pnl", "0", "--", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Position{Size: tt.size, UnrealizedPnL: tt.pnl}
			assert.Equal(t, tt.want, p.IsOpen())
		})
	}
}

func TestExtractPosition(t *testing.T) {
	obj := map[string]any{"size": "1"}
	tests := []struct {
		name    string
		payload any
		want    map[string]any
	}{
		{"array", []any{obj, map[string]any{"size": "2"}}, obj},
		{"empty array", []any{}, nil},
		{"data object", map[string]any{"data": obj}, obj},
		{"data array", map[string]any{"data": []any{obj}}, obj},
		{"data null", map[string]any{"data": nil}, nil},
		{"plain object", obj, obj},
		{"scalar", "x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractPosition(tt.payload))
		})
	}
}

func TestGetPosition(t *testing.T) {
	f := newFakeExchange(t, reply(http.StatusOK, `{"data":[{"side":"short","size":"2","leverage":"20","open_value":"300.5"}]}`))
	c := f.client(true)

	res, err := c.GetPosition(context.Background(), "cmt_solusdt")
	require.NoError(t, err)
	require.NotNil(t, res.Position)

	assert.Equal(t, "short", res.Position.Side)
	assert.Equal(t, "20", res.Position.Leverage)
	assert.Equal(t, "300.5", res.Position.OpenValue)
	assert.NotNil(t, res.Raw)
	assert.Equal(t, PathSinglePosition+"?symbol=cmt_solusdt", f.last.Load().URI)
	assertSigned(t, f.last.Load())
}

func TestGetPosition_NumericFields(t *testing.T) {
	f := newFakeExchange(t, reply(http.StatusOK, `[{"size":0,"unrealizePnl":1.25}]`))
	c := f.client(true)

	res, err := c.GetPosition(context.Background(), "cmt_btcusdt")
	require.NoError(t, err)
	require.NotNil(t, res.Position)
	assert.Equal(t, "0", res.Position.Size)
	assert.Equal(t, "1.25", res.Position.UnrealizedPnL)
}

func TestGetPosition_None(t *testing.T) {
	f := newFakeExchange(t, reply(http.StatusOK, `{"size":"0"}`))
	c := f.client(true)

	res, err := c.GetPosition(context.Background(), "cmt_btcusdt")
	require.NoError(t, err)
	assert.Nil(t, res.Position)
}

func TestGetAllPositions(t *testing.T) {
	f := newFakeExchange(t, func(w http.ResponseWriter, r *http.Request, body string) {
		switch r.URL.Query().Get("symbol") {
		case "cmt_btcusdt":
			reply(http.StatusOK, `{"data":[{"size":"0.5","openValue":"100.25","side":"long"}]}`)(w, r, body)
		case "cmt_ethusdt":
			reply(http.StatusOK, `[{"size":"0","unrealizePnl":"-1.5","open_value":"50.5"}]`)(w, r, body)
		case "cmt_solusdt":
			reply(http.StatusBadRequest, `{"code":"40017","msg":"bad symbol"}`)(w, r, body)
		case "cmt_xrpusdt":
			reply(http.StatusOK, `{"size":"3","openValue":"unknown"}`)(w, r, body)
		default:
			reply(http.StatusOK, `{"size":"0"}`)(w, r, body)
		}
	})
	c := f.client(true)

	summary, err := c.GetAllPositions(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Positions, 3)
	assert.Equal(t, "cmt_btcusdt", summary.Positions[0].Symbol)
	assert.Equal(t, "cmt_ethusdt", summary.Positions[1].Symbol)
	assert.Equal(t, "cmt_xrpusdt", summary.Positions[2].Symbol)
	assert.Equal(t, "150.75", summary.TotalOpenValue.Text('f'))

	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "cmt_solusdt", summary.Errors[0].Symbol)
	assert.True(t, strings.HasPrefix(summary.Errors[0].Error(), "cmt_solusdt: "))
	assert.Contains(t, summary.Errors[0].Error(), "bad symbol")
	assert.Empty(t, summary.Skipped)
	assert.EqualValues(t, 8, f.calls.Load())
}

func TestGetAllPositions_BreakerStopsScan(t *testing.T) {
	f := newFakeExchange(t, reply(http.StatusServiceUnavailable, `{"code":"50000","msg":"maintenance"}`))
	cfg := f.config(true)
	cfg.CircuitBreakerFailThreshold = 3
	c, err := New(cfg, WithClock(fixedClock))
	require.NoError(t, err)
	defer c.Close()

	summary, err := c.GetAllPositions(context.Background())
	require.NoError(t, err)

	assert.Empty(t, summary.Positions)
	assert.Len(t, summary.Errors, 3)
	assert.Equal(t, []string{"cmt_dogeusdt", "cmt_xrpusdt", "cmt_adausdt", "cmt_bnbusdt", "cmt_ltcusdt"}, summary.Skipped)
	assert.EqualValues(t, 3, f.calls.Load())
	assert.Equal(t, circuitbreaker.StateOpen, c.BreakerState())

	_, err = c.GetAssets(context.Background())
	assert.ErrorIs(t, err, core.ErrCircuitBreakerOpen)
}

func TestGetAllPositions_Cancelled(t *testing.T) {
	f := newFakeExchange(t, reply(http.StatusOK, `{"size":"1"}`))
	c := f.client(true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := c.GetAllPositions(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summary.Positions)
	assert.Zero(t, f.calls.Load())
}

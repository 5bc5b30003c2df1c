package weex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"weex/pkg/core"
)

// Position is one open contract position.
type Position struct {
	Symbol         string         `json:"symbol"`
	Side           string         `json:"side"`
	Size           string         `json:"size"`
	Leverage       string         `json:"leverage"`
	OpenValue      string         `json:"open_value"`
	MarginSize     string         `json:"margin_size"`
	UnrealizedPnL  string         `json:"unrealized_pnl"`
	LiquidatePrice string         `json:"liquidate_price,omitempty"`
	Raw            map[string]any `json:"-"`
}

// Field aliases seen in position payloads.
var (
	sizeKeys      = []string{"size", "amount"}
	pnlKeys       = []string{"unrealizePnl", "unrealizedPnl", "unrealizedPNL", "unrealized_pnl"}
	openValueKeys = []string{"open_value", "openValue"}
	marginKeys    = []string{"marginSize", "margin_size"}
	liquidateKeys = []string{"liquidatePrice", "liquidate_price"}
	sideKeys      = []string{"side", "positionSide"}
)

// PositionFromMap reads a Position out of a decoded payload entry.
func PositionFromMap(symbol string, m map[string]any) Position {
	return Position{
		Symbol:         symbol,
		Side:           field(m, sideKeys, "unknown"),
		Size:           field(m, sizeKeys, "0"),
		Leverage:       field(m, []string{"leverage"}, "1"),
		OpenValue:      field(m, openValueKeys, "0"),
		MarginSize:     field(m, marginKeys, "0"),
		UnrealizedPnL:  field(m, pnlKeys, "0"),
		LiquidatePrice: field(m, liquidateKeys, ""),
		Raw:            m,
	}
}

// IsOpen reports whether the position holds size or carries unrealized PnL.
// A value that is not a number counts as open.
func (p Position) IsOpen() bool {
	size, err := parseNumber(p.Size)
	if err != nil {
		return true
	}
	pnl, err := parseNumber(p.UnrealizedPnL)
	if err != nil {
		return true
	}
	return size.Sign() > 0 || pnl.Sign() != 0
}

// PositionResult is the answer for a single symbol. Position is nil when
// nothing is open.
type PositionResult struct {
	Symbol   string    `json:"symbol"`
	Position *Position `json:"position,omitempty"`
	Raw      any       `json:"raw"`
}

// GetPosition returns the position held in symbol.
func (c *Client) GetPosition(ctx context.Context, symbol string) (*PositionResult, error) {
	payload, err := c.call(ctx, core.OpGetPosition, core.Params{"symbol": symbol})
	if err != nil {
		return nil, err
	}
	res := &PositionResult{Symbol: symbol, Raw: payload}
	if m := extractPosition(payload); m != nil {
		if p := PositionFromMap(symbol, m); p.IsOpen() {
			res.Position = &p
		}
	}
	return res, nil
}

// SymbolError is a failure for one symbol of a scan.
type SymbolError struct {
	Symbol string `json:"symbol"`
	Err    error  `json:"-"`
}

func (e SymbolError) Error() string {
	return fmt.Sprintf("%s: %v", e.Symbol, e.Err)
}

func (e SymbolError) Unwrap() error { return e.Err }

// PositionSummary aggregates a scan over every known symbol.
type PositionSummary struct {
	Positions []Position    `json:"positions"`
	Errors    []SymbolError `json:"-"`
	Skipped   []string      `json:"skipped,omitempty"`
	// TotalOpenValue sums OpenValue over Positions. Values that are not
	// numbers are left out.
	TotalOpenValue apd.Decimal `json:"-"`
}

// GetAllPositions queries every symbol of the pair table. A failing symbol is
// recorded and the scan continues; once the circuit breaker opens the
// remaining symbols are skipped. Only a cancelled context aborts the scan,
// returning the partial summary with ctx.Err().
func (c *Client) GetAllPositions(ctx context.Context) (*PositionSummary, error) {
	summary := &PositionSummary{Positions: []Position{}}
	for _, symbol := range c.normalizer.Table().Symbols() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res, err := c.GetPosition(ctx, symbol)
		switch {
		case isSkip(err):
			summary.Skipped = append(summary.Skipped, symbol)
			continue
		case err != nil:
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return summary, ctx.Err()
			}
			c.logger.Warn().Err(err).Str("symbol", symbol).Msg("position query failed")
			summary.Errors = append(summary.Errors, SymbolError{Symbol: symbol, Err: err})
			continue
		}
		if res.Position == nil {
			continue
		}

		summary.Positions = append(summary.Positions, *res.Position)
		if v, err := parseNumber(res.Position.OpenValue); err == nil {
			if _, err := apd.BaseContext.Add(&summary.TotalOpenValue, &summary.TotalOpenValue, v); err != nil {
				return summary, fmt.Errorf("sum open value: %w", err)
			}
		}
	}
	return summary, nil
}

// extractPosition picks the position object out of a payload: the first
// element of an array, the "data" member of an object, or the object itself.
func extractPosition(payload any) map[string]any {
	switch v := payload.(type) {
	case []any:
		if len(v) == 0 {
			return nil
		}
		return extractPosition(v[0])
	case map[string]any:
		if data, ok := v["data"]; ok {
			switch data.(type) {
			case []any, map[string]any:
				return extractPosition(data)
			}
			return nil
		}
		return v
	}
	return nil
}

func field(m map[string]any, keys []string, def string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(stringify(m[k])); s != "" {
			return s
		}
	}
	return def
}

func parseNumber(s string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	if d.Form != apd.Finite {
		return nil, fmt.Errorf("%q is not finite", s)
	}
	return d, nil
}

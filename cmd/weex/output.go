package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"weex/pkg/core"
	"weex/pkg/precision"
	"weex/pkg/weex"
)

func printJSON(w io.Writer, v any) error {
	data, err := core.JSON.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printPosition(w io.Writer, p *weex.Position) {
	_, _ = fmt.Fprintf(w, "%s\n", p.Symbol)
	_, _ = fmt.Fprintf(w, "  side:           %s\n", p.Side)
	_, _ = fmt.Fprintf(w, "  size:           %s\n", p.Size)
	_, _ = fmt.Fprintf(w, "  leverage:       %sx\n", p.Leverage)
	_, _ = fmt.Fprintf(w, "  open value:     %s USDT\n", p.OpenValue)
	_, _ = fmt.Fprintf(w, "  margin:         %s USDT\n", p.MarginSize)
	_, _ = fmt.Fprintf(w, "  unrealized pnl: %s USDT\n", p.UnrealizedPnL)
	if p.LiquidatePrice != "" {
		_, _ = fmt.Fprintf(w, "  liquidation:    %s\n", p.LiquidatePrice)
	}
}

func printPositionResult(w io.Writer, res *weex.PositionResult, raw bool) {
	if res.Position == nil {
		_, _ = fmt.Fprintf(w, "no open position in %s\n", res.Symbol)
	} else {
		printPosition(w, res.Position)
	}
	if raw {
		_ = printJSON(w, res.Raw)
	}
}

func printSummary(w io.Writer, s *weex.PositionSummary) {
	if len(s.Positions) == 0 {
		_, _ = fmt.Fprintln(w, "no open positions")
	} else {
		_, _ = fmt.Fprintf(w, "%d open positions\n", len(s.Positions))
		for i := range s.Positions {
			printPosition(w, &s.Positions[i])
		}
		_, _ = fmt.Fprintf(w, "total open value: %s USDT\n", s.TotalOpenValue.Text('f'))
	}

	if len(s.Errors) > 0 {
		_, _ = fmt.Fprintln(w, "failed symbols:")
		for _, e := range s.Errors {
			_, _ = fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}
	if len(s.Skipped) > 0 {
		_, _ = fmt.Fprintf(w, "skipped after repeated failures: %v\n", s.Skipped)
	}
}

func printOrderResult(w io.Writer, req *weex.OrderRequest, res *weex.OrderResult) {
	o := res.Order
	_, _ = fmt.Fprintf(w, "symbol:     %s\n", o.Symbol)
	_, _ = fmt.Fprintf(w, "side:       %s (type %s)\n", o.Side, o.Side.WireType())
	_, _ = fmt.Fprintf(w, "type:       %s (match_price %s)\n", o.Type, o.Type.MatchPrice())
	_, _ = fmt.Fprintf(w, "size:       %s -> %s\n", req.Size, o.Size)
	if o.Type == core.TypeLimit {
		_, _ = fmt.Fprintf(w, "price:      %s -> %s\n", req.Price, o.Price)
	}
	_, _ = fmt.Fprintf(w, "client_oid: %s\n", o.ClientOID)

	if res.Unknown {
		_, _ = fmt.Fprintln(w, "order accepted but no order id was returned; it may have filled immediately")
		_ = printJSON(w, res.Raw)
		return
	}
	_, _ = fmt.Fprintf(w, "order placed: %s\n", res.OrderID)
}

func printPairs(w io.Writer, t *precision.Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SYMBOL\tPRICE STEP\tSIZE STEP\tMIN SIZE")
	for _, spec := range t.Specs() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			spec.Symbol, spec.PriceStep.Text('f'), spec.SizeStep.Text('f'), spec.MinSize.Text('f'))
	}
	return tw.Flush()
}

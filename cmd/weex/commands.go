package main

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"weex/internal/config"
	"weex/internal/logging"
	"weex/pkg/core"
	"weex/pkg/precision"
	"weex/pkg/weex"
)

// runner holds what every action needs besides its flags.
type runner struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

func newApp(stdout, stderr io.Writer, getenv func(string) string) *cli.App {
	r := &runner{stdout: stdout, stderr: stderr, getenv: getenv}

	return &cli.App{
		Name:      "weex",
		Usage:     "trade WEEX contracts from the command line",
		Writer:    stdout,
		ErrWriter: stderr,
		// errors are printed once by main
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			VerboseFlag,
			ConfigFlag,
			BaseURLFlag,
			ProxyFlag,
			TimeoutFlag,
			LogLevelFlag,
		},
		Commands: []*cli.Command{
			{
				Name:   "account",
				Usage:  "show contract account assets",
				Action: r.account,
			},
			{
				Name:   "price",
				Usage:  "show the ticker of a symbol",
				Flags:  []cli.Flag{SymbolFlag},
				Action: r.price,
			},
			{
				Name:   "orders",
				Usage:  "list open orders",
				Flags:  []cli.Flag{SymbolFlag},
				Action: r.orders,
			},
			{
				Name:   "history",
				Usage:  "list historical orders",
				Flags:  []cli.Flag{SymbolFlag, PageSizeFlag},
				Action: r.history,
			},
			{
				Name:   "fills",
				Usage:  "list trade fills",
				Flags:  []cli.Flag{SymbolFlag, PageSizeFlag},
				Action: r.fills,
			},
			{
				Name:   "positions",
				Usage:  "show the position of one symbol, or of every known symbol",
				Flags:  []cli.Flag{OptionalSymbolFlag},
				Action: r.positions,
			},
			{
				Name:  "leverage",
				Usage: "query or change leverage",
				Subcommands: []*cli.Command{
					{
						Name:   "get",
						Usage:  "show leverage settings",
						Flags:  []cli.Flag{SymbolFlag},
						Action: r.leverageGet,
					},
					{
						Name:  "set",
						Usage: "change margin mode and leverage",
						Flags: []cli.Flag{
							SymbolFlag,
							&cli.IntFlag{Name: "long", Required: true, Usage: "long leverage"},
							&cli.IntFlag{Name: "short", Required: true, Usage: "short leverage"},
							&cli.IntFlag{Name: "mode", Required: true, Usage: "margin mode: 1 cross, 2 isolated"},
						},
						Action: r.leverageSet,
					},
				},
			},
			{
				Name:  "order",
				Usage: "place an order",
				Flags: []cli.Flag{
					SymbolFlag,
					&cli.StringFlag{Name: "side", Aliases: []string{"d"}, Required: true, Usage: "buy or sell"},
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Required: true, Usage: "market or limit"},
					&cli.StringFlag{Name: "size", Aliases: []string{"z"}, Required: true, Usage: "order size in contract units"},
					&cli.StringFlag{Name: "price", Usage: "limit price, required for limit orders"},
				},
				Action: r.order,
			},
			{
				Name:      "cancel",
				Usage:     "cancel an order",
				ArgsUsage: "ORDER_ID",
				Action:    r.cancel,
			},
			{
				Name:   "pairs",
				Usage:  "list the supported symbols and their precision",
				Action: r.pairs,
			},
			{
				Name:  "normalize",
				Usage: "show how a price or size would be adjusted, without sending anything",
				Flags: []cli.Flag{
					SymbolFlag,
					&cli.StringFlag{Name: "price", Usage: "raw price"},
					&cli.StringFlag{Name: "size", Usage: "raw size"},
				},
				Action: r.normalize,
			},
		},
	}
}

func (r *runner) loadConfig(c *cli.Context) (*core.Config, error) {
	return config.Load(config.Options{
		ConfigFile: c.String(ConfigFlag.Name),
		Getenv:     r.getenv,
		Overrides: config.Overrides{
			BaseURL:  c.String(BaseURLFlag.Name),
			Proxy:    c.String(ProxyFlag.Name),
			Timeout:  c.Duration(TimeoutFlag.Name),
			LogLevel: c.String(LogLevelFlag.Name),
			Verbose:  c.Bool(VerboseFlag.Name),
		},
	})
}

// withClient loads the configuration, builds a client and runs fn with it.
func (r *runner) withClient(c *cli.Context, fn func(*weex.Client) error) error {
	cfg, err := r.loadConfig(c)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.Verbose, r.stderr)

	client, err := weex.New(cfg, weex.WithLogger(logger))
	if err != nil {
		return err
	}
	defer client.Close()

	return fn(client)
}

func (r *runner) account(c *cli.Context) error {
	return r.withClient(c, func(client *weex.Client) error {
		assets, err := client.GetAssets(c.Context)
		if err != nil {
			return fmt.Errorf("query account assets: %w", err)
		}
		return printJSON(r.stdout, assets)
	})
}

func (r *runner) price(c *cli.Context) error {
	symbol := c.String(SymbolFlag.Name)
	return r.withClient(c, func(client *weex.Client) error {
		ticker, err := client.GetTicker(c.Context, symbol)
		if err != nil {
			return fmt.Errorf("query ticker of %s: %w", symbol, err)
		}
		return printJSON(r.stdout, ticker)
	})
}

func (r *runner) orders(c *cli.Context) error {
	symbol := c.String(SymbolFlag.Name)
	return r.withClient(c, func(client *weex.Client) error {
		orders, err := client.GetCurrentOrders(c.Context, symbol)
		if err != nil {
			return fmt.Errorf("query open orders of %s: %w", symbol, err)
		}
		if len(orders) == 0 {
			_, err := fmt.Fprintln(r.stdout, "no open orders")
			return err
		}
		_, _ = fmt.Fprintf(r.stdout, "%d open orders:\n", len(orders))
		return printJSON(r.stdout, orders)
	})
}

func (r *runner) history(c *cli.Context) error {
	symbol := c.String(SymbolFlag.Name)
	return r.withClient(c, func(client *weex.Client) error {
		history, err := client.GetOrderHistory(c.Context, symbol, c.Int(PageSizeFlag.Name))
		if err != nil {
			return fmt.Errorf("query order history of %s: %w", symbol, err)
		}
		return printJSON(r.stdout, history)
	})
}

func (r *runner) fills(c *cli.Context) error {
	symbol := c.String(SymbolFlag.Name)
	return r.withClient(c, func(client *weex.Client) error {
		fills, err := client.GetFills(c.Context, symbol, c.Int(PageSizeFlag.Name))
		if err != nil {
			return fmt.Errorf("query fills of %s: %w", symbol, err)
		}
		return printJSON(r.stdout, fills)
	})
}

func (r *runner) positions(c *cli.Context) error {
	symbol := c.String(OptionalSymbolFlag.Name)
	return r.withClient(c, func(client *weex.Client) error {
		if symbol != "" {
			res, err := client.GetPosition(c.Context, symbol)
			if err != nil {
				return fmt.Errorf("query position of %s: %w", symbol, err)
			}
			printPositionResult(r.stdout, res, c.Bool(VerboseFlag.Name))
			return nil
		}

		summary, err := client.GetAllPositions(c.Context)
		if err != nil {
			return fmt.Errorf("query positions: %w", err)
		}
		printSummary(r.stdout, summary)
		return nil
	})
}

func (r *runner) leverageGet(c *cli.Context) error {
	symbol := c.String(SymbolFlag.Name)
	return r.withClient(c, func(client *weex.Client) error {
		lev, err := client.GetLeverage(c.Context, symbol)
		if err != nil {
			return fmt.Errorf("query leverage of %s: %w", symbol, err)
		}
		return printJSON(r.stdout, lev)
	})
}

func (r *runner) leverageSet(c *cli.Context) error {
	mode, err := core.ParseMarginMode(c.Int("mode"))
	if err != nil {
		return err
	}
	req := &weex.LeverageRequest{
		Symbol:        c.String(SymbolFlag.Name),
		MarginMode:    mode,
		LongLeverage:  c.Int("long"),
		ShortLeverage: c.Int("short"),
	}
	return r.withClient(c, func(client *weex.Client) error {
		if _, err := client.SetLeverage(c.Context, req); err != nil {
			return fmt.Errorf("set leverage of %s: %w", req.Symbol, err)
		}
		_, err := fmt.Fprintf(r.stdout, "leverage of %s set: long %dx, short %dx, %s margin\n",
			req.Symbol, req.LongLeverage, req.ShortLeverage, req.MarginMode)
		return err
	})
}

func (r *runner) order(c *cli.Context) error {
	side, err := core.ParseOrderSide(c.String("side"))
	if err != nil {
		return err
	}
	typ, err := core.ParseOrderType(c.String("type"))
	if err != nil {
		return err
	}
	req := &weex.OrderRequest{
		Symbol: c.String(SymbolFlag.Name),
		Side:   side,
		Type:   typ,
		Size:   c.String("size"),
		Price:  c.String("price"),
	}

	return r.withClient(c, func(client *weex.Client) error {
		res, err := client.PlaceOrder(c.Context, req)
		if err != nil {
			return fmt.Errorf("place order: %w", err)
		}
		printOrderResult(r.stdout, req, res)
		return nil
	})
}

func (r *runner) cancel(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("cancel takes exactly one ORDER_ID argument")
	}
	id := c.Args().First()
	return r.withClient(c, func(client *weex.Client) error {
		if _, err := client.CancelOrder(c.Context, id); err != nil {
			return fmt.Errorf("cancel order %s: %w", id, err)
		}
		_, err := fmt.Fprintf(r.stdout, "order %s cancelled\n", id)
		return err
	})
}

func (r *runner) pairs(*cli.Context) error {
	return printPairs(r.stdout, precision.DefaultTable())
}

func (r *runner) normalize(c *cli.Context) error {
	symbol := c.String(SymbolFlag.Name)
	rawPrice, rawSize := c.String("price"), c.String("size")
	if rawPrice == "" && rawSize == "" {
		return fmt.Errorf("normalize needs --price, --size or both")
	}

	n := precision.NewNormalizer(nil)
	if rawPrice != "" {
		price, err := n.NormalizePrice(symbol, rawPrice)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(r.stdout, "price: %s -> %s\n", rawPrice, price)
	}
	if rawSize != "" {
		size, err := n.NormalizeSize(symbol, rawSize)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(r.stdout, "size: %s -> %s\n", rawSize, size)
	}
	return nil
}

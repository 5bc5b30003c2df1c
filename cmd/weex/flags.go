package main

import (
	"github.com/urfave/cli/v2"

	"weex/pkg/weex"
)

var (
	VerboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "log requests and responses, with secrets masked",
	}
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "load configuration from YAML `file`",
	}
	BaseURLFlag = &cli.StringFlag{
		Name:  "base-url",
		Usage: "API base `url` (overrides WEEX_API_BASE_URL)",
	}
	ProxyFlag = &cli.StringFlag{
		Name:  "proxy",
		Usage: "proxy `url` (overrides WEEX_PROXY, HTTPS_PROXY and HTTP_PROXY)",
	}
	TimeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "per-request timeout",
	}
	LogLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "trace, debug, info, warn, error or disabled",
	}

	SymbolFlag = &cli.StringFlag{
		Name:     "symbol",
		Aliases:  []string{"s"},
		Required: true,
		Usage:    "contract `symbol`, e.g. cmt_btcusdt",
	}
	OptionalSymbolFlag = &cli.StringFlag{
		Name:    "symbol",
		Aliases: []string{"s"},
		Usage:   "contract `symbol`; all known symbols when omitted",
	}
	PageSizeFlag = &cli.IntFlag{
		Name:  "size",
		Value: weex.DefaultPageSize,
		Usage: "number of records to return",
	}
)

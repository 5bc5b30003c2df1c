// Command weex is a command-line client for the WEEX contract API.
//
// Credentials come from WEEX_API_KEY, WEEX_SECRET_KEY and WEEX_PASSPHRASE in
// the environment or a .env file. Example:
//
//	weex price -s cmt_btcusdt
//	weex order -s cmt_btcusdt -d buy -t limit -z 0.01 --price 80000
//	weex leverage set -s cmt_btcusdt --long 20 --short 20 --mode 1
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdout, os.Stderr, os.Getenv)
	if err := app.RunContext(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// Package weex is a client for the WEEX contract (futures) REST API.
//
// A Client signs each request with a fresh millisecond timestamp, adjusts
// order prices and sizes to the pair's tick and step before submission, and
// maps HTTP failures to core.ExchangeError values.
//
//	cfg := core.DefaultConfig().WithCredentials(creds)
//	client, err := weex.New(cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	res, err := client.PlaceOrder(ctx, &weex.OrderRequest{
//		Symbol: "cmt_btcusdt",
//		Side:   core.SideBuy,
//		Type:   core.TypeLimit,
//		Size:   "0.0019",
//		Price:  "80000.04",
//	})
package weex

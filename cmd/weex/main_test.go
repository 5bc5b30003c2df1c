package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weex/internal/config"
	"weex/pkg/core"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, env map[string]string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	getenv := func(key string) string { return env[key] }

	app := newApp(&stdout, &stderr, getenv)
	err := app.RunContext(context.Background(), append([]string{"weex"}, args...))
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

var testEnv = map[string]string{
	config.EnvAPIKey:     "weex_4f1c2a9b7d3e",
	config.EnvSecretKey:  "test-secret",
	config.EnvPassphrase: "hunter2",
}

func fakeServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, body string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		handler(w, r, string(data))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPairs(t *testing.T) {
	res := run(t, nil, "pairs")
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, []string{"SYMBOL", "PRICE", "STEP", "SIZE", "STEP", "MIN", "SIZE"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"cmt_btcusdt", "0.1", "0.001", "0.001"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"cmt_dogeusdt", "0.00001", "100", "100"}, strings.Fields(lines[4]))
}

func TestNormalize(t *testing.T) {
	res := run(t, nil, "normalize", "-s", "CMT_BTCUSDT", "--price", "80000.04", "--size", "0.0019")
	require.NoError(t, res.err)
	assert.Equal(t, "price: 80000.04 -> 80000.0\nsize: 0.0019 -> 0.001\n", res.stdout)
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"below minimum", []string{"normalize", "-s", "cmt_btcusdt", "--size", "0.0009"}, core.ErrBelowMinimumSize},
		{"unknown symbol", []string{"normalize", "-s", "cmt_pepeusdt", "--price", "1"}, core.ErrUnknownSymbol},
		{"invalid price", []string{"normalize", "-s", "cmt_btcusdt", "--price", "abc"}, core.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, nil, tt.args...)
			assert.ErrorIs(t, res.err, tt.want)
		})
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"normalize without values", []string{"normalize", "-s", "cmt_btcusdt"}},
		{"price without symbol", []string{"price"}},
		{"cancel without id", []string{"cancel"}},
		{"order with bad side", []string{"order", "-s", "cmt_btcusdt", "-d", "up", "-t", "market", "-z", "1"}},
		{"leverage with bad mode", []string{"leverage", "set", "-s", "cmt_btcusdt", "--long", "5", "--short", "5", "--mode", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, testEnv, tt.args...)
			assert.Error(t, res.err)
		})
	}
}

func TestAccount_NoCredentials(t *testing.T) {
	res := run(t, nil, "account")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, core.ErrConfiguration)
}

func TestPrice(t *testing.T) {
	srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request, _ string) {
		assert.Equal(t, "/capi/v2/market/ticker", r.URL.Path)
		assert.Equal(t, "cmt_btcusdt", r.URL.Query().Get("symbol"))
		_, _ = io.WriteString(w, `{"symbol":"cmt_btcusdt","last":"80000.1"}`)
	})

	res := run(t, nil, "--base-url", srv.URL, "price", "-s", "cmt_btcusdt")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"last": "80000.1"`)
}

func TestOrder(t *testing.T) {
	var body string
	srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request, b string) {
		body = b
		assert.NotEmpty(t, r.Header.Get("ACCESS-SIGN"))
		_, _ = io.WriteString(w, `{"order_id":"123"}`)
	})

	res := run(t, testEnv, "--base-url", srv.URL,
		"order", "-s", "cmt_btcusdt", "-d", "buy", "-t", "limit", "-z", "0.0019", "--price", "80000.04")
	require.NoError(t, res.err)

	assert.Contains(t, body, `"size":"0.001"`)
	assert.Contains(t, body, `"price":"80000.0"`)
	assert.Contains(t, res.stdout, "size:       0.0019 -> 0.001")
	assert.Contains(t, res.stdout, "order placed: 123")
	assert.NotContains(t, res.stderr, "test-secret")
}

func TestOrder_BelowMinimumSendsNothing(t *testing.T) {
	calls := 0
	srv := fakeServer(t, func(w http.ResponseWriter, _ *http.Request, _ string) {
		calls++
		_, _ = io.WriteString(w, `{}`)
	})

	res := run(t, testEnv, "--base-url", srv.URL,
		"order", "-s", "cmt_btcusdt", "-d", "sell", "-t", "market", "-z", "0.0001")
	assert.ErrorIs(t, res.err, core.ErrBelowMinimumSize)
	assert.Zero(t, calls)
}

func TestCancel(t *testing.T) {
	var body string
	srv := fakeServer(t, func(w http.ResponseWriter, _ *http.Request, b string) {
		body = b
		_, _ = io.WriteString(w, `{"result":true}`)
	})

	res := run(t, testEnv, "--base-url", srv.URL, "cancel", "596471064624628269")
	require.NoError(t, res.err)
	assert.Equal(t, `{"orderId":"596471064624628269"}`, body)
	assert.Equal(t, "order 596471064624628269 cancelled\n", res.stdout)
}

func TestPositions_None(t *testing.T) {
	srv := fakeServer(t, func(w http.ResponseWriter, _ *http.Request, _ string) {
		_, _ = io.WriteString(w, `{"size":"0"}`)
	})

	res := run(t, testEnv, "--base-url", srv.URL, "positions")
	require.NoError(t, res.err)
	assert.Equal(t, "no open positions\n", res.stdout)
}

func TestPositions_Single(t *testing.T) {
	srv := fakeServer(t, func(w http.ResponseWriter, _ *http.Request, _ string) {
		_, _ = io.WriteString(w, `[{"side":"long","size":"2","leverage":"10","openValue":"300","marginSize":"30","unrealizePnl":"1.5"}]`)
	})

	res := run(t, testEnv, "--base-url", srv.URL, "positions", "-s", "cmt_solusdt")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "cmt_solusdt\n")
	assert.Contains(t, res.stdout, "leverage:       10x")
	assert.Contains(t, res.stdout, "unrealized pnl: 1.5 USDT")
}

func TestExchangeErrorIsReturned(t *testing.T) {
	srv := fakeServer(t, func(w http.ResponseWriter, _ *http.Request, _ string) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"code":"40017","msg":"Parameter verification failed"}`)
	})

	res := run(t, testEnv, "--base-url", srv.URL, "leverage", "get", "-s", "cmt_btcusdt")
	var exErr *core.ExchangeError
	require.ErrorAs(t, res.err, &exErr)
	assert.Equal(t, "40017", exErr.Code)
	assert.Contains(t, res.err.Error(), "query leverage of cmt_btcusdt")
}

package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderSide(t *testing.T) {
	tests := []struct {
		input    string
		expected OrderSide
		wire     string
		wantErr  bool
	}{
		{"buy", SideBuy, "1", false},
		{" BUY ", SideBuy, "1", false},
		{"sell", SideSell, "2", false},
		{"Sell", SideSell, "2", false},
		{"long", 0, "", true},
		{"", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			side, err := ParseOrderSide(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, side)
			assert.Equal(t, tt.wire, side.WireType())
		})
	}
}

func TestParseOrderType(t *testing.T) {
	tests := []struct {
		input      string
		expected   OrderType
		matchPrice string
		wantErr    bool
	}{
		{"limit", TypeLimit, "0", false},
		{"LIMIT", TypeLimit, "0", false},
		{"market", TypeMarket, "1", false},
		{"stop", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ot, err := ParseOrderType(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ot)
			assert.Equal(t, tt.matchPrice, ot.MatchPrice())
		})
	}
}

func TestParseMarginMode(t *testing.T) {
	mode, err := ParseMarginMode(1)
	require.NoError(t, err)
	assert.Equal(t, MarginCross, mode)
	assert.Equal(t, "cross", mode.String())

	mode, err = ParseMarginMode(2)
	require.NoError(t, err)
	assert.Equal(t, MarginIsolated, mode)
	assert.Equal(t, "isolated", mode.String())

	_, err = ParseMarginMode(3)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, "MarginMode(3)", MarginMode(3).String())
}

func TestOrderEnums_JSON(t *testing.T) {
	type payload struct {
		Side OrderSide `json:"side"`
		Type OrderType `json:"type"`
	}

	data, err := json.Marshal(payload{Side: SideSell, Type: TypeMarket})
	require.NoError(t, err)
	assert.JSONEq(t, `{"side":"sell","type":"market"}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"side":"buy","type":"limit"}`), &decoded))
	assert.Equal(t, SideBuy, decoded.Side)
	assert.Equal(t, TypeLimit, decoded.Type)

	assert.Error(t, json.Unmarshal([]byte(`{"side":"hold"}`), &decoded))
}

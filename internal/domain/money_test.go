package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Money
		wantErr bool
	}{
		{name: "whole and cents", input: "10.50", want: 1050},
		{name: "whole only", input: "100", want: 10000},
		{name: "single fraction digit", input: "9.5", want: 950},
		{name: "zero", input: "0.00", want: 0},
		{name: "negative", input: "-3.25", want: -325},
		{name: "leading whitespace", input: " 1.00", want: 100},
		{name: "empty", input: "", wantErr: true},
		{name: "three fraction digits", input: "1.005", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "10.50", Money(1050).String())
	assert.Equal(t, "0.05", Money(5).String())
	assert.Equal(t, "0.00", Money(0).String())
	assert.Equal(t, "-3.25", Money(-325).String())
	assert.Equal(t, "123.00", Money(12300).String())
}

func TestMoney_Mul(t *testing.T) {
	assert.Equal(t, Money(3150), Money(1050).Mul(3))
	assert.Equal(t, Money(0), Money(1050).Mul(0))
}

func TestMoney_UnmarshalJSON(t *testing.T) {
	var m Money

	// Decimal string, the order backend's convention.
	require.NoError(t, json.Unmarshal([]byte(`"10.50"`), &m))
	assert.Equal(t, Money(1050), m)

	// JSON number, the catalog's convention on some endpoints.
	require.NoError(t, json.Unmarshal([]byte(`10.5`), &m))
	assert.Equal(t, Money(1050), m)

	require.NoError(t, json.Unmarshal([]byte(`100`), &m))
	assert.Equal(t, Money(10000), m)

	// Half-cent floats round rather than truncate.
	require.NoError(t, json.Unmarshal([]byte(`0.615`), &m))
	assert.Equal(t, Money(62), m)

	assert.Error(t, json.Unmarshal([]byte(`null`), &m))
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
	assert.Error(t, json.Unmarshal([]byte(`true`), &m))
}

func TestMoney_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Money(1050))
	require.NoError(t, err)
	assert.Equal(t, `"10.50"`, string(data))
}

func TestMoney_RoundTripThroughStruct(t *testing.T) {
	type payload struct {
		Total Money `json:"total"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"total":"42.99"}`), &p))
	assert.Equal(t, Money(4299), p.Total)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":"42.99"}`, string(out))
}

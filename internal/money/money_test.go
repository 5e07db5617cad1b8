package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromUSDString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		cents   int64
		wantErr bool
	}{
		{name: "whole dollars", input: "49.00", cents: 4900},
		{name: "with cents", input: "10.55", cents: 1055},
		{name: "no fraction", input: "25", cents: 2500},
		{name: "one decimal digit", input: "3.5", cents: 350},
		{name: "zero", input: "0.00", cents: 0},
		{name: "sub-cent precision", input: "1.005", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "beyond int64 cents", input: "99999999999999999999.00", wantErr: true},
		{name: "negative beyond int64 cents", input: "-99999999999999999999.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := FromUSDString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cents, m.Cents())
		})
	}
}

func TestUSDString(t *testing.T) {
	assert.Equal(t, "49.00", FromCents(4900).USDString())
	assert.Equal(t, "0.05", FromCents(5).USDString())
	assert.Equal(t, "0.00", FromCents(0).USDString())
	assert.Equal(t, "1234.56", FromCents(123456).USDString())
	assert.Equal(t, "-10.00", FromCents(-1000).USDString())
}

func TestRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 101, 4900, 123456} {
		m, err := FromUSDString(FromCents(cents).USDString())
		require.NoError(t, err)
		assert.Equal(t, cents, m.Cents())
	}
}

func TestArithmetic(t *testing.T) {
	a := FromCents(1000)
	b := FromCents(550)

	assert.Equal(t, int64(1550), a.Add(b).Cents())
	assert.Equal(t, int64(-1000), a.Neg().Cents())
	assert.True(t, a.IsPositive())
	assert.False(t, FromCents(0).IsPositive())
	assert.False(t, FromCents(-5).IsPositive())
}

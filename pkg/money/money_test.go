package money

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToCents(t *testing.T) {
	tests := []struct {
		price string
		want  int64
	}{
		{"5.00", 500},
		{"19.99", 1999},
		{"0.005", 1},
		{"0.004", 0},
		{"2.675", 268},
		{"10", 1000},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			assert.Equal(t, tt.want, ToCents(decimal.RequireFromString(tt.price)))
		})
	}
}

func TestParseCents(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      int64
		expectErr bool
	}{
		{name: "Plain amount", input: "12.34", want: 1234},
		{name: "Dollar sign and spaces", input: " $7 ", want: 700},
		{name: "Half rounds up", input: "0.125", want: 13},
		{name: "Negative amount", input: "-3.50", want: -350},
		{name: "Empty", input: "", expectErr: true},
		{name: "Garbage", input: "ten dollars", expectErr: true},
		{name: "Exponent notation", input: "1e3", expectErr: true},
		{name: "Upper-case exponent", input: "5E2", expectErr: true},
		{name: "Largest representable amount", input: "92233720368547758.07", want: math.MaxInt64},
		{name: "One cent past int64", input: "92233720368547758.08", expectErr: true},
		{name: "Cents would wrap", input: "200000000000000000", expectErr: true},
		{name: "Large negative past int64", input: "-92233720368547758.09", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCents(tt.input)
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$12.50", Format(1250))
	assert.Equal(t, "$0.05", Format(5))
	assert.Equal(t, "-$3.00", Format(-300))
}

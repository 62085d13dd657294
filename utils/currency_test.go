package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	assert.Equal(t, 17.0, LineTotal(2, 8.5))
	assert.Equal(t, 0.3, LineTotal(3, 0.1))
	assert.Equal(t, 0.0, LineTotal(0, 12.9))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 1.7, Percentage(17, 0.10))
	assert.Equal(t, 3.33, Percentage(33.33, 0.10))
}

func TestSumMoney(t *testing.T) {
	assert.Equal(t, 0.3, SumMoney(0.1, 0.2))
	assert.Equal(t, 0.0, SumMoney())
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "R$ 0,00"},
		{8.5, "R$ 8,50"},
		{1234.5, "R$ 1.234,50"},
		{1000000, "R$ 1.000.000,00"},
		{-12.3, "R$ -12,30"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBRL(tt.amount))
	}
}

func TestCovers(t *testing.T) {
	assert.True(t, Covers(18.7, 18.7))
	assert.True(t, Covers(0.1+0.2, 0.3))
	assert.True(t, Covers(150.7, SumMoney(137, 13.7)))
	assert.False(t, Covers(0.01, 18.7))
	assert.False(t, Covers(18.69, 18.7))
	assert.True(t, Covers(0, 0))
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoney_ApplyPercent(t *testing.T) {
	tests := []struct {
		name    string
		amount  Money
		percent int64
		want    Money
	}{
		{"plus ten percent", 120_000, 10, 132_000},
		{"plus twenty five percent", 100_000, 25, 125_000},
		{"zero percent", 100_000, 0, 100_000},
		{"discount", 100_000, -30, 70_000},
		{"rounds half up", 15, 10, 17}, // 16.5 -> 17
		{"rounds down below half", 14, 10, 15}, // 15.4 -> 15
		{"full negative percent", 50_000, -100, 0},
		{"below minus hundred goes negative", 50_000, -150, -25_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.amount.ApplyPercent(tt.percent))
		})
	}
}

func TestRoundHalfUpDiv(t *testing.T) {
	assert.Equal(t, int64(2), roundHalfUpDiv(150, 100))
	assert.Equal(t, int64(1), roundHalfUpDiv(149, 100))
	assert.Equal(t, int64(-2), roundHalfUpDiv(-150, 100))
	assert.Equal(t, int64(-1), roundHalfUpDiv(-149, 100))
	assert.Equal(t, int64(0), roundHalfUpDiv(0, 100))
}

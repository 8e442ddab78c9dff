package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVar_Ticker(t *testing.T) {
	tests := []struct {
		name   string
		ticker string
		valid  bool
	}{
		{name: "caret index", ticker: "^GSPC", valid: true},
		{name: "exchange suffix", ticker: "000001.SS", valid: true},
		{name: "milan", ticker: "FTSEMIB.MI", valid: true},
		{name: "empty", ticker: "", valid: false},
		{name: "whitespace", ticker: "^GS PC", valid: false},
		{name: "double caret", ticker: "^^GSPC", valid: false},
		{name: "too long", ticker: "ABCDEFGHIJKLMNOPQRSTUVWXYZ", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Var(tt.ticker, "ticker")
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFailedField(t *testing.T) {
	type sample struct {
		Interval int `validate:"gte=1"`
	}

	err := Struct(sample{Interval: 0})
	require.Error(t, err)
	assert.Equal(t, "Interval", FailedField(err))

	assert.Empty(t, FailedField(nil))
	require.NoError(t, Struct(sample{Interval: 3}))
}

package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"R$ 12,50", 12.5, false},
		{"12,50", 12.5, false},
		{"12.50", 12.5, false},
		{"R$ 1.234,56", 1234.56, false},
		{"R$1 234,00", 1234, false},
		{"", 0, false},
		{"  ", 0, false},
		{"doze", 0, true},
		{"Inf", 0, true},
		{"R$ Infinity", 0, true},
		{"NaN", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1.234,5", 1234.5, false},
		{"500", 500, false},
		{"0,25", 0.25, false},
		{"0.75", 0.75, false},
		{"2.5", 2.5, false},
		{"1.5", 1.5, false},
		{"abc", 0, true},
		{"-Inf", 0, true},
		{"nan", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestOptional(t *testing.T) {
	assert.Nil(t, optional("   "))
	require.NotNil(t, optional(" x "))
	assert.Equal(t, "x", *optional(" x "))
}

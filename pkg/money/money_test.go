package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerly-app/ledgerly/pkg/money"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain decimal", input: "50.00", want: "50"},
		{name: "integer", input: "1234", want: "1234"},
		{name: "negative", input: "-0.5", want: "-0.5"},
		{name: "surrounding whitespace", input: " 10.25 ", want: "10.25"},
		{name: "empty", input: "", wantErr: true},
		{name: "not a number", input: "fifty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1234.5", "+1,234.50"},
		{"50", "+50.00"},
		{"-50", "-50.00"},
		{"-1234567.891", "-1,234,567.89"},
		{"0", "0.00"},
		{"999", "+999.00"},
		{"1000", "+1,000.00"},
	}

	for _, tt := range tests {
		d := decimal.RequireFromString(tt.input)
		assert.Equal(t, tt.want, money.Display(d), "input %s", tt.input)
	}
}

package uniswap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "zero padded hex", input: "0x00", want: "0"},
		{name: "hex zero", input: "0x0", want: "0"},
		{name: "decimal zero", input: "0", want: "0"},
		{name: "padded hex value", input: "0x0de0b6b3a7640000", want: "1000000000000000000"},
		{name: "upper prefix", input: "0X1f", want: "31"},
		{name: "decimal", input: "49900000", want: "49900000"},
		{name: "empty", input: "", wantErr: true},
		{name: "bare prefix", input: "0x", wantErr: true},
		{name: "not hex", input: "0xzz", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "decimal with letters", input: "12ab", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var rejected *business.RejectedError
				assert.True(t, errors.As(err, &rejected))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

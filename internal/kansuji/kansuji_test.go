package kansuji

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInteger(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"一", 1},
		{"九", 9},
		{"十", 10},
		{"十二", 12},
		{"二十", 20},
		{"三十二", 32},
		{"九十", 90},
		{"百", 100},
		{"百五", 105},   // elided-one magnitude followed by a digit
		{"百五十", 150},
		{"二百三十四", 234},
		{"千", 1000},
		{"千二百", 1200},
		{"三千六百五", 3605},
		{"一万", 10000},
		{"一万二千三百四十五", 12345},
		{"12", 12},
		{"９０", 90}, // full-width digits
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ToInteger(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToInteger_Malformed(t *testing.T) {
	for _, text := range []string{"", "条", "二三", "abc", "第一"} {
		t.Run(text, func(t *testing.T) {
			_, err := ToInteger(text)
			assert.ErrorIs(t, err, ErrMalformedNumeral)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for n := 1; n <= 12000; n++ {
		text := ToNumeralText(n)
		got, err := ToInteger(text)
		require.NoError(t, err, "n=%d text=%q", n, text)
		require.Equal(t, n, got, "text=%q", text)
	}
}

func TestParseBranch(t *testing.T) {
	tests := []struct {
		text         string
		base, branch int
	}{
		{"二", 2, 0},
		{"二の三", 2, 3},
		{"三十二の二", 32, 2},
		{"二の三十", 2, 30}, // branch is an integer, not a decimal fraction
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			base, branch, err := ParseBranch(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.branch, branch)
		})
	}

	_, _, err := ParseBranch("二の条")
	assert.ErrorIs(t, err, ErrMalformedNumeral)
}

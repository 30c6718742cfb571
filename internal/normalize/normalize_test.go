package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
)

func TestCleanNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  12.5 ", "12.5"},
		{"12.5.3", "12.53"},
		{"1,000.25 ml", "1000.25"},
		{"-5", "5"},
		{"abc", ""},
		{"", ""},
		{"٣", ""},
		{".5", ".5"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanNumeric(tt.in))
		})
	}
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("  12.5 ")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	v, err = ParseAmount("0.0025")
	require.NoError(t, err)
	assert.Equal(t, 0.0025, v)

	_, err = ParseAmount("n/a")
	assert.True(t, errors.Is(err, ErrEmptyAmount))

	_, err = ParseAmount("0")
	assert.True(t, errors.Is(err, ErrInvalidAmount))

	_, err = ParseAmount("0.000")
	assert.True(t, errors.Is(err, ErrInvalidAmount))

	_, err = ParseAmount(".")
	assert.True(t, errors.Is(err, ErrInvalidAmount))
}

func TestUnit(t *testing.T) {
	assert.Equal(t, "ml", Unit("  mL "))
	assert.Equal(t, "µl", Unit("µL"))
}

func TestLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Materials:", "materials"},
		{"  Reagents  ( stock )  :", "reagents(stock)"},
		{"Used\tSample", "used sample"},
		{"Amount used :", "amount used"},
		{"Unit\u00a0:", "unit"},
		{"Media\u00a0Preparation\u00a0:", "media preparation"},
		{"\u2003Used\u00a0\u00a0sample\u2009", "used sample"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.in))
		})
	}
}

func TestSameLabel(t *testing.T) {
	assert.True(t, SameLabel("Media Preparation:", "media preparation"))
	assert.True(t, SameLabel("Media\u00a0Preparation :", "media preparation"))
	assert.False(t, SameLabel("Media", "Materials"))
}

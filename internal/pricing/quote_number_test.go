package pricing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valvequote/quote_api/internal/utils"
)

func TestFiscalYearCode(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2025-03-31", "2425"},
		{"2025-04-01", "2526"},
		{"2026-01-15", "2526"},
		{"2026-12-31", "2627"},
		{"2000-02-29", "9900"},
		{"2099-06-01", "9900"},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := time.Parse("2006-01-02", tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FiscalYearCode(d))
		})
	}
}

func TestFormatQuoteNumber(t *testing.T) {
	n, err := FormatQuoteNumber("QT", "2526", 7)
	require.NoError(t, err)
	assert.Equal(t, "QT-2526-0007", n)

	n, err = FormatQuoteNumber("QT", "2526", MaxQuoteSequence)
	require.NoError(t, err)
	assert.Equal(t, "QT-2526-9999", n)

	_, err = FormatQuoteNumber("QT", "2526", 0)
	assert.Error(t, err)

	_, err = FormatQuoteNumber("QT", "2526", MaxQuoteSequence+1)
	assert.True(t, errors.Is(err, utils.ErrSequenceExhausted))
}

func TestParseQuoteSequence(t *testing.T) {
	seq, err := ParseQuoteSequence("QT-2526-0041", "QT", "2526")
	require.NoError(t, err)
	assert.Equal(t, 41, seq)

	for _, bad := range []string{"QT-2425-0041", "QT-2526-41", "QT-2526-00a1", "XX-2526-0001", "QT-2526-00041"} {
		_, err := ParseQuoteSequence(bad, "QT", "2526")
		assert.Error(t, err, bad)
	}
}

func TestNextQuoteNumber(t *testing.T) {
	tests := []struct {
		name    string
		last    string
		want    string
		wantErr error
	}{
		{"first of the year", "", "QT-2526-0001", nil},
		{"increments", "QT-2526-0041", "QT-2526-0042", nil},
		{"carries width", "QT-2526-0999", "QT-2526-1000", nil},
		{"exhausted", "QT-2526-9999", "", utils.ErrSequenceExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextQuoteNumber("QT", "2526", tt.last)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuoteNumberRange(t *testing.T) {
	lo, hi := QuoteNumberRange("QT", "2526")
	assert.Equal(t, "QT-2526-0000", lo)
	assert.Equal(t, "QT-2526-9999", hi)

	n, err := FormatQuoteNumber("QT", "2526", 1234)
	require.NoError(t, err)
	assert.True(t, n > lo && n <= hi)
}

package pricing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valvequote/quote_api/internal/utils"
)

// MaxQuoteSequence is the last sequence a fiscal year can issue.
const MaxQuoteSequence = 9999

// FiscalYearCode returns the April–March fiscal year of t as two two-digit
// years, e.g. "2526" for any date from 2025-04-01 to 2026-03-31.
func FiscalYearCode(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%02d%02d", start%100, (start+1)%100)
}

// QuoteNumberRange returns the inclusive lexical bounds of one fiscal year's numbers.
func QuoteNumberRange(prefix, fyCode string) (lo, hi string) {
	return fmt.Sprintf("%s-%s-%04d", prefix, fyCode, 0), fmt.Sprintf("%s-%s-%04d", prefix, fyCode, MaxQuoteSequence)
}

// FormatQuoteNumber renders PREFIX-FYCODE-SEQ with a 4-digit zero-padded sequence.
func FormatQuoteNumber(prefix, fyCode string, seq int) (string, error) {
	if seq < 1 {
		return "", fmt.Errorf("quote sequence must be positive, got %d", seq)
	}
	if seq > MaxQuoteSequence {
		return "", fmt.Errorf("%w: fiscal year %s reached %d", utils.ErrSequenceExhausted, fyCode, MaxQuoteSequence)
	}
	return fmt.Sprintf("%s-%s-%04d", prefix, fyCode, seq), nil
}

// ParseQuoteSequence extracts the sequence of a number issued for prefix and fyCode.
func ParseQuoteSequence(quoteNumber, prefix, fyCode string) (int, error) {
	head := prefix + "-" + fyCode + "-"
	if !strings.HasPrefix(quoteNumber, head) {
		return 0, fmt.Errorf("quote number %q does not belong to %s", quoteNumber, head)
	}
	tail := strings.TrimPrefix(quoteNumber, head)
	if len(tail) != 4 {
		return 0, fmt.Errorf("quote number %q: sequence must have 4 digits", quoteNumber)
	}
	seq, err := strconv.Atoi(tail)
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("quote number %q: invalid sequence", quoteNumber)
	}
	return seq, nil
}

// NextQuoteNumber derives the number following last. An empty last starts the year at 1.
func NextQuoteNumber(prefix, fyCode, last string) (string, error) {
	next := 1
	if last != "" {
		seq, err := ParseQuoteSequence(last, prefix, fyCode)
		if err != nil {
			return "", err
		}
		next = seq + 1
	}
	return FormatQuoteNumber(prefix, fyCode, next)
}

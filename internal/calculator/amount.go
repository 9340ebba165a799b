package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var (
	errEmptySegment = errors.New("empty part")
	errNotDigits    = errors.New("only digits are allowed")
	errTooLarge     = errors.New("value is too large")
)

// ParseAmount converts a free-text payment field into a whole amount in the
// smallest currency unit.
//
// Whitespace and the grouping separators ',' and '.' are dropped, so the
// input currency is assumed to have no fractional unit. A field may hold
// several installments joined with '+', which are summed:
//
//	ParseAmount("1,200+800") -> 2000, nil
//	ParseAmount(" 500 ")     -> 500, nil
//	ParseAmount("abc")       -> 0, ErrInvalidAmount
//
// Persian and Arabic-Indic digits are accepted and treated as their ASCII
// counterparts.
func ParseAmount(raw string) (int64, error) {
	clean := normalizeAmount(raw)
	if clean == "" {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAmount, errEmptySegment)
	}

	var total int64
	for i, segment := range strings.Split(clean, "+") {
		n, err := parseSegment(segment)
		if err != nil {
			return 0, fmt.Errorf("%w: part %d %q: %w", ErrInvalidAmount, i+1, segment, err)
		}
		if n > math.MaxInt64-total {
			return 0, fmt.Errorf("%w: sum: %w", ErrInvalidAmount, errTooLarge)
		}
		total += n
	}
	return total, nil
}

// ParseCount reads the number of participants from a text field.
func ParseCount(raw string) (int, error) {
	clean := strings.Map(toASCIIDigit, strings.TrimSpace(raw))
	n, err := strconv.Atoi(clean)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, raw)
	}
	return n, nil
}

func parseSegment(segment string) (int64, error) {
	if segment == "" {
		return 0, errEmptySegment
	}
	for i := 0; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return 0, errNotDigits
		}
	}
	n, err := strconv.ParseInt(segment, 10, 64)
	if err != nil {
		// Only range errors are possible at this point.
		return 0, errTooLarge
	}
	return n, nil
}

// normalizeAmount strips whitespace and grouping separators and maps
// non-ASCII decimal digits to ASCII.
func normalizeAmount(raw string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return -1
		case r == ',' || r == '.' || r == '٬': // U+066C ARABIC THOUSANDS SEPARATOR
			return -1
		}
		return toASCIIDigit(r)
	}, raw)
}

func toASCIIDigit(r rune) rune {
	switch {
	case r >= '۰' && r <= '۹': // extended Arabic-Indic (Persian)
		return '0' + (r - '۰')
	case r >= '٠' && r <= '٩': // Arabic-Indic
		return '0' + (r - '٠')
	}
	return r
}

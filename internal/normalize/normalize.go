// =============================================================================
// Sample Reducer - Normalizer
// =============================================================================
//
// Cleans the free text found in notebook tables before it is interpreted:
//   - amounts:  "  12,5 ml " style noise is reduced to digits and one point
//   - units:    lower-cased and trimmed before registry lookup
//   - labels:   header and section titles are folded into a comparable form
//
// Label normalization must be applied identically to a lookup key and to the
// values it is compared against, because both are typed by humans.
//
// =============================================================================

package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
)

var (
	// ErrEmptyAmount is returned when no digits survive cleaning.
	ErrEmptyAmount = errors.New("amount is empty")

	// ErrInvalidAmount is returned when the cleaned amount does not parse or
	// is not positive.
	ErrInvalidAmount = errors.New("amount is not a positive number")
)

var (
	openParenSpace  = regexp.MustCompile(` ?\( ?`)
	closeParenSpace = regexp.MustCompile(` ?\) ?`)
)

// =============================================================================
// NUMERIC CLEANING
// =============================================================================

// CleanNumeric keeps ASCII digits and the first decimal point of s. Every
// other character, including signs, thousands separators and later points,
// is dropped.
func CleanNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	sawPoint := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !sawPoint:
			sawPoint = true
			b.WriteRune(r)
		}
	}

	return b.String()
}

// ParseAmount cleans s and parses it as a positive real.
func ParseAmount(s string) (float64, error) {
	cleaned := CleanNumeric(s)
	if cleaned == "" {
		return 0, errors.Wrapf(ErrEmptyAmount, "%q", s)
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q", s)
	}
	if v <= 0 {
		return 0, errors.Wrapf(ErrInvalidAmount, "%q", s)
	}

	return v, nil
}

// =============================================================================
// TEXT CLEANING
// =============================================================================

// Unit lower-cases and trims a unit code.
func Unit(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Label folds a human-written label into its comparable form:
//  1. every run of Unicode whitespace (NBSP included) becomes one space
//  2. spaces directly inside parentheses are removed
//  3. one trailing colon is stripped and the result is trimmed
//  4. the result is lower-cased
func Label(s string) string {
	t := strings.Join(strings.Fields(s), " ")
	t = openParenSpace.ReplaceAllString(t, "(")
	t = closeParenSpace.ReplaceAllString(t, ")")
	t = strings.TrimSuffix(strings.TrimSpace(t), ":")
	return strings.ToLower(strings.TrimSpace(t))
}

// SameLabel reports whether two labels are equal after normalization.
func SameLabel(a, b string) bool {
	return Label(a) == Label(b)
}

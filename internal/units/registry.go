// =============================================================================
// Sample Reducer - Unit Registry
// =============================================================================
//
// The registry maps a unit code onto a quantity kind and a factor that
// converts one unit of that code into the kind's base unit:
//
//   | Code     | Kind   | Factor   | Base  |
//   |----------|--------|----------|-------|
//   | l        | Volume | 1        | litre |
//   | ml       | Volume | 0.001    | litre |
//   | µl / ul  | Volume | 0.000001 | litre |
//   | kg       | Mass   | 1000     | gram  |
//   | g        | Mass   | 1        | gram  |
//   | mg       | Mass   | 0.001    | gram  |
//   | µg / ug  | Mass   | 0.000001 | gram  |
//   | pcs      | Count  | 1        | piece |
//
// A Registry is immutable once built and is passed explicitly to the
// aggregator and validator, so tests can swap in their own table.
//
// Arithmetic is carried out with shopspring/decimal. Factors and the amounts
// read from documents are short decimals, so products and quotients stay
// exact and the 6-place rounding is deterministic.
//
// =============================================================================

package units

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
)

// Precision is the number of decimal places kept after a conversion.
const Precision = 6

var (
	// ErrUnknownUnit is returned for codes that are not registered.
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrKindMismatch is returned when two units measure different quantities.
	ErrKindMismatch = errors.New("quantity kind mismatch")
)

// =============================================================================
// QUANTITY KIND
// =============================================================================

// Kind is the physical quantity a unit measures.
type Kind int

const (
	Volume Kind = iota + 1
	Mass
	Count
)

// String returns the name used in messages and by the inventory API, which
// calls piece counts "Number".
func (k Kind) String() string {
	switch k {
	case Volume:
		return "Volume"
	case Mass:
		return "Mass"
	case Count:
		return "Number"
	default:
		return "Unknown"
	}
}

// BaseCode returns the code of the kind's base unit.
func (k Kind) BaseCode() string {
	switch k {
	case Volume:
		return "l"
	case Mass:
		return "g"
	case Count:
		return "pcs"
	default:
		return ""
	}
}

// ParseKind reads a quantity kind name. "Number" is accepted as an alias for
// Count because that is what the inventory system reports for piece counts.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "volume":
		return Volume, nil
	case "mass", "weight":
		return Mass, nil
	case "count", "number", "pieces":
		return Count, nil
	default:
		return 0, errors.Newf("unknown quantity kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// =============================================================================
// UNIT DEFINITION
// =============================================================================

// Definition describes one unit code.
type Definition struct {
	// Code is the lower-case unit code as written in documents ("ml").
	Code string

	// Kind is the quantity the unit measures.
	Kind Kind

	// Factor converts one unit into the kind's base unit.
	Factor float64
}

func (d Definition) factor() decimal.Decimal {
	return decimal.NewFromFloat(d.Factor)
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry is an immutable lookup table of unit definitions.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry builds a registry. Codes are lower-cased and trimmed; a code
// may only be registered once and every factor must be positive.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition, len(defs))}

	for _, d := range defs {
		code := normalizeCode(d.Code)
		if code == "" {
			return nil, errors.New("unit code cannot be empty")
		}
		if d.Factor <= 0 {
			return nil, errors.Newf("unit %q: factor must be positive, got %v", code, d.Factor)
		}
		if d.Kind < Volume || d.Kind > Count {
			return nil, errors.Newf("unit %q: invalid quantity kind %d", code, d.Kind)
		}
		if _, exists := r.defs[code]; exists {
			return nil, errors.Newf("unit %q registered twice", code)
		}
		d.Code = code
		r.defs[code] = d
	}

	return r, nil
}

// MustRegistry is NewRegistry that panics on an invalid table.
func MustRegistry(defs ...Definition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultDefinitions returns the standard unit table.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Code: "l", Kind: Volume, Factor: 1},
		{Code: "ml", Kind: Volume, Factor: 0.001},
		{Code: "\u00b5l", Kind: Volume, Factor: 0.000001}, // micro sign
		{Code: "\u03bcl", Kind: Volume, Factor: 0.000001}, // greek mu
		{Code: "ul", Kind: Volume, Factor: 0.000001},
		{Code: "kg", Kind: Mass, Factor: 1000},
		{Code: "g", Kind: Mass, Factor: 1},
		{Code: "mg", Kind: Mass, Factor: 0.001},
		{Code: "\u00b5g", Kind: Mass, Factor: 0.000001},
		{Code: "\u03bcg", Kind: Mass, Factor: 0.000001},
		{Code: "ug", Kind: Mass, Factor: 0.000001},
		{Code: "pcs", Kind: Count, Factor: 1},
	}
}

// Default returns a registry holding DefaultDefinitions.
func Default() *Registry {
	return MustRegistry(DefaultDefinitions()...)
}

// Lookup returns the definition for code. Case and surrounding whitespace
// are ignored.
func (r *Registry) Lookup(code string) (Definition, bool) {
	d, ok := r.defs[normalizeCode(code)]
	return d, ok
}

// Codes returns all registered codes, sorted.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.defs))
	for code := range r.defs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ToBase expresses amount (in code) in the kind's base unit. The result is
// not rounded.
func (r *Registry) ToBase(amount float64, code string) (float64, error) {
	d, err := r.definition(code)
	if err != nil {
		return 0, err
	}
	return decimal.NewFromFloat(amount).Mul(d.factor()).InexactFloat64(), nil
}

// FromBase expresses a base-unit amount in code. The result is not rounded.
func (r *Registry) FromBase(amount float64, code string) (float64, error) {
	d, err := r.definition(code)
	if err != nil {
		return 0, err
	}
	return decimal.NewFromFloat(amount).Div(d.factor()).InexactFloat64(), nil
}

// Convert re-expresses amount from one unit in another of the same kind,
// rounded to Precision places.
func (r *Registry) Convert(amount float64, from, to string) (float64, error) {
	src, err := r.definition(from)
	if err != nil {
		return 0, err
	}
	dst, err := r.definition(to)
	if err != nil {
		return 0, err
	}
	if src.Kind != dst.Kind {
		return 0, errors.Wrapf(ErrKindMismatch, "%s is %s, %s is %s", src.Code, src.Kind, dst.Code, dst.Kind)
	}

	base := decimal.NewFromFloat(amount).Mul(src.factor())
	return base.Div(dst.factor()).Round(Precision).InexactFloat64(), nil
}

// Sum adds two amounts given in possibly different units of the same kind and
// expresses the total in the unit of the first amount, rounded to Precision
// places.
func (r *Registry) Sum(amount float64, unit string, addend float64, addendUnit string) (float64, error) {
	dst, err := r.definition(unit)
	if err != nil {
		return 0, err
	}
	src, err := r.definition(addendUnit)
	if err != nil {
		return 0, err
	}
	if src.Kind != dst.Kind {
		return 0, errors.Wrapf(ErrKindMismatch, "%s is %s, %s is %s", dst.Code, dst.Kind, src.Code, src.Kind)
	}

	base := decimal.NewFromFloat(amount).Mul(dst.factor()).
		Add(decimal.NewFromFloat(addend).Mul(src.factor()))
	return base.Div(dst.factor()).Round(Precision).InexactFloat64(), nil
}

func (r *Registry) definition(code string) (Definition, error) {
	d, ok := r.Lookup(code)
	if !ok {
		return Definition{}, errors.Wrapf(ErrUnknownUnit, "%q", code)
	}
	return d, nil
}

// Round rounds x to Precision decimal places, half away from zero.
func Round(x float64) float64 {
	return decimal.NewFromFloat(x).Round(Precision).InexactFloat64()
}

// FormatAmount renders an amount without exponent or trailing zeros.
func FormatAmount(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

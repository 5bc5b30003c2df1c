package precision

import (
	"strings"

	"github.com/cockroachdb/apd/v3"

	"weex/pkg/core"
)

// decimalContext truncates and carries enough digits for any realistic price
// or size. Inputs that overflow it are rejected instead of rounded.
var decimalContext = apd.Context{
	Precision:   34,
	MaxExponent: apd.MaxExponent,
	MinExponent: apd.MinExponent,
	Traps:       apd.DefaultTraps,
	Rounding:    apd.RoundDown,
}

// ParseDecimal parses s as a positive finite decimal. field names the value in
// the returned InvalidValueError.
func ParseDecimal(field, s string) (*apd.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, &core.InvalidValueError{Field: field, Value: s, Reason: "must not be empty"}
	}
	d, _, err := apd.NewFromString(trimmed)
	if err != nil {
		return nil, &core.InvalidValueError{Field: field, Value: s, Reason: "not a decimal number"}
	}
	if err := checkPositive(field, d); err != nil {
		return nil, err
	}
	return d, nil
}

func checkPositive(field string, d *apd.Decimal) error {
	if d == nil {
		return &core.InvalidValueError{Field: field, Value: "<nil>", Reason: "must not be empty"}
	}
	if d.Form != apd.Finite {
		return &core.InvalidValueError{Field: field, Value: d.String(), Reason: "must be finite"}
	}
	if !positive(d) {
		return &core.InvalidValueError{Field: field, Value: d.String(), Reason: "must be positive"}
	}
	return nil
}

func positive(d *apd.Decimal) bool {
	return d.Form == apd.Finite && d.Sign() > 0
}

// places is the count of fractional digits needed to write step without an
// exponent, so 0.010 and 0.01 both give 2 and 100 gives 0.
func places(step *apd.Decimal) int {
	var reduced apd.Decimal
	reduced.Reduce(step)
	if reduced.Exponent >= 0 {
		return 0
	}
	return int(-reduced.Exponent)
}

// truncateToStep returns the largest multiple of step that does not exceed
// raw in magnitude, written with exactly places(step) fractional digits.
func truncateToStep(raw, step *apd.Decimal) (*apd.Decimal, error) {
	var q, out apd.Decimal
	if _, err := decimalContext.QuoInteger(&q, raw, step); err != nil {
		return nil, err
	}
	if _, err := decimalContext.Mul(&out, &q, step); err != nil {
		return nil, err
	}
	if _, err := decimalContext.Quantize(&out, &out, -int32(places(step))); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsMultiple reports whether v is an exact integer multiple of step.
func IsMultiple(v, step *apd.Decimal) bool {
	var rem apd.Decimal
	if _, err := decimalContext.Rem(&rem, v, step); err != nil {
		return false
	}
	return rem.IsZero()
}

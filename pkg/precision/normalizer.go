package precision

import (
	"github.com/cockroachdb/apd/v3"

	"weex/pkg/core"
)

// Normalizer adjusts raw order values against a Table. It holds no mutable
// state and is safe for concurrent use.
type Normalizer struct {
	table *Table
}

// NewNormalizer returns a Normalizer over table, or over DefaultTable when
// table is nil.
func NewNormalizer(table *Table) *Normalizer {
	if table == nil {
		table = DefaultTable()
	}
	return &Normalizer{table: table}
}

// Table returns the pair table the normalizer reads from.
func (n *Normalizer) Table() *Table {
	return n.table
}

// NormalizePrice parses rawPrice and truncates it to the pair's price step.
// The result is a plain decimal string with the step's number of decimals.
func (n *Normalizer) NormalizePrice(symbol, rawPrice string) (string, error) {
	spec, err := n.table.Lookup(symbol)
	if err != nil {
		return "", err
	}
	raw, err := ParseDecimal("price", rawPrice)
	if err != nil {
		return "", err
	}
	d, err := n.price(&spec, raw)
	if err != nil {
		return "", err
	}
	return d.Text('f'), nil
}

// NormalizeSize parses rawSize and floors it to the pair's size step. A result
// under the pair minimum is a BelowMinimumSizeError.
func (n *Normalizer) NormalizeSize(symbol, rawSize string) (string, error) {
	spec, err := n.table.Lookup(symbol)
	if err != nil {
		return "", err
	}
	raw, err := ParseDecimal("size", rawSize)
	if err != nil {
		return "", err
	}
	d, err := n.size(&spec, raw)
	if err != nil {
		return "", err
	}
	return d.Text('f'), nil
}

// PriceDecimal is NormalizePrice for callers that already hold a decimal.
func (n *Normalizer) PriceDecimal(symbol string, raw *apd.Decimal) (*apd.Decimal, error) {
	spec, err := n.table.Lookup(symbol)
	if err != nil {
		return nil, err
	}
	if err := checkPositive("price", raw); err != nil {
		return nil, err
	}
	return n.price(&spec, raw)
}

// SizeDecimal is NormalizeSize for callers that already hold a decimal.
func (n *Normalizer) SizeDecimal(symbol string, raw *apd.Decimal) (*apd.Decimal, error) {
	spec, err := n.table.Lookup(symbol)
	if err != nil {
		return nil, err
	}
	if err := checkPositive("size", raw); err != nil {
		return nil, err
	}
	return n.size(&spec, raw)
}

func (n *Normalizer) price(spec *PairSpec, raw *apd.Decimal) (*apd.Decimal, error) {
	d, err := truncateToStep(raw, &spec.PriceStep)
	if err != nil {
		return nil, &core.InvalidValueError{Field: "price", Value: raw.String(), Reason: err.Error()}
	}
	if d.IsZero() {
		return nil, &core.InvalidValueError{
			Field:  "price",
			Value:  raw.String(),
			Reason: "below price step " + spec.PriceStep.Text('f') + " for " + spec.Symbol,
		}
	}
	return d, nil
}

func (n *Normalizer) size(spec *PairSpec, raw *apd.Decimal) (*apd.Decimal, error) {
	d, err := truncateToStep(raw, &spec.SizeStep)
	if err != nil {
		return nil, &core.InvalidValueError{Field: "size", Value: raw.String(), Reason: err.Error()}
	}
	if d.Cmp(&spec.MinSize) < 0 {
		return nil, &core.BelowMinimumSizeError{
			Symbol:  spec.Symbol,
			Size:    raw.Text('f'),
			Rounded: d.Text('f'),
			MinSize: spec.MinSize.Text('f'),
		}
	}
	return d, nil
}

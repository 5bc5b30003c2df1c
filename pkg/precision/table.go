package precision

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"weex/pkg/core"
)

// PairSpec holds the order constraints of one contract.
type PairSpec struct {
	Symbol    string      `json:"symbol"`
	PriceStep apd.Decimal `json:"price_step"`
	SizeStep  apd.Decimal `json:"size_step"`
	MinSize   apd.Decimal `json:"min_size"`
}

// NewPairSpec parses the decimal strings of a pair definition. Steps and the
// minimum size must be positive.
func NewPairSpec(symbol, priceStep, sizeStep, minSize string) (PairSpec, error) {
	spec := PairSpec{Symbol: Canonicalize(symbol)}
	if spec.Symbol == "" {
		return PairSpec{}, &core.InvalidValueError{Field: "symbol", Value: symbol, Reason: "must not be empty"}
	}

	fields := []struct {
		name string
		raw  string
		dst  *apd.Decimal
	}{
		{"price_step", priceStep, &spec.PriceStep},
		{"size_step", sizeStep, &spec.SizeStep},
		{"min_size", minSize, &spec.MinSize},
	}
	for _, f := range fields {
		d, err := ParseDecimal(f.name, f.raw)
		if err != nil {
			return PairSpec{}, fmt.Errorf("pair %s: %w", spec.Symbol, err)
		}
		f.dst.Set(d)
	}
	return spec, nil
}

func mustPair(symbol, priceStep, sizeStep, minSize string) PairSpec {
	spec, err := NewPairSpec(symbol, priceStep, sizeStep, minSize)
	if err != nil {
		panic(err)
	}
	return spec
}

// PricePlaces returns the number of decimal places of the price step.
func (p *PairSpec) PricePlaces() int { return places(&p.PriceStep) }

// SizePlaces returns the number of decimal places of the size step.
func (p *PairSpec) SizePlaces() int { return places(&p.SizeStep) }

// Table is an immutable set of PairSpecs keyed by canonical symbol.
// Iteration order is the order the pairs were supplied in.
type Table struct {
	specs []PairSpec
	index map[string]int
}

// NewTable builds a table from specs. Duplicate symbols are rejected.
func NewTable(specs ...PairSpec) (*Table, error) {
	t := &Table{
		specs: make([]PairSpec, 0, len(specs)),
		index: make(map[string]int, len(specs)),
	}
	for _, s := range specs {
		s.Symbol = Canonicalize(s.Symbol)
		if _, dup := t.index[s.Symbol]; dup {
			return nil, &core.InvalidValueError{Field: "symbol", Value: s.Symbol, Reason: "duplicate pair"}
		}
		for _, d := range []*apd.Decimal{&s.PriceStep, &s.SizeStep, &s.MinSize} {
			if !positive(d) {
				return nil, &core.InvalidValueError{Field: "pair " + s.Symbol, Value: d.String(), Reason: "steps and minimum must be positive"}
			}
		}
		t.index[s.Symbol] = len(t.specs)
		t.specs = append(t.specs, s)
	}
	return t, nil
}

// Lookup returns the spec for symbol after canonicalization.
func (t *Table) Lookup(symbol string) (PairSpec, error) {
	i, ok := t.index[Canonicalize(symbol)]
	if !ok {
		return PairSpec{}, &core.UnknownSymbolError{Symbol: symbol}
	}
	return t.specs[i], nil
}

// Symbols returns the canonical symbols in table order.
func (t *Table) Symbols() []string {
	out := make([]string, len(t.specs))
	for i := range t.specs {
		out[i] = t.specs[i].Symbol
	}
	return out
}

// Specs returns a copy of every PairSpec in table order.
func (t *Table) Specs() []PairSpec {
	out := make([]PairSpec, len(t.specs))
	copy(out, t.specs)
	return out
}

func (t *Table) Len() int { return len(t.specs) }

var defaultTable = func() *Table {
	t, err := NewTable(
		mustPair("cmt_btcusdt", "0.1", "0.001", "0.001"),
		mustPair("cmt_ethusdt", "0.01", "0.001", "0.001"),
		mustPair("cmt_solusdt", "0.001", "0.1", "0.1"),
		mustPair("cmt_dogeusdt", "0.00001", "100", "100"),
		mustPair("cmt_xrpusdt", "0.0001", "10", "10"),
		mustPair("cmt_adausdt", "0.0001", "10", "10"),
		mustPair("cmt_bnbusdt", "0.01", "0.1", "0.1"),
		mustPair("cmt_ltcusdt", "0.01", "0.1", "0.1"),
	)
	if err != nil {
		panic(err)
	}
	return t
}()

// DefaultTable returns the built-in table of supported WEEX contracts.
func DefaultTable() *Table {
	return defaultTable
}

// Canonicalize trims surrounding space and lower-cases symbol.
func Canonicalize(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol))
}

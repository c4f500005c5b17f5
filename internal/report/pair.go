package report

// CostPricePair carries a cost amount and its corresponding selling price.
// The zero value is the additive identity; a pair always carries both fields.
type CostPricePair struct {
	Cost  float64 `json:"cost"`
	Price float64 `json:"price"`
}

// ZeroPair is the additive identity for CostPricePair.
var ZeroPair = CostPricePair{}

// Add returns the component-wise sum of two pairs.
// Addition is associative and commutative with ZeroPair as identity.
func (p CostPricePair) Add(other CostPricePair) CostPricePair {
	return CostPricePair{
		Cost:  p.Cost + other.Cost,
		Price: p.Price + other.Price,
	}
}

// IsZero reports whether both components are exactly zero.
func (p CostPricePair) IsZero() bool {
	return p.Cost == 0 && p.Price == 0
}

// MarkupRate returns (price - cost) / price, or fallback when price is zero.
func (p CostPricePair) MarkupRate(fallback float64) float64 {
	return SafeDivide(p.Price-p.Cost, p.Price, fallback)
}

// SumPairs folds a slice of directional transfer entries into a single pair.
func SumPairs(entries []TransferEntry) CostPricePair {
	var total CostPricePair
	for _, e := range entries {
		total.Cost += SafeNumber(e.Cost)
		total.Price += SafeNumber(e.Price)
	}
	return total
}

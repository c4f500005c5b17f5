package report

// DiscountImpactInput feeds the markdown impact calculation.
type DiscountImpactInput struct {
	CoreSales    float64
	MarkupRate   float64
	DiscountRate float64
}

// CalculateDiscountImpact returns the cost-basis loss attributable to
// markdowns:
//
//	discountLossCost = (1 - markupRate) * coreSales * discountRate / (1 - discountRate)
func CalculateDiscountImpact(in DiscountImpactInput) float64 {
	divisor := 1 - in.DiscountRate
	if divisor <= 0 {
		divisor = 1
	}
	return (1 - in.MarkupRate) * in.CoreSales * SafeDivide(in.DiscountRate, divisor, 0)
}

package report

// EstMethodInput feeds the estimation-method calculation. The scope is
// inventory sales only: flowers and direct produce are excluded.
type EstMethodInput struct {
	CoreSales             float64
	DiscountRate          float64
	MarkupRate            float64
	ConsumableCost        float64
	OpeningInventory      *float64
	InventoryPurchaseCost float64
}

// EstMethodResult holds the estimation-method figures. Margin is an
// inventory estimate, not an actual gross profit; ClosingInventory is nil
// when no opening count anchors the estimate.
type EstMethodResult struct {
	GrossSales       float64
	Cogs             float64
	Margin           float64
	MarginRate       float64
	ClosingInventory *float64
}

// CalculateEstMethod approximates COGS and closing inventory from sales and
// rates:
//
//	grossSales       = coreSales / (1 - discountRate)
//	cogs             = grossSales * (1 - markupRate) + consumableCost
//	margin           = coreSales - cogs
//	closingInventory = opening + inventory purchases - cogs
//
// A discount rate of 1 or more would blow up the division; core sales are
// used as-is in that case.
func CalculateEstMethod(in EstMethodInput) EstMethodResult {
	divisor := 1 - in.DiscountRate
	grossSales := in.CoreSales
	if divisor > 0 {
		grossSales = in.CoreSales / divisor
	}

	cogs := grossSales*(1-in.MarkupRate) + in.ConsumableCost
	margin := in.CoreSales - cogs
	marginRate := SafeDivide(margin, in.CoreSales, 0)

	var closing *float64
	if in.OpeningInventory != nil {
		c := *in.OpeningInventory + in.InventoryPurchaseCost - cogs
		closing = &c
	}

	return EstMethodResult{
		GrossSales:       grossSales,
		Cogs:             cogs,
		Margin:           margin,
		MarginRate:       marginRate,
		ClosingInventory: closing,
	}
}

// CoreSales returns sales minus flower and direct-produce revenue, clamped
// at zero. The second return is the over-delivery amount when delivery-sale
// revenue exceeded total sales (clamped days).
func CoreSales(totalSales, flowerSalesPrice, directProduceSalesPrice float64) (float64, float64) {
	core := totalSales - flowerSalesPrice - directProduceSalesPrice
	if core < 0 {
		return 0, -core
	}
	return core, 0
}

// CalculateDiscountRate returns discount / (sales + discount): the markdown
// share of the pre-markdown selling price.
func CalculateDiscountRate(salesAmount, discountAmount float64) float64 {
	return SafeDivide(discountAmount, salesAmount+discountAmount, 0)
}

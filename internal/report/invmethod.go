package report

// InvMethodInput feeds the inventory-method calculation. The scope is the
// whole store: all sales and all purchases, delivery-sale goods included.
type InvMethodInput struct {
	OpeningInventory  *float64
	ClosingInventory  *float64
	TotalPurchaseCost float64
	TotalSales        float64
}

// InvMethodResult holds the inventory-method figures. All three are nil when
// either inventory count is missing.
type InvMethodResult struct {
	Cogs            *float64
	GrossProfit     *float64
	GrossProfitRate *float64
}

// CalculateInvMethod computes the actual gross profit from physically
// counted inventory:
//
//	cogs        = opening + total purchases - closing
//	grossProfit = sales - cogs
//	rate        = grossProfit / sales
func CalculateInvMethod(in InvMethodInput) InvMethodResult {
	if in.OpeningInventory == nil || in.ClosingInventory == nil {
		return InvMethodResult{}
	}

	cogs := *in.OpeningInventory + in.TotalPurchaseCost - *in.ClosingInventory
	grossProfit := in.TotalSales - cogs
	rate := SafeDivide(grossProfit, in.TotalSales, 0)

	return InvMethodResult{
		Cogs:            &cogs,
		GrossProfit:     &grossProfit,
		GrossProfitRate: &rate,
	}
}

package report

import "errors"

// ErrNoResults is returned when aggregation is requested over zero store
// results. There is no sensible zero-store aggregate.
var ErrNoResults = errors.New("report: cannot aggregate zero store results")

func mergeDailyRecord(existing, rec *DailyRecord) *DailyRecord {
	mergedSuppliers := make(map[string]CostPricePair, len(existing.SupplierBreakdown)+len(rec.SupplierBreakdown))
	for code, pair := range existing.SupplierBreakdown {
		mergedSuppliers[code] = pair
	}
	for code, pair := range rec.SupplierBreakdown {
		mergedSuppliers[code] = mergedSuppliers[code].Add(pair)
	}

	items := make([]ConsumableItem, 0, len(existing.Consumable.Items)+len(rec.Consumable.Items))
	items = append(items, existing.Consumable.Items...)
	items = append(items, rec.Consumable.Items...)

	return &DailyRecord{
		Day:                existing.Day,
		Sales:              existing.Sales + rec.Sales,
		CoreSales:          existing.CoreSales + rec.CoreSales,
		GrossSales:         existing.GrossSales + rec.GrossSales,
		Purchase:           existing.Purchase.Add(rec.Purchase),
		DeliverySales:      existing.DeliverySales.Add(rec.DeliverySales),
		InterStoreIn:       existing.InterStoreIn.Add(rec.InterStoreIn),
		InterStoreOut:      existing.InterStoreOut.Add(rec.InterStoreOut),
		InterDepartmentIn:  existing.InterDepartmentIn.Add(rec.InterDepartmentIn),
		InterDepartmentOut: existing.InterDepartmentOut.Add(rec.InterDepartmentOut),
		Flowers:            existing.Flowers.Add(rec.Flowers),
		DirectProduce:      existing.DirectProduce.Add(rec.DirectProduce),
		Consumable: ConsumableDaily{
			Cost:  existing.Consumable.Cost + rec.Consumable.Cost,
			Items: items,
		},
		DiscountAmount:    existing.DiscountAmount + rec.DiscountAmount,
		DiscountAbsolute:  existing.DiscountAbsolute + rec.DiscountAbsolute,
		SupplierBreakdown: mergedSuppliers,
		// Breakdown lists concatenate: the same route appearing on the same
		// day from two stores stays two entries.
		TransferBreakdown: TransferBreakdown{
			InterStoreIn:       concatEntries(existing.TransferBreakdown.InterStoreIn, rec.TransferBreakdown.InterStoreIn),
			InterStoreOut:      concatEntries(existing.TransferBreakdown.InterStoreOut, rec.TransferBreakdown.InterStoreOut),
			InterDepartmentIn:  concatEntries(existing.TransferBreakdown.InterDepartmentIn, rec.TransferBreakdown.InterDepartmentIn),
			InterDepartmentOut: concatEntries(existing.TransferBreakdown.InterDepartmentOut, rec.TransferBreakdown.InterDepartmentOut),
		},
	}
}

func concatEntries(a, b []TransferEntry) []TransferEntry {
	out := make([]TransferEntry, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func copyDailyRecord(rec *DailyRecord) *DailyRecord {
	clone := *rec
	clone.SupplierBreakdown = make(map[string]CostPricePair, len(rec.SupplierBreakdown))
	for code, pair := range rec.SupplierBreakdown {
		clone.SupplierBreakdown[code] = pair
	}
	clone.Consumable.Items = append([]ConsumableItem(nil), rec.Consumable.Items...)
	clone.TransferBreakdown = TransferBreakdown{
		InterStoreIn:       append([]TransferEntry(nil), rec.TransferBreakdown.InterStoreIn...),
		InterStoreOut:      append([]TransferEntry(nil), rec.TransferBreakdown.InterStoreOut...),
		InterDepartmentIn:  append([]TransferEntry(nil), rec.TransferBreakdown.InterDepartmentIn...),
		InterDepartmentOut: append([]TransferEntry(nil), rec.TransferBreakdown.InterDepartmentOut...),
	}
	return &clone
}

// AggregateStoreResults merges store results into one synthetic all-stores
// result. Additive fields sum; elapsed and sales days take the maximum;
// every ratio is re-derived from the aggregate totals rather than averaged.
//
// The inventory method is recomputed fresh from aggregate totals. The
// estimation method is summed from the per-store figures instead, because
// each store's estimate encodes store-specific markup and discount context
// that cannot be re-derived from the merged totals.
func AggregateStoreResults(results []*StoreResult, daysInMonth int) (*StoreResult, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	agg := &StoreResult{
		StoreID:        AggregateStoreID,
		Daily:          make(map[int]*DailyRecord),
		CategoryTotals: make(map[Category]CostPricePair),
		SupplierTotals: make(map[string]*SupplierTotal),
		BudgetDaily:    make(map[int]float64),
	}

	var openInv, closeInv float64
	var hasOpening, hasClosing bool
	var totalCoreSales float64
	var transferTotals TransferTotals

	for _, r := range results {
		agg.TotalSales += r.TotalSales
		totalCoreSales += r.TotalCoreSales
		agg.DeliverySalesPrice += r.DeliverySalesPrice
		agg.FlowerSalesPrice += r.FlowerSalesPrice
		agg.DirectProduceSalesPrice += r.DirectProduceSalesPrice
		agg.GrossSales += r.GrossSales
		agg.TotalCost += r.TotalCost
		agg.InventoryCost += r.InventoryCost
		agg.DeliverySalesCost += r.DeliverySalesCost
		agg.TotalDiscount += r.TotalDiscount
		agg.TotalConsumable += r.TotalConsumable
		agg.TotalCustomers += r.TotalCustomers
		agg.Budget += r.Budget
		agg.GrossProfitBudget += r.GrossProfitBudget
		if r.ElapsedDays > agg.ElapsedDays {
			agg.ElapsedDays = r.ElapsedDays
		}
		if r.SalesDays > agg.SalesDays {
			agg.SalesDays = r.SalesDays
		}

		// Partial physical inventory: the aggregate carries a figure as soon
		// as any store reports one, summing only the reporters.
		if r.OpeningInventory != nil {
			openInv += *r.OpeningInventory
			hasOpening = true
		}
		if r.ClosingInventory != nil {
			closeInv += *r.ClosingInventory
			hasClosing = true
		}

		for day, rec := range r.Daily {
			if existing, ok := agg.Daily[day]; ok {
				agg.Daily[day] = mergeDailyRecord(existing, rec)
			} else {
				agg.Daily[day] = copyDailyRecord(rec)
			}
		}

		for cat, pair := range r.CategoryTotals {
			addToCategory(agg.CategoryTotals, cat, pair)
		}

		for code, st := range r.SupplierTotals {
			existing, ok := agg.SupplierTotals[code]
			if !ok {
				clone := *st
				agg.SupplierTotals[code] = &clone
				continue
			}
			existing.Cost += st.Cost
			existing.Price += st.Price
		}

		for day, val := range r.BudgetDaily {
			agg.BudgetDaily[day] += val
		}

		transferTotals.InterStoreIn = transferTotals.InterStoreIn.Add(r.TransferDetails.InterStoreIn)
		transferTotals.InterStoreOut = transferTotals.InterStoreOut.Add(r.TransferDetails.InterStoreOut)
		transferTotals.InterDepartmentIn = transferTotals.InterDepartmentIn.Add(r.TransferDetails.InterDepartmentIn)
		transferTotals.InterDepartmentOut = transferTotals.InterDepartmentOut.Add(r.TransferDetails.InterDepartmentOut)
	}

	agg.TotalCoreSales = totalCoreSales
	agg.TransferDetails = TransferDetails{
		TransferTotals: transferTotals,
		NetTransfer:    transferTotals.Sum(),
	}

	// Supplier markup rates once, after all additions.
	for _, st := range agg.SupplierTotals {
		st.MarkupRate = SafeDivide(st.Price-st.Cost, st.Price, 0)
	}

	agg.DiscountRate = CalculateDiscountRate(agg.TotalSales, agg.TotalDiscount)

	var purchaseCost, purchasePrice float64
	for _, st := range agg.SupplierTotals {
		purchaseCost += st.Cost
		purchasePrice += st.Price
	}
	flowerCat := agg.CategoryTotals[CategoryFlowers]
	directProduceCat := agg.CategoryTotals[CategoryDirectProduce]
	allPurchasePrice := purchasePrice + flowerCat.Price + directProduceCat.Price
	allPurchaseCost := purchaseCost + flowerCat.Cost + directProduceCat.Cost
	agg.AverageMarkupRate = SafeDivide(allPurchasePrice-allPurchaseCost, allPurchasePrice, 0)
	agg.CoreMarkupRate = SafeDivide(purchasePrice-purchaseCost, purchasePrice, 0)

	agg.ConsumableRate = SafeDivide(agg.TotalConsumable, agg.TotalSales, 0)
	agg.AverageDailySales = SafeDivide(agg.TotalSales, float64(agg.SalesDays), 0)
	agg.AverageCustomersPerDay = SafeDivide(float64(agg.TotalCustomers), float64(agg.SalesDays), 0)

	if hasOpening {
		agg.OpeningInventory = &openInv
	}
	if hasClosing {
		agg.ClosingInventory = &closeInv
	}

	// Inventory method fresh from aggregate totals.
	if agg.OpeningInventory != nil && agg.ClosingInventory != nil {
		cogs := *agg.OpeningInventory + agg.TotalCost - *agg.ClosingInventory
		grossProfit := agg.TotalSales - cogs
		rate := SafeDivide(grossProfit, agg.TotalSales, 0)
		agg.InvMethodCogs = &cogs
		agg.InvMethodGrossProfit = &grossProfit
		agg.InvMethodGrossProfitRate = &rate
	}

	// Estimation method summed from per-store figures.
	var estClosing float64
	var hasEstClosing bool
	for _, r := range results {
		agg.EstMethodCogs += r.EstMethodCogs
		agg.EstMethodMargin += r.EstMethodMargin
		agg.DiscountLossCost += r.DiscountLossCost
		if r.EstMethodClosingInventory != nil {
			estClosing += *r.EstMethodClosingInventory
			hasEstClosing = true
		}
	}
	agg.EstMethodMarginRate = SafeDivide(agg.EstMethodMargin, totalCoreSales, 0)
	if hasEstClosing {
		agg.EstMethodClosingInventory = &estClosing
	}

	agg.GrossProfitRateBudget = SafeDivide(agg.GrossProfitBudget, agg.Budget, 0)

	// Budget pacing fresh from aggregate totals and the furthest-advanced
	// store's elapsed days.
	remainingDays := daysInMonth - agg.ElapsedDays
	agg.ProjectedSales = agg.TotalSales + agg.AverageDailySales*float64(remainingDays)
	agg.ProjectedAchievement = SafeDivide(agg.ProjectedSales, agg.Budget, 0)
	agg.BudgetAchievementRate = SafeDivide(agg.TotalSales, agg.Budget, 0)

	var cumulativeBudget float64
	for d := 1; d <= agg.ElapsedDays; d++ {
		cumulativeBudget += agg.BudgetDaily[d]
	}
	agg.BudgetProgressRate = SafeDivide(agg.TotalSales, cumulativeBudget, 0)
	agg.BudgetElapsedRate = SafeDivide(cumulativeBudget, agg.Budget, 0)
	agg.RemainingBudget = agg.Budget - agg.TotalSales

	agg.DailyCumulative = make(map[int]CumulativePoint, daysInMonth)
	var cumSales, cumBudget float64
	for d := 1; d <= daysInMonth; d++ {
		if rec, ok := agg.Daily[d]; ok {
			cumSales += rec.Sales
		}
		cumBudget += agg.BudgetDaily[d]
		agg.DailyCumulative[d] = CumulativePoint{Sales: cumSales, Budget: cumBudget}
	}

	return agg, nil
}

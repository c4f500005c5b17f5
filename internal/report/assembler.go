package report

func addToCategory(m map[Category]CostPricePair, cat Category, pair CostPricePair) {
	m[cat] = m[cat].Add(pair)
}

// AssembleStoreResult combines one daily-builder pass with store
// configuration and both valuation methods into the finished StoreResult.
//
// The assembler finalizes the accumulator's category map in place, so it
// must be called exactly once per accumulator.
func AssembleStoreResult(storeID string, acc *MonthlyAccumulator, data *ImportedData, settings Settings, daysInMonth int) *StoreResult {
	invConfig, hasInvConfig := data.Inventory[storeID]
	budgetData, hasBudget := data.Budget[storeID]

	var openingInventory, closingInventory *float64
	if hasInvConfig {
		openingInventory = invConfig.OpeningInventory
		closingInventory = invConfig.ClosingInventory
	}

	deliverySalesPrice := acc.TotalFlowerPrice + acc.TotalDirectProducePrice
	deliverySalesCost := acc.TotalFlowerCost + acc.TotalDirectProduceCost

	totalCoreSales, _ := CoreSales(acc.TotalSales, acc.TotalFlowerPrice, acc.TotalDirectProducePrice)

	// Purchases that actually become sellable inventory: delivery-sale goods
	// bypass inventory entirely.
	inventoryCost := acc.TotalCost - deliverySalesCost

	grossSales := acc.TotalSales + acc.TotalDiscount
	discountRate := CalculateDiscountRate(acc.TotalSales, acc.TotalDiscount)

	// The average markup rate spans everything that entered at a price:
	// purchases, delivery sales and transfers. The core rate drops the
	// delivery-sale categories and falls back to the configured default,
	// because a core markup of exactly zero would be a materially different
	// signal than "unknown".
	transfer := acc.TransferTotals.Sum()
	allPurchasePrice := acc.TotalPurchasePrice + deliverySalesPrice + transfer.Price
	allPurchaseCost := acc.TotalPurchaseCost + deliverySalesCost + transfer.Cost
	averageMarkupRate := SafeDivide(allPurchasePrice-allPurchaseCost, allPurchasePrice, 0)
	coreMarkupRate := SafeDivide(
		(acc.TotalPurchasePrice+transfer.Price)-(acc.TotalPurchaseCost+transfer.Cost),
		acc.TotalPurchasePrice+transfer.Price,
		settings.DefaultMarkupRate,
	)

	invResult := CalculateInvMethod(InvMethodInput{
		OpeningInventory:  openingInventory,
		ClosingInventory:  closingInventory,
		TotalPurchaseCost: acc.TotalCost,
		TotalSales:        acc.TotalSales,
	})

	estResult := CalculateEstMethod(EstMethodInput{
		CoreSales:             totalCoreSales,
		DiscountRate:          discountRate,
		MarkupRate:            coreMarkupRate,
		ConsumableCost:        acc.TotalConsumable,
		OpeningInventory:      openingInventory,
		InventoryPurchaseCost: inventoryCost,
	})

	discountLossCost := CalculateDiscountImpact(DiscountImpactInput{
		CoreSales:    totalCoreSales,
		MarkupRate:   coreMarkupRate,
		DiscountRate: discountRate,
	})

	consumableRate := SafeDivide(acc.TotalConsumable, acc.TotalSales, 0)

	addToCategory(acc.CategoryTotals, CategoryFlowers, CostPricePair{Cost: acc.TotalFlowerCost, Price: acc.TotalFlowerPrice})
	addToCategory(acc.CategoryTotals, CategoryDirectProduce, CostPricePair{Cost: acc.TotalDirectProduceCost, Price: acc.TotalDirectProducePrice})
	addToCategory(acc.CategoryTotals, CategoryConsumables, CostPricePair{Cost: acc.TotalConsumable})
	addToCategory(acc.CategoryTotals, CategoryInterStore, acc.TransferTotals.InterStoreIn.Add(acc.TransferTotals.InterStoreOut))
	addToCategory(acc.CategoryTotals, CategoryInterDepartment, acc.TransferTotals.InterDepartmentIn.Add(acc.TransferTotals.InterDepartmentOut))

	transferDetails := TransferDetails{
		TransferTotals: acc.TransferTotals,
		NetTransfer:    acc.TransferTotals.Sum(),
	}

	// Supplier markup rates come from the finalized totals; accumulating
	// them incrementally would bake in division-order artifacts.
	for code, st := range acc.SupplierTotals {
		if cat, ok := settings.SupplierCategoryMap[code]; ok && cat.Valid() {
			st.Category = cat
		}
		st.MarkupRate = SafeDivide(st.Price-st.Cost, st.Price, 0)
	}

	budget := settings.DefaultBudget
	budgetDaily := map[int]float64{}
	if hasBudget {
		budget = budgetData.Total
		if budgetData.Daily != nil {
			budgetDaily = budgetData.Daily
		}
	}
	var grossProfitBudget float64
	if hasInvConfig && invConfig.GrossProfitBudget != nil {
		grossProfitBudget = *invConfig.GrossProfitBudget
	}

	salesDaily := make(map[int]float64, len(acc.Daily))
	for d, rec := range acc.Daily {
		salesDaily[d] = rec.Sales
	}
	budgetAnalysis := CalculateBudgetAnalysis(BudgetAnalysisInput{
		TotalSales:  acc.TotalSales,
		Budget:      budget,
		BudgetDaily: budgetDaily,
		SalesDaily:  salesDaily,
		ElapsedDays: acc.ElapsedDays,
		SalesDays:   acc.SalesDays,
		DaysInMonth: daysInMonth,
	})

	return &StoreResult{
		StoreID:                 storeID,
		OpeningInventory:        openingInventory,
		ClosingInventory:        closingInventory,
		TotalSales:              acc.TotalSales,
		TotalCoreSales:          totalCoreSales,
		DeliverySalesPrice:      deliverySalesPrice,
		FlowerSalesPrice:        acc.TotalFlowerPrice,
		DirectProduceSalesPrice: acc.TotalDirectProducePrice,
		GrossSales:              grossSales,
		TotalCost:               acc.TotalCost,
		InventoryCost:           inventoryCost,
		DeliverySalesCost:       deliverySalesCost,

		InvMethodCogs:            invResult.Cogs,
		InvMethodGrossProfit:     invResult.GrossProfit,
		InvMethodGrossProfitRate: invResult.GrossProfitRate,

		EstMethodCogs:             estResult.Cogs,
		EstMethodMargin:           estResult.Margin,
		EstMethodMarginRate:       estResult.MarginRate,
		EstMethodClosingInventory: estResult.ClosingInventory,

		TotalCustomers:         acc.TotalCustomers,
		AverageCustomersPerDay: SafeDivide(float64(acc.TotalCustomers), float64(acc.SalesDays), 0),

		TotalDiscount:    acc.TotalDiscount,
		DiscountRate:     discountRate,
		DiscountLossCost: discountLossCost,

		AverageMarkupRate: averageMarkupRate,
		CoreMarkupRate:    coreMarkupRate,

		TotalConsumable: acc.TotalConsumable,
		ConsumableRate:  consumableRate,

		Budget:                budget,
		GrossProfitBudget:     grossProfitBudget,
		GrossProfitRateBudget: SafeDivide(grossProfitBudget, budget, 0),
		BudgetDaily:           budgetDaily,

		Daily:           acc.Daily,
		CategoryTotals:  acc.CategoryTotals,
		SupplierTotals:  acc.SupplierTotals,
		TransferDetails: transferDetails,

		ElapsedDays:           acc.ElapsedDays,
		SalesDays:             acc.SalesDays,
		AverageDailySales:     budgetAnalysis.AverageDailySales,
		ProjectedSales:        budgetAnalysis.ProjectedSales,
		ProjectedAchievement:  budgetAnalysis.ProjectedAchievement,
		BudgetAchievementRate: budgetAnalysis.BudgetAchievementRate,
		BudgetProgressRate:    budgetAnalysis.BudgetProgressRate,
		BudgetElapsedRate:     budgetAnalysis.BudgetElapsedRate,
		RemainingBudget:       budgetAnalysis.RemainingBudget,
		DailyCumulative:       budgetAnalysis.DailyCumulative,
	}
}

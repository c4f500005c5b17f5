package report

// BuildDailyRecords folds one store's raw per-day import slices into a
// MonthlyAccumulator: one immutable DailyRecord per active day plus the
// running monthly totals.
//
// Days 1..daysInMonth are visited in order. A missing feed entry is a zero
// contribution, never an error. A DailyRecord is emitted only when the day
// saw any economic activity; TotalCost accrues only on emitted days, while
// the remaining running totals accrue regardless.
func BuildDailyRecords(storeID string, data *ImportedData, daysInMonth int) *MonthlyAccumulator {
	acc := &MonthlyAccumulator{
		StoreID:        storeID,
		Daily:          make(map[int]*DailyRecord),
		CategoryTotals: make(map[Category]CostPricePair),
		SupplierTotals: make(map[string]*SupplierTotal),
	}

	purchaseDays := data.Purchase[storeID]
	salesDays := data.Sales[storeID]
	discountDays := data.Discount[storeID]
	transferInDays := data.TransferIn[storeID]
	transferOutDays := data.TransferOut[storeID]
	flowerDays := data.Flowers[storeID]
	directProduceDays := data.DirectProduce[storeID]
	consumableDays := data.Consumables[storeID]

	for day := 1; day <= daysInMonth; day++ {
		var purchase CostPricePair
		supplierBreakdown := make(map[string]CostPricePair)
		if pd, ok := purchaseDays[day]; ok {
			purchase = CostPricePair{
				Cost:  SafeNumber(pd.Total.Cost),
				Price: SafeNumber(pd.Total.Price),
			}
			for code, sup := range pd.Suppliers {
				pair := CostPricePair{Cost: SafeNumber(sup.Cost), Price: SafeNumber(sup.Price)}
				supplierBreakdown[code] = pair

				st, ok := acc.SupplierTotals[code]
				if !ok {
					st = &SupplierTotal{Code: code, Name: sup.Name, Category: CategoryOther}
					acc.SupplierTotals[code] = st
				}
				st.Cost += pair.Cost
				st.Price += pair.Price
			}
		}

		var sales float64
		var customers int
		if sd, ok := salesDays[day]; ok {
			sales = SafeNumber(sd.Sales)
			customers = sd.Customers
		}

		var flowers, directProduce CostPricePair
		if fd, ok := flowerDays[day]; ok {
			flowers = CostPricePair{Cost: SafeNumber(fd.Cost), Price: SafeNumber(fd.Price)}
		}
		if dd, ok := directProduceDays[day]; ok {
			directProduce = CostPricePair{Cost: SafeNumber(dd.Cost), Price: SafeNumber(dd.Price)}
		}
		deliverySales := flowers.Add(directProduce)

		var interStoreIn, interStoreOut, interDepartmentIn, interDepartmentOut CostPricePair
		var breakdown TransferBreakdown
		if td, ok := transferInDays[day]; ok {
			interStoreIn = SumPairs(td.InterStoreIn)
			interDepartmentIn = SumPairs(td.InterDepartmentIn)
			breakdown.InterStoreIn = append(breakdown.InterStoreIn, td.InterStoreIn...)
			breakdown.InterDepartmentIn = append(breakdown.InterDepartmentIn, td.InterDepartmentIn...)
		}
		if td, ok := transferOutDays[day]; ok {
			interStoreOut = SumPairs(td.InterStoreOut)
			interDepartmentOut = SumPairs(td.InterDepartmentOut)
			breakdown.InterStoreOut = append(breakdown.InterStoreOut, td.InterStoreOut...)
			breakdown.InterDepartmentOut = append(breakdown.InterDepartmentOut, td.InterDepartmentOut...)
		}

		var consumable ConsumableDaily
		if cd, ok := consumableDays[day]; ok {
			consumable = ConsumableDaily{Cost: SafeNumber(cd.Cost), Items: cd.Items}
		}

		var discountAmount float64
		if dd, ok := discountDays[day]; ok {
			discountAmount = SafeNumber(dd.Discount)
		}
		discountAbsolute := discountAmount
		if discountAbsolute < 0 {
			discountAbsolute = -discountAbsolute
		}

		coreSales, _ := CoreSales(sales, flowers.Price, directProduce.Price)
		grossSales := sales + discountAbsolute

		// A record exists only for days with activity. Absence is the
		// signal downstream layers use to count active days.
		hasData := sales > 0 ||
			purchase.Cost != 0 ||
			deliverySales.Cost != 0 ||
			interStoreIn.Cost != 0 ||
			interStoreOut.Cost != 0 ||
			interDepartmentIn.Cost != 0 ||
			interDepartmentOut.Cost != 0 ||
			discountAbsolute != 0 ||
			consumable.Cost != 0

		if hasData {
			acc.ElapsedDays = day
			if sales > 0 {
				acc.SalesDays++
			}

			rec := &DailyRecord{
				Day:                day,
				Sales:              sales,
				CoreSales:          coreSales,
				GrossSales:         grossSales,
				Purchase:           purchase,
				DeliverySales:      deliverySales,
				InterStoreIn:       interStoreIn,
				InterStoreOut:      interStoreOut,
				InterDepartmentIn:  interDepartmentIn,
				InterDepartmentOut: interDepartmentOut,
				Flowers:            flowers,
				DirectProduce:      directProduce,
				Consumable:         consumable,
				DiscountAmount:     discountAmount,
				DiscountAbsolute:   discountAbsolute,
				SupplierBreakdown:  supplierBreakdown,
				TransferBreakdown:  breakdown,
			}
			acc.Daily[day] = rec
			acc.TotalCost += rec.TotalCost()
		}

		acc.TotalSales += sales
		acc.TotalCustomers += customers
		acc.TotalPurchaseCost += purchase.Cost
		acc.TotalPurchasePrice += purchase.Price
		acc.TotalFlowerPrice += flowers.Price
		acc.TotalFlowerCost += flowers.Cost
		acc.TotalDirectProducePrice += directProduce.Price
		acc.TotalDirectProduceCost += directProduce.Cost
		acc.TotalDiscount += discountAbsolute
		acc.TotalConsumable += consumable.Cost

		acc.TransferTotals.InterStoreIn = acc.TransferTotals.InterStoreIn.Add(interStoreIn)
		acc.TransferTotals.InterStoreOut = acc.TransferTotals.InterStoreOut.Add(interStoreOut)
		acc.TransferTotals.InterDepartmentIn = acc.TransferTotals.InterDepartmentIn.Add(interDepartmentIn)
		acc.TransferTotals.InterDepartmentOut = acc.TransferTotals.InterDepartmentOut.Add(interDepartmentOut)
	}

	return acc
}

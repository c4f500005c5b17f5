package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData() *ImportedData {
	data := NewImportedData()
	data.Stores["001"] = Store{ID: "001", Name: "Main"}
	return data
}

func TestBuildDailyRecords(t *testing.T) {
	t.Run("empty store yields empty accumulator", func(t *testing.T) {
		acc := BuildDailyRecords("001", testData(), 31)
		assert.Empty(t, acc.Daily)
		assert.Zero(t, acc.TotalSales)
		assert.Zero(t, acc.ElapsedDays)
		assert.Zero(t, acc.SalesDays)
	})

	t.Run("inactive day produces no record", func(t *testing.T) {
		data := testData()
		data.Sales["001"] = map[int]SalesDay{
			1: {Sales: 1000},
			3: {Sales: 2000},
		}
		acc := BuildDailyRecords("001", data, 5)

		require.Len(t, acc.Daily, 2)
		assert.Contains(t, acc.Daily, 1)
		assert.NotContains(t, acc.Daily, 2, "a day with no activity must be absent, not zero-valued")
		assert.Contains(t, acc.Daily, 3)
		assert.Equal(t, 3, acc.ElapsedDays)
		assert.Equal(t, 2, acc.SalesDays)
	})

	t.Run("price-only delivery sales accrue totals without a record", func(t *testing.T) {
		data := testData()
		data.Flowers["001"] = map[int]SpecialSalesDay{2: {Cost: 0, Price: 500}}
		acc := BuildDailyRecords("001", data, 5)

		assert.Empty(t, acc.Daily, "zero-cost activity does not emit a record")
		assert.Equal(t, 500.0, acc.TotalFlowerPrice, "monthly totals accrue regardless")
		assert.Zero(t, acc.TotalCost, "total cost accrues only on emitted days")
	})

	t.Run("purchases fill supplier breakdown and totals", func(t *testing.T) {
		data := testData()
		data.Purchase["001"] = map[int]PurchaseDay{
			1: {
				Suppliers: map[string]SupplierPurchase{
					"S01": {Name: "Ichiba", Cost: 300, Price: 500},
					"S02": {Name: "Nouen", Cost: 300, Price: 500},
				},
				Total: CostPricePair{Cost: 600, Price: 1000},
			},
			2: {
				Suppliers: map[string]SupplierPurchase{
					"S01": {Name: "Ichiba", Cost: 400, Price: 600},
				},
				Total: CostPricePair{Cost: 400, Price: 600},
			},
		}
		acc := BuildDailyRecords("001", data, 28)

		require.Len(t, acc.Daily, 2)
		assert.Equal(t, CostPricePair{Cost: 300, Price: 500}, acc.Daily[1].SupplierBreakdown["S01"])
		assert.Equal(t, 1000.0, acc.TotalPurchaseCost)
		assert.Equal(t, 1600.0, acc.TotalPurchasePrice)
		assert.Equal(t, 1000.0, acc.TotalCost)

		s01 := acc.SupplierTotals["S01"]
		require.NotNil(t, s01)
		assert.Equal(t, "Ichiba", s01.Name)
		assert.Equal(t, CategoryOther, s01.Category)
		assert.Equal(t, 700.0, s01.Cost)
		assert.Equal(t, 1100.0, s01.Price)
		assert.Zero(t, s01.MarkupRate, "markup rate is left for the assembler")
	})

	t.Run("transfers sum per direction and keep the breakdown", func(t *testing.T) {
		data := testData()
		data.TransferIn["001"] = map[int]TransferDay{
			4: {
				InterStoreIn: []TransferEntry{
					{Day: 4, FromStoreID: "002", ToStoreID: "001", Cost: 100, Price: 140},
					{Day: 4, FromStoreID: "003", ToStoreID: "001", Cost: 60, Price: 90},
				},
				InterDepartmentIn: []TransferEntry{
					{Day: 4, FromStoreID: "001-b", ToStoreID: "001", Cost: 20, Price: 30},
				},
			},
		}
		data.TransferOut["001"] = map[int]TransferDay{
			4: {
				InterStoreOut: []TransferEntry{
					{Day: 4, FromStoreID: "001", ToStoreID: "002", Cost: 50, Price: 75},
				},
			},
		}
		acc := BuildDailyRecords("001", data, 30)

		rec := acc.Daily[4]
		require.NotNil(t, rec)
		assert.Equal(t, CostPricePair{Cost: 160, Price: 230}, rec.InterStoreIn)
		assert.Equal(t, CostPricePair{Cost: 50, Price: 75}, rec.InterStoreOut)
		assert.Equal(t, CostPricePair{Cost: 20, Price: 30}, rec.InterDepartmentIn)
		assert.Len(t, rec.TransferBreakdown.InterStoreIn, 2)
		assert.Len(t, rec.TransferBreakdown.InterStoreOut, 1)
		assert.Equal(t, CostPricePair{Cost: 160, Price: 230}, acc.TransferTotals.InterStoreIn)
		// All four directions count toward the day's cost.
		assert.Equal(t, 230.0, acc.TotalCost)
	})

	t.Run("core sales exclude delivery revenue and never exceed sales", func(t *testing.T) {
		data := testData()
		data.Sales["001"] = map[int]SalesDay{1: {Sales: 1000}}
		data.Flowers["001"] = map[int]SpecialSalesDay{1: {Cost: 640, Price: 800}}
		data.DirectProduce["001"] = map[int]SpecialSalesDay{1: {Cost: 340, Price: 400}}
		acc := BuildDailyRecords("001", data, 28)

		rec := acc.Daily[1]
		require.NotNil(t, rec)
		assert.Zero(t, rec.CoreSales, "delivery revenue above sales clamps core sales at zero")
		assert.Equal(t, CostPricePair{Cost: 980, Price: 1200}, rec.DeliverySales)
	})

	t.Run("discount is tracked signed and absolute", func(t *testing.T) {
		data := testData()
		data.Sales["001"] = map[int]SalesDay{1: {Sales: 2000}}
		data.Discount["001"] = map[int]DiscountDay{1: {Sales: 2000, Discount: -50}}
		acc := BuildDailyRecords("001", data, 28)

		rec := acc.Daily[1]
		require.NotNil(t, rec)
		assert.Equal(t, -50.0, rec.DiscountAmount)
		assert.Equal(t, 50.0, rec.DiscountAbsolute)
		assert.Equal(t, 2050.0, rec.GrossSales)
		assert.Equal(t, 50.0, acc.TotalDiscount)
	})

	t.Run("non-finite input is coerced to zero", func(t *testing.T) {
		data := testData()
		data.Sales["001"] = map[int]SalesDay{1: {Sales: math.NaN()}}
		data.Flowers["001"] = map[int]SpecialSalesDay{1: {Cost: math.Inf(1), Price: 300}}
		acc := BuildDailyRecords("001", data, 28)

		assert.False(t, math.IsNaN(acc.TotalSales))
		assert.Zero(t, acc.TotalSales)
		assert.Zero(t, acc.TotalFlowerCost)
		assert.Equal(t, 300.0, acc.TotalFlowerPrice)
	})

	t.Run("customers accumulate from the sales feed", func(t *testing.T) {
		data := testData()
		data.Sales["001"] = map[int]SalesDay{
			1: {Sales: 1000, Customers: 120},
			2: {Sales: 1500, Customers: 180},
		}
		acc := BuildDailyRecords("001", data, 28)
		assert.Equal(t, 300, acc.TotalCustomers)
	})
}

package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeResultFor runs the full single-store pipeline over the given data.
func storeResultFor(t *testing.T, storeID string, data *ImportedData, daysInMonth int) *StoreResult {
	t.Helper()
	acc := BuildDailyRecords(storeID, data, daysInMonth)
	return AssembleStoreResult(storeID, acc, data, DefaultSettings(), daysInMonth)
}

func twoStoreData() *ImportedData {
	data := NewImportedData()
	data.Stores["001"] = Store{ID: "001", Name: "Main"}
	data.Stores["002"] = Store{ID: "002", Name: "East"}
	data.Sales["001"] = map[int]SalesDay{
		1: {Sales: 1000},
		2: {Sales: 2000},
	}
	data.Sales["002"] = map[int]SalesDay{
		1: {Sales: 2000},
		2: {Sales: 1500},
		3: {Sales: 1500},
	}
	data.Purchase["001"] = map[int]PurchaseDay{
		1: {
			Suppliers: map[string]SupplierPurchase{"S01": {Name: "Ichiba", Cost: 600, Price: 1000}},
			Total:     CostPricePair{Cost: 600, Price: 1000},
		},
	}
	data.Purchase["002"] = map[int]PurchaseDay{
		1: {
			Suppliers: map[string]SupplierPurchase{"S01": {Name: "Ichiba", Cost: 900, Price: 1500}},
			Total:     CostPricePair{Cost: 900, Price: 1500},
		},
	}
	data.Discount["001"] = map[int]DiscountDay{2: {Sales: 2000, Discount: -50}}
	data.Inventory["001"] = InventoryConfig{
		StoreID:          "001",
		OpeningInventory: floatPtr(500),
		ClosingInventory: floatPtr(300),
	}
	return data
}

func TestAggregateStoreResults(t *testing.T) {
	t.Run("empty input fails", func(t *testing.T) {
		_, err := AggregateStoreResults(nil, 30)
		require.ErrorIs(t, err, ErrNoResults)
	})

	t.Run("additive fields sum across stores", func(t *testing.T) {
		data := twoStoreData()
		a := storeResultFor(t, "001", data, 3)
		b := storeResultFor(t, "002", data, 3)

		agg, err := AggregateStoreResults([]*StoreResult{a, b}, 3)
		require.NoError(t, err)

		assert.Equal(t, AggregateStoreID, agg.StoreID)
		assert.Equal(t, a.TotalSales+b.TotalSales, agg.TotalSales)
		assert.Equal(t, a.TotalCost+b.TotalCost, agg.TotalCost)
		assert.Equal(t, a.TotalDiscount+b.TotalDiscount, agg.TotalDiscount)
		assert.Equal(t, a.TotalConsumable+b.TotalConsumable, agg.TotalConsumable)
		assert.Equal(t, a.Budget+b.Budget, agg.Budget)
		assert.Equal(t, a.EstMethodCogs+b.EstMethodCogs, agg.EstMethodCogs)
		assert.Equal(t, a.DiscountLossCost+b.DiscountLossCost, agg.DiscountLossCost)
	})

	t.Run("elapsed and sales days take the maximum", func(t *testing.T) {
		data := twoStoreData()
		a := storeResultFor(t, "001", data, 3)
		b := storeResultFor(t, "002", data, 3)
		agg, err := AggregateStoreResults([]*StoreResult{a, b}, 3)
		require.NoError(t, err)

		assert.Equal(t, 3, agg.ElapsedDays)
		assert.Equal(t, 3, agg.SalesDays)
	})

	t.Run("mixed inventory nullness follows the any-present rule", func(t *testing.T) {
		data := twoStoreData()
		a := storeResultFor(t, "001", data, 3)
		b := storeResultFor(t, "002", data, 3)
		require.NotNil(t, a.OpeningInventory)
		require.Nil(t, b.OpeningInventory)

		agg, err := AggregateStoreResults([]*StoreResult{a, b}, 3)
		require.NoError(t, err)

		// Only store 001 reports counts: the aggregate carries its figures
		// alone, and the inventory method runs on the partial counts.
		require.NotNil(t, agg.OpeningInventory)
		require.NotNil(t, agg.ClosingInventory)
		assert.Equal(t, *a.OpeningInventory, *agg.OpeningInventory)
		assert.Equal(t, *a.ClosingInventory, *agg.ClosingInventory)

		require.NotNil(t, agg.InvMethodCogs)
		assert.Equal(t, *agg.OpeningInventory+agg.TotalCost-*agg.ClosingInventory, *agg.InvMethodCogs)
	})

	t.Run("no inventory anywhere leaves the aggregate nil", func(t *testing.T) {
		data := twoStoreData()
		delete(data.Inventory, "001")
		a := storeResultFor(t, "001", data, 3)
		b := storeResultFor(t, "002", data, 3)

		agg, err := AggregateStoreResults([]*StoreResult{a, b}, 3)
		require.NoError(t, err)
		assert.Nil(t, agg.OpeningInventory)
		assert.Nil(t, agg.ClosingInventory)
		assert.Nil(t, agg.InvMethodCogs)
	})

	t.Run("inventory method is recomputed, not summed", func(t *testing.T) {
		data := twoStoreData()
		data.Inventory["002"] = InventoryConfig{
			StoreID:          "002",
			OpeningInventory: floatPtr(700),
			ClosingInventory: floatPtr(600),
		}
		a := storeResultFor(t, "001", data, 3)
		b := storeResultFor(t, "002", data, 3)

		agg, err := AggregateStoreResults([]*StoreResult{a, b}, 3)
		require.NoError(t, err)
		require.NotNil(t, agg.InvMethodCogs)
		assert.Equal(t, (500.0+700)+agg.TotalCost-(300.0+600), *agg.InvMethodCogs)
	})

	t.Run("daily records deep-merge", func(t *testing.T) {
		data := twoStoreData()
		data.TransferIn["001"] = map[int]TransferDay{
			1: {InterStoreIn: []TransferEntry{{Day: 1, FromStoreID: "002", ToStoreID: "001", Cost: 100, Price: 150}}},
		}
		data.TransferIn["002"] = map[int]TransferDay{
			1: {InterStoreIn: []TransferEntry{{Day: 1, FromStoreID: "002", ToStoreID: "001", Cost: 100, Price: 150}}},
		}
		a := storeResultFor(t, "001", data, 3)
		b := storeResultFor(t, "002", data, 3)

		agg, err := AggregateStoreResults([]*StoreResult{a, b}, 3)
		require.NoError(t, err)

		day1 := agg.Daily[1]
		require.NotNil(t, day1)
		assert.Equal(t, 3000.0, day1.Sales)
		assert.Equal(t, CostPricePair{Cost: 1500, Price: 2500}, day1.Purchase)
		assert.Equal(t, CostPricePair{Cost: 1500, Price: 2500}, day1.SupplierBreakdown["S01"])
		// The identical route from both stores stays two entries.
		assert.Len(t, day1.TransferBreakdown.InterStoreIn, 2)
		assert.Equal(t, CostPricePair{Cost: 200, Price: 300}, day1.InterStoreIn)
	})

	t.Run("source results are not mutated by merging", func(t *testing.T) {
		data := twoStoreData()
		a := storeResultFor(t, "001", data, 3)
		b := storeResultFor(t, "002", data, 3)
		salesBefore := a.Daily[1].Sales
		suppliersBefore := len(a.Daily[1].SupplierBreakdown)

		_, err := AggregateStoreResults([]*StoreResult{a, b}, 3)
		require.NoError(t, err)
		assert.Equal(t, salesBefore, a.Daily[1].Sales)
		assert.Len(t, a.Daily[1].SupplierBreakdown, suppliersBefore)
	})

	t.Run("supplier totals merge and markup is recomputed once", func(t *testing.T) {
		data := twoStoreData()
		a := storeResultFor(t, "001", data, 3)
		b := storeResultFor(t, "002", data, 3)

		agg, err := AggregateStoreResults([]*StoreResult{a, b}, 3)
		require.NoError(t, err)

		s01 := agg.SupplierTotals["S01"]
		require.NotNil(t, s01)
		assert.Equal(t, 1500.0, s01.Cost)
		assert.Equal(t, 2500.0, s01.Price)
		assert.InDelta(t, 1000.0/2500.0, s01.MarkupRate, 1e-9)
	})

	t.Run("budget pacing is re-derived from aggregate totals", func(t *testing.T) {
		data := twoStoreData()
		data.Budget["001"] = BudgetData{StoreID: "001", Total: 3000, Daily: map[int]float64{1: 1000, 2: 1000, 3: 1000}}
		data.Budget["002"] = BudgetData{StoreID: "002", Total: 6000, Daily: map[int]float64{1: 2000, 2: 2000, 3: 2000}}
		a := storeResultFor(t, "001", data, 3)
		b := storeResultFor(t, "002", data, 3)

		agg, err := AggregateStoreResults([]*StoreResult{a, b}, 3)
		require.NoError(t, err)

		assert.Equal(t, 9000.0, agg.Budget)
		assert.Equal(t, 3000.0, agg.BudgetDaily[1])
		assert.InDelta(t, 8000.0/9000.0, agg.BudgetAchievementRate, 1e-9)
		assert.InDelta(t, 8000.0/9000.0, agg.BudgetProgressRate, 1e-9)
		assert.Equal(t, 1000.0, agg.RemainingBudget)
	})

	t.Run("single store aggregate mirrors its totals", func(t *testing.T) {
		data := twoStoreData()
		a := storeResultFor(t, "001", data, 3)
		agg, err := AggregateStoreResults([]*StoreResult{a}, 3)
		require.NoError(t, err)
		assert.Equal(t, a.TotalSales, agg.TotalSales)
		assert.Equal(t, a.TotalCost, agg.TotalCost)
		assert.Equal(t, AggregateStoreID, agg.StoreID)
	})
}

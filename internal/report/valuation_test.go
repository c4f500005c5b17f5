package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestCalculateInvMethod(t *testing.T) {
	t.Run("defined with both counts", func(t *testing.T) {
		got := CalculateInvMethod(InvMethodInput{
			OpeningInventory:  floatPtr(500),
			ClosingInventory:  floatPtr(300),
			TotalPurchaseCost: 1600,
			TotalSales:        3000,
		})
		require.NotNil(t, got.Cogs)
		require.NotNil(t, got.GrossProfit)
		require.NotNil(t, got.GrossProfitRate)
		assert.Equal(t, 1800.0, *got.Cogs)
		assert.Equal(t, 1200.0, *got.GrossProfit)
		assert.InDelta(t, 0.4, *got.GrossProfitRate, 1e-9)
	})

	tests := []struct {
		name    string
		opening *float64
		closing *float64
	}{
		{"missing opening", nil, floatPtr(300)},
		{"missing closing", floatPtr(500), nil},
		{"missing both", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateInvMethod(InvMethodInput{
				OpeningInventory:  tt.opening,
				ClosingInventory:  tt.closing,
				TotalPurchaseCost: 1600,
				TotalSales:        3000,
			})
			assert.Nil(t, got.Cogs)
			assert.Nil(t, got.GrossProfit)
			assert.Nil(t, got.GrossProfitRate)
		})
	}

	t.Run("zero sales keeps rate finite", func(t *testing.T) {
		got := CalculateInvMethod(InvMethodInput{
			OpeningInventory: floatPtr(500),
			ClosingInventory: floatPtr(400),
		})
		require.NotNil(t, got.GrossProfitRate)
		assert.Zero(t, *got.GrossProfitRate)
	})
}

func TestCalculateEstMethod(t *testing.T) {
	t.Run("standard case", func(t *testing.T) {
		got := CalculateEstMethod(EstMethodInput{
			CoreSales:             10000,
			DiscountRate:          0.02,
			MarkupRate:            0.30,
			ConsumableCost:        100,
			OpeningInventory:      floatPtr(5000),
			InventoryPurchaseCost: 8000,
		})
		grossSales := 10000 / 0.98
		cogs := grossSales*0.70 + 100
		assert.InDelta(t, grossSales, got.GrossSales, 1e-9)
		assert.InDelta(t, cogs, got.Cogs, 1e-9)
		assert.InDelta(t, 10000-cogs, got.Margin, 1e-9)
		assert.InDelta(t, (10000-cogs)/10000, got.MarginRate, 1e-9)
		require.NotNil(t, got.ClosingInventory)
		assert.InDelta(t, 5000+8000-cogs, *got.ClosingInventory, 1e-9)
	})

	t.Run("no opening inventory leaves closing nil", func(t *testing.T) {
		got := CalculateEstMethod(EstMethodInput{CoreSales: 10000, MarkupRate: 0.3})
		assert.Nil(t, got.ClosingInventory)
		assert.Positive(t, got.Cogs)
	})

	t.Run("discount rate of one falls back to core sales", func(t *testing.T) {
		got := CalculateEstMethod(EstMethodInput{CoreSales: 10000, DiscountRate: 1, MarkupRate: 0.3})
		assert.Equal(t, 10000.0, got.GrossSales)
	})

	t.Run("zero core sales keeps margin rate finite", func(t *testing.T) {
		got := CalculateEstMethod(EstMethodInput{ConsumableCost: 50})
		assert.Zero(t, got.MarginRate)
		assert.Equal(t, 50.0, got.Cogs)
	})
}

func TestCoreSales(t *testing.T) {
	t.Run("subtracts delivery revenue", func(t *testing.T) {
		core, over := CoreSales(1000, 100, 50)
		assert.Equal(t, 850.0, core)
		assert.Zero(t, over)
	})

	t.Run("clamps at zero and reports the excess", func(t *testing.T) {
		core, over := CoreSales(1000, 800, 400)
		assert.Zero(t, core)
		assert.Equal(t, 200.0, over)
	})
}

func TestCalculateDiscountRate(t *testing.T) {
	assert.InDelta(t, 50.0/3050.0, CalculateDiscountRate(3000, 50), 1e-12)
	assert.Zero(t, CalculateDiscountRate(0, 0))
}

func TestCalculateDiscountImpact(t *testing.T) {
	t.Run("standard case", func(t *testing.T) {
		got := CalculateDiscountImpact(DiscountImpactInput{
			CoreSales:    10000,
			MarkupRate:   0.30,
			DiscountRate: 0.02,
		})
		expected := 0.70 * 10000 * (0.02 / 0.98)
		assert.InDelta(t, expected, got, 1e-9)
	})

	t.Run("no discount means no loss", func(t *testing.T) {
		assert.Zero(t, CalculateDiscountImpact(DiscountImpactInput{CoreSales: 10000, MarkupRate: 0.3}))
	})

	t.Run("discount rate of one stays finite", func(t *testing.T) {
		got := CalculateDiscountImpact(DiscountImpactInput{CoreSales: 10000, MarkupRate: 0.3, DiscountRate: 1})
		assert.InDelta(t, 0.70*10000*1, got, 1e-9)
	})
}

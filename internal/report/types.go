package report

// TransferBreakdown keeps the individual transfer entries behind each
// directional total, grouped by direction. Lists concatenate on merge and are
// never deduplicated.
type TransferBreakdown struct {
	InterStoreIn       []TransferEntry `json:"inter_store_in"`
	InterStoreOut      []TransferEntry `json:"inter_store_out"`
	InterDepartmentIn  []TransferEntry `json:"inter_department_in"`
	InterDepartmentOut []TransferEntry `json:"inter_department_out"`
}

// DailyRecord is a single store's single-day snapshot. A day with no
// economic activity across all feeds produces no DailyRecord at all; callers
// must treat a missing day as absence, not as a zero-valued record.
type DailyRecord struct {
	Day                int                      `json:"day"`
	Sales              float64                  `json:"sales"`
	CoreSales          float64                  `json:"core_sales"`
	GrossSales         float64                  `json:"gross_sales"`
	Purchase           CostPricePair            `json:"purchase"`
	DeliverySales      CostPricePair            `json:"delivery_sales"`
	InterStoreIn       CostPricePair            `json:"inter_store_in"`
	InterStoreOut      CostPricePair            `json:"inter_store_out"`
	InterDepartmentIn  CostPricePair            `json:"inter_department_in"`
	InterDepartmentOut CostPricePair            `json:"inter_department_out"`
	Flowers            CostPricePair            `json:"flowers"`
	DirectProduce      CostPricePair            `json:"direct_produce"`
	Consumable         ConsumableDaily          `json:"consumable"`
	DiscountAmount     float64                  `json:"discount_amount"`
	DiscountAbsolute   float64                  `json:"discount_absolute"`
	SupplierBreakdown  map[string]CostPricePair `json:"supplier_breakdown"`
	TransferBreakdown  TransferBreakdown        `json:"transfer_breakdown"`
}

// TotalCost is the day's full cost intake: purchases, every transfer
// direction, delivery sales and consumables.
func (r *DailyRecord) TotalCost() float64 {
	return r.Purchase.Cost +
		r.InterStoreIn.Cost + r.InterStoreOut.Cost +
		r.InterDepartmentIn.Cost + r.InterDepartmentOut.Cost +
		r.DeliverySales.Cost +
		r.Consumable.Cost
}

// SupplierTotal is a supplier's accumulated monthly volume. MarkupRate is
// recomputed from the final cost/price totals, never accumulated
// incrementally.
type SupplierTotal struct {
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	Cost       float64  `json:"cost"`
	Price      float64  `json:"price"`
	MarkupRate float64  `json:"markup_rate"`
}

// TransferTotals carries the four directional monthly totals.
type TransferTotals struct {
	InterStoreIn       CostPricePair `json:"inter_store_in"`
	InterStoreOut      CostPricePair `json:"inter_store_out"`
	InterDepartmentIn  CostPricePair `json:"inter_department_in"`
	InterDepartmentOut CostPricePair `json:"inter_department_out"`
}

// Sum returns the four directions added together: total movement volume,
// not a net in-minus-out position.
func (t TransferTotals) Sum() CostPricePair {
	return t.InterStoreIn.
		Add(t.InterStoreOut).
		Add(t.InterDepartmentIn).
		Add(t.InterDepartmentOut)
}

// TransferDetails is the finished transfer roll-up on a StoreResult.
type TransferDetails struct {
	TransferTotals
	// NetTransfer is the sum of all four directions.
	NetTransfer CostPricePair `json:"net_transfer"`
}

// MonthlyAccumulator is the working state produced by one daily-builder pass
// and consumed exactly once by the store assembler.
type MonthlyAccumulator struct {
	StoreID        string
	Daily          map[int]*DailyRecord
	CategoryTotals map[Category]CostPricePair
	SupplierTotals map[string]*SupplierTotal
	TransferTotals TransferTotals

	TotalSales              float64
	TotalCost               float64
	TotalFlowerPrice        float64
	TotalFlowerCost         float64
	TotalDirectProducePrice float64
	TotalDirectProduceCost  float64
	TotalPurchaseCost       float64
	TotalPurchasePrice      float64
	TotalDiscount           float64
	TotalConsumable         float64
	TotalCustomers          int
	SalesDays               int
	ElapsedDays             int
}

// CumulativePoint is one point of the cumulative daily series.
type CumulativePoint struct {
	Sales  float64 `json:"sales"`
	Budget float64 `json:"budget"`
}

// AggregateStoreID identifies the synthetic all-stores result.
const AggregateStoreID = "aggregate"

// StoreResult is the finished monthly report for one store, or for the
// synthetic all-stores pseudo store. It is created once and must not be
// mutated downstream.
type StoreResult struct {
	StoreID string `json:"store_id"`

	// Physically counted inventory. Nil when never entered.
	OpeningInventory *float64 `json:"opening_inventory"`
	ClosingInventory *float64 `json:"closing_inventory"`

	// Sales.
	TotalSales              float64 `json:"total_sales"`
	TotalCoreSales          float64 `json:"total_core_sales"`
	DeliverySalesPrice      float64 `json:"delivery_sales_price"`
	FlowerSalesPrice        float64 `json:"flower_sales_price"`
	DirectProduceSalesPrice float64 `json:"direct_produce_sales_price"`
	GrossSales              float64 `json:"gross_sales"`

	// Cost.
	TotalCost         float64 `json:"total_cost"`
	InventoryCost     float64 `json:"inventory_cost"`
	DeliverySalesCost float64 `json:"delivery_sales_cost"`

	// Inventory method: exact gross profit over all sales and purchases.
	// Nil unless both inventory counts are present.
	InvMethodCogs            *float64 `json:"inv_method_cogs"`
	InvMethodGrossProfit     *float64 `json:"inv_method_gross_profit"`
	InvMethodGrossProfitRate *float64 `json:"inv_method_gross_profit_rate"`

	// Estimation method: inventory-sales scope only, always computed.
	// The margin is an estimate, not an actual gross profit.
	EstMethodCogs             float64  `json:"est_method_cogs"`
	EstMethodMargin           float64  `json:"est_method_margin"`
	EstMethodMarginRate       float64  `json:"est_method_margin_rate"`
	EstMethodClosingInventory *float64 `json:"est_method_closing_inventory"`

	// Customers.
	TotalCustomers         int     `json:"total_customers"`
	AverageCustomersPerDay float64 `json:"average_customers_per_day"`

	// Markdowns.
	TotalDiscount    float64 `json:"total_discount"`
	DiscountRate     float64 `json:"discount_rate"`
	DiscountLossCost float64 `json:"discount_loss_cost"`

	// Markup.
	AverageMarkupRate float64 `json:"average_markup_rate"`
	CoreMarkupRate    float64 `json:"core_markup_rate"`

	// Consumables.
	TotalConsumable float64 `json:"total_consumable"`
	ConsumableRate  float64 `json:"consumable_rate"`

	// Budget.
	Budget                float64         `json:"budget"`
	GrossProfitBudget     float64         `json:"gross_profit_budget"`
	GrossProfitRateBudget float64         `json:"gross_profit_rate_budget"`
	BudgetDaily           map[int]float64 `json:"budget_daily"`

	// Daily data and roll-ups.
	Daily           map[int]*DailyRecord       `json:"daily"`
	CategoryTotals  map[Category]CostPricePair `json:"category_totals"`
	SupplierTotals  map[string]*SupplierTotal  `json:"supplier_totals"`
	TransferDetails TransferDetails            `json:"transfer_details"`

	// Progress and projection.
	ElapsedDays           int                     `json:"elapsed_days"`
	SalesDays             int                     `json:"sales_days"`
	AverageDailySales     float64                 `json:"average_daily_sales"`
	ProjectedSales        float64                 `json:"projected_sales"`
	ProjectedAchievement  float64                 `json:"projected_achievement"`
	BudgetAchievementRate float64                 `json:"budget_achievement_rate"`
	BudgetProgressRate    float64                 `json:"budget_progress_rate"`
	BudgetElapsedRate     float64                 `json:"budget_elapsed_rate"`
	RemainingBudget       float64                 `json:"remaining_budget"`
	DailyCumulative       map[int]CumulativePoint `json:"daily_cumulative"`
}

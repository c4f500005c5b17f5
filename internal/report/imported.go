package report

// Store is a retail location known to the import set.
type Store struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

// SupplierRef is a supplier as referenced by the purchase feed.
type SupplierRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupplierPurchase is one supplier's share of a store's daily purchases.
type SupplierPurchase struct {
	Name  string  `json:"name"`
	Cost  float64 `json:"cost"`
	Price float64 `json:"price"`
}

// PurchaseDay is one store's purchases for a single day, broken down by
// supplier, with the precomputed day total.
type PurchaseDay struct {
	Suppliers map[string]SupplierPurchase `json:"suppliers"`
	Total     CostPricePair               `json:"total"`
}

// SalesDay is one store's sales for a single day. Customers is optional and
// zero when the feed does not carry counts.
type SalesDay struct {
	Sales     float64 `json:"sales"`
	Customers int     `json:"customers,omitempty"`
}

// DiscountDay is one store's markdown activity for a single day. Discount is
// signed: markdowns are negative in the source feed.
type DiscountDay struct {
	Sales    float64 `json:"sales"`
	Discount float64 `json:"discount"`
}

// TransferEntry is a single directional movement of goods between locations.
type TransferEntry struct {
	Day         int     `json:"day"`
	FromStoreID string  `json:"from_store_id"`
	ToStoreID   string  `json:"to_store_id"`
	Cost        float64 `json:"cost"`
	Price       float64 `json:"price"`
}

// TransferDay groups a store's transfer entries for a single day by
// direction. The inbound feed fills the *In lists, the outbound feed the
// *Out lists.
type TransferDay struct {
	InterStoreIn       []TransferEntry `json:"inter_store_in"`
	InterStoreOut      []TransferEntry `json:"inter_store_out"`
	InterDepartmentIn  []TransferEntry `json:"inter_department_in"`
	InterDepartmentOut []TransferEntry `json:"inter_department_out"`
}

// SpecialSalesDay is a day of flower or direct-produce sales. These goods are
// delivered straight to the sales floor and never enter inventory.
type SpecialSalesDay struct {
	Cost  float64 `json:"cost"`
	Price float64 `json:"price"`
}

// ConsumableItem is a single consumable line item.
type ConsumableItem struct {
	AccountCode string  `json:"account_code"`
	ItemCode    string  `json:"item_code"`
	ItemName    string  `json:"item_name"`
	Quantity    float64 `json:"quantity"`
	Cost        float64 `json:"cost"`
}

// ConsumableDaily is one store's consumable spend for a single day.
type ConsumableDaily struct {
	Cost  float64          `json:"cost"`
	Items []ConsumableItem `json:"items"`
}

// InventoryConfig carries a store's manually entered inventory counts and
// gross-profit budget. Nil fields mean the figure was never entered.
type InventoryConfig struct {
	StoreID           string   `json:"store_id"`
	OpeningInventory  *float64 `json:"opening_inventory"`
	ClosingInventory  *float64 `json:"closing_inventory"`
	GrossProfitBudget *float64 `json:"gross_profit_budget"`
}

// BudgetData carries a store's sales budget: the month total plus an
// optional per-day curve.
type BudgetData struct {
	StoreID string          `json:"store_id"`
	Daily   map[int]float64 `json:"daily"`
	Total   float64         `json:"total"`
}

// ImportedData aggregates every parsed feed, keyed by store ID then day of
// month (1-based). Absence of a store or day means "no activity", never an
// error.
type ImportedData struct {
	Stores        map[string]Store                   `json:"stores"`
	Suppliers     map[string]SupplierRef             `json:"suppliers"`
	Purchase      map[string]map[int]PurchaseDay     `json:"purchase"`
	Sales         map[string]map[int]SalesDay        `json:"sales"`
	Discount      map[string]map[int]DiscountDay     `json:"discount"`
	TransferIn    map[string]map[int]TransferDay     `json:"transfer_in"`
	TransferOut   map[string]map[int]TransferDay     `json:"transfer_out"`
	Flowers       map[string]map[int]SpecialSalesDay `json:"flowers"`
	DirectProduce map[string]map[int]SpecialSalesDay `json:"direct_produce"`
	Consumables   map[string]map[int]ConsumableDaily `json:"consumables"`
	Inventory     map[string]InventoryConfig         `json:"inventory"`
	Budget        map[string]BudgetData              `json:"budget"`
}

// NewImportedData returns an ImportedData with every table allocated.
func NewImportedData() *ImportedData {
	return &ImportedData{
		Stores:        make(map[string]Store),
		Suppliers:     make(map[string]SupplierRef),
		Purchase:      make(map[string]map[int]PurchaseDay),
		Sales:         make(map[string]map[int]SalesDay),
		Discount:      make(map[string]map[int]DiscountDay),
		TransferIn:    make(map[string]map[int]TransferDay),
		TransferOut:   make(map[string]map[int]TransferDay),
		Flowers:       make(map[string]map[int]SpecialSalesDay),
		DirectProduce: make(map[string]map[int]SpecialSalesDay),
		Consumables:   make(map[string]map[int]ConsumableDaily),
		Inventory:     make(map[string]InventoryConfig),
		Budget:        make(map[string]BudgetData),
	}
}

// Settings carries the calculation-wide configuration.
type Settings struct {
	TargetYear            int                 `json:"target_year"`
	TargetMonth           int                 `json:"target_month" validate:"omitempty,min=1,max=12"`
	TargetGrossProfitRate float64             `json:"target_gross_profit_rate"`
	WarningThreshold      float64             `json:"warning_threshold"`
	FlowerCostRate        float64             `json:"flower_cost_rate"`
	DirectProduceCostRate float64             `json:"direct_produce_cost_rate"`
	DefaultMarkupRate     float64             `json:"default_markup_rate"`
	DefaultBudget         float64             `json:"default_budget"`
	SupplierCategoryMap   map[string]Category `json:"supplier_category_map"`
	// DataEndDay truncates the daily pass when the import set only covers
	// part of the month. Nil means the whole month is considered.
	DataEndDay *int `json:"data_end_day,omitempty"`
}

// Default calculation settings.
const (
	DefaultTargetGrossProfitRate = 0.25
	DefaultWarningThreshold      = 0.23
	DefaultFlowerCostRate        = 0.80
	DefaultDirectProduceCostRate = 0.85
	DefaultMarkupRate            = 0.26
	DefaultBudget                = 6_450_000
)

// DefaultSettings returns Settings populated with the stock defaults.
func DefaultSettings() Settings {
	return Settings{
		TargetGrossProfitRate: DefaultTargetGrossProfitRate,
		WarningThreshold:      DefaultWarningThreshold,
		FlowerCostRate:        DefaultFlowerCostRate,
		DirectProduceCostRate: DefaultDirectProduceCostRate,
		DefaultMarkupRate:     DefaultMarkupRate,
		DefaultBudget:         DefaultBudget,
		SupplierCategoryMap:   make(map[string]Category),
	}
}

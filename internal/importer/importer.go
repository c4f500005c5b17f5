// Package importer loads monthly feed workbooks into the engine's input
// tables. Each feed lives on a fixed sheet; rows that cannot be resolved to a
// store and day are skipped with a warning, never a hard error. Malformed
// numeric cells are coerced to zero.
package importer

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"storepulse/internal/metrics"
	"storepulse/internal/report"
)

// Sheet names expected in a monthly workbook. Missing sheets are treated as
// empty feeds.
const (
	SheetStores        = "Stores"
	SheetSales         = "Sales"
	SheetPurchases     = "Purchases"
	SheetDiscounts     = "Discounts"
	SheetTransfers     = "Transfers"
	SheetFlowers       = "Flowers"
	SheetDirectProduce = "DirectProduce"
	SheetConsumables   = "Consumables"
	SheetBudget        = "Budget"
	SheetInventory     = "Inventory"
)

// Transfer kinds accepted on the Transfers sheet.
const (
	transferKindStore      = "store"
	transferKindDepartment = "department"
)

// Importer reads monthly workbooks into ImportedData.
type Importer struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures an Importer.
type Option func(*Importer)

// WithMetrics installs Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Importer) { i.metrics = m }
}

// New creates an importer.
func New(logger *slog.Logger, opts ...Option) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	i := &Importer{
		logger: logger.With(slog.String("component", "importer")),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// LoadFile opens a workbook from disk and imports every feed sheet.
func (i *Importer) LoadFile(path string) (*report.ImportedData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		i.countImport("failure")
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	data, err := i.load(f)
	if err != nil {
		i.countImport("failure")
		return nil, err
	}
	i.countImport("success")
	return data, nil
}

func (i *Importer) load(f *excelize.File) (*report.ImportedData, error) {
	data := report.NewImportedData()

	i.loadStores(f, data)
	i.loadSales(f, data)
	i.loadPurchases(f, data)
	i.loadDiscounts(f, data)
	i.loadTransfers(f, data)
	i.loadSpecialSales(f, SheetFlowers, data.Flowers)
	i.loadSpecialSales(f, SheetDirectProduce, data.DirectProduce)
	i.loadConsumables(f, data)
	i.loadBudget(f, data)
	i.loadInventory(f, data)

	if len(data.Stores) == 0 {
		return nil, fmt.Errorf("workbook contains no stores")
	}
	return data, nil
}

// rows returns the data rows of a sheet, skipping the header row. A missing
// sheet yields no rows.
func (i *Importer) rows(f *excelize.File, sheet string) [][]string {
	rows, err := f.GetRows(sheet)
	if err != nil {
		i.logger.Debug("sheet not present", slog.String("sheet", sheet))
		return nil
	}
	if len(rows) <= 1 {
		return nil
	}
	return rows[1:]
}

func (i *Importer) loadStores(f *excelize.File, data *report.ImportedData) {
	for idx, row := range i.rows(f, SheetStores) {
		id := cell(row, 0)
		if id == "" {
			i.skipRow(SheetStores, idx, "missing store id")
			continue
		}
		data.Stores[id] = report.Store{ID: id, Name: cell(row, 1)}
		i.countRow(SheetStores, "ok")
	}
}

func (i *Importer) loadSales(f *excelize.File, data *report.ImportedData) {
	for idx, row := range i.rows(f, SheetSales) {
		storeID, day, ok := storeDay(row, 0, 1)
		if !ok {
			i.skipRow(SheetSales, idx, "unresolvable store/day")
			continue
		}
		if data.Sales[storeID] == nil {
			data.Sales[storeID] = make(map[int]report.SalesDay)
		}
		data.Sales[storeID][day] = report.SalesDay{
			Sales:     number(row, 2),
			Customers: int(number(row, 3)),
		}
		i.countRow(SheetSales, "ok")
	}
}

func (i *Importer) loadPurchases(f *excelize.File, data *report.ImportedData) {
	for idx, row := range i.rows(f, SheetPurchases) {
		storeID, day, ok := storeDay(row, 0, 1)
		if !ok {
			i.skipRow(SheetPurchases, idx, "unresolvable store/day")
			continue
		}
		code := cell(row, 2)
		if code == "" {
			i.skipRow(SheetPurchases, idx, "missing supplier code")
			continue
		}
		name := cell(row, 3)
		cost := number(row, 4)
		price := number(row, 5)

		data.Suppliers[code] = report.SupplierRef{Code: code, Name: name}

		if data.Purchase[storeID] == nil {
			data.Purchase[storeID] = make(map[int]report.PurchaseDay)
		}
		pd := data.Purchase[storeID][day]
		if pd.Suppliers == nil {
			pd.Suppliers = make(map[string]report.SupplierPurchase)
		}
		sp := pd.Suppliers[code]
		sp.Name = name
		sp.Cost += cost
		sp.Price += price
		pd.Suppliers[code] = sp
		pd.Total = pd.Total.Add(report.CostPricePair{Cost: cost, Price: price})
		data.Purchase[storeID][day] = pd
		i.countRow(SheetPurchases, "ok")
	}
}

func (i *Importer) loadDiscounts(f *excelize.File, data *report.ImportedData) {
	for idx, row := range i.rows(f, SheetDiscounts) {
		storeID, day, ok := storeDay(row, 0, 1)
		if !ok {
			i.skipRow(SheetDiscounts, idx, "unresolvable store/day")
			continue
		}
		if data.Discount[storeID] == nil {
			data.Discount[storeID] = make(map[int]report.DiscountDay)
		}
		data.Discount[storeID][day] = report.DiscountDay{
			Sales:    number(row, 2),
			Discount: number(row, 3),
		}
		i.countRow(SheetDiscounts, "ok")
	}
}

// loadTransfers fans each movement out to both endpoints: the sender gets an
// outbound entry, the receiver an inbound one.
func (i *Importer) loadTransfers(f *excelize.File, data *report.ImportedData) {
	for idx, row := range i.rows(f, SheetTransfers) {
		day, ok := dayNumber(cell(row, 0))
		if !ok {
			i.skipRow(SheetTransfers, idx, "unresolvable day")
			continue
		}
		from := cell(row, 1)
		to := cell(row, 2)
		if from == "" || to == "" {
			i.skipRow(SheetTransfers, idx, "missing endpoint")
			continue
		}
		kind := strings.ToLower(cell(row, 3))
		if kind != transferKindStore && kind != transferKindDepartment {
			i.skipRow(SheetTransfers, idx, "unknown transfer kind "+kind)
			continue
		}

		entry := report.TransferEntry{
			Day:         day,
			FromStoreID: from,
			ToStoreID:   to,
			Cost:        number(row, 4),
			Price:       number(row, 5),
		}

		if data.TransferOut[from] == nil {
			data.TransferOut[from] = make(map[int]report.TransferDay)
		}
		out := data.TransferOut[from][day]
		if kind == transferKindStore {
			out.InterStoreOut = append(out.InterStoreOut, entry)
		} else {
			out.InterDepartmentOut = append(out.InterDepartmentOut, entry)
		}
		data.TransferOut[from][day] = out

		if data.TransferIn[to] == nil {
			data.TransferIn[to] = make(map[int]report.TransferDay)
		}
		in := data.TransferIn[to][day]
		if kind == transferKindStore {
			in.InterStoreIn = append(in.InterStoreIn, entry)
		} else {
			in.InterDepartmentIn = append(in.InterDepartmentIn, entry)
		}
		data.TransferIn[to][day] = in
		i.countRow(SheetTransfers, "ok")
	}
}

func (i *Importer) loadSpecialSales(f *excelize.File, sheet string, table map[string]map[int]report.SpecialSalesDay) {
	for idx, row := range i.rows(f, sheet) {
		storeID, day, ok := storeDay(row, 0, 1)
		if !ok {
			i.skipRow(sheet, idx, "unresolvable store/day")
			continue
		}
		if table[storeID] == nil {
			table[storeID] = make(map[int]report.SpecialSalesDay)
		}
		existing := table[storeID][day]
		existing.Cost += number(row, 2)
		existing.Price += number(row, 3)
		table[storeID][day] = existing
		i.countRow(sheet, "ok")
	}
}

func (i *Importer) loadConsumables(f *excelize.File, data *report.ImportedData) {
	for idx, row := range i.rows(f, SheetConsumables) {
		storeID, day, ok := storeDay(row, 0, 1)
		if !ok {
			i.skipRow(SheetConsumables, idx, "unresolvable store/day")
			continue
		}
		item := report.ConsumableItem{
			AccountCode: cell(row, 2),
			ItemCode:    cell(row, 3),
			ItemName:    cell(row, 4),
			Quantity:    number(row, 5),
			Cost:        number(row, 6),
		}
		if data.Consumables[storeID] == nil {
			data.Consumables[storeID] = make(map[int]report.ConsumableDaily)
		}
		daily := data.Consumables[storeID][day]
		daily.Cost += item.Cost
		daily.Items = append(daily.Items, item)
		data.Consumables[storeID][day] = daily
		i.countRow(SheetConsumables, "ok")
	}
}

// loadBudget reads the per-day budget curve. Rows with an empty day column
// set the month total; otherwise totals accumulate from the daily figures.
func (i *Importer) loadBudget(f *excelize.File, data *report.ImportedData) {
	for idx, row := range i.rows(f, SheetBudget) {
		storeID := cell(row, 0)
		if storeID == "" {
			i.skipRow(SheetBudget, idx, "missing store id")
			continue
		}
		budget := data.Budget[storeID]
		budget.StoreID = storeID
		if budget.Daily == nil {
			budget.Daily = make(map[int]float64)
		}

		amount := number(row, 2)
		if dayCell := cell(row, 1); dayCell == "" {
			budget.Total = amount
		} else {
			day, ok := dayNumber(dayCell)
			if !ok {
				i.skipRow(SheetBudget, idx, "unresolvable day")
				continue
			}
			budget.Daily[day] += amount
			budget.Total += amount
		}
		data.Budget[storeID] = budget
		i.countRow(SheetBudget, "ok")
	}
}

// loadInventory keeps blank count cells as nil so the inventory valuation
// method stays undefined for stores that never counted.
func (i *Importer) loadInventory(f *excelize.File, data *report.ImportedData) {
	for idx, row := range i.rows(f, SheetInventory) {
		storeID := cell(row, 0)
		if storeID == "" {
			i.skipRow(SheetInventory, idx, "missing store id")
			continue
		}
		data.Inventory[storeID] = report.InventoryConfig{
			StoreID:           storeID,
			OpeningInventory:  optionalNumber(row, 1),
			ClosingInventory:  optionalNumber(row, 2),
			GrossProfitBudget: optionalNumber(row, 3),
		}
		i.countRow(SheetInventory, "ok")
	}
}

func (i *Importer) skipRow(sheet string, idx int, reason string) {
	// idx is zero-based over data rows; +2 restores the spreadsheet row number
	i.logger.Warn("skipping row",
		slog.String("sheet", sheet),
		slog.Int("row", idx+2),
		slog.String("reason", reason))
	i.countRow(sheet, "skipped")
}

func (i *Importer) countRow(sheet, result string) {
	if i.metrics != nil {
		i.metrics.ImportRowsTotal.WithLabelValues(sheet, result).Inc()
	}
}

func (i *Importer) countImport(outcome string) {
	if i.metrics != nil {
		i.metrics.ImportsTotal.WithLabelValues(outcome).Inc()
	}
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// number parses a numeric cell. Malformed or missing values become zero.
func number(row []string, idx int) float64 {
	v, err := strconv.ParseFloat(cell(row, idx), 64)
	if err != nil {
		return 0
	}
	return report.SafeNumber(v)
}

// optionalNumber distinguishes blank from zero.
func optionalNumber(row []string, idx int) *float64 {
	raw := cell(row, idx)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	v = report.SafeNumber(v)
	return &v
}

func storeDay(row []string, storeIdx, dayIdx int) (string, int, bool) {
	storeID := cell(row, storeIdx)
	if storeID == "" {
		return "", 0, false
	}
	day, ok := dayNumber(cell(row, dayIdx))
	if !ok {
		return "", 0, false
	}
	return storeID, day, true
}

func dayNumber(raw string) (int, bool) {
	day, err := strconv.Atoi(raw)
	if err != nil || day < 1 || day > 31 {
		return 0, false
	}
	return day, true
}

// Package report implements the monthly store profitability engine.
//
// The engine turns per-store, per-day import tables into a finished monthly
// report (StoreResult) and merges several store reports into a combined
// all-stores report. Cost of goods sold is computed with two independent
// methods that are always surfaced side by side:
//
//   - Inventory method: opening inventory + purchases - closing inventory.
//     Exact, but requires physically counted inventory figures.
//   - Estimation method: approximates COGS and closing inventory from core
//     sales, the markup rate and the discount rate. Used when counts are
//     missing, and as a cross-check against the inventory method.
//
// Every function in this package is pure and side-effect free; the Calculator
// type only adds logging and per-store parallelism on top.
package report

package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ProgressFunc is invoked after each store's result is assembled.
type ProgressFunc func(storeID string, completed, total int)

// Calculator runs the per-store pipeline and the cross-store aggregation.
// Per-store computation is embarrassingly parallel; the aggregator runs only
// after every store result is available.
type Calculator struct {
	logger         *slog.Logger
	maxConcurrency int
	progress       ProgressFunc
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithMaxConcurrency bounds the number of stores computed in parallel.
func WithMaxConcurrency(n int) CalculatorOption {
	return func(c *Calculator) {
		if n > 0 {
			c.maxConcurrency = n
		}
	}
}

// WithProgress installs a per-store completion callback.
func WithProgress(fn ProgressFunc) CalculatorOption {
	return func(c *Calculator) { c.progress = fn }
}

// NewCalculator creates a calculator.
func NewCalculator(logger *slog.Logger, opts ...CalculatorOption) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Calculator{
		logger:         logger.With(slog.String("component", "calculator")),
		maxConcurrency: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// effectiveDays applies the data-end-day cutoff to the builder pass. Budget
// analysis still runs against the full month.
func effectiveDays(settings Settings, daysInMonth int) int {
	if settings.DataEndDay != nil && *settings.DataEndDay < daysInMonth {
		return *settings.DataEndDay
	}
	return daysInMonth
}

// CalculateStore runs the full pipeline for a single store.
func CalculateStore(storeID string, data *ImportedData, settings Settings, daysInMonth int) *StoreResult {
	acc := BuildDailyRecords(storeID, data, effectiveDays(settings, daysInMonth))
	return AssembleStoreResult(storeID, acc, data, settings, daysInMonth)
}

// CalculateAll computes every store's result plus the synthetic all-stores
// aggregate, returned under AggregateStoreID. The input is never mutated;
// the same input always produces the same output.
func (c *Calculator) CalculateAll(ctx context.Context, data *ImportedData, settings Settings, daysInMonth int) (map[string]*StoreResult, error) {
	if data == nil {
		return nil, fmt.Errorf("calculate: imported data is nil")
	}
	if daysInMonth < 1 || daysInMonth > 31 {
		return nil, fmt.Errorf("calculate: days in month %d out of range", daysInMonth)
	}

	storeIDs := make([]string, 0, len(data.Stores))
	for id := range data.Stores {
		storeIDs = append(storeIDs, id)
	}
	sort.Strings(storeIDs)

	start := time.Now()
	c.logger.InfoContext(ctx, "starting monthly calculation",
		slog.Int("stores", len(storeIDs)),
		slog.Int("days_in_month", daysInMonth),
	)

	results := make(map[string]*StoreResult, len(storeIDs)+1)
	var mu sync.Mutex
	var completed int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrency)
	for _, storeID := range storeIDs {
		storeID := storeID
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			result := CalculateStore(storeID, data, settings, daysInMonth)

			mu.Lock()
			results[storeID] = result
			completed++
			done := completed
			mu.Unlock()

			c.logger.DebugContext(gctx, "store calculated",
				slog.String("store_id", storeID),
				slog.Float64("total_sales", result.TotalSales),
				slog.Int("elapsed_days", result.ElapsedDays),
			)
			if c.progress != nil {
				c.progress(storeID, done, len(storeIDs))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("calculate stores: %w", err)
	}

	// Aggregation join: runs strictly after every per-store result.
	if len(storeIDs) > 0 {
		perStore := make([]*StoreResult, 0, len(storeIDs))
		for _, id := range storeIDs {
			perStore = append(perStore, results[id])
		}
		agg, err := AggregateStoreResults(perStore, daysInMonth)
		if err != nil {
			return nil, fmt.Errorf("aggregate stores: %w", err)
		}
		results[AggregateStoreID] = agg
	}

	c.logger.InfoContext(ctx, "monthly calculation finished",
		slog.Int("stores", len(storeIDs)),
		slog.Duration("duration", time.Since(start)),
	)
	return results, nil
}

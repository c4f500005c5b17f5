package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"storepulse/internal/config"
	"storepulse/internal/importer"
	"storepulse/internal/report"
)

type output struct {
	GeneratedAt time.Time                        `json:"generated_at"`
	DaysInMonth int                              `json:"days_in_month"`
	Results     map[string]*report.StoreResult   `json:"results"`
	Forecasts   map[string]report.ForecastResult `json:"forecasts,omitempty"`
}

func main() {
	inPath := flag.String("in", "", "input workbook (.xlsx) with the monthly feeds")
	outPath := flag.String("out", "", "output JSON file (defaults to stdout)")
	days := flag.Int("days", 0, "days in the reporting month (1-31)")
	year := flag.Int("year", 0, "reporting year, enables the forecast layer with -month")
	month := flag.Int("month", 0, "reporting month (1-12), enables the forecast layer with -year")
	dataEnd := flag.Int("data-end", 0, "ignore feed rows after this day (0 = no cutoff)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	logger := newLogger(*verbose)

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: monthlyreport -in workbook.xlsx -days N [-out report.json] [-year Y -month M]")
		os.Exit(2)
	}
	if *days < 1 || *days > 31 {
		fmt.Fprintln(os.Stderr, "-days must be between 1 and 31")
		os.Exit(2)
	}

	if err := run(logger, *inPath, *outPath, *days, *year, *month, *dataEnd); err != nil {
		logger.Error("report generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func run(logger *slog.Logger, inPath, outPath string, days, year, month, dataEnd int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	settings := cfg.Calculation.Settings()
	if dataEnd > 0 {
		settings.DataEndDay = &dataEnd
	}

	data, err := importer.New(logger).LoadFile(inPath)
	if err != nil {
		return fmt.Errorf("load workbook: %w", err)
	}
	logger.Info("workbook loaded",
		slog.String("path", inPath),
		slog.Int("stores", len(data.Stores)))

	calculator := report.NewCalculator(logger,
		report.WithMaxConcurrency(cfg.Calculation.MaxConcurrency))

	results, err := calculator.CalculateAll(context.Background(), data, settings, days)
	if err != nil {
		return fmt.Errorf("calculate: %w", err)
	}

	out := output{
		GeneratedAt: time.Now().UTC(),
		DaysInMonth: days,
		Results:     results,
	}
	if year != 0 && month >= 1 && month <= 12 {
		out.Forecasts = buildForecasts(results, year, time.Month(month))
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if outPath == "" {
		_, err = os.Stdout.Write(append(raw, '\n'))
		return err
	}
	if err := os.WriteFile(outPath, raw, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Info("report written", slog.String("path", outPath))
	return nil
}

func buildForecasts(results map[string]*report.StoreResult, year int, month time.Month) map[string]report.ForecastResult {
	forecasts := make(map[string]report.ForecastResult, len(results))
	for storeID, result := range results {
		dailySales := make(map[int]float64, len(result.Daily))
		dailyGrossProfit := make(map[int]float64, len(result.Daily))
		for day, rec := range result.Daily {
			dailySales[day] = rec.Sales
			dailyGrossProfit[day] = rec.Sales * result.EstMethodMarginRate
		}
		forecasts[storeID] = report.CalculateForecast(report.ForecastInput{
			Year:             year,
			Month:            month,
			DailySales:       dailySales,
			DailyGrossProfit: dailyGrossProfit,
		})
	}
	return forecasts
}

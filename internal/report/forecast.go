package report

import (
	"math"
	"sort"
	"time"
)

// AnomalyThreshold is the default z-score above which a day counts as an
// anomaly.
const AnomalyThreshold = 2.0

// WeeklySummary aggregates one Monday-start week of the month.
type WeeklySummary struct {
	WeekNumber       int     `json:"week_number"`
	StartDay         int     `json:"start_day"`
	EndDay           int     `json:"end_day"`
	TotalSales       float64 `json:"total_sales"`
	TotalGrossProfit float64 `json:"total_gross_profit"`
	GrossProfitRate  float64 `json:"gross_profit_rate"`
	Days             int     `json:"days"`
}

// DayOfWeekAverage is the average sales for one weekday across the month.
type DayOfWeekAverage struct {
	DayOfWeek    time.Weekday `json:"day_of_week"`
	AverageSales float64      `json:"average_sales"`
	Count        int          `json:"count"`
}

// Anomaly flags a day whose sales deviate from the monthly mean by more than
// the z-score threshold.
type Anomaly struct {
	Day    int     `json:"day"`
	Value  float64 `json:"value"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	ZScore float64 `json:"z_score"`
}

// ForecastInput feeds the forecast layer from a StoreResult's daily series.
type ForecastInput struct {
	Year             int
	Month            time.Month
	DailySales       map[int]float64
	DailyGrossProfit map[int]float64
}

// ForecastResult bundles the forecast layer outputs.
type ForecastResult struct {
	WeeklySummaries  []WeeklySummary    `json:"weekly_summaries"`
	DayOfWeekAverages []DayOfWeekAverage `json:"day_of_week_averages"`
	Anomalies        []Anomaly          `json:"anomalies"`
}

// WeekRange is a Monday-start week within a month.
type WeekRange struct {
	WeekNumber int
	StartDay   int
	EndDay     int
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MeanStdDev returns the mean and population standard deviation of values.
func MeanStdDev(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

// WeekRanges splits a month into Monday-start weeks. The first and last week
// may be partial.
func WeekRanges(year int, month time.Month) []WeekRange {
	days := daysIn(year, month)
	var weeks []WeekRange
	weekNum := 1
	day := 1
	for day <= days {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		// Monday=0 .. Sunday=6.
		dow := (int(date.Weekday()) + 6) % 7
		endDay := day + (6 - dow)
		if endDay > days {
			endDay = days
		}
		weeks = append(weeks, WeekRange{WeekNumber: weekNum, StartDay: day, EndDay: endDay})
		weekNum++
		day = endDay + 1
	}
	return weeks
}

// CalculateWeeklySummaries totals sales and gross profit per week. Days with
// sales count toward the week's active-day count.
func CalculateWeeklySummaries(in ForecastInput) []WeeklySummary {
	ranges := WeekRanges(in.Year, in.Month)
	summaries := make([]WeeklySummary, 0, len(ranges))
	for _, wr := range ranges {
		var sales, grossProfit float64
		var days int
		for d := wr.StartDay; d <= wr.EndDay; d++ {
			s := in.DailySales[d]
			if s > 0 {
				days++
			}
			sales += s
			grossProfit += in.DailyGrossProfit[d]
		}
		summaries = append(summaries, WeeklySummary{
			WeekNumber:       wr.WeekNumber,
			StartDay:         wr.StartDay,
			EndDay:           wr.EndDay,
			TotalSales:       sales,
			TotalGrossProfit: grossProfit,
			GrossProfitRate:  SafeDivide(grossProfit, sales, 0),
			Days:             days,
		})
	}
	return summaries
}

// CalculateDayOfWeekAverages averages sales per weekday over the days that
// actually sold.
func CalculateDayOfWeekAverages(in ForecastInput) []DayOfWeekAverage {
	var totals [7]float64
	var counts [7]int
	days := daysIn(in.Year, in.Month)
	for d := 1; d <= days; d++ {
		sales := in.DailySales[d]
		if sales <= 0 {
			continue
		}
		dow := time.Date(in.Year, in.Month, d, 0, 0, 0, 0, time.UTC).Weekday()
		totals[dow] += sales
		counts[dow]++
	}
	averages := make([]DayOfWeekAverage, 7)
	for i := range averages {
		averages[i] = DayOfWeekAverage{
			DayOfWeek:    time.Weekday(i),
			AverageSales: SafeDivide(totals[i], float64(counts[i]), 0),
			Count:        counts[i],
		}
	}
	return averages
}

// DetectAnomalies flags sales days whose z-score exceeds threshold. Fewer
// than three observations, or a zero standard deviation, yield no anomalies.
func DetectAnomalies(dailySales map[int]float64, threshold float64) []Anomaly {
	days := make([]int, 0, len(dailySales))
	for d, v := range dailySales {
		if v > 0 {
			days = append(days, d)
		}
	}
	if len(days) < 3 {
		return nil
	}
	sort.Ints(days)
	values := make([]float64, len(days))
	for i, d := range days {
		values[i] = dailySales[d]
	}

	mean, stdDev := MeanStdDev(values)
	if stdDev == 0 {
		return nil
	}

	var anomalies []Anomaly
	for i, d := range days {
		z := (values[i] - mean) / stdDev
		if math.Abs(z) > threshold {
			anomalies = append(anomalies, Anomaly{
				Day:    d,
				Value:  values[i],
				Mean:   mean,
				StdDev: stdDev,
				ZScore: z,
			})
		}
	}
	return anomalies
}

// CalculateForecast runs the whole forecast layer over one daily series.
func CalculateForecast(in ForecastInput) ForecastResult {
	return ForecastResult{
		WeeklySummaries:   CalculateWeeklySummaries(in),
		DayOfWeekAverages: CalculateDayOfWeekAverages(in),
		Anomalies:         DetectAnomalies(in.DailySales, AnomalyThreshold),
	}
}

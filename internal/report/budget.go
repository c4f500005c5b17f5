package report

// BudgetAnalysisInput feeds the budget progress analysis.
type BudgetAnalysisInput struct {
	TotalSales  float64
	Budget      float64
	BudgetDaily map[int]float64
	SalesDaily  map[int]float64
	ElapsedDays int
	SalesDays   int
	DaysInMonth int
}

// BudgetAnalysisResult holds the budget progress figures.
//
// AchievementRate and ProgressRate measure different things and must never
// be conflated: achievement divides by the full month budget, progress
// divides by the budget accrued through the elapsed days only.
type BudgetAnalysisResult struct {
	BudgetAchievementRate float64
	BudgetProgressRate    float64
	BudgetElapsedRate     float64
	AverageDailySales     float64
	ProjectedSales        float64
	ProjectedAchievement  float64
	RemainingBudget       float64
	DailyCumulative       map[int]CumulativePoint
}

// CalculateBudgetAnalysis derives achievement, pacing and projection figures
// from the monthly totals and the per-day budget curve.
func CalculateBudgetAnalysis(in BudgetAnalysisInput) BudgetAnalysisResult {
	achievementRate := SafeDivide(in.TotalSales, in.Budget, 0)

	var cumulativeBudget float64
	for d := 1; d <= in.ElapsedDays; d++ {
		cumulativeBudget += in.BudgetDaily[d]
	}
	progressRate := SafeDivide(in.TotalSales, cumulativeBudget, 0)
	elapsedRate := SafeDivide(cumulativeBudget, in.Budget, 0)

	// Projection runs on sales days, not calendar days: the average is per
	// day the store actually sold.
	averageDailySales := SafeDivide(in.TotalSales, float64(in.SalesDays), 0)
	remainingDays := in.DaysInMonth - in.ElapsedDays
	projectedSales := in.TotalSales + averageDailySales*float64(remainingDays)
	projectedAchievement := SafeDivide(projectedSales, in.Budget, 0)

	dailyCumulative := make(map[int]CumulativePoint, in.DaysInMonth)
	var cumSales, cumBudget float64
	for d := 1; d <= in.DaysInMonth; d++ {
		cumSales += in.SalesDaily[d]
		cumBudget += in.BudgetDaily[d]
		dailyCumulative[d] = CumulativePoint{Sales: cumSales, Budget: cumBudget}
	}

	return BudgetAnalysisResult{
		BudgetAchievementRate: achievementRate,
		BudgetProgressRate:    progressRate,
		BudgetElapsedRate:     elapsedRate,
		AverageDailySales:     averageDailySales,
		ProjectedSales:        projectedSales,
		ProjectedAchievement:  projectedAchievement,
		RemainingBudget:       in.Budget - in.TotalSales,
		DailyCumulative:       dailyCumulative,
	}
}

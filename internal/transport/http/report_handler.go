package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "storepulse/internal/errors"
	"storepulse/internal/metrics"
	"storepulse/internal/report"
)

// CalculateRequest is the synchronous calculation payload. A nil settings
// block falls back to the server defaults.
type CalculateRequest struct {
	Data            *report.ImportedData `json:"data" validate:"required"`
	Settings        *report.Settings     `json:"settings"`
	DaysInMonth     int                  `json:"days_in_month" validate:"required,min=1,max=31"`
	IncludeForecast bool                 `json:"include_forecast"`
	Year            int                  `json:"year" validate:"omitempty,min=2000,max=2100"`
	Month           int                  `json:"month" validate:"omitempty,min=1,max=12"`
}

// Bind implements render.Binder
func (req *CalculateRequest) Bind(r *http.Request) error {
	return nil
}

// CalculateResponse carries the per-store results plus the synthetic
// aggregate, and optionally the forecast layer.
type CalculateResponse struct {
	Results   map[string]*report.StoreResult   `json:"results"`
	Forecasts map[string]report.ForecastResult `json:"forecasts,omitempty"`
	Duration  string                           `json:"duration"`
}

// ReportHandler handles calculation HTTP requests
type ReportHandler struct {
	calculator      *report.Calculator
	defaultSettings report.Settings
	logger          *slog.Logger
	errorHandler    *apierrors.ErrorHandler
	validate        *validator.Validate
	metrics         *metrics.Metrics
}

// NewReportHandler creates a new report handler
func NewReportHandler(calculator *report.Calculator, defaults report.Settings, m *metrics.Metrics, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		calculator:      calculator,
		defaultSettings: defaults,
		logger:          logger,
		errorHandler:    apierrors.NewErrorHandler(logger, false),
		validate:        validator.New(),
		metrics:         m,
	}
}

// RegisterRoutes registers the calculation routes
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/calculate", h.Calculate)
}

// Calculate runs a full monthly calculation synchronously
func (h *ReportHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CalculateRequest
	if err := render.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.errorHandler.HandleError(w, r, validationError(err))
		return
	}

	settings := h.defaultSettings
	if req.Settings != nil {
		settings = *req.Settings
	}

	h.logger.InfoContext(ctx, "calculation requested",
		slog.Int("stores", len(req.Data.Stores)),
		slog.Int("days_in_month", req.DaysInMonth))

	start := time.Now()
	results, err := h.calculator.CalculateAll(ctx, req.Data, settings, req.DaysInMonth)
	if h.metrics != nil {
		h.metrics.ObserveCalculation(time.Since(start), len(results), err)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrCalculationExecution(err))
		return
	}

	resp := &CalculateResponse{
		Results:  results,
		Duration: time.Since(start).String(),
	}
	if req.IncludeForecast && req.Year != 0 && req.Month != 0 {
		resp.Forecasts = buildForecasts(results, req.Year, time.Month(req.Month))
	}

	render.JSON(w, r, resp)
}

// buildForecasts runs the forecast layer over each store's daily series.
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

// validationError converts validator output to field-level API errors.
func validationError(err error) *apierrors.APIError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.InvalidRequestWithError(err)
	}
	fields := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: fe.Tag(),
		})
	}
	return apierrors.NewValidationErrors(fields)
}

package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "storepulse/internal/errors"
	"storepulse/internal/jobs"
	"storepulse/internal/report"
)

// JobRequest is the async calculation submission payload
type JobRequest struct {
	Data        *report.ImportedData `json:"data" validate:"required"`
	Settings    *report.Settings     `json:"settings"`
	DaysInMonth int                  `json:"days_in_month" validate:"required,min=1,max=31"`
}

// Bind implements render.Binder
func (req *JobRequest) Bind(r *http.Request) error {
	return nil
}

// JobsHandler handles async calculation job requests
type JobsHandler struct {
	queue           *jobs.Queue
	defaultSettings report.Settings
	logger          *slog.Logger
	errorHandler    *apierrors.ErrorHandler
	validate        *validator.Validate
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(queue *jobs.Queue, defaults report.Settings, logger *slog.Logger) *JobsHandler {
	return &JobsHandler{
		queue:           queue,
		defaultSettings: defaults,
		logger:          logger,
		errorHandler:    apierrors.NewErrorHandler(logger, false),
		validate:        validator.New(),
	}
}

// RegisterRoutes registers the job routes
func (h *JobsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", h.Submit)
		r.Get("/", h.List)
		r.Get("/stats", h.Stats)
		r.Get("/{jobID}", h.Get)
		r.Delete("/{jobID}", h.Cancel)
	})
}

// Submit enqueues a calculation job and returns it with 202 Accepted
func (h *JobsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req JobRequest
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

	job, err := h.queue.Enqueue(&jobs.Request{
		Data:        req.Data,
		Settings:    settings,
		DaysInMonth: req.DaysInMonth,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrQueueFull)
		return
	}

	h.logger.InfoContext(ctx, "calculation job submitted",
		slog.String("job_id", job.ID),
		slog.Int("stores", len(req.Data.Stores)))

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, job)
}

// Get returns a job by ID, including results once completed
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.queue.GetJob(jobID)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrJobNotFound)
		return
	}

	render.JSON(w, r, job)
}

// List returns recent jobs, optionally filtered by status
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := jobs.Filter{
		Status: jobs.Status(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", "must be a positive integer"))
			return
		}
		filter.Limit = limit
	}

	list, err := h.queue.ListJobs(filter)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{"jobs": list, "count": len(list)})
}

// Cancel cancels a pending job
func (h *JobsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	if err := h.queue.CancelJob(jobID); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusConflict, "CONFLICT", "Job cannot be cancelled", err.Error()))
		return
	}

	render.JSON(w, r, map[string]string{"status": "cancelled", "job_id": jobID})
}

// Stats returns queue statistics
func (h *JobsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.queue.Stats())
}

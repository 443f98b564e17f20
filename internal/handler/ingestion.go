package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/document-manager/internal/model"
	"github.com/iliyamo/document-manager/internal/repository"
	"github.com/iliyamo/document-manager/internal/service"
)

// IngestionHandler implements the ingestion-job endpoints.  Trigger creates
// the job and hands it to the dispatcher without waiting for the external
// call; Update is the webhook the external worker reports back through.
type IngestionHandler struct {
	Jobs       IngestionStore
	Dispatcher *service.Dispatcher
}

func NewIngestionHandler(jobs IngestionStore, d *service.Dispatcher) *IngestionHandler {
	return &IngestionHandler{Jobs: jobs, Dispatcher: d}
}

type triggerReq struct {
	SourceType    string         `json:"sourceType"`
	SourceRef     string         `json:"sourceRef"`
	Params        map[string]any `json:"params"`
	CorrelationID string         `json:"correlationId"`
}

type updateJobReq struct {
	Status  *string `json:"status"`
	Message *string `json:"message"`
}

// Trigger handles POST /ingestion/trigger.  The job is returned in PENDING;
// the dispatch outcome is observable through GET /ingestion/:id and the
// webhook, never through this response.
func (h *IngestionHandler) Trigger(c echo.Context) error {
	var req triggerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.SourceType = strings.TrimSpace(req.SourceType)
	req.SourceRef = strings.TrimSpace(req.SourceRef)
	if req.SourceType == "" || req.SourceRef == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sourceType/sourceRef required"})
	}

	job := model.IngestionJob{
		CorrelationID: strings.TrimSpace(req.CorrelationID),
		SourceType:    req.SourceType,
		SourceRef:     req.SourceRef,
		Params:        req.Params,
		Status:        model.IngestionPending,
	}
	if err := h.Jobs.Create(c.Request().Context(), &job); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create job failed"})
	}

	h.Dispatcher.Enqueue(job)

	return c.JSON(http.StatusCreated, job)
}

// List handles GET /ingestion, newest-first.
func (h *IngestionHandler) List(c echo.Context) error {
	jobs, err := h.Jobs.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if jobs == nil {
		jobs = []model.IngestionJob{}
	}
	return c.JSON(http.StatusOK, jobs)
}

// Get handles GET /ingestion/:id.
func (h *IngestionHandler) Get(c echo.Context) error {
	job, err := h.Jobs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ingestion job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, job)
}

// Update handles PATCH /ingestion/:id, the status webhook.  The update is
// partial and last-write-wins: entering RUNNING stamps startedAt once,
// entering a terminal state stamps finishedAt once, and both timestamps
// survive later writes.
func (h *IngestionHandler) Update(c echo.Context) error {
	var req updateJobReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	job, err := h.Jobs.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ingestion job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if req.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*req.Status))
		if !model.ValidIngestionStatus(status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
		}
		now := time.Now().UTC().Truncate(time.Second)
		if status == model.IngestionRunning && job.StartedAt == nil {
			job.StartedAt = &now
		}
		if model.TerminalIngestionStatus(status) && job.FinishedAt == nil {
			job.FinishedAt = &now
		}
		job.Status = status
	}
	if req.Message != nil {
		job.Message = *req.Message
	}

	if err := h.Jobs.Save(ctx, &job); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ingestion job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, job)
}

package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/askdoc/askdoc-api/internal/api/shared"
	"github.com/askdoc/askdoc-api/internal/domain"
	"github.com/askdoc/askdoc-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PendingResponseText is returned in place of a real response while a job
// has not reached a terminal state yet.
const PendingResponseText = "Response not processed yet. Come back later."

// SubmitQueryRequest contains the payload for submitting a query.
type SubmitQueryRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1"`
}

// QueryJobResponse is the wire representation of a job's observable state.
// Response and Error are never both non-null.
type QueryJobResponse struct {
	ID       string  `json:"id"`
	Response *string `json:"response"`
	Error    *string `json:"error"`
}

// QueryHandler handles query submission and status polling.
type QueryHandler struct {
	jobService service.JobService
	logger     *slog.Logger
}

// NewQueryHandler creates a new QueryHandler with the given dependencies.
func NewQueryHandler(jobService service.JobService, logger *slog.Logger) *QueryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryHandler{
		jobService: jobService,
		logger:     logger.With("component", "query_handler"),
	}
}

// SubmitQuery handles POST /api/queries.
// It durably creates a pending job, schedules background execution, and
// returns 202 with the job's state at the instant of submission. The
// returned response field carries the pending placeholder, never the
// eventual result.
func (h *QueryHandler) SubmitQuery(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With(slog.String("trace_id", shared.GetTraceID(r.Context())))

	var req SubmitQueryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusBadRequest, "Prompt must not be empty", err)
		return
	}

	job, err := h.jobService.SubmitQuery(r.Context(), req.Prompt)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("query submitted", slog.String("job_id", job.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusAccepted, toJobResponse(job))
}

// GetQueryStatus handles GET /api/queries/{id}.
// Polling a pending job returns the placeholder response; polling a
// terminal job returns the same response/error pair on every call.
func (h *QueryHandler) GetQueryStatus(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")

	jobID, err := uuid.Parse(idParam)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusBadRequest, "Invalid job ID format", err)
		return
	}

	job, err := h.jobService.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			// The not-found response names the id that was asked for so a
			// polling client can tell which of its jobs is unknown.
			shared.RespondWithErrorAndLog(w, r,
				http.StatusNotFound, fmt.Sprintf("Job %s not found", jobID), err)
			return
		}
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toJobResponse(job))
}

// toJobResponse projects a job onto its wire representation. Pending jobs
// get the placeholder text so callers always see a non-empty response or
// an error once terminal.
func toJobResponse(job *domain.Job) QueryJobResponse {
	resp := QueryJobResponse{
		ID:       job.ID.String(),
		Response: job.Response,
		Error:    job.Error,
	}

	if job.Status == domain.JobStatusPending {
		placeholder := PendingResponseText
		resp.Response = &placeholder
	}

	return resp
}

package http

import (
	"net/http"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/job"
	"github.com/cmlabs-hris/job-alert-agent/internal/handler/http/response"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/validator"
)

type JobHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	Dashboard(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
}

type jobHandlerImpl struct {
	jobService job.Service
}

func NewJobHandler(jobService job.Service) JobHandler {
	return &jobHandlerImpl{jobService: jobService}
}

// List returns the job feed, optionally filtered by category
func (h *jobHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	params := job.ListParams{
		Category: r.URL.Query().Get("category"),
		Limit:    getIntQueryParam(r, "limit", 0),
	}
	if err := validator.Struct(params); err != nil {
		response.HandleError(w, err)
		return
	}

	jobs, err := h.jobService.List(r.Context(), params)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, jobs, &response.Meta{Limit: params.Limit, TotalItems: int64(len(jobs))})
}

func (h *jobHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.jobService.Stats(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, stats)
}

func (h *jobHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.jobService.UserDashboard(r.Context(), r.URL.Query().Get("time_range"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, dashboard)
}

// Refresh drops cached reads so the next request hits the backend
func (h *jobHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	h.jobService.Invalidate()
	response.SuccessWithMessage(w, "Job cache cleared", nil)
}

package http

import (
	"net/http"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/worker"
	"github.com/cmlabs-hris/job-alert-agent/internal/handler/http/response"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/clients"
	"github.com/go-chi/chi/v5"
)

// ClientsHandler lets application windows announce themselves
type ClientsHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	Navigate(w http.ResponseWriter, r *http.Request)
	Remove(w http.ResponseWriter, r *http.Request)
}

type clientsHandlerImpl struct {
	registry *clients.Registry
}

func NewClientsHandler(registry *clients.Registry) ClientsHandler {
	return &clientsHandlerImpl{registry: registry}
}

func (h *clientsHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.registry.List())
}

func (h *clientsHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var req worker.RegisterClientRequest
	if !decodeRequest(w, r, "RegisterClient", &req) {
		return
	}

	win := h.registry.Register(req.URL, req.Controlled)
	response.Created(w, "Window registered", map[string]string{"id": win.ID()})
}

func (h *clientsHandlerImpl) Navigate(w http.ResponseWriter, r *http.Request) {
	var req worker.NavigateClientRequest
	if !decodeRequest(w, r, "NavigateClient", &req) {
		return
	}

	if err := h.registry.Navigate(chi.URLParam(r, "id"), req.URL); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Window updated", nil)
}

func (h *clientsHandlerImpl) Remove(w http.ResponseWriter, r *http.Request) {
	if !h.registry.Remove(chi.URLParam(r, "id")) {
		response.HandleError(w, worker.ErrClientNotFound)
		return
	}
	response.SuccessWithMessage(w, "Window removed", nil)
}

package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/notification"
	"github.com/cmlabs-hris/job-alert-agent/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

// NotificationHandler serves the notification history page
type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	MarkAsRead(w http.ResponseWriter, r *http.Request)
	MarkAllAsRead(w http.ResponseWriter, r *http.Request)
	MarkAsClicked(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	DeleteAll(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	historyService notification.HistoryService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(historyService notification.HistoryService) NotificationHandler {
	return &notificationHandlerImpl{historyService: historyService}
}

// List returns a page of notification history
func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	params := notification.ListParams{
		Skip:             getIntQueryParam(r, "skip", 0),
		Limit:            getIntQueryParam(r, "limit", 0),
		NotificationType: r.URL.Query().Get("notification_type"),
		IsRead:           getOptionalBoolQueryParam(r, "is_read"),
	}

	result, err := h.historyService.List(r.Context(), params)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeHistory(w, "", result)
}

func (h *notificationHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.historyService.Stats(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, stats)
}

// MarkAsRead marks specified notifications as read
func (h *notificationHandlerImpl) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	var req notification.MarkAsReadRequest
	if !decodeRequest(w, r, "MarkAsRead", &req) {
		return
	}

	result, err := h.historyService.MarkAsRead(r.Context(), req)
	if err != nil {
		slog.Error("MarkAsRead service error", "error", err)
		response.HandleError(w, err)
		return
	}

	writeHistory(w, "Notifications marked as read", result)
}

// MarkAllAsRead marks all notifications as read
func (h *notificationHandlerImpl) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	result, err := h.historyService.MarkAllAsRead(r.Context())
	if err != nil {
		slog.Error("MarkAllAsRead service error", "error", err)
		response.HandleError(w, err)
		return
	}

	writeHistory(w, "All notifications marked as read", result)
}

func (h *notificationHandlerImpl) MarkAsClicked(w http.ResponseWriter, r *http.Request) {
	id, ok := notificationID(w, r)
	if !ok {
		return
	}

	result, err := h.historyService.MarkAsClicked(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeHistory(w, "Notification marked as clicked", result)
}

// Delete removes a notification
func (h *notificationHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := notificationID(w, r)
	if !ok {
		return
	}

	result, err := h.historyService.Delete(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeHistory(w, "Notification deleted", result)
}

func (h *notificationHandlerImpl) DeleteAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.historyService.DeleteAll(r.Context())
	if err != nil {
		slog.Error("DeleteAll service error", "error", err)
		response.HandleError(w, err)
		return
	}

	writeHistory(w, "All notifications deleted", result)
}

func notificationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid notification ID", nil)
		return 0, false
	}
	return id, true
}

func writeHistory(w http.ResponseWriter, message string, result *notification.HistoryResponse) {
	meta := &response.Meta{Limit: result.Params.Limit}
	if result.Params.Limit > 0 {
		meta.Page = result.Params.Skip/result.Params.Limit + 1
	}
	resp := response.Response{
		Success: true,
		Message: message,
		Data:    result.Notifications,
		Meta:    meta,
	}
	response.JSON(w, http.StatusOK, resp)
}

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/notification"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/worker"
	"github.com/cmlabs-hris/job-alert-agent/internal/handler/http/response"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/jwt"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
)

// TrayHandler exposes the visible notifications and the event stream
type TrayHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Click(w http.ResponseWriter, r *http.Request)
	Dismiss(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type trayHandlerImpl struct {
	tray       notification.Tray
	dispatcher EventDispatcher
	hub        *sse.Hub
	jwtService jwt.Service
	keepalive  time.Duration
}

func NewTrayHandler(tray notification.Tray, dispatcher EventDispatcher, hub *sse.Hub, jwtService jwt.Service) TrayHandler {
	return &trayHandlerImpl{
		tray:       tray,
		dispatcher: dispatcher,
		hub:        hub,
		jwtService: jwtService,
		keepalive:  30 * time.Second,
	}
}

func (h *trayHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.tray.List())
}

// Click delivers a notification click to the worker and waits for the
// resulting window focus or open.
func (h *trayHandlerImpl) Click(w http.ResponseWriter, r *http.Request) {
	n, ok := h.tray.Get(chi.URLParam(r, "id"))
	if !ok {
		response.HandleError(w, notification.ErrNotificationNotFound)
		return
	}

	var req notification.ClickRequest
	if r.ContentLength != 0 {
		if !decodeRequest(w, r, "Click", &req) {
			return
		}
	}

	task, err := h.dispatcher.Dispatch(worker.NotificationClickEvent{Notification: n, Action: req.Action})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if err := task.Wait(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notification clicked", nil)
}

// Dismiss closes a notification without a click
func (h *trayHandlerImpl) Dismiss(w http.ResponseWriter, r *http.Request) {
	if !h.tray.Close(chi.URLParam(r, "id")) {
		response.HandleError(w, notification.ErrNotificationNotFound)
		return
	}
	response.SuccessWithMessage(w, "Notification dismissed", nil)
}

// Stream handles SSE connections for tray and push events
func (h *trayHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter (SSE doesn't support custom headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	installationID, err := h.jwtService.ValidateStreamToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	topic := r.URL.Query().Get("topic")
	switch topic {
	case "":
		topic = sse.TopicTray
	case sse.TopicTray, sse.TopicPush:
	default:
		http.Error(w, "Unknown topic", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(topic)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"installation_id\":%q,\"topic\":%q}\n\n", installationID, topic)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

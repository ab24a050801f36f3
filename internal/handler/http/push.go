package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/push"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/session"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/worker"
	"github.com/cmlabs-hris/job-alert-agent/internal/handler/http/response"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/sse"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/webpush"
	pushService "github.com/cmlabs-hris/job-alert-agent/internal/service/push"
	workerService "github.com/cmlabs-hris/job-alert-agent/internal/service/worker"
	"github.com/go-chi/chi/v5"
)

// maxPushBody bounds a single push message. Push services cap payloads at 4 KiB
// of plaintext, so anything far beyond one record is rejected.
const maxPushBody = 8 << 10

// EventDispatcher hands events to the worker runtime
type EventDispatcher interface {
	Dispatch(ev worker.Event) (*workerService.Task, error)
}

// PushReceived is published on the push topic after every delivered message
type PushReceived struct {
	InstallationID string    `json:"installation_id"`
	Bytes          int       `json:"bytes"`
	ReceivedAt     time.Time `json:"received_at"`
}

type PushHandler interface {
	// Receiver
	Receive(w http.ResponseWriter, r *http.Request)

	// Control
	Status(w http.ResponseWriter, r *http.Request)
	Toggle(w http.ResponseWriter, r *http.Request)
	Subscribe(w http.ResponseWriter, r *http.Request)
	Unsubscribe(w http.ResponseWriter, r *http.Request)
	Subscription(w http.ResponseWriter, r *http.Request)
	Test(w http.ResponseWriter, r *http.Request)
	ServerTest(w http.ResponseWriter, r *http.Request)
	LoopbackTest(w http.ResponseWriter, r *http.Request)
	SetPermission(w http.ResponseWriter, r *http.Request)
}

type pushHandlerImpl struct {
	repo           push.Repository
	manager        push.Manager
	toggle         *pushService.Toggle
	sessionService session.Service
	dispatcher     EventDispatcher
	hub            *sse.Hub
}

func NewPushHandler(
	repo push.Repository,
	manager push.Manager,
	toggle *pushService.Toggle,
	sessionService session.Service,
	dispatcher EventDispatcher,
	hub *sse.Hub,
) PushHandler {
	return &pushHandlerImpl{
		repo:           repo,
		manager:        manager,
		toggle:         toggle,
		sessionService: sessionService,
		dispatcher:     dispatcher,
		hub:            hub,
	}
}

// Receive accepts an aes128gcm push message for an installation and waits
// until the worker has handled it.
func (h *pushHandlerImpl) Receive(w http.ResponseWriter, r *http.Request) {
	installationID := chi.URLParam(r, "installationID")

	sub, err := h.repo.Get(r.Context(), installationID)
	if err != nil {
		if !errors.Is(err, push.ErrSubscriptionNotFound) {
			slog.Error("Receive subscription lookup error", "error", err)
		}
		response.HandleError(w, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPushBody+1))
	if err != nil {
		response.BadRequest(w, "Failed to read push message", nil)
		return
	}
	if len(body) > maxPushBody {
		writeTooLarge(w)
		return
	}

	var data []byte
	if len(body) > 0 {
		if enc := r.Header.Get("Content-Encoding"); enc != "" && enc != "aes128gcm" {
			response.BadRequest(w, "Unsupported content encoding", nil)
			return
		}
		keys, err := webpush.ParseKeys(sub.PrivateKey, sub.Keys.Auth)
		if err != nil {
			slog.Error("Receive stored keys are unusable", "installation_id", installationID, "error", err)
			response.InternalServerError(w, "Subscription keys are corrupt")
			return
		}
		data, err = webpush.Decrypt(keys, body)
		if err != nil {
			slog.Warn("Receive decrypt error", "installation_id", installationID, "error", err)
			response.HandleError(w, err)
			return
		}
	}

	task, err := h.dispatcher.Dispatch(worker.PushEvent{Data: data})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if err := task.Wait(r.Context()); err != nil {
		slog.Error("Receive push handling error", "error", err)
		response.HandleError(w, err)
		return
	}

	h.hub.Publish(sse.Event{
		Topic: sse.TopicPush,
		Event: "push_received",
		Data:  PushReceived{InstallationID: installationID, Bytes: len(data), ReceivedAt: time.Now()},
	})
	response.Created(w, "Push message delivered", nil)
}

func writeTooLarge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusRequestEntityTooLarge)
	_, _ = w.Write([]byte(`{"success":false,"error":{"code":"PAYLOAD_TOO_LARGE","message":"Push message too large"}}` + "\n"))
}

// Status returns the toggle state after re-reading the subscription
func (h *pushHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.toggle.Refresh(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}

// Toggle flips the push subscription for the signed-in user
func (h *pushHandlerImpl) Toggle(w http.ResponseWriter, r *http.Request) {
	if !h.toggle.Status().Supported {
		if _, err := h.toggle.Refresh(r.Context()); err != nil {
			response.HandleError(w, err)
			return
		}
	}

	result, err := h.toggle.Toggle(r.Context(), currentUserID(h.sessionService))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *pushHandlerImpl) Subscribe(w http.ResponseWriter, r *http.Request) {
	sub, err := h.manager.SubscribeToPush(r.Context(), currentUserID(h.sessionService))
	if err != nil {
		slog.Error("Subscribe service error", "error", err)
		response.HandleError(w, err)
		return
	}
	h.refreshToggle(r)
	response.Created(w, "Push subscription created", sub.ToResponse())
}

func (h *pushHandlerImpl) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	if _, err := h.manager.Unsubscribe(r.Context(), currentUserID(h.sessionService)); err != nil {
		slog.Error("Unsubscribe service error", "error", err)
		response.HandleError(w, err)
		return
	}
	h.refreshToggle(r)
	response.SuccessWithMessage(w, "Push subscription removed", nil)
}

// refreshToggle keeps the toggle's rendered state in step with direct changes
func (h *pushHandlerImpl) refreshToggle(r *http.Request) {
	if _, err := h.toggle.Refresh(r.Context()); err != nil {
		slog.Warn("Push toggle refresh error", "error", err)
	}
}

func (h *pushHandlerImpl) Subscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.manager.Subscription(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, sub.ToResponse())
}

// Test shows a local test notification
func (h *pushHandlerImpl) Test(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.TestNotification(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Test notification shown", nil)
}

// ServerTest asks the backend to send a real push to this user
func (h *pushHandlerImpl) ServerTest(w http.ResponseWriter, r *http.Request) {
	message, err := h.manager.SendServerTest(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, message, nil)
}

// LoopbackTest sends an encrypted push to this installation's own endpoint
func (h *pushHandlerImpl) LoopbackTest(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.SendLoopbackTest(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Loopback push delivered", nil)
}

func (h *pushHandlerImpl) SetPermission(w http.ResponseWriter, r *http.Request) {
	var req push.SetPermissionRequest
	if !decodeRequest(w, r, "SetPermission", &req) {
		return
	}

	if err := h.manager.SetPermission(r.Context(), req.Permission); err != nil {
		response.HandleError(w, err)
		return
	}

	status, err := h.toggle.Refresh(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, status)
}

package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/job-alert-agent/internal/handler/http/middleware"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/jwt"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Push         PushHandler
	Session      SessionHandler
	Tray         TrayHandler
	Control      ControlHandler
	Clients      ClientsHandler
	Notification NotificationHandler
	Job          JobHandler
	Settings     SettingsHandler
}

// RouterConfig holds router configuration
type RouterConfig struct {
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(cfg RouterConfig, logger *slog.Logger, JWTService jwt.Service, m *metrics.Metrics, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Encoding", "TTL", "Urgency", "Topic"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Push service delivery, addressed by the subscription endpoint
	r.Post("/push/{installationID}", h.Push.Receive)

	// Backend login redirect target
	r.Get("/auth/callback", h.Session.OAuthCallback)

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot send headers; the stream token rides in the query.
		r.Get("/tray/stream", h.Tray.Stream)

		// Requires a control token
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/control", func(r chi.Router) {
				r.Post("/stream-token", h.Control.StreamToken)
				r.Post("/revoke", h.Control.Revoke)
			})

			r.Route("/session", func(r chi.Router) {
				r.Get("/", h.Session.Current)
				r.Delete("/", h.Session.Logout)
				r.Post("/callback", h.Session.Callback)
				r.Post("/login", h.Session.Login)
				r.Post("/register", h.Session.Register)
				r.Post("/onboarding", h.Session.Onboarding)
				r.Get("/oauth/{provider}", h.Session.OAuthLogin)
			})

			r.Route("/push", func(r chi.Router) {
				r.Get("/status", h.Push.Status)
				r.Post("/toggle", h.Push.Toggle)
				r.Get("/subscription", h.Push.Subscription)
				r.Post("/subscription", h.Push.Subscribe)
				r.Delete("/subscription", h.Push.Unsubscribe)
				r.Post("/test", h.Push.Test)
				r.Post("/server-test", h.Push.ServerTest)
				r.Post("/loopback-test", h.Push.LoopbackTest)
				r.Put("/permission", h.Push.SetPermission)
			})

			r.Route("/tray", func(r chi.Router) {
				r.Get("/", h.Tray.List)
				r.Post("/{id}/click", h.Tray.Click)
				r.Delete("/{id}", h.Tray.Dismiss)
			})

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", h.Clients.List)
				r.Post("/", h.Clients.Register)
				r.Put("/{id}", h.Clients.Navigate)
				r.Delete("/{id}", h.Clients.Remove)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Delete("/", h.Notification.DeleteAll)
				r.Get("/stats", h.Notification.Stats)
				r.Post("/mark-read", h.Notification.MarkAsRead)
				r.Post("/mark-all-read", h.Notification.MarkAllAsRead)
				r.Post("/{id}/click", h.Notification.MarkAsClicked)
				r.Delete("/{id}", h.Notification.Delete)
			})

			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", h.Job.List)
				r.Get("/stats", h.Job.Stats)
				r.Get("/dashboard", h.Job.Dashboard)
				r.Post("/refresh", h.Job.Refresh)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.Settings.Get)
				r.Get("/stats", h.Settings.Stats)
				r.Put("/profile", h.Settings.UpdateProfile)
				r.Put("/contact-channels", h.Settings.UpdateContactChannels)
				r.Put("/alerts", h.Settings.UpdateAlertSettings)
				r.Put("/preferences", h.Settings.UpdatePreferences)
				r.Delete("/accounts/{provider}", h.Settings.DisconnectAccount)
			})
		})
	})
	return r
}

// NewLogger builds the JSON logger shared by the request logger and the agent
func NewLogger(w io.Writer, level slog.Level, app, version, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app),
		slog.String("version", version),
		slog.String("env", env),
	)
}

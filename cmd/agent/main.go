package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/config"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/push"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/session"
	appHTTP "github.com/cmlabs-hris/job-alert-agent/internal/handler/http"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/apiclient"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/clients"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/cron"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/database"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/jwt"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/metrics"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/oauth"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/sse"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/storage"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/tray"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/webpush"
	"github.com/cmlabs-hris/job-alert-agent/internal/repository/file"
	"github.com/cmlabs-hris/job-alert-agent/internal/repository/postgresql"
	jobService "github.com/cmlabs-hris/job-alert-agent/internal/service/job"
	notificationService "github.com/cmlabs-hris/job-alert-agent/internal/service/notification"
	pushService "github.com/cmlabs-hris/job-alert-agent/internal/service/push"
	sessionService "github.com/cmlabs-hris/job-alert-agent/internal/service/session"
	settingsService "github.com/cmlabs-hris/job-alert-agent/internal/service/settings"
	workerService "github.com/cmlabs-hris/job-alert-agent/internal/service/worker"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	appName    = "job-alert-agent"
	appVersion = "v1.0.0"

	installationFile = "installation_id"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.SlogLevel(), appName, appVersion, cfg.App.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage for the session and the push subscription
	var (
		sessionRepo      session.Repository
		subscriptionRepo push.Repository
		installationID   = cfg.Push.InstallationID
	)
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
		if installationID == "" {
			installationID, err = loadInstallationID(ctx, fileStorage)
			if err != nil {
				log.Fatal("Failed to load installation id:", err)
			}
		}
		sessionRepo = file.NewSessionRepository(fileStorage)
		subscriptionRepo = file.NewSubscriptionRepository(fileStorage)
	case "postgres":
		db, err := database.NewPostgreSQLDB(ctx, database.Config{DSN: cfg.DatabaseURL()})
		if err != nil {
			log.Fatal("Error connecting to database:", err)
		}
		defer db.Close()
		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			log.Fatal("Failed to apply database schema:", err)
		}
		if installationID == "" {
			installationID = uuid.New().String()
			logger.Warn("PUSH_INSTALLATION_ID not set, subscription will not survive a restart",
				slog.String("installation_id", installationID))
		}
		sessionRepo = postgresql.NewSessionRepository(db)
		subscriptionRepo = postgresql.NewSubscriptionRepository(db)
	default:
		log.Fatal("Unsupported storage types: ", cfg.Storage.Type)
	}

	m := metrics.New(strings.ReplaceAll(appName, "-", "_"))
	hub := sse.NewHub(32)
	notificationTray := tray.New(hub, m, logger.With(slog.String("component", "tray")))

	var launcher clients.Launcher
	if cfg.App.BrowserCommand != "" {
		launcher = clients.CommandLauncher{Command: cfg.App.BrowserCommand}
	}
	registry := clients.NewRegistry(launcher, m, logger.With(slog.String("component", "clients")))

	// Backend API
	// The client reads the bearer token from the session service, which in
	// turn needs the client's auth gateway.
	var sessionSvc session.Service
	apiClient := apiclient.New(apiclient.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, tokenSourceFunc(func() (*oauth2.Token, error) {
		return sessionSvc.TokenSource().Token()
	}), m, logger.With(slog.String("component", "apiclient")))
	sessionSvc = sessionService.NewSessionService(sessionRepo, apiclient.NewAuthGateway(apiClient))
	if _, err := sessionSvc.Load(ctx); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		logger.Warn("No usable session", slog.Any("error", err))
	}

	// Worker runtime
	runtime, err := workerService.New(workerService.Config{
		AppURL:        cfg.App.FrontendURL,
		TagPerJob:     cfg.Push.TagPerJob,
		HandleTimeout: cfg.Push.HandleTimeout,
		QueueSize:     cfg.Push.EventQueueSize,
	}, notificationTray, registry, logger.With(slog.String("component", "worker")), m)
	if err != nil {
		log.Fatal("Failed to create worker runtime:", err)
	}
	if err := runtime.Start(ctx); err != nil {
		log.Fatal("Failed to start worker runtime:", err)
	}

	loopbackSender, err := webpush.NewSender(cfg.Push.VAPIDSubscriber, 60, &http.Client{Timeout: cfg.Backend.Timeout})
	if err != nil {
		log.Fatal("Failed to create loopback push sender:", err)
	}

	pushManager := pushService.NewManager(pushService.Config{
		PublicURL:      cfg.Push.PublicURL,
		InstallationID: installationID,
		Permission:     push.Permission(cfg.Push.Permission),
		Sender:         loopbackSender,
	}, subscriptionRepo, apiclient.NewPushGateway(apiClient), notificationTray)
	pushToggle := pushService.NewToggle(pushManager, cfg.Push.TestNotifyDelay)
	if _, err := pushToggle.Refresh(ctx); err != nil {
		logger.Warn("Failed to read push subscription state", slog.Any("error", err))
	}

	loginSvc := oauth.NewLoginService(cfg.Backend.BaseURL, cfg.App.FrontendURL, cfg.Backend.OAuthProviders)
	historySvc := notificationService.NewNotificationService(apiclient.NewNotificationRepository(apiClient), notificationService.Config{})
	jobSvc := jobService.NewJobService(apiclient.NewJobRepository(apiClient), jobService.Config{CacheTTL: cfg.Backend.CacheTTL})
	settingsSvc := settingsService.NewSettingsService(apiclient.NewSettingsRepository(apiClient))

	// Control API token
	JWTService := jwt.NewJWTService(cfg.Control.Secret, cfg.Control.TokenExpiration, cfg.Push.StreamTokenExpiry)
	controlToken, expiresAt, err := JWTService.GenerateControlToken(installationID)
	if err != nil {
		log.Fatal("Failed to issue control token:", err)
	}
	logger.Info("Control token issued",
		slog.String("installation_id", installationID),
		slog.String("token", controlToken),
		slog.Time("expires_at", time.Unix(expiresAt, 0)),
	)

	// Background jobs
	scheduler := cron.NewScheduler(logger.With(slog.String("component", "cron")))
	cron.NewAgentJobs(pushManager, sessionSvc).RegisterJobs(scheduler, cfg.Sync.SubscriptionInterval, cfg.Sync.SessionCheckInterval)
	scheduler.Start()

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AllowedOrigins: cfg.Push.AllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
	}, logger, JWTService, m, appHTTP.Handlers{
		Push:         appHTTP.NewPushHandler(subscriptionRepo, pushManager, pushToggle, sessionSvc, runtime, hub),
		Session:      appHTTP.NewSessionHandler(sessionSvc, loginSvc),
		Tray:         appHTTP.NewTrayHandler(notificationTray, runtime, hub, JWTService),
		Control:      appHTTP.NewControlHandler(JWTService),
		Clients:      appHTTP.NewClientsHandler(registry),
		Notification: appHTTP.NewNotificationHandler(historySvc),
		Job:          appHTTP.NewJobHandler(jobSvc),
		Settings:     appHTTP.NewSettingsHandler(settingsSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		fmt.Printf("Agent running at http://localhost%s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", slog.Any("error", err))
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", slog.Any("error", err))
	}
	scheduler.Stop()
	if err := runtime.Close(shutdownCtx); err != nil {
		logger.Error("Worker shutdown error", slog.Any("error", err))
	}
}

type tokenSourceFunc func() (*oauth2.Token, error)

func (f tokenSourceFunc) Token() (*oauth2.Token, error) { return f() }

// loadInstallationID returns the id stored next to the agent's state,
// creating it on first run
func loadInstallationID(ctx context.Context, fs storage.FileStorage) (string, error) {
	rc, err := fs.Read(ctx, installationFile)
	if err == nil {
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			return "", err
		}
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, storage.ErrNotExist) {
		return "", err
	}

	id := uuid.New().String()
	if err := fs.Write(ctx, installationFile, bytes.NewReader([]byte(id+"\n"))); err != nil {
		return "", err
	}
	return id, nil
}

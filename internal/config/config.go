package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	App      AppConfig
	Backend  BackendConfig
	Push     PushConfig
	Control  ControlConfig
	Storage  StorageConfig
	Sync     SyncConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	FrontendURL    string
	BrowserCommand string
}

// BackendConfig points at the external job-alert API
type BackendConfig struct {
	BaseURL        string
	Timeout        time.Duration
	CacheTTL       time.Duration
	OAuthProviders []string
}

// PushConfig holds push receiver and presentation settings
type PushConfig struct {
	// PublicURL is the externally reachable base the push service delivers to.
	PublicURL         string
	InstallationID    string
	Permission        string
	TagPerJob         bool
	TestNotifyDelay   time.Duration
	HandleTimeout     time.Duration
	EventQueueSize    int
	AllowedOrigins    []string
	StreamTokenExpiry time.Duration
	// VAPIDSubscriber is the contact the loopback sender signs with.
	VAPIDSubscriber string
}

// ControlConfig secures the local control API
type ControlConfig struct {
	Secret          string
	TokenExpiration string
}

// StorageConfig selects where session and subscription state live
type StorageConfig struct {
	Type     string
	BasePath string
}

type SyncConfig struct {
	SubscriptionInterval time.Duration
	SessionCheckInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "job_alert_agent"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8090"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:5173"),
		BrowserCommand: getEnv("BROWSER_COMMAND", ""),
	}

	backendTimeout, err := getEnvDuration("BACKEND_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvDuration("BACKEND_CACHE_TTL", "30s")
	if err != nil {
		return nil, err
	}
	config.Backend = BackendConfig{
		BaseURL:        strings.TrimRight(getEnv("API_URL", "http://localhost:8000"), "/"),
		Timeout:        backendTimeout,
		CacheTTL:       cacheTTL,
		OAuthProviders: getEnvSlice("OAUTH_PROVIDERS"),
	}

	testDelay, err := getEnvDuration("PUSH_TEST_DELAY", "1s")
	if err != nil {
		return nil, err
	}
	handleTimeout, err := getEnvDuration("PUSH_HANDLE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	streamExpiry, err := getEnvDuration("STREAM_TOKEN_EXPIRATION", "5m")
	if err != nil {
		return nil, err
	}
	queueSize, err := strconv.Atoi(getEnv("PUSH_EVENT_QUEUE_SIZE", "64"))
	if err != nil {
		return nil, fmt.Errorf("invalid PUSH_EVENT_QUEUE_SIZE: %w", err)
	}
	config.Push = PushConfig{
		PublicURL:         strings.TrimRight(getEnv("PUSH_PUBLIC_URL", ""), "/"),
		InstallationID:    getEnv("PUSH_INSTALLATION_ID", ""),
		Permission:        getEnv("NOTIFICATION_PERMISSION", "granted"),
		TagPerJob:         getEnv("PUSH_TAG_PER_JOB", "false") == "true",
		TestNotifyDelay:   testDelay,
		HandleTimeout:     handleTimeout,
		EventQueueSize:    queueSize,
		AllowedOrigins:    getEnvSlice("CORS_ALLOWED_ORIGINS"),
		StreamTokenExpiry: streamExpiry,
		VAPIDSubscriber:   getEnv("VAPID_SUBSCRIBER", "agent@localhost"),
	}
	if len(config.Push.AllowedOrigins) == 0 {
		config.Push.AllowedOrigins = []string{config.App.FrontendURL}
	}

	config.Control = ControlConfig{
		Secret:          getEnv("CONTROL_SECRET_KEY", ""),
		TokenExpiration: getEnv("CONTROL_TOKEN_EXPIRATION", "24h"),
	}

	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./data"),
	}

	subInterval, err := getEnvDuration("SUBSCRIPTION_SYNC_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	sessionInterval, err := getEnvDuration("SESSION_CHECK_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	config.Sync = SyncConfig{
		SubscriptionInterval: subInterval,
		SessionCheckInterval: sessionInterval,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Control.Secret == "" {
		return fmt.Errorf("CONTROL_SECRET_KEY is required")
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("API_URL is required")
	}
	switch c.Storage.Type {
	case "local":
		if c.Storage.BasePath == "" {
			return fmt.Errorf("STORAGE_BASE_PATH is required for local storage")
		}
	case "postgres":
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE: %s", c.Storage.Type)
	}
	switch c.Push.Permission {
	case "default", "granted", "denied":
	default:
		return fmt.Errorf("invalid NOTIFICATION_PERMISSION: %s", c.Push.Permission)
	}
	if c.Push.EventQueueSize < 1 {
		return fmt.Errorf("PUSH_EVENT_QUEUE_SIZE must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto a slog level
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/notification"
	"github.com/cmlabs-hris/job-alert-agent/internal/domain/push"
	"github.com/cmlabs-hris/job-alert-agent/internal/handler/http/response"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/clients"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/jwt"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/metrics"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/oauth"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/sse"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/storage"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/tray"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/webpush"
	"github.com/cmlabs-hris/job-alert-agent/internal/repository/file"
	workerService "github.com/cmlabs-hris/job-alert-agent/internal/service/worker"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret       = "test-control-secret"
	testInstallation = "inst-1"
	testAppURL       = "http://localhost:5173"
)

type recordingLauncher struct {
	mu   sync.Mutex
	urls []string
}

func (l *recordingLauncher) Launch(_ context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls = append(l.urls, url)
	return nil
}

func (l *recordingLauncher) opened() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.urls...)
}

type testServer struct {
	router   *chi.Mux
	jwt      jwt.Service
	tray     *tray.Tray
	registry *clients.Registry
	launcher *recordingLauncher
	subs     push.Repository
	keys     *webpush.Keys
	hub      *sse.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New("test")
	hub := sse.NewHub(16)
	tr := tray.New(hub, m, logger)
	l := &recordingLauncher{}
	reg := clients.NewRegistry(l, m, logger)

	rt, err := workerService.New(workerService.Config{AppURL: testAppURL}, tr, reg, logger, m)
	require.NoError(t, err)
	require.NoError(t, rt.Start(context.Background()))
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	fs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	subs := file.NewSubscriptionRepository(fs)

	keys, err := webpush.GenerateKeys()
	require.NoError(t, err)
	require.NoError(t, subs.Save(context.Background(), &push.Subscription{
		InstallationID: testInstallation,
		UserID:         "42",
		Endpoint:       "https://agent.example.com/push/" + testInstallation,
		Keys:           push.Keys{P256dh: keys.P256dh(), Auth: keys.AuthSecret()},
		PrivateKey:     keys.PrivateKeyString(),
	}))

	jwtSvc := jwt.NewJWTService(testSecret, "1h", 0)
	handlers := Handlers{
		Push:         NewPushHandler(subs, nil, nil, nil, rt, hub),
		Session:      NewSessionHandler(nil, oauth.NewLoginService("http://api.example.com", testAppURL, nil)),
		Tray:         NewTrayHandler(tr, rt, hub, jwtSvc),
		Control:      NewControlHandler(jwtSvc),
		Clients:      NewClientsHandler(reg),
		Notification: NewNotificationHandler(nil),
		Job:          NewJobHandler(nil),
		Settings:     NewSettingsHandler(nil),
	}
	router := NewRouter(RouterConfig{AllowedOrigins: []string{testAppURL}, LogLevel: slog.LevelError}, logger, jwtSvc, m, handlers)

	return &testServer{
		router:   router,
		jwt:      jwtSvc,
		tray:     tr,
		registry: reg,
		launcher: l,
		subs:     subs,
		keys:     keys,
		hub:      hub,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) controlToken(t *testing.T) string {
	t.Helper()
	token, _, err := s.jwt.GenerateControlToken(testInstallation)
	require.NoError(t, err)
	return token
}

func (s *testServer) deliver(t *testing.T, plaintext []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if plaintext != nil {
		var err error
		body, err = webpush.Encrypt(s.keys.P256dh(), s.keys.AuthSecret(), plaintext)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, "/push/"+testInstallation, bytes.NewReader(body))
	req.Header.Set("Content-Encoding", "aes128gcm")
	req.Header.Set("TTL", "60")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data any) response.Response {
	t.Helper()
	var resp response.Response
	raw := rec.Body.Bytes()
	require.NoError(t, json.Unmarshal(raw, &resp))
	if data != nil {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &envelope))
		require.NoError(t, json.Unmarshal(envelope.Data, data))
	}
	return resp
}

func TestReceive_DecryptsAndShowsNotification(t *testing.T) {
	s := newTestServer(t)
	events, cleanup := s.hub.Subscribe(sse.TopicPush)
	defer cleanup()

	rec := s.deliver(t, []byte(`{"title":"Go Engineer","body":"Remote","url":"/jobs/7","jobId":7}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	shown := s.tray.List()
	require.Len(t, shown, 1)
	assert.Equal(t, "Go Engineer", shown[0].Title)
	assert.Equal(t, "/jobs/7", shown[0].Options.Data.URL)

	ev := <-events
	assert.Equal(t, "push_received", ev.Event)
}

func TestReceive_AcceptsVAPIDSignedPush(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	sender, err := webpush.NewSender("agent@example.com", 60, srv.Client())
	require.NoError(t, err)

	err = sender.Send(context.Background(), srv.URL+"/push/"+testInstallation,
		s.keys.P256dh(), s.keys.AuthSecret(), []byte(`{"title":"Loopback","jobId":3}`))
	require.NoError(t, err)

	shown := s.tray.List()
	require.Len(t, shown, 1)
	assert.Equal(t, "Loopback", shown[0].Title)
}

func TestReceive_EmptyBodyUsesDefaults(t *testing.T) {
	s := newTestServer(t)

	rec := s.deliver(t, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	shown := s.tray.List()
	require.Len(t, shown, 1)
	assert.Equal(t, notification.DefaultTitle, shown[0].Title)
	assert.Equal(t, notification.DefaultBody, shown[0].Options.Body)
}

func TestReceive_InvalidJSONStillShows(t *testing.T) {
	s := newTestServer(t)

	rec := s.deliver(t, []byte(`{"title":`))
	require.Equal(t, http.StatusCreated, rec.Code)

	shown := s.tray.List()
	require.Len(t, shown, 1)
	assert.Equal(t, notification.DefaultTitle, shown[0].Title)
}

func TestReceive_Rejections(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/push/unknown", "", bytes.NewReader([]byte("x")))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/push/"+testInstallation, "", bytes.NewReader([]byte("not a push message")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	other, err := webpush.GenerateKeys()
	require.NoError(t, err)
	sealed, err := webpush.Encrypt(other.P256dh(), other.AuthSecret(), []byte(`{}`))
	require.NoError(t, err)
	rec = s.do(t, http.MethodPost, "/push/"+testInstallation, "", bytes.NewReader(sealed))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/push/"+testInstallation, "", bytes.NewReader(make([]byte, maxPushBody+1)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	assert.Empty(t, s.tray.List())
}

func TestControlAPI_RequiresControlToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/tray", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	streamToken, _, err := s.jwt.GenerateStreamToken(testInstallation)
	require.NoError(t, err)
	rec = s.do(t, http.MethodGet, "/api/v1/tray", streamToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	foreign, _, err := jwt.NewJWTService("other-secret", "1h", 0).GenerateControlToken(testInstallation)
	require.NoError(t, err)
	rec = s.do(t, http.MethodGet, "/api/v1/tray", foreign, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := s.controlToken(t)
	rec = s.do(t, http.MethodGet, "/api/v1/tray", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/control/revoke", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/tray", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTrayClick_FocusesOrOpens(t *testing.T) {
	s := newTestServer(t)
	token := s.controlToken(t)

	require.Equal(t, http.StatusCreated, s.deliver(t, []byte(`{"url":"/jobs/7"}`)).Code)
	shown := s.tray.List()
	require.Len(t, shown, 1)

	rec := s.do(t, http.MethodPost, "/api/v1/tray/"+shown[0].ID+"/click", token, strings.NewReader(`{"action":"view"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, s.tray.List())
	assert.Equal(t, []string{testAppURL + "/jobs/7"}, s.launcher.opened())

	rec = s.do(t, http.MethodPost, "/api/v1/tray/"+shown[0].ID+"/click", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/tray/x/click", token, strings.NewReader(`{"action":"share"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrayClick_RejectsUnknownAction(t *testing.T) {
	s := newTestServer(t)
	token := s.controlToken(t)

	require.Equal(t, http.StatusCreated, s.deliver(t, nil).Code)
	id := s.tray.List()[0].ID

	rec := s.do(t, http.MethodPost, "/api/v1/tray/"+id+"/click", token, strings.NewReader(`{"action":"share"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, s.tray.List(), 1)

	rec = s.do(t, http.MethodDelete, "/api/v1/tray/"+id, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, s.tray.List())
}

func TestClients_RegisterThenClickFocuses(t *testing.T) {
	s := newTestServer(t)
	token := s.controlToken(t)

	rec := s.do(t, http.MethodPost, "/api/v1/clients", token, strings.NewReader(`{"url":"`+testAppURL+`/","controlled":false}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created map[string]string
	decodeResponse(t, rec, &created)
	require.NotEmpty(t, created["id"])

	require.Equal(t, http.StatusCreated, s.deliver(t, nil).Code)
	id := s.tray.List()[0].ID

	rec = s.do(t, http.MethodPost, "/api/v1/tray/"+id+"/click", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, s.launcher.opened())

	windows := s.registry.List()
	require.Len(t, windows, 1)
	assert.True(t, windows[0].Focused)

	rec = s.do(t, http.MethodPut, "/api/v1/clients/"+created["id"], token, strings.NewReader(`{"url":"not a url"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/clients/"+created["id"], token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/v1/clients/"+created["id"], token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStream_DeliversTrayEvents(t *testing.T) {
	s := newTestServer(t)
	streamToken, _, err := s.jwt.GenerateStreamToken(testInstallation)
	require.NoError(t, err)

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	rec := s.do(t, http.MethodGet, "/api/v1/tray/stream", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/tray/stream?token="+streamToken, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	buf := make([]byte, 4096)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "event: connected")

	require.Eventually(t, func() bool { return s.hub.SubscriberCount(sse.TopicTray) == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, http.StatusCreated, s.deliver(t, nil).Code)

	var got strings.Builder
	for !strings.Contains(got.String(), notification.TrayEventShown) {
		n, err := resp.Body.Read(buf)
		require.NoError(t, err)
		got.Write(buf[:n])
	}
	assert.Contains(t, got.String(), notification.DefaultTitle)
}

func TestControl_StreamTokenCarriesInstallation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/control/stream-token", s.controlToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body push.StreamTokenResponse
	decodeResponse(t, rec, &body)
	id, err := s.jwt.ValidateStreamToken(body.Token)
	require.NoError(t, err)
	assert.Equal(t, testInstallation, id)
	assert.Equal(t, 300, body.ExpiresIn)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.deliver(t, nil).Code)

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_")
}

func TestOAuth_LoginURLAndFailedCallback(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/session/oauth/twitter", s.controlToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decodeResponse(t, rec, &body)
	assert.Equal(t, "http://api.example.com/api/auth/twitter/login", body["url"])

	rec = s.do(t, http.MethodGet, "/api/v1/session/oauth/myspace", s.controlToken(t), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/auth/callback?message=Invalid+state", "", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), testAppURL+"/auth/error?message=")
}

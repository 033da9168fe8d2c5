package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"config-console/admin-service/internal/client"
	"config-console/admin-service/internal/console"
	"config-console/admin-service/internal/handler"
	"config-console/admin-service/internal/i18n"
	"config-console/admin-service/internal/mocks"
	"config-console/admin-service/internal/web"
	sharedMiddleware "config-console/shared/middleware"
	"config-console/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type browser struct {
	t      *testing.T
	client *http.Client
	base   string
}

func (b *browser) get(path string, header ...string) (int, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	require.NoError(b.t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) (int, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) do(req *http.Request) (int, string) {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp.StatusCode, string(body)
}

func records(value string) []models.ConfigurationRecord {
	return []models.ConfigurationRecord{
		{ID: 1, Name: "x", Value: value, DescrMap: map[string]string{"en-us": "desc-en", "zh-cn": "desc-zh"}},
	}
}

func setup(t *testing.T) (*browser, *mocks.ConfigServiceClient) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := new(mocks.ConfigServiceClient)
	policy := console.RefreshPolicy{Delay: time.Millisecond, PollInterval: time.Millisecond, MaxPollAttempts: 2}
	sessions := console.NewSessionStore(func() *console.Page {
		return console.NewPage(backend, nil, policy, zap.NewNop())
	}, time.Hour, 0, zap.NewNop())
	t.Cleanup(sessions.Close)

	catalog, err := i18n.LoadCatalog([]string{"en-us", "zh-cn"})
	require.NoError(t, err)
	renderer, err := web.NewTemplateRenderer(web.TemplateFS(), false, zap.NewNop(), web.FuncMap())
	require.NoError(t, err)

	h := handler.NewConfigHandler(sessions, catalog, handler.HandlerConfig{
		FlashSecret: "test-flash-secret-0123456789",
		SessionTTL:  time.Hour,
	}, zap.NewNop())

	router := gin.New()
	router.HTMLRender = renderer
	router.Use(sharedMiddleware.RequestID())
	router.Use(h.CustomErrorMiddleware())
	h.RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, client: &http.Client{Jar: jar}, base: srv.URL}, backend
}

func TestEveryVisitReloadsList(t *testing.T) {
	b, backend := setup(t)
	backend.On("ListConfigs", mock.Anything).Return(records("a"), nil).Once()
	backend.On("ListConfigs", mock.Anything).Return(records("changed-elsewhere"), nil).Once()

	status, body := b.get("/admin/configs")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<td>x</td>")
	assert.Contains(t, body, "<td>desc-en</td>")

	status, body = b.get("/admin/configs")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "<td>changed-elsewhere</td>")
	backend.AssertNumberOfCalls(t, "ListConfigs", 2)
}

func TestRedirectBackKeepsState(t *testing.T) {
	b, backend := setup(t)
	backend.On("ListConfigs", mock.Anything).Return(records("a"), nil).Once()
	b.get("/admin/configs")

	_, body := b.get("/admin/configs/edit?name=x")
	assert.Contains(t, body, `role="dialog"`)
	_, body = b.post("/admin/configs/close", nil)
	assert.NotContains(t, body, `role="dialog"`)

	backend.AssertNumberOfCalls(t, "ListConfigs", 1)
}

func TestSessionsAreIsolated(t *testing.T) {
	b, backend := setup(t)
	backend.On("ListConfigs", mock.Anything).Return(records("a"), nil).Twice()

	b.get("/admin/configs")
	other := &browser{t: t, client: &http.Client{}, base: b.base}
	other.get("/admin/configs")

	backend.AssertNumberOfCalls(t, "ListConfigs", 2)
}

func TestEditAndSave(t *testing.T) {
	b, backend := setup(t)
	backend.On("ListConfigs", mock.Anything).Return(records("a"), nil).Once()
	b.get("/admin/configs")

	status, body := b.get("/admin/configs/edit?name=x")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `role="dialog"`)
	assert.Contains(t, body, `value="a"`)

	backend.On("PutConfig", mock.Anything, "x", "b").Return(nil).Once()
	backend.On("ListConfigs", mock.Anything).Return(records("b"), nil).Once()

	status, body = b.post("/admin/configs/edit", url.Values{"value": {"b"}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Configuration saved")
	assert.Contains(t, body, "<td>b</td>")
	assert.NotContains(t, body, `role="dialog"`)
	backend.AssertExpectations(t)
}

func TestSaveForwardsOperatorID(t *testing.T) {
	b, backend := setup(t)
	backend.On("ListConfigs", mock.Anything).Return(records("a"), nil).Once()
	b.get("/admin/configs")
	b.get("/admin/configs/edit?name=x")

	var session string
	for _, ck := range b.client.Jar.Cookies(mustParse(t, b.base+"/admin/configs")) {
		if ck.Name == "console_session" {
			session = ck.Value
		}
	}
	require.NotEmpty(t, session)

	backend.On("PutConfig", mock.MatchedBy(func(ctx context.Context) bool {
		op, _ := ctx.Value(client.OperatorKey{}).(string)
		return len(op) == 32 && !strings.Contains(op, session)
	}), "x", "b").Return(nil).Once()
	backend.On("ListConfigs", mock.Anything).Return(records("b"), nil).Once()

	b.post("/admin/configs/edit", url.Values{"value": {"b"}})
	backend.AssertExpectations(t)
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestSaveUnchangedShowsAlert(t *testing.T) {
	b, backend := setup(t)
	backend.On("ListConfigs", mock.Anything).Return(records("a"), nil).Twice()
	b.get("/admin/configs")
	b.get("/admin/configs/edit?name=x")

	_, body := b.post("/admin/configs/edit", url.Values{"value": {"a"}})
	assert.Contains(t, body, "flash-alert")
	assert.Contains(t, body, "Please modify the value first")
	assert.Contains(t, body, `role="dialog"`)
	backend.AssertNotCalled(t, "PutConfig", mock.Anything, mock.Anything, mock.Anything)

	// flash is shown once
	_, body = b.get("/admin/configs")
	assert.NotContains(t, body, "Please modify the value first")
}

func TestSaveFailureKeepsDialog(t *testing.T) {
	b, backend := setup(t)
	backend.On("ListConfigs", mock.Anything).Return(records("a"), nil).Once()
	backend.On("PutConfig", mock.Anything, "x", "b").Return(models.ErrBackend).Once()
	b.get("/admin/configs")
	b.get("/admin/configs/edit?name=x")

	_, body := b.post("/admin/configs/edit", url.Values{"value": {"b"}})
	assert.Contains(t, body, "flash-error")
	assert.Contains(t, body, `role="dialog"`)
	assert.Contains(t, body, `value="b"`)
	assert.Contains(t, body, "<td>a</td>")
}

func TestOpenUnknownRecord(t *testing.T) {
	b, backend := setup(t)
	backend.On("ListConfigs", mock.Anything).Return(records("a"), nil).Once()
	b.get("/admin/configs")

	_, body := b.get("/admin/configs/edit?name=missing")
	assert.Contains(t, body, "Configuration not found: missing")
	assert.NotContains(t, body, `role="dialog"`)
}

func TestCloseDialog(t *testing.T) {
	b, backend := setup(t)
	backend.On("ListConfigs", mock.Anything).Return(records("a"), nil).Once()
	b.get("/admin/configs")
	b.get("/admin/configs/edit?name=x")

	_, body := b.post("/admin/configs/close", nil)
	assert.NotContains(t, body, `role="dialog"`)
}

func TestRefresh(t *testing.T) {
	b, backend := setup(t)
	backend.On("ListConfigs", mock.Anything).Return(records("a"), nil).Once()
	backend.On("ListConfigs", mock.Anything).Return(nil, models.ErrBackend).Once()
	backend.On("ListConfigs", mock.Anything).Return(records("c"), nil).Once()
	b.get("/admin/configs")

	_, body := b.post("/admin/configs/refresh", nil)
	assert.Contains(t, body, "<td>a</td>")
	assert.NotContains(t, body, "flash-error")

	_, body = b.post("/admin/configs/refresh", nil)
	assert.Contains(t, body, "<td>c</td>")
	backend.AssertNumberOfCalls(t, "ListConfigs", 3)
}

func TestLocaleSelection(t *testing.T) {
	b, backend := setup(t)
	backend.On("ListConfigs", mock.Anything).Return(records("a"), nil).Times(3)

	_, body := b.get("/admin/configs", "Accept-Language", "zh-CN,zh;q=0.9")
	assert.Contains(t, body, "<td>desc-zh</td>")
	assert.Contains(t, body, "配置信息")

	_, body = b.get("/admin/configs?lang=en-us", "Accept-Language", "zh-CN")
	assert.Contains(t, body, "<td>desc-en</td>")

	// remembered by cookie
	_, body = b.get("/admin/configs", "Accept-Language", "zh-CN")
	assert.Contains(t, body, "<td>desc-en</td>")
}

func TestNotFoundPage(t *testing.T) {
	b, _ := setup(t)

	status, body := b.get("/nope")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "/nope")
	assert.Contains(t, body, "<h2>404</h2>")
}

func TestHealth(t *testing.T) {
	b, _ := setup(t)
	status, body := b.get("/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "ok")
}

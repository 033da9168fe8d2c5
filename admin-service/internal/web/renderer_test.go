package web

import (
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"config-console/admin-service/internal/console"
	"config-console/admin-service/internal/i18n"
	"config-console/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCatalog(t *testing.T) *i18n.Catalog {
	t.Helper()
	c, err := i18n.LoadCatalog([]string{"en-us", "zh-cn"})
	require.NoError(t, err)
	return c
}

func renderString(t *testing.T, r *TemplateRenderer, name string, data any) string {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, r.Instance(name, data).Render(w))
	return w.Body.String()
}

func TestConfigsPage(t *testing.T) {
	r, err := NewTemplateRenderer(TemplateFS(), false, zap.NewNop(), FuncMap())
	require.NoError(t, err)
	catalog := testCatalog(t)

	value := "b"
	state := console.State{
		List: []models.ConfigurationRecord{
			{ID: 1, Name: "x", Value: "a", DescrMap: map[string]string{"en-us": "d", "zh-cn": "描述"}},
		},
		DialogVisible: true,
		Selected: &console.Draft{
			Record:   models.ConfigurationRecord{ID: 1, Name: "x", Value: "a", DescrMap: map[string]string{"en-us": "d"}},
			NewValue: &value,
		},
	}

	html := renderString(t, r, "configs.html", NewConfigsView(state, i18n.EnUS, catalog, &Flash{Type: "alert", Message: "Please modify the value first"}))
	assert.Contains(t, html, "<td>d</td>")
	assert.Contains(t, html, `href="/admin/configs/edit?name=x"`)
	assert.Contains(t, html, `role="dialog"`)
	assert.Contains(t, html, `value="b"`)
	assert.Contains(t, html, "flash-alert")
	assert.Contains(t, html, "Edit Configuration")

	zh := renderString(t, r, "configs.html", NewConfigsView(console.State{List: state.List}, i18n.ZhCN, catalog, nil))
	assert.Contains(t, zh, "<td>描述</td>")
	assert.Contains(t, zh, "编辑")
	assert.NotContains(t, zh, `role="dialog"`)
}

func TestConfigsPageLoadingAndEmpty(t *testing.T) {
	r, err := NewTemplateRenderer(TemplateFS(), false, zap.NewNop(), FuncMap())
	require.NoError(t, err)
	catalog := testCatalog(t)

	loading := renderString(t, r, "configs.html", NewConfigsView(console.State{Loading: true}, i18n.EnUS, catalog, nil))
	assert.Contains(t, loading, "Loading...")
	assert.NotContains(t, loading, "No data")

	empty := renderString(t, r, "configs.html", NewConfigsView(console.State{}, i18n.EnUS, catalog, nil))
	assert.Contains(t, empty, "No data")
}

func TestConfigsPageEscapesValues(t *testing.T) {
	r, err := NewTemplateRenderer(TemplateFS(), false, zap.NewNop(), FuncMap())
	require.NoError(t, err)

	state := console.State{List: []models.ConfigurationRecord{{ID: 1, Name: "a&b", Value: "<script>"}}}
	html := renderString(t, r, "configs.html", NewConfigsView(state, i18n.EnUS, testCatalog(t), nil))
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "name=a%26b")
}

func TestUnknownTemplate(t *testing.T) {
	r, err := NewTemplateRenderer(TemplateFS(), false, zap.NewNop(), FuncMap())
	require.NoError(t, err)

	assert.Error(t, r.Instance("missing.html", nil).Render(httptest.NewRecorder()))
}

func TestDebugModeReparses(t *testing.T) {
	fsys := fstest.MapFS{
		"layout.html": {Data: []byte(`{{template "content" .}}`)},
		"page.html":   {Data: []byte(`{{define "content"}}v1{{end}}`)},
	}
	r, err := NewTemplateRenderer(fsys, true, zap.NewNop(), nil)
	require.NoError(t, err)
	assert.Equal(t, "v1", renderString(t, r, "page.html", nil))

	fsys["page.html"] = &fstest.MapFile{Data: []byte(`{{define "content"}}v2{{end}}`)}
	assert.Equal(t, "v2", renderString(t, r, "page.html", nil))
}

func TestBrokenTemplateFailsLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"layout.html": {Data: []byte(`{{template "content" .}}`)},
		"page.html":   {Data: []byte(`{{define "content"}}{{.Broken`)},
	}
	_, err := NewTemplateRenderer(fsys, false, zap.NewNop(), nil)
	assert.Error(t, err)
}

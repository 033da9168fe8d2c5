package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"

	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

const layoutName = "layout.html"

// TemplateFS returns the embedded templates rooted at the templates directory.
func TemplateFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err) // the directory is embedded at build time
	}
	return sub
}

// TemplateRenderer implements gin's render.HTMLRender. Every page template is
// parsed together with layout.html into its own set so that pages can each
// define "content" without clashing.
type TemplateRenderer struct {
	fsys    fs.FS
	funcMap template.FuncMap
	debug   bool // reparse on every render
	logger  *zap.Logger

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// NewTemplateRenderer parses every page in fsys. In debug mode templates are
// reparsed on each render, which is useful with os.DirFS during development.
func NewTemplateRenderer(fsys fs.FS, debug bool, logger *zap.Logger, funcMap template.FuncMap) (*TemplateRenderer, error) {
	r := &TemplateRenderer{
		fsys:    fsys,
		funcMap: funcMap,
		debug:   debug,
		logger:  logger.Named("TemplateRenderer"),
	}
	if err := r.loadTemplates(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *TemplateRenderer) loadTemplates() error {
	names, err := fs.Glob(r.fsys, "*.html")
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutName {
			continue
		}
		tmpl, err := r.parse(name)
		if err != nil {
			return err
		}
		pages[name] = tmpl
	}

	r.mu.Lock()
	r.pages = pages
	r.mu.Unlock()
	r.logger.Info("Templates loaded", zap.Int("pages", len(pages)), zap.Bool("debug", r.debug))
	return nil
}

func (r *TemplateRenderer) parse(name string) (*template.Template, error) {
	tmpl, err := template.New(layoutName).Funcs(r.funcMap).ParseFS(r.fsys, layoutName, path.Clean(name))
	if err != nil {
		r.logger.Error("Failed to parse template", zap.String("template", name), zap.Error(err))
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// Instance implements render.HTMLRender.
func (r *TemplateRenderer) Instance(name string, data any) render.Render {
	var tmpl *template.Template
	if r.debug {
		parsed, err := r.parse(name)
		if err != nil {
			return errorRender{err: err}
		}
		tmpl = parsed
	} else {
		r.mu.RLock()
		tmpl = r.pages[name]
		r.mu.RUnlock()
	}
	if tmpl == nil {
		r.logger.Error("Template not found", zap.String("template", name))
		return errorRender{err: fmt.Errorf("template %s not found", name)}
	}
	return render.HTML{Template: tmpl, Name: layoutName, Data: data}
}

package web

import "net/http"

// errorRender makes a template failure surface as a gin render error.
type errorRender struct {
	err error
}

func (e errorRender) Render(http.ResponseWriter) error { return e.err }

func (e errorRender) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{"text/html; charset=utf-8"}
	}
}

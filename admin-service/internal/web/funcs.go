package web

import (
	"html/template"
	"net/url"
)

// FuncMap is the function set available to console templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"langURL": func(base, lang string) string {
			return base + "?lang=" + url.QueryEscape(lang)
		},
	}
}

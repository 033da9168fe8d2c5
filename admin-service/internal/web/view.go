package web

import (
	"config-console/admin-service/internal/console"
	"config-console/admin-service/internal/i18n"
)

// Flash is a one-shot message shown at the top of the page.
type Flash struct {
	Type    string // alert, error, success
	Message string
}

// LocaleOption is one entry of the language switcher.
type LocaleOption struct {
	Code    string
	Current bool
}

// DialogView is the edit dialog's content.
type DialogView struct {
	Name  string
	Value string
	Descr string
}

// ConfigsView is the data of configs.html.
type ConfigsView struct {
	Lang    string
	Locales []LocaleOption
	T       i18n.Messages
	Rows    []console.Row
	Loading bool
	Dialog  *DialogView
	Flash   *Flash
}

// NotFoundView is the data of 404.html.
type NotFoundView struct {
	Lang string
	T    i18n.Messages
	Path string
}

// NewConfigsView projects a page snapshot for loc.
func NewConfigsView(state console.State, loc i18n.Locale, catalog *i18n.Catalog, flash *Flash) ConfigsView {
	v := ConfigsView{
		Lang:    loc.Code(),
		T:       catalog.Messages(loc),
		Rows:    console.Rows(state.List, loc.Code()),
		Loading: state.Loading,
		Flash:   flash,
	}
	for _, l := range catalog.Locales() {
		v.Locales = append(v.Locales, LocaleOption{Code: l.Code(), Current: l == loc})
	}
	if state.DialogVisible && state.Selected != nil {
		v.Dialog = &DialogView{
			Name:  state.Selected.Record.Name,
			Value: state.Selected.Value(),
			Descr: state.Selected.Record.Descr(loc.Code()),
		}
	}
	return v
}

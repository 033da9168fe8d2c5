// Package i18n holds the console's UI strings and picks the locale for a request.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Locale is a lowercase language code as used in description maps (en-us, zh-cn).
type Locale string

const (
	EnUS Locale = "en-us"
	ZhCN Locale = "zh-cn"
)

// Code returns the locale code.
func (l Locale) Code() string { return string(l) }

// Messages maps label keys to text.
type Messages map[string]string

// T returns the text for key, or key itself when it is missing.
func (m Messages) T(key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}

// Catalog is the set of loaded locales.
type Catalog struct {
	messages map[Locale]Messages
	order    []Locale
	fallback Locale
}

// LoadCatalog reads the embedded locale files for the given codes. The first
// code is the fallback.
func LoadCatalog(codes []string) (*Catalog, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("no locales requested")
	}
	c := &Catalog{messages: make(map[Locale]Messages, len(codes))}
	for i, code := range codes {
		loc := Locale(strings.ToLower(code))
		if _, dup := c.messages[loc]; dup {
			continue
		}
		raw, err := localeFS.ReadFile(path.Join("locales", loc.Code()+".json"))
		if err != nil {
			return nil, fmt.Errorf("unknown locale %q: %w", code, err)
		}
		var msgs Messages
		if err := json.Unmarshal(raw, &msgs); err != nil {
			return nil, fmt.Errorf("invalid locale file for %q: %w", code, err)
		}
		c.messages[loc] = msgs
		c.order = append(c.order, loc)
		if i == 0 {
			c.fallback = loc
		}
	}
	return c, nil
}

// Messages returns the strings for loc, or the fallback locale's.
func (c *Catalog) Messages(loc Locale) Messages {
	if m, ok := c.messages[loc]; ok {
		return m
	}
	return c.messages[c.fallback]
}

// Has reports whether loc was loaded.
func (c *Catalog) Has(loc Locale) bool {
	_, ok := c.messages[loc]
	return ok
}

// Fallback is the default locale.
func (c *Catalog) Fallback() Locale { return c.fallback }

// Locales lists the loaded locales in load order; the fallback is first.
func (c *Catalog) Locales() []Locale {
	return append([]Locale(nil), c.order...)
}

// Resolver matches requested languages against the catalog.
type Resolver struct {
	catalog *Catalog
	tags    []language.Tag
	locales []Locale
	matcher language.Matcher
}

// NewResolver builds a matcher over the catalog's locales.
func NewResolver(c *Catalog) *Resolver {
	r := &Resolver{catalog: c}
	for _, loc := range c.Locales() {
		r.tags = append(r.tags, language.Make(loc.Code()))
		r.locales = append(r.locales, loc)
	}
	r.matcher = language.NewMatcher(r.tags)
	return r
}

// Resolve picks a locale. explicit and cookie are exact codes ("zh-cn" or
// "zh-CN"); acceptLanguage is a raw Accept-Language header. The first one that
// names a loaded locale wins; Accept-Language is matched loosely.
func (r *Resolver) Resolve(explicit, cookie, acceptLanguage string) Locale {
	for _, code := range []string{explicit, cookie} {
		if loc := Locale(strings.ToLower(strings.TrimSpace(code))); loc != "" && r.catalog.Has(loc) {
			return loc
		}
	}
	if acceptLanguage != "" {
		tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(tags) > 0 {
			_, idx, conf := r.matcher.Match(tags...)
			if conf != language.No {
				return r.locales[idx]
			}
		}
	}
	return r.catalog.Fallback()
}

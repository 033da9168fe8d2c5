package handler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"config-console/admin-service/internal/client"
	"config-console/admin-service/internal/console"
	"config-console/admin-service/internal/i18n"
	"config-console/admin-service/internal/web"
	sharedMiddleware "config-console/shared/middleware"
	"config-console/shared/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionCookieName = "console_session"
	langCookieName    = "lang"
	langCookieMaxAge  = 365 * 24 * 60 * 60

	// set on redirects back to the list so the landing GET keeps the page state
	redirectCookieName = "console_redirect"

	pageContextKey     = "console_page"
	localeContextKey   = "console_locale"
	operatorContextKey = "console_operator"

	configsPath = "/admin/configs"
)

// ConfigHandler serves the configuration page.
type ConfigHandler struct {
	sessions     *console.SessionStore
	catalog      *i18n.Catalog
	resolver     *i18n.Resolver
	flash        flashStore
	sessionTTL   time.Duration
	secureCookie bool
	logger       *zap.Logger
}

// HandlerConfig groups the cookie settings of ConfigHandler.
type HandlerConfig struct {
	FlashSecret  string
	SessionTTL   time.Duration
	SecureCookie bool
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(sessions *console.SessionStore, catalog *i18n.Catalog, cfg HandlerConfig, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{
		sessions:     sessions,
		catalog:      catalog,
		resolver:     i18n.NewResolver(catalog),
		flash:        flashStore{secret: []byte(cfg.FlashSecret), secure: cfg.SecureCookie},
		sessionTTL:   cfg.SessionTTL,
		secureCookie: cfg.SecureCookie,
		logger:       logger.Named("ConfigHandler"),
	}
}

// RegisterConfigRoutes mounts the page routes on group.
func (h *ConfigHandler) RegisterConfigRoutes(group *gin.RouterGroup) {
	configsGroup := group.Group("/configs", h.sessionMiddleware, h.localeMiddleware)
	{
		configsGroup.GET("", h.ShowConfigs)
		configsGroup.GET("/edit", h.OpenDialog)
		configsGroup.POST("/edit", h.SaveConfig)
		configsGroup.POST("/close", h.CloseDialog)
		configsGroup.POST("/refresh", h.Refresh)
	}
}

// Health reports liveness.
func (h *ConfigHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ShowConfigs renders the page. A fresh visit reloads the list; the GET that
// follows one of the page's own redirects only loads it if it never was.
func (h *ConfigHandler) ShowConfigs(c *gin.Context) {
	page := h.page(c)
	if h.consumeRedirectMarker(c) {
		page.Mount(h.requestContext(c))
	} else {
		page.Load(h.requestContext(c))
	}

	loc := h.locale(c)
	view := web.NewConfigsView(page.Snapshot(), loc, h.catalog, h.flash.pop(c))
	c.HTML(http.StatusOK, "configs.html", view)
}

// OpenDialog opens the edit dialog for ?name=.
func (h *ConfigHandler) OpenDialog(c *gin.Context) {
	name := c.Query("name")
	msgs := h.catalog.Messages(h.locale(c))
	if err := h.page(c).Open(name); err != nil {
		h.logger.Warn("Cannot open edit dialog", zap.String("name", name), zap.Error(err))
		h.setFlash(c, "alert", msgs.T("recordNotFound")+": "+name)
	}
	h.backToList(c)
}

// SaveConfig takes the dialog's value and saves it. An unchanged value
// produces an alert and keeps the dialog open; a failed write keeps it open
// with an error.
func (h *ConfigHandler) SaveConfig(c *gin.Context) {
	page := h.page(c)
	msgs := h.catalog.Messages(h.locale(c))

	if value, ok := c.GetPostForm("value"); ok {
		if err := page.Edit(value); err != nil {
			h.setFlash(c, "alert", msgs.T("notModifiedAlert"))
			h.backToList(c)
			return
		}
	}

	start := time.Now()
	err := page.Save(h.requestContext(c))
	switch {
	case err == nil:
		saveDuration.Observe(time.Since(start).Seconds())
		configSavesTotal.WithLabelValues("saved").Inc()
		h.setFlash(c, "success", msgs.T("saveSuccess"))
	case errors.Is(err, models.ErrNotModified), errors.Is(err, models.ErrDialogClosed):
		configSavesTotal.WithLabelValues("not_modified").Inc()
		h.setFlash(c, "alert", msgs.T("notModifiedAlert"))
	default:
		configSavesTotal.WithLabelValues("failed").Inc()
		h.logger.Error("Failed to save configuration", zap.Error(err))
		h.setFlash(c, "error", msgs.T("saveFailed"))
	}
	h.backToList(c)
}

// CloseDialog cancels the dialog.
func (h *ConfigHandler) CloseDialog(c *gin.Context) {
	h.page(c).Close()
	h.backToList(c)
}

// Refresh reloads the list. Load failures are not shown.
func (h *ConfigHandler) Refresh(c *gin.Context) {
	listRefreshesTotal.Inc()
	_ = h.page(c).Search(h.requestContext(c))
	h.backToList(c)
}

func (h *ConfigHandler) backToList(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(redirectCookieName, "1", 60, "/admin", "", h.secureCookie, true)
	c.Redirect(http.StatusSeeOther, configsPath)
}

func (h *ConfigHandler) consumeRedirectMarker(c *gin.Context) bool {
	if v, err := c.Cookie(redirectCookieName); err != nil || v == "" {
		return false
	}
	c.SetCookie(redirectCookieName, "", -1, "/admin", "", h.secureCookie, true)
	return true
}

func (h *ConfigHandler) setFlash(c *gin.Context, msgType, message string) {
	if err := h.flash.set(c, msgType, message); err != nil {
		h.logger.Error("Failed to set flash message", zap.Error(err))
	}
}

// sessionMiddleware attaches the session's page, creating a session and its
// cookie when needed.
func (h *ConfigHandler) sessionMiddleware(c *gin.Context) {
	cookie, _ := c.Cookie(sessionCookieName)
	id, page := h.sessions.Get(cookie)
	if id != cookie {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookieName, id, int(h.sessionTTL.Seconds()), "/admin", "", h.secureCookie, true)
	}
	activeSessions.Set(float64(h.sessions.Len()))
	c.Set(pageContextKey, page)
	c.Set(operatorContextKey, operatorID(id))
	c.Next()
}

// localeMiddleware resolves the locale and remembers an explicit ?lang= choice.
func (h *ConfigHandler) localeMiddleware(c *gin.Context) {
	loc := h.resolveLocale(c)
	cookie, _ := c.Cookie(langCookieName)
	if c.Query("lang") != "" && loc.Code() != cookie {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(langCookieName, loc.Code(), langCookieMaxAge, "/", "", h.secureCookie, false)
	}
	c.Set(localeContextKey, loc)
	c.Next()
}

func (h *ConfigHandler) resolveLocale(c *gin.Context) i18n.Locale {
	cookie, _ := c.Cookie(langCookieName)
	return h.resolver.Resolve(c.Query("lang"), cookie, c.GetHeader("Accept-Language"))
}

func (h *ConfigHandler) locale(c *gin.Context) i18n.Locale {
	if v, ok := c.Get(localeContextKey); ok {
		if loc, ok := v.(i18n.Locale); ok {
			return loc
		}
	}
	return h.resolveLocale(c)
}

func (h *ConfigHandler) page(c *gin.Context) *console.Page {
	return c.MustGet(pageContextKey).(*console.Page)
}

// requestContext carries the request id through to config-service.
func (h *ConfigHandler) requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if id := sharedMiddleware.GetRequestID(c); id != "" {
		ctx = context.WithValue(ctx, client.RequestIDKey{}, id)
	}
	if op := c.GetString(operatorContextKey); op != "" {
		ctx = context.WithValue(ctx, client.OperatorKey{}, op)
	}
	return ctx
}

// operatorID derives the id sent to config-service from the session id
// without exposing the cookie value.
func operatorID(sessionID string) string {
	sum := sha256.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:16])
}

// RegisterRoutes mounts health, the page routes and a redirect from / and /admin.
func (h *ConfigHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.HEAD("/health", h.Health)

	redirect := func(c *gin.Context) { c.Redirect(http.StatusFound, configsPath) }
	router.GET("/", redirect)
	router.GET("/admin", redirect)

	h.RegisterConfigRoutes(router.Group("/admin"))
}

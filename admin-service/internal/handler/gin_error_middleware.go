package handler

import (
	"net/http"

	"config-console/admin-service/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CustomErrorMiddleware logs handler errors and renders the 404 page for
// unmatched routes.
func (h *ConfigHandler) CustomErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			for _, ginErr := range c.Errors {
				h.logger.Error("Handler error",
					zap.Error(ginErr.Err),
					zap.Any("meta", ginErr.Meta),
					zap.Int("type", int(ginErr.Type)),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
			}
			if !c.Writer.Written() {
				c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}
			return
		}

		status := c.Writer.Status()
		if status == http.StatusNotFound && !c.Writer.Written() {
			loc := h.locale(c)
			c.HTML(http.StatusNotFound, "404.html", web.NotFoundView{
				Lang: loc.Code(),
				T:    h.catalog.Messages(loc),
				Path: c.Request.URL.Path,
			})
			return
		}

		if status >= http.StatusInternalServerError {
			h.logger.Warn("Request resulted in server error status",
				zap.Int("status", status),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
		}
	}
}

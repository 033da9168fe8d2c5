package handler

import (
	"errors"
	"net/http"

	"config-console/config-service/internal/service"
	"config-console/shared/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConfigHandler exposes the console API consumed by admin-service.
type ConfigHandler struct {
	service service.ConfigService
	logger  *zap.Logger
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(svc service.ConfigService, logger *zap.Logger) *ConfigHandler {
	return &ConfigHandler{
		service: svc,
		logger:  logger.Named("ConfigHandler"),
	}
}

// RegisterRoutes mounts the edit-config group. putMiddleware runs only in front
// of putconfig (rate limiting).
func (h *ConfigHandler) RegisterRoutes(r gin.IRouter, putMiddleware ...gin.HandlerFunc) {
	group := r.Group("/api/v1/console/editconfig")
	{
		group.GET("/getconfiglist", h.GetConfigList)

		put := append(append([]gin.HandlerFunc{}, putMiddleware...), h.PutConfig)
		group.POST("/putconfig", put...)
		group.PUT("/putconfig", put...)
	}
}

// GetConfigList returns every configuration as a PageResult.
func (h *ConfigHandler) GetConfigList(c *gin.Context) {
	records, err := h.service.GetConfigList(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list configurations", zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, models.NewPageFailure[models.ConfigurationRecord](models.CodeError, "failed to load configurations"))
		return
	}
	c.JSON(http.StatusOK, models.NewPageSuccess(records))
}

// PutConfig writes one value. dataId and content come from the form body or,
// failing that, from the query string.
func (h *ConfigHandler) PutConfig(c *gin.Context) {
	dataID, okID := formOrQuery(c, "dataId")
	content, okContent := formOrQuery(c, "content")
	if !okID || dataID == "" || !okContent {
		c.JSON(http.StatusBadRequest, models.NewSingleFailure[bool](models.CodeBadRequest, "dataId and content are required"))
		return
	}

	ok, err := h.service.PutConfig(c.Request.Context(), dataID, content)
	if err != nil {
		log := h.logger.With(zap.String("dataId", dataID))
		if errors.Is(err, models.ErrInvalidInput) {
			log.Warn("Rejected configuration write", zap.Error(err))
			c.JSON(http.StatusBadRequest, models.NewSingleFailure[bool](models.CodeBadRequest, err.Error()))
			return
		}
		log.Error("Failed to write configuration", zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, models.NewSingleFailure[bool](models.CodePutFailed, models.MessagePutFailed))
		return
	}
	c.JSON(http.StatusOK, models.NewSingleSuccess(ok))
}

// Health reports liveness.
func (h *ConfigHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func formOrQuery(c *gin.Context, key string) (string, bool) {
	if v, ok := c.GetPostForm(key); ok {
		return v, true
	}
	return c.GetQuery(key)
}

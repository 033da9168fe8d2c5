package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"config-console/shared/middleware"
	"config-console/shared/models"

	"go.uber.org/zap"
)

const (
	listPath = "/api/v1/console/editconfig/getconfiglist"
	putPath  = "/api/v1/console/editconfig/putconfig"

	maxErrorBody = 512
)

// ConfigServiceClient is the console's view of the configuration backend.
type ConfigServiceClient interface {
	ListConfigs(ctx context.Context) ([]models.ConfigurationRecord, error)
	PutConfig(ctx context.Context, name, value string) error
}

type configServiceClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewConfigServiceClient creates a client for config-service.
func NewConfigServiceClient(baseURL string, timeout time.Duration, logger *zap.Logger) (ConfigServiceClient, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL for config service: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &configServiceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("ConfigServiceClient"),
	}, nil
}

func (c *configServiceClient) ListConfigs(ctx context.Context) ([]models.ConfigurationRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+listPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}

	var result models.PageResult[models.ConfigurationRecord]
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: list failed with code %s: %s", models.ErrBackend, result.Code, result.Message)
	}
	return result.Data, nil
}

func (c *configServiceClient) PutConfig(ctx context.Context, name, value string) error {
	form := url.Values{}
	form.Set("dataId", name)
	form.Set("content", value)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+putPath, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create put request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result models.SingleResult[bool]
	if err := c.do(req, &result); err != nil {
		return err
	}
	if !result.Success || !result.Data {
		return fmt.Errorf("%w: put failed with code %s: %s", models.ErrBackend, result.Code, result.Message)
	}
	return nil
}

// do executes req and decodes the JSON envelope. A non-2xx response is still
// decoded when it carries an envelope; otherwise it becomes ErrBackend.
func (c *configServiceClient) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if id, ok := req.Context().Value(RequestIDKey{}).(string); ok && id != "" {
		req.Header.Set(middleware.RequestIDHeader, id)
	}
	if op, ok := req.Context().Value(OperatorKey{}).(string); ok && op != "" {
		req.Header.Set(middleware.OperatorHeader, op)
	}
	log := c.logger.With(zap.String("method", req.Method), zap.String("url", req.URL.Path))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("Config service request failed", zap.Error(err))
		return fmt.Errorf("%w: %v", models.ErrBackend, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %v", models.ErrBackend, err)
	}
	log.Debug("Config service responded", zap.Int("status", resp.StatusCode), zap.Duration("duration", time.Since(start)))

	if decodeErr := json.Unmarshal(body, out); decodeErr != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("%w: unexpected status %d: %s", models.ErrBackend, resp.StatusCode, truncate(body))
		}
		return fmt.Errorf("%w: failed to decode response: %v", models.ErrBackend, decodeErr)
	}
	return nil
}

// RequestIDKey is the context key under which handlers pass the request id
// through to backend calls.
type RequestIDKey struct{}

// OperatorKey is the context key for the opaque operator id sent to
// config-service for per-operator rate limiting.
type OperatorKey struct{}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}

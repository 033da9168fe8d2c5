package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"config-console/config-service/internal/cache"
	"config-console/shared/interfaces"
	"config-console/shared/messaging"
	"config-console/shared/models"

	"go.uber.org/zap"
)

// ConfigService serves the console's two calls: list every configuration and
// write a single value.
type ConfigService interface {
	GetConfigList(ctx context.Context) ([]models.ConfigurationRecord, error)
	PutConfig(ctx context.Context, name, value string) (bool, error)
}

type configServiceImpl struct {
	repo      interfaces.ConfigurationRepository
	cache     cache.ListCache
	publisher messaging.ConfigUpdatePublisher
	logger    *zap.Logger
}

// NewConfigService wires the service. cache and publisher may be nil.
func NewConfigService(
	repo interfaces.ConfigurationRepository,
	listCache cache.ListCache,
	publisher messaging.ConfigUpdatePublisher,
	logger *zap.Logger,
) ConfigService {
	return &configServiceImpl{
		repo:      repo,
		cache:     listCache,
		publisher: publisher,
		logger:    logger.Named("ConfigService"),
	}
}

func (s *configServiceImpl) GetConfigList(ctx context.Context) ([]models.ConfigurationRecord, error) {
	fill := false
	var generation int64
	if s.cache != nil {
		records, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			listCacheLookups.WithLabelValues("error").Inc()
			s.logger.Warn("List cache read failed, falling back to database", zap.Error(err))
		case ok:
			listCacheLookups.WithLabelValues("hit").Inc()
			return records, nil
		default:
			listCacheLookups.WithLabelValues("miss").Inc()
		}

		// taken before the database read so a concurrent write voids the fill
		gen, err := s.cache.Generation(ctx)
		if err != nil {
			s.logger.Warn("Failed to read cache generation, skipping fill", zap.Error(err))
		} else {
			fill, generation = true, gen
		}
	}

	records, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("Failed to get configurations from repository", zap.Error(err))
		return nil, err
	}
	if records == nil {
		records = []models.ConfigurationRecord{}
	}

	if fill {
		if _, err := s.cache.Set(ctx, generation, records); err != nil {
			s.logger.Warn("Failed to fill list cache", zap.Error(err))
		}
	}
	return records, nil
}

func (s *configServiceImpl) PutConfig(ctx context.Context, name, value string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, fmt.Errorf("%w: configuration name is required", models.ErrInvalidInput)
	}
	log := s.logger.With(zap.String("name", name))

	record, err := s.repo.Upsert(ctx, name, value)
	if err != nil {
		log.Error("Failed to upsert configuration", zap.Error(err))
		return false, err
	}
	log.Info("Configuration updated")

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			// stale list is served until the TTL runs out
			log.Warn("Failed to invalidate list cache", zap.Error(err))
		}
	}

	if s.publisher != nil {
		payload := messaging.ConfigUpdatePayload{
			Name:      record.Name,
			Value:     record.Value,
			UpdatedAt: record.UpdatedAt,
		}
		if payload.UpdatedAt.IsZero() {
			payload.UpdatedAt = time.Now().UTC()
		}
		if err := s.publisher.PublishConfigUpdate(ctx, payload); err != nil {
			publishFailures.Inc()
			log.Error("Failed to publish config update after write", zap.Error(err))
		}
	}

	configUpdatesTotal.Inc()
	return true, nil
}

package mocks

import (
	"context"

	"config-console/shared/messaging"
	"config-console/shared/models"

	"github.com/stretchr/testify/mock"
)

// Mock ConfigurationRepository
type ConfigurationRepository struct {
	mock.Mock
}

func (m *ConfigurationRepository) GetAll(ctx context.Context) ([]models.ConfigurationRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]models.ConfigurationRecord)
	return records, args.Error(1)
}

func (m *ConfigurationRepository) GetByName(ctx context.Context, name string) (*models.ConfigurationRecord, error) {
	args := m.Called(ctx, name)
	record, _ := args.Get(0).(*models.ConfigurationRecord)
	return record, args.Error(1)
}

func (m *ConfigurationRepository) Upsert(ctx context.Context, name, value string) (*models.ConfigurationRecord, error) {
	args := m.Called(ctx, name, value)
	record, _ := args.Get(0).(*models.ConfigurationRecord)
	return record, args.Error(1)
}

// Mock ListCache
type ListCache struct {
	mock.Mock
}

func (m *ListCache) Get(ctx context.Context) ([]models.ConfigurationRecord, bool, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]models.ConfigurationRecord)
	return records, args.Bool(1), args.Error(2)
}

func (m *ListCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	gen, _ := args.Get(0).(int64)
	return gen, args.Error(1)
}

func (m *ListCache) Set(ctx context.Context, generation int64, records []models.ConfigurationRecord) (bool, error) {
	args := m.Called(ctx, generation, records)
	return args.Bool(0), args.Error(1)
}

func (m *ListCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Mock ConfigUpdatePublisher
type ConfigUpdatePublisher struct {
	mock.Mock
}

func (m *ConfigUpdatePublisher) PublishConfigUpdate(ctx context.Context, payload messaging.ConfigUpdatePayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// Mock ConfigService
type ConfigService struct {
	mock.Mock
}

func (m *ConfigService) GetConfigList(ctx context.Context) ([]models.ConfigurationRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]models.ConfigurationRecord)
	return records, args.Error(1)
}

func (m *ConfigService) PutConfig(ctx context.Context, name, value string) (bool, error) {
	args := m.Called(ctx, name, value)
	return args.Bool(0), args.Error(1)
}

package mocks

import (
	"context"

	"config-console/shared/models"

	"github.com/stretchr/testify/mock"
)

// Mock ConfigServiceClient; also satisfies console.Backend.
type ConfigServiceClient struct {
	mock.Mock
}

func (m *ConfigServiceClient) ListConfigs(ctx context.Context) ([]models.ConfigurationRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]models.ConfigurationRecord)
	return records, args.Error(1)
}

func (m *ConfigServiceClient) PutConfig(ctx context.Context, name, value string) error {
	args := m.Called(ctx, name, value)
	return args.Error(0)
}

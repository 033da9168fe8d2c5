package interfaces

import (
	"context"

	"config-console/shared/models"
)

// ConfigurationRepository gives access to stored configuration entries.
type ConfigurationRepository interface {
	// GetAll returns every entry ordered by id.
	GetAll(ctx context.Context) ([]models.ConfigurationRecord, error)
	// GetByName returns models.ErrNotFound when the entry does not exist.
	GetByName(ctx context.Context, name string) (*models.ConfigurationRecord, error)
	// Upsert stores value under name. Descriptions of an existing entry are kept.
	Upsert(ctx context.Context, name, value string) (*models.ConfigurationRecord, error)
}

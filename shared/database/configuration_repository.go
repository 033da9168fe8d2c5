package database

import (
	"context"
	"errors"
	"fmt"

	"config-console/shared/interfaces"
	"config-console/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	configurationColumns = `id, name, value, COALESCE(descr_map, '{}'::jsonb) AS descr_map, created_at, updated_at`

	getAllConfigurationsQuery     = `SELECT ` + configurationColumns + ` FROM global_configs ORDER BY id`
	getConfigurationByNameQuery   = `SELECT ` + configurationColumns + ` FROM global_configs WHERE name = $1`
	upsertConfigurationValueQuery = `
        INSERT INTO global_configs (name, value)
        VALUES ($1, $2)
        ON CONFLICT (name) DO UPDATE SET
            value = EXCLUDED.value,
            updated_at = NOW()
        RETURNING ` + configurationColumns
)

type pgConfigurationRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgConfigurationRepository creates a Postgres-backed ConfigurationRepository.
func NewPgConfigurationRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.ConfigurationRepository {
	return &pgConfigurationRepository{
		db:     db,
		logger: logger.Named("ConfigurationRepo"),
	}
}

func (r *pgConfigurationRepository) GetAll(ctx context.Context) ([]models.ConfigurationRecord, error) {
	var records []models.ConfigurationRecord
	if err := pgxscan.Select(ctx, r.db, &records, getAllConfigurationsQuery); err != nil {
		r.logger.Error("Error getting all configurations", zap.Error(err))
		return nil, fmt.Errorf("failed to get all configurations: %w", err)
	}
	if records == nil {
		records = []models.ConfigurationRecord{}
	}
	return records, nil
}

func (r *pgConfigurationRepository) GetByName(ctx context.Context, name string) (*models.ConfigurationRecord, error) {
	var record models.ConfigurationRecord
	err := pgxscan.Get(ctx, r.db, &record, getConfigurationByNameQuery, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Error getting configuration by name", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to get configuration %s: %w", name, err)
	}
	return &record, nil
}

func (r *pgConfigurationRepository) Upsert(ctx context.Context, name, value string) (*models.ConfigurationRecord, error) {
	log := r.logger.With(zap.String("name", name))

	var record models.ConfigurationRecord
	if err := pgxscan.Get(ctx, r.db, &record, upsertConfigurationValueQuery, name, value); err != nil {
		log.Error("Error upserting configuration", zap.Error(err))
		return nil, fmt.Errorf("failed to upsert configuration %s: %w", name, err)
	}
	log.Info("Configuration upserted", zap.Int64("id", record.ID))
	return &record, nil
}

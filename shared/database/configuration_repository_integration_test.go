//go:build integration

package database_test

import (
	"context"
	"testing"
	"time"

	"config-console/shared/database"
	"config-console/shared/interfaces"
	"config-console/shared/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type ConfigurationRepositorySuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	pool        *pgxpool.Pool
	repo        interfaces.ConfigurationRepository
}

func (s *ConfigurationRepositorySuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("console-test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(s.T(), err)
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	logger := zap.NewNop()
	s.pool, err = database.NewPool(ctx, database.PoolConfig{DSN: dsn, MaxRetries: 5, RetryDelay: time.Second}, logger)
	require.NoError(s.T(), err)

	require.NoError(s.T(), database.NewMigrator(s.pool, logger).Up())
	s.repo = database.NewPgConfigurationRepository(s.pool, logger)
}

func (s *ConfigurationRepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(context.Background())
	}
}

func (s *ConfigurationRepositorySuite) TestGetAllReturnsSeededEntriesInIDOrder() {
	records, err := s.repo.GetAll(context.Background())
	s.Require().NoError(err)
	s.Require().GreaterOrEqual(len(records), 5)

	for i := 1; i < len(records); i++ {
		s.Less(records[i-1].ID, records[i].ID)
	}
	s.NotEmpty(records[0].DescrMap["en-us"])
	s.NotEmpty(records[0].DescrMap["zh-cn"])
}

func (s *ConfigurationRepositorySuite) TestUpsertKeepsDescriptions() {
	ctx := context.Background()
	before, err := s.repo.GetByName(ctx, "server.undo.logSaveDays")
	s.Require().NoError(err)

	updated, err := s.repo.Upsert(ctx, "server.undo.logSaveDays", "14")
	s.Require().NoError(err)
	s.Equal(before.ID, updated.ID)
	s.Equal("14", updated.Value)
	s.Equal(before.DescrMap, updated.DescrMap)
	s.False(updated.UpdatedAt.Before(before.UpdatedAt))
}

func (s *ConfigurationRepositorySuite) TestUpsertCreatesUnknownName() {
	ctx := context.Background()
	created, err := s.repo.Upsert(ctx, "console.test.newKey", "v1")
	s.Require().NoError(err)
	s.NotZero(created.ID)
	s.Empty(created.DescrMap)

	got, err := s.repo.GetByName(ctx, "console.test.newKey")
	s.Require().NoError(err)
	s.Equal("v1", got.Value)
}

func (s *ConfigurationRepositorySuite) TestGetByNameNotFound() {
	_, err := s.repo.GetByName(context.Background(), "does.not.exist")
	s.ErrorIs(err, models.ErrNotFound)
}

func TestConfigurationRepositorySuite(t *testing.T) {
	suite.Run(t, new(ConfigurationRepositorySuite))
}

package postgres

import (
	"context"
	"fmt"
	"github.com/ZertGraf/bugtracker/internal/pkg/logger"
	"github.com/ZertGraf/bugtracker/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/tern/v2/migrate"
	"io/fs"
	"time"
)

type MigrationConfig struct {
	Timeout   time.Duration `json:"timeout"`
	TableName string        `json:"table_name"`
	Enabled   bool          `json:"enabled"`
	Files     fs.FS         `json:"-"` // defaults to the embedded schema
}

type Migrator struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
	config *MigrationConfig
}

func NewMigrator(pool *pgxpool.Pool, config *MigrationConfig, logger *logger.Logger) *Migrator {
	if config.Files == nil {
		config.Files = migrations.MigrationFiles
	}
	return &Migrator{
		pool:   pool,
		logger: logger.Component("postgres/migrator"),
		config: config,
	}
}

func (m *Migrator) RunMigrations(ctx context.Context) error {
	if !m.config.Enabled {
		m.logger.Info("migrations disabled, skipping")
		return nil
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	return m.withMigrator(ctx, func(migrator *migrate.Migrator) error {
		currentVersion, err := migrator.GetCurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("get current version: %w", err)
		}

		latest := latestVersion(migrator)
		if latest <= currentVersion {
			m.logger.Info("database schema up to date",
				"current_version", currentVersion,
				"latest_version", latest)
			return nil
		}

		m.logger.Info("applying database migrations",
			"current_version", currentVersion,
			"target_version", latest,
			"pending_migrations", latest-currentVersion)

		migrator.OnStart = func(sequence int32, name, direction, _ string) {
			m.logger.Info("migration started", "sequence", sequence, "name", name, "direction", direction)
		}

		if err = migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}

		finalVersion, err := migrator.GetCurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("get final version: %w", err)
		}

		m.logger.Info("migrations completed successfully",
			"from_version", currentVersion,
			"to_version", finalVersion,
			"duration", time.Since(start))
		return nil
	})
}

// Health fails when the schema is behind the embedded migrations.
func (m *Migrator) Health(ctx context.Context) error {
	return m.withMigrator(ctx, func(migrator *migrate.Migrator) error {
		current, err := migrator.GetCurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("get current version: %w", err)
		}
		if latest := latestVersion(migrator); current < latest {
			return fmt.Errorf("schema version %d behind latest %d", current, latest)
		}
		return nil
	})
}

func (m *Migrator) withMigrator(ctx context.Context, fn func(*migrate.Migrator) error) error {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	migrator, err := migrate.NewMigrator(ctx, conn.Conn(), m.config.TableName)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err = migrator.LoadMigrations(m.config.Files); err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	return fn(migrator)
}

func latestVersion(migrator *migrate.Migrator) int32 {
	latest := int32(0)
	for _, migration := range migrator.Migrations {
		latest = max(latest, migration.Sequence)
	}
	return latest
}

package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/walruspass/walruspass/common/config"
	"github.com/walruspass/walruspass/common/logger"
	"github.com/walruspass/walruspass/migrations"
)

// Migrate applies embedded schema migrations. It opens a separate database/sql
// connection because goose does not speak pgxpool.
func Migrate(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	conn, err := sql.Open("pgx", cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer conn.Close()

	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, conn, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	log.Info("schema migrations applied")
	return nil
}

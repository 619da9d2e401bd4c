package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/postgres/*.sql migrations/mysql/*.sql
var migrations embed.FS

// gooseUpContext — шов для тестов.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate накатывает встроенные миграции для диалекта драйвера.
func Migrate(ctx context.Context, gdb *gorm.DB, driver string) error {
	var dir string
	switch driver {
	case DriverPostgres:
		dir = "migrations/postgres"
	case DriverMySQL:
		dir = "migrations/mysql"
	default:
		return fmt.Errorf("no migrations for driver %q", driver)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(driver); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, sqlDB, dir); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations 将数据库 schema 迁移到最新版本
// 迁移脚本编译进二进制，部署时无需携带 SQL 文件
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("读取内嵌迁移脚本失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("初始化迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("构建迁移实例失败: %w", err)
	}

	err = m.Up()
	switch {
	case err == nil:
		version, _, _ := m.Version()
		logger.Info("schema 迁移完成", zap.Uint("version", version))
	case errors.Is(err, migrate.ErrNoChange):
		version, dirty, _ := m.Version()
		if dirty {
			// dirty 状态需要人工介入修复 schema_migrations 表
			return fmt.Errorf("迁移版本 %d 处于 dirty 状态，需手动修复", version)
		}
		logger.Info("schema 已是最新", zap.Uint("version", version))
	default:
		return fmt.Errorf("应用迁移失败: %w", err)
	}

	return nil
}

// Package db owns the analytical store: connections, schema migration,
// the drop-and-reload table loads and the view layer. Every run fully
// replaces the store, so re-running the pipeline on unchanged input is
// idempotent.
package db

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pitwall/internal/config"
)

// DSN builds a MySQL DSN for the configured server.
func DSN(host string, port int, database string) string {
	return fmt.Sprintf("root@tcp(%s:%d)/%s?parseTime=true", host, port, database)
}

// Connect opens a GORM connection to the configured store.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case "mysql":
		dsn := DSN(cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, fmt.Errorf("db: connect to %s:%d/%s: %w",
				cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, err)
		}
		return db, nil
	default:
		db, err := gorm.Open(sqlite.Open(cfg.Database.Path), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, fmt.Errorf("db: open sqlite %s: %w", cfg.Database.Path, err)
		}
		return db, nil
	}
}

// ConnectAdmin opens a GORM connection to the MySQL server without
// selecting a database, used for DROP/CREATE DATABASE.
func ConnectAdmin(host string, port int) (*gorm.DB, error) {
	dsn := fmt.Sprintf("root@tcp(%s:%d)/?parseTime=true", host, port)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: admin connect to %s:%d: %w", host, port, err)
	}
	return db, nil
}

// DropDatabase drops the named database if it exists.
func DropDatabase(adminDB *gorm.DB, name string) error {
	sql := fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", name)
	if err := adminDB.Exec(sql).Error; err != nil {
		return fmt.Errorf("db: drop database %s: %w", name, err)
	}
	return nil
}

// CreateDatabase creates the named database if it doesn't already exist.
func CreateDatabase(adminDB *gorm.DB, name string) error {
	sql := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)
	if err := adminDB.Exec(sql).Error; err != nil {
		return fmt.Errorf("db: create database %s: %w", name, err)
	}
	return nil
}

// Recreate resets the configured store to empty. The sqlite file is
// deleted and recreated on the next connect; the mysql database is
// dropped and created through an admin connection.
func Recreate(cfg *config.Config) error {
	switch cfg.Database.Driver {
	case "mysql":
		adminDB, err := ConnectAdmin(cfg.Database.Host, cfg.Database.Port)
		if err != nil {
			return err
		}
		if err := DropDatabase(adminDB, cfg.Database.Name); err != nil {
			return err
		}
		return CreateDatabase(adminDB, cfg.Database.Name)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return fmt.Errorf("db: create store dir: %w", err)
		}
		if err := os.Remove(cfg.Database.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("db: remove %s: %w", cfg.Database.Path, err)
		}
		return nil
	}
}

package database

import (
	"fmt"
	"log/slog"

	"supermarket-inventory/internal/config"
	"supermarket-inventory/internal/logger"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenGorm opens a SQL database for driver (sqlite or postgres) with query tracing.
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if err := db.Use(otelgorm.NewPlugin(otelgorm.WithDBName(driver))); err != nil {
		return nil, fmt.Errorf("register otelgorm: %w", err)
	}

	logger.Instance().Info("Connected to SQL database", slog.String("driver", driver))
	return db, nil
}

// CloseGorm closes the pool behind db.
func CloseGorm(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

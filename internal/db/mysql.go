package db

import (
	"context"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recipeapi/internal/dbwait"
	"recipeapi/internal/model"
)

// NewMySQL returns a connected GORM DB instance. Opening pings the server,
// so a nil error means the database accepted a connection.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), Config())
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// Config is the GORM configuration shared by every dialect we open.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Ping checks that the underlying connection pool can reach the server.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// WaitForMySQL opens dsn through the gate, blocking until MySQL answers.
func WaitForMySQL(dsn string, gate *dbwait.Gate) *gorm.DB {
	var conn *gorm.DB
	gate.Wait(func() error {
		var err error
		conn, err = NewMySQL(dsn)
		return err
	})
	return conn
}

package persistence

import (
	"errors"
	"fmt"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/infrastructure/configuration"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrMySQLDisabled is returned when no MySQL host is configured.
var ErrMySQLDisabled = errors.New("mysql not configured")

// NewRepositories opens the MySQL database that holds the uploaded-video mirror and migrates it.
func NewRepositories() (*gorm.DB, error) {
	cfg := configuration.C.Database.MySql
	if cfg.Host == "" {
		return nil, ErrMySQLDisabled
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := db.AutoMigrate(&model.YouTubeVideo{}); err != nil {
		return nil, fmt.Errorf("migrate youtube_videos: %w", err)
	}
	return db, nil
}

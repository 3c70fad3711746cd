package database

import (
	"strings"

	"github.com/pathakanu/myPlants/internal/model"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New creates a GORM database connection.
// When databaseURL is provided PostgreSQL is used, otherwise SQLite at sqlitePath is used.
func New(databaseURL, sqlitePath string, log logrus.FieldLogger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if databaseURL != "" {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(sqlitePath)
	}

	db, err := Open(dialector)
	if err != nil {
		return nil, err
	}

	logBackend(db, sqlitePath, log)
	return db, nil
}

// Open connects with the given dialector and migrates the schema.
// Tests use it with an in-memory SQLite DSN.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the plants, watering_history, notifications and profiles tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Profile{},
		&model.Plant{},
		&model.WateringEvent{},
		&model.Notification{},
	)
}

func logBackend(db *gorm.DB, sqlitePath string, log logrus.FieldLogger) {
	dialector := db.Dialector.Name()
	switch strings.ToLower(dialector) {
	case "postgres":
		log.Info("database: connected to PostgreSQL")
	case "sqlite":
		log.WithField("path", sqlitePath).Info("database: using SQLite")
	default:
		log.Infof("database: connected via %s", dialector)
	}
}

package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/hrithikv/CourantInstituteNYUHyperloop/config"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/models"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/store"
)

// Default seed: every metric table starts with one reading per sensor 1-4 so
// a fresh database never needs to special-case "no data yet".
const (
	seedValue  = "-1"
	seedSeqNum = "0"
)

var seedSensorIDs = []string{"1", "2", "3", "4"}

// TelemetryDatabase owns the storage connection and the three metric stores.
// One instance per process or test run; nothing else holds raw storage.
type TelemetryDatabase struct {
	cfg *config.Config
	log logrus.FieldLogger
	db  *gorm.DB

	temperature *store.MetricStore
	distance    *store.MetricStore
	speed       *store.MetricStore
}

// NewTelemetryDatabase creates an unconnected database; call Init before use
func NewTelemetryDatabase(cfg *config.Config, log logrus.FieldLogger) *TelemetryDatabase {
	return &TelemetryDatabase{
		cfg: cfg,
		log: log,
	}
}

// Init connects to the storage backend, migrates the three metric tables and
// seeds the defaults. A connection failure is returned for the caller to treat
// as fatal; the service cannot run degraded.
func (t *TelemetryDatabase) Init() error {
	db, err := Connect(t.cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	t.db = db

	for _, metric := range models.AllMetrics() {
		if err := t.db.Table(metric).AutoMigrate(&models.Reading{}); err != nil {
			return fmt.Errorf("failed to migrate table %s: %w", metric, err)
		}
	}

	if err := t.seedDefaults(); err != nil {
		return err
	}

	t.temperature = store.New(t.db, models.MetricTemperature, t.log)
	t.distance = store.New(t.db, models.MetricDistance, t.log)
	t.speed = store.New(t.db, models.MetricSpeed, t.log)

	t.log.WithField("driver", t.cfg.Database.Driver).Info("telemetry database initialized")
	return nil
}

// seedDefaults inserts the baseline readings for sensors 1-4. A table is
// seeded only when empty: re-seeding a table that already holds data would
// insert rows after the real readings and shadow them in latest queries.
func (t *TelemetryDatabase) seedDefaults() error {
	for _, metric := range models.AllMetrics() {
		var count int64
		if err := t.db.Table(metric).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count rows in %s: %w", metric, err)
		}
		if count > 0 {
			continue
		}

		for _, sensorID := range seedSensorIDs {
			reading := models.Reading{
				SensorID:    sensorID,
				SensorValue: seedValue,
				SeqNum:      seedSeqNum,
			}
			if err := t.db.Table(metric).Create(&reading).Error; err != nil {
				return fmt.Errorf("failed to seed table %s: %w", metric, err)
			}
		}
		t.log.WithField("metric", metric).Info("seeded default readings")
	}

	return nil
}

// Close releases the storage connection. Idempotent: closing an already
// closed database only logs.
func (t *TelemetryDatabase) Close() error {
	if t.db == nil {
		t.log.Info("database already closed")
		return nil
	}

	sqlDB, err := t.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	t.db = nil
	t.log.Info("database closed")
	return nil
}

// ClearAll drops every table in the database, not just the three metric
// tables. Administrative reset for test and dev environments; the route
// exposing it is unauthenticated, so production deployments must gate it.
func (t *TelemetryDatabase) ClearAll() error {
	if t.db == nil {
		return fmt.Errorf("database not connected")
	}

	tables, err := t.db.Migrator().GetTables()
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	for _, table := range tables {
		if err := t.db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	t.log.WithField("tables", len(tables)).Warn("dropped all tables")
	return nil
}

// DB exposes the underlying connection for administrative commands
func (t *TelemetryDatabase) DB() *gorm.DB {
	return t.db
}

// Store returns the metric store for the named metric table
func (t *TelemetryDatabase) Store(metric string) (*store.MetricStore, error) {
	switch metric {
	case models.MetricTemperature:
		return t.temperature, nil
	case models.MetricDistance:
		return t.distance, nil
	case models.MetricSpeed:
		return t.speed, nil
	default:
		return nil, fmt.Errorf("unknown metric: %s", metric)
	}
}

// WriteTemp appends a temperature reading
func (t *TelemetryDatabase) WriteTemp(ctx context.Context, sensorID, value, seqNum string) error {
	return t.temperature.Append(ctx, sensorID, value, seqNum)
}

// WriteDist appends a distance reading
func (t *TelemetryDatabase) WriteDist(ctx context.Context, sensorID, value, seqNum string) error {
	return t.distance.Append(ctx, sensorID, value, seqNum)
}

// WriteSpeed appends a speed reading
func (t *TelemetryDatabase) WriteSpeed(ctx context.Context, sensorID, value, seqNum string) error {
	return t.speed.Append(ctx, sensorID, value, seqNum)
}

// ReadLastTemp returns the latest temperature reading for a sensor
func (t *TelemetryDatabase) ReadLastTemp(ctx context.Context, sensorID string) (*models.Reading, error) {
	return t.temperature.Latest(ctx, sensorID)
}

// ReadLastDist returns the latest distance reading for a sensor
func (t *TelemetryDatabase) ReadLastDist(ctx context.Context, sensorID string) (*models.Reading, error) {
	return t.distance.Latest(ctx, sensorID)
}

// ReadLastSpeed returns the latest speed reading for a sensor
func (t *TelemetryDatabase) ReadLastSpeed(ctx context.Context, sensorID string) (*models.Reading, error) {
	return t.speed.Latest(ctx, sensorID)
}

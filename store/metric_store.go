package store

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/hrithikv/CourantInstituteNYUHyperloop/models"
)

// MetricStore is an append-only log of readings for one metric, keyed by
// sensor ID. Rows are never updated; the auto-increment primary key is the
// insertion order, so "latest" is the greatest ID for a sensor.
type MetricStore struct {
	db     *gorm.DB
	metric string
	log    logrus.FieldLogger
}

// New creates a store bound to the named metric table
func New(db *gorm.DB, metric string, log logrus.FieldLogger) *MetricStore {
	return &MetricStore{
		db:     db,
		metric: metric,
		log:    log.WithField("metric", metric),
	}
}

// Metric returns the metric table name
func (s *MetricStore) Metric() string {
	return s.metric
}

// Append inserts one reading. Arguments are assumed non-empty; validation
// happens at the HTTP boundary. No retries: a write fault surfaces to the
// caller tagged with the metric name.
func (s *MetricStore) Append(ctx context.Context, sensorID, value, seqNum string) error {
	reading := models.Reading{
		SensorID:    sensorID,
		SensorValue: value,
		SeqNum:      seqNum,
	}

	if err := s.db.WithContext(ctx).Table(s.metric).Create(&reading).Error; err != nil {
		s.log.WithError(err).WithField("sensorID", sensorID).Error("append failed")
		return models.NewStorageWrite(s.metric, err)
	}

	return nil
}

// Latest returns the most-recently-inserted reading for the sensor, ordered
// by primary key descending. A sensor with no rows is a not-found error,
// distinct from an I/O fault.
func (s *MetricStore) Latest(ctx context.Context, sensorID string) (*models.Reading, error) {
	var reading models.Reading

	err := s.db.WithContext(ctx).
		Table(s.metric).
		Where("sensor_id = ?", sensorID).
		Order("id DESC").
		First(&reading).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFound(s.metric, sensorID)
	}
	if err != nil {
		s.log.WithError(err).WithField("sensorID", sensorID).Error("latest read failed")
		return nil, models.NewStorageRead(s.metric, err)
	}

	return &reading, nil
}

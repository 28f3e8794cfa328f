package store

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hrithikv/CourantInstituteNYUHyperloop/logger"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/models"
)

func newTestStore(t *testing.T, metric string) *MetricStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "readings.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.Table(metric).AutoMigrate(&models.Reading{}))

	return New(db, metric, logger.Discard())
}

func TestAppendThenLatest(t *testing.T) {
	s := newTestStore(t, models.MetricTemperature)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "1", "26", "5"))

	reading, err := s.Latest(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "26", reading.SensorValue)
	assert.Equal(t, "5", reading.SeqNum)
}

func TestLatestReflectsMostRecentAppend(t *testing.T) {
	s := newTestStore(t, models.MetricSpeed)
	ctx := context.Background()

	for i, value := range []string{"10", "20", "30", "40"} {
		require.NoError(t, s.Append(ctx, "2", value, strconv.Itoa(i+1)))
	}

	reading, err := s.Latest(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "40", reading.SensorValue)
}

func TestLatestIgnoresOtherSensors(t *testing.T) {
	s := newTestStore(t, models.MetricDistance)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "1", "100", "1"))
	require.NoError(t, s.Append(ctx, "2", "200", "1"))
	require.NoError(t, s.Append(ctx, "1", "150", "2"))

	reading, err := s.Latest(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "150", reading.SensorValue)

	reading, err = s.Latest(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "200", reading.SensorValue)
}

func TestLatestUnknownSensorIsNotFound(t *testing.T) {
	s := newTestStore(t, models.MetricTemperature)

	_, err := s.Latest(context.Background(), "99")
	require.Error(t, err)

	tagged, ok := models.AsError(err)
	require.True(t, ok)
	assert.Equal(t, models.CodeNotFound, tagged.Code)
	assert.Equal(t, models.MetricTemperature, tagged.Metric)
	assert.Contains(t, tagged.Message, "99")
}

func TestValuesStayOpaqueStrings(t *testing.T) {
	s := newTestStore(t, models.MetricTemperature)
	ctx := context.Background()

	// Non-numeric input is stored as-is; the store never parses values
	require.NoError(t, s.Append(ctx, "3", "not-a-number", "007"))

	reading, err := s.Latest(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "not-a-number", reading.SensorValue)
	assert.Equal(t, "007", reading.SeqNum)
}

package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrithikv/CourantInstituteNYUHyperloop/config"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/logger"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			SQLite: config.SQLiteConfig{
				Path: filepath.Join(t.TempDir(), "telemetry.db"),
			},
		},
	}
}

func newTestDatabase(t *testing.T) *TelemetryDatabase {
	t.Helper()
	db := NewTelemetryDatabase(testConfig(t), logger.Discard())
	require.NoError(t, db.Init())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInitSeedsDefaults(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	reads := map[string]func(context.Context, string) (*models.Reading, error){
		models.MetricTemperature: db.ReadLastTemp,
		models.MetricDistance:    db.ReadLastDist,
		models.MetricSpeed:       db.ReadLastSpeed,
	}

	for metric, read := range reads {
		for _, sensorID := range []string{"1", "2", "3", "4"} {
			reading, err := read(ctx, sensorID)
			require.NoError(t, err, "metric %s sensor %s", metric, sensorID)
			assert.Equal(t, "-1", reading.SensorValue)
			assert.Equal(t, "0", reading.SeqNum)
		}
	}
}

func TestUnseededSensorIsNotFound(t *testing.T) {
	db := newTestDatabase(t)

	_, err := db.ReadLastTemp(context.Background(), "99")
	require.Error(t, err)

	tagged, ok := models.AsError(err)
	require.True(t, ok)
	assert.Equal(t, models.CodeNotFound, tagged.Code)
}

func TestWriteReadRoundTrip(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.WriteTemp(ctx, "1", "26", "5"))
	require.NoError(t, db.WriteDist(ctx, "1", "340", "5"))
	require.NoError(t, db.WriteSpeed(ctx, "1", "88", "5"))

	temp, err := db.ReadLastTemp(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "26", temp.SensorValue)

	dist, err := db.ReadLastDist(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "340", dist.SensorValue)

	speed, err := db.ReadLastSpeed(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "88", speed.SensorValue)
}

func TestSeedOnlyWhenEmpty(t *testing.T) {
	cfg := testConfig(t)
	log := logger.Discard()
	ctx := context.Background()

	db := NewTelemetryDatabase(cfg, log)
	require.NoError(t, db.Init())
	require.NoError(t, db.WriteTemp(ctx, "1", "42", "9"))
	require.NoError(t, db.Close())

	// A restart against the same database must not re-seed and shadow the
	// real reading with a default
	db = NewTelemetryDatabase(cfg, log)
	require.NoError(t, db.Init())
	defer db.Close()

	reading, err := db.ReadLastTemp(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "42", reading.SensorValue)
	assert.Equal(t, "9", reading.SeqNum)
}

func TestCloseIsIdempotent(t *testing.T) {
	db := NewTelemetryDatabase(testConfig(t), logger.Discard())
	require.NoError(t, db.Init())

	require.NoError(t, db.Close())
	require.NoError(t, db.Close())
}

func TestClearAllDropsEveryTable(t *testing.T) {
	db := newTestDatabase(t)

	require.NoError(t, db.ClearAll())

	for _, metric := range models.AllMetrics() {
		assert.False(t, db.DB().Migrator().HasTable(metric))
	}
}

func TestStoreLookup(t *testing.T) {
	db := newTestDatabase(t)

	for _, metric := range models.AllMetrics() {
		s, err := db.Store(metric)
		require.NoError(t, err)
		assert.Equal(t, metric, s.Metric())
	}

	_, err := db.Store("Humidity")
	assert.Error(t, err)
}

package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hrithikv/CourantInstituteNYUHyperloop/logger"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "import.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Table(models.MetricTemperature).AutoMigrate(&models.Reading{}))
	return db
}

func writeCSV(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
}

func TestScanDirectoryImportsReadings(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	writeCSV(t, dir, "run1.csv", "sensorId,value,seqNum\n1,26.5,1\n2,27.0,1\n1,26.8,2\n")
	writeCSV(t, dir, "run2.csv", "3,25.1,1\n4,24.9,1\n")

	cs := NewCSVScanner(db, models.MetricTemperature, logger.Discard())
	require.NoError(t, cs.ScanDirectory(dir))

	var count int64
	require.NoError(t, db.Table(models.MetricTemperature).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestScanDirectorySkipsBadRows(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	// Rows with missing fields are counted as errors, not imported
	writeCSV(t, dir, "mixed.csv", "1,26.5,1\n,27.0,1\n2,,2\n3,25.0\n4,24.0,3\n")

	cs := NewCSVScanner(db, models.MetricTemperature, logger.Discard())
	require.NoError(t, cs.ScanDirectory(dir))

	var count int64
	require.NoError(t, db.Table(models.MetricTemperature).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestScanDirectoryMissing(t *testing.T) {
	cs := NewCSVScanner(newTestDB(t), models.MetricTemperature, logger.Discard())
	assert.Error(t, cs.ScanDirectory(filepath.Join(t.TempDir(), "absent")))
}

func TestScanDirectoryIgnoresNonCSV(t *testing.T) {
	db := newTestDB(t)
	dir := t.TempDir()

	writeCSV(t, dir, "notes.txt", "1,26.5,1\n")

	cs := NewCSVScanner(db, models.MetricTemperature, logger.Discard())
	require.NoError(t, cs.ScanDirectory(dir))

	var count int64
	require.NoError(t, db.Table(models.MetricTemperature).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

package scanner

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/hrithikv/CourantInstituteNYUHyperloop/models"
)

// CSVScanner bulk-loads historical readings for one metric from a directory
// of CSV files. Rows are `sensorId,value,seqNum`; values and sequence numbers
// stay opaque strings, matching the storage contract.
type CSVScanner struct {
	db          *gorm.DB
	metric      string
	log         logrus.FieldLogger
	workerCount int
}

// FileJob represents a CSV file to be processed
type FileJob struct {
	FilePath string
	FileName string
}

// ProcessResult contains the result of processing a CSV file
type ProcessResult struct {
	FilePath    string
	RecordCount int
	ErrorCount  int
	Duration    time.Duration
	Error       error
}

// NewCSVScanner creates a scanner importing into the named metric table
func NewCSVScanner(db *gorm.DB, metric string, log logrus.FieldLogger) *CSVScanner {
	// Default to number of CPU cores for parallel processing
	workerCount := runtime.NumCPU()
	if workerCount > 8 {
		workerCount = 8 // Limit to 8 workers to avoid overwhelming the database
	}

	return &CSVScanner{
		db:          db,
		metric:      metric,
		log:         log.WithField("metric", metric),
		workerCount: workerCount,
	}
}

// SetWorkerCount sets the number of parallel workers
func (cs *CSVScanner) SetWorkerCount(count int) {
	if count > 0 {
		cs.workerCount = count
	}
}

// ScanDirectory scans a directory for CSV files and imports them in parallel
func (cs *CSVScanner) ScanDirectory(directoryPath string) error {
	cs.log.WithField("directory", directoryPath).Info("scanning directory")

	// Check if directory exists
	if _, err := os.Stat(directoryPath); os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", directoryPath)
	}

	// Find all CSV files
	csvFiles, err := cs.findCSVFiles(directoryPath)
	if err != nil {
		return fmt.Errorf("failed to find CSV files: %w", err)
	}

	if len(csvFiles) == 0 {
		cs.log.Info("no CSV files found in the directory")
		return nil
	}

	cs.log.WithFields(logrus.Fields{
		"files":   len(csvFiles),
		"workers": cs.workerCount,
	}).Info("processing CSV files")

	// Process files in parallel
	results := cs.processFilesParallel(csvFiles)

	// Log results summary
	cs.logSummary(results)

	return nil
}

// findCSVFiles finds all CSV files in the specified directory (non-recursive)
func (cs *CSVScanner) findCSVFiles(directoryPath string) ([]FileJob, error) {
	var csvFiles []FileJob

	entries, err := os.ReadDir(directoryPath)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		// Skip subdirectories
		if entry.IsDir() {
			continue
		}

		if strings.ToLower(filepath.Ext(entry.Name())) == ".csv" {
			filePath := filepath.Join(directoryPath, entry.Name())
			csvFiles = append(csvFiles, FileJob{
				FilePath: filePath,
				FileName: entry.Name(),
			})
		}
	}

	return csvFiles, nil
}

// processFilesParallel processes CSV files in parallel using worker goroutines
func (cs *CSVScanner) processFilesParallel(files []FileJob) []ProcessResult {
	jobs := make(chan FileJob, len(files))
	results := make(chan ProcessResult, len(files))

	// Start worker goroutines
	var wg sync.WaitGroup
	for i := 0; i < cs.workerCount; i++ {
		wg.Add(1)
		go cs.worker(jobs, results, &wg)
	}

	// Send jobs
	go func() {
		for _, file := range files {
			jobs <- file
		}
		close(jobs)
	}()

	// Collect results
	go func() {
		wg.Wait()
		close(results)
	}()

	var allResults []ProcessResult
	for result := range results {
		allResults = append(allResults, result)
	}

	return allResults
}

// worker processes CSV files from the job channel
func (cs *CSVScanner) worker(jobs <-chan FileJob, results chan<- ProcessResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		result := cs.processCSVFile(job)
		results <- result
	}
}

// processCSVFile processes a single CSV file
func (cs *CSVScanner) processCSVFile(job FileJob) ProcessResult {
	startTime := time.Now()
	result := ProcessResult{
		FilePath: job.FilePath,
	}

	cs.log.WithField("file", job.FileName).Info("processing file")

	file, err := os.Open(job.FilePath)
	if err != nil {
		result.Error = fmt.Errorf("failed to open file: %w", err)
		result.Duration = time.Since(startTime)
		return result
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	records, err := reader.ReadAll()
	if err != nil {
		result.Error = fmt.Errorf("failed to read CSV: %w", err)
		result.Duration = time.Since(startTime)
		return result
	}

	if len(records) == 0 {
		result.Error = fmt.Errorf("empty CSV file")
		result.Duration = time.Since(startTime)
		return result
	}

	// Process records (skip header if present)
	readings, errorCount := cs.parseCSVRecords(records, job.FileName)
	result.RecordCount = len(readings)
	result.ErrorCount = errorCount

	// Batch insert readings
	if len(readings) > 0 {
		if err := cs.batchInsertReadings(readings); err != nil {
			result.Error = fmt.Errorf("failed to insert data: %w", err)
			result.Duration = time.Since(startTime)
			return result
		}
	}

	result.Duration = time.Since(startTime)
	cs.log.WithFields(logrus.Fields{
		"file":     job.FileName,
		"records":  result.RecordCount,
		"errors":   result.ErrorCount,
		"duration": result.Duration,
	}).Info("completed file")

	return result
}

// parseCSVRecords parses CSV records into Reading structs
func (cs *CSVScanner) parseCSVRecords(records [][]string, fileName string) ([]models.Reading, int) {
	var readings []models.Reading
	var errorCount int

	// Detect if first row is header
	startRow := 0
	if len(records) > 0 && cs.isHeaderRow(records[0]) {
		startRow = 1
	}

	for i := startRow; i < len(records); i++ {
		record := records[i]

		// Skip empty rows
		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}

		// Expect at least 3 columns: sensorId, value, seqNum
		if len(record) < 3 {
			errorCount++
			cs.log.Warnf("row %d in %s has insufficient columns (expected 3, got %d)",
				i+1, fileName, len(record))
			continue
		}

		sensorID := strings.TrimSpace(record[0])
		if sensorID == "" {
			errorCount++
			cs.log.Warnf("row %d in %s has empty sensorId", i+1, fileName)
			continue
		}

		value := strings.TrimSpace(record[1])
		if value == "" {
			errorCount++
			cs.log.Warnf("row %d in %s has empty value", i+1, fileName)
			continue
		}

		seqNum := strings.TrimSpace(record[2])
		if seqNum == "" {
			errorCount++
			cs.log.Warnf("row %d in %s has empty seqNum", i+1, fileName)
			continue
		}

		readings = append(readings, models.Reading{
			SensorID:    sensorID,
			SensorValue: value,
			SeqNum:      seqNum,
		})
	}

	return readings, errorCount
}

// isHeaderRow checks if the first row is likely a header
func (cs *CSVScanner) isHeaderRow(row []string) bool {
	if len(row) < 3 {
		return false
	}

	firstCol := strings.ToLower(strings.TrimSpace(row[0]))
	headerWords := []string{"sensorid", "sensor_id", "sensor", "id"}

	for _, word := range headerWords {
		if firstCol == word {
			return true
		}
	}

	return false
}

// batchInsertReadings inserts readings in batches to improve performance
func (cs *CSVScanner) batchInsertReadings(readings []models.Reading) error {
	const batchSize = 1000

	for i := 0; i < len(readings); i += batchSize {
		end := i + batchSize
		if end > len(readings) {
			end = len(readings)
		}

		batch := readings[i:end]

		// Use GORM's CreateInBatches for efficient batch insertion
		if err := cs.db.Table(cs.metric).CreateInBatches(batch, batchSize).Error; err != nil {
			// If batch insert fails, try individual inserts to identify problematic records
			return cs.individualInsert(batch)
		}
	}

	return nil
}

// individualInsert attempts to insert records individually when batch insert fails
func (cs *CSVScanner) individualInsert(readings []models.Reading) error {
	var lastError error
	successCount := 0

	for _, reading := range readings {
		reading.ID = 0
		if err := cs.db.Table(cs.metric).Create(&reading).Error; err != nil {
			lastError = err
			// Log the error but continue with other records
			cs.log.Warnf("failed to insert reading for sensor %s seq %s: %v",
				reading.SensorID, reading.SeqNum, err)
		} else {
			successCount++
		}
	}

	if successCount == 0 && lastError != nil {
		return fmt.Errorf("failed to insert any records: %w", lastError)
	}

	if lastError != nil {
		cs.log.Warnf("inserted %d out of %d records with some errors", successCount, len(readings))
	}

	return nil
}

// logSummary logs a summary of the processing results
func (cs *CSVScanner) logSummary(results []ProcessResult) {
	totalRecords := 0
	totalErrors := 0
	successfulFiles := 0
	failedFiles := 0
	totalDuration := time.Duration(0)

	for _, result := range results {
		if result.Error != nil {
			failedFiles++
			cs.log.WithError(result.Error).Errorf("failed: %s", filepath.Base(result.FilePath))
		} else {
			successfulFiles++
			totalRecords += result.RecordCount
			totalErrors += result.ErrorCount
		}
		totalDuration += result.Duration
	}

	cs.log.WithFields(logrus.Fields{
		"files":      len(results),
		"successful": successfulFiles,
		"failed":     failedFiles,
		"records":    totalRecords,
		"row_errors": totalErrors,
		"duration":   totalDuration,
	}).Info("import summary")
}

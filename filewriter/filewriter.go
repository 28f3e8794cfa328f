package filewriter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// FileWriter keeps a plain-text audit log per metric under a data directory
// and reads local files for the HTTP surface. Appends use O_APPEND; no
// atomicity with the database write is guaranteed or required.
type FileWriter struct {
	dir string
	log logrus.FieldLogger
}

// New creates a FileWriter rooted at dir, creating the directory if needed
func New(dir string, log logrus.FieldLogger) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &FileWriter{dir: dir, log: log}, nil
}

// WriteFile appends one timestamped line to the metric's audit log
func (f *FileWriter) WriteFile(metric, sensorID, value string) error {
	path := filepath.Join(f.dir, metric+".log")

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log %s: %w", path, err)
	}
	defer file.Close()

	line := fmt.Sprintf("%s,%s,%s\n", time.Now().UTC().Format(time.RFC3339), sensorID, value)
	if _, err := file.WriteString(line); err != nil {
		return fmt.Errorf("failed to append to audit log %s: %w", path, err)
	}

	return nil
}

// ReadFile returns the contents of a file under the data directory
func (f *FileWriter) ReadFile(name string) (string, error) {
	path := filepath.Join(f.dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return string(data), nil
}

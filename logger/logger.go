package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/hrithikv/CourantInstituteNYUHyperloop/config"
)

// Logger wraps a configured logrus logger together with its log file so the
// file handle can be released on shutdown.
type Logger struct {
	*logrus.Logger
	file *os.File
}

// New builds a logger from the logging configuration: level from config,
// output to the configured log file, optionally mirrored to the console.
func New(cfg *config.Config) (*Logger, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	logPath := filepath.Join(cwd, cfg.Logging.LogFile)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	level, err := logrus.ParseLevel(cfg.Logging.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cfg.Logging.LogToConsole {
		log.SetOutput(io.MultiWriter(os.Stdout, file))
	} else {
		log.SetOutput(file)
	}

	log.WithField("file", logPath).Info("logging initialized")

	return &Logger{Logger: log, file: file}, nil
}

// Close releases the log file. Safe to call when no file is open.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Discard returns a logger that drops everything, for tests
func Discard() *Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Logger{Logger: log}
}

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hrithikv/CourantInstituteNYUHyperloop/config"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/database"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/filewriter"
	"github.com/hrithikv/CourantInstituteNYUHyperloop/models"
)

// metricBinding ties a URL base path to one metric's write and read operations
type metricBinding struct {
	path   string
	metric string
	write  func(ctx context.Context, sensorID, value, seqNum string) error
	read   func(ctx context.Context, sensorID string) (*models.Reading, error)
}

// Router is the REST binding over the telemetry database. Every request runs
// under a configurable timeout so a hung storage call cannot hang the
// request indefinitely.
type Router struct {
	db      *database.TelemetryDatabase
	files   *filewriter.FileWriter
	log     logrus.FieldLogger
	timeout time.Duration
	ipFile  string
}

// New builds the HTTP handler for the telemetry service
func New(db *database.TelemetryDatabase, files *filewriter.FileWriter, cfg *config.Config, log logrus.FieldLogger) http.Handler {
	rt := &Router{
		db:      db,
		files:   files,
		log:     log,
		timeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		ipFile:  cfg.Files.IPFile,
	}

	bindings := []metricBinding{
		{path: "/temp", metric: models.MetricTemperature, write: db.WriteTemp, read: db.ReadLastTemp},
		{path: "/dist", metric: models.MetricDistance, write: db.WriteDist, read: db.ReadLastDist},
		{path: "/speed", metric: models.MetricSpeed, write: db.WriteSpeed, read: db.ReadLastSpeed},
	}

	mux := http.NewServeMux()
	for _, b := range bindings {
		mux.HandleFunc("GET "+b.path, rt.wrap(rt.handleQueryWrite(b)))
		mux.HandleFunc("POST "+b.path, rt.wrap(rt.handleBodyWrite(b)))
		mux.HandleFunc("GET "+b.path+"/{sensorId}", rt.wrap(rt.handleRead(b)))
	}

	mux.HandleFunc("GET /ipAddr", rt.wrap(rt.handleIPAddr))
	mux.HandleFunc("GET /closeDB", rt.handleCloseDB)
	mux.HandleFunc("GET /clearDB", rt.handleClearDB)

	return mux
}

// handlerFunc is an http.HandlerFunc that reports failure instead of writing
// its own error response
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// wrap bounds the request with the configured timeout, recovers panics into
// 500 responses and maps returned errors to status codes
func (rt *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), rt.timeout)
		defer cancel()

		defer func() {
			if rec := recover(); rec != nil {
				rt.log.WithField("panic", rec).WithField("path", r.URL.Path).Error("handler panicked")
				rt.writeError(w, models.NewInternal(nil))
			}
		}()

		if err := h(w, r.WithContext(ctx)); err != nil {
			rt.writeError(w, err)
		}
	}
}

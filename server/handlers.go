package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hrithikv/CourantInstituteNYUHyperloop/models"
)

// readingResponse is the body of a successful last-value read
type readingResponse struct {
	SensorValue string `json:"sensorValue"`
	SeqNum      string `json:"seqNum"`
}

// writeResponse echoes the write back to the caller
type writeResponse struct {
	URL string `json:"URL"`
}

// writeRequest is the JSON body accepted by the POST write routes
type writeRequest struct {
	SensorID string `json:"sensorId"`
	Value    string `json:"value"`
	SeqNum   string `json:"seqNum"`
}

// handleRead serves GET /{metric}/{sensorId}
func (rt *Router) handleRead(b metricBinding) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		sensorID := r.PathValue("sensorId")
		if sensorID == "" {
			return models.NewBadRequest("sensorId")
		}

		reading, err := b.read(r.Context(), sensorID)
		if err != nil {
			return err
		}

		return writeJSON(w, http.StatusOK, readingResponse{
			SensorValue: reading.SensorValue,
			SeqNum:      reading.SeqNum,
		})
	}
}

// handleQueryWrite serves GET /{metric}?sensorId&value&seqNum. The audit
// side-log append happens before the database write so the two logs agree on
// ordering.
func (rt *Router) handleQueryWrite(b metricBinding) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		q := r.URL.Query()
		sensorID := q.Get("sensorId")
		value := q.Get("value")
		seqNum := q.Get("seqNum")

		if err := rt.doWrite(r, b, sensorID, value, seqNum); err != nil {
			return err
		}

		echo := fmt.Sprintf("%s?sensorId=%s&value=%s&seqNum=%s", b.path, sensorID, value, seqNum)
		return writeJSON(w, http.StatusCreated, writeResponse{URL: echo})
	}
}

// handleBodyWrite serves POST /{metric} with a JSON body
func (rt *Router) handleBodyWrite(b metricBinding) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req writeRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}

		if err := rt.doWrite(r, b, req.SensorID, req.Value, req.SeqNum); err != nil {
			return err
		}

		return writeJSON(w, http.StatusCreated, writeResponse{URL: r.URL.RequestURI()})
	}
}

// doWrite validates the three fields, appends to the audit log and then to
// the metric table
func (rt *Router) doWrite(r *http.Request, b metricBinding, sensorID, value, seqNum string) error {
	switch {
	case sensorID == "":
		return models.NewBadRequest("sensorId")
	case value == "":
		return models.NewBadRequest("value")
	case seqNum == "":
		return models.NewBadRequest("seqNum")
	}

	// Audit append is best-effort: a side-log fault must not lose the reading
	if err := rt.files.WriteFile(b.metric, sensorID, value); err != nil {
		rt.log.WithError(err).WithField("metric", b.metric).Warn("audit log append failed")
	}

	return b.write(r.Context(), sensorID, value, seqNum)
}

// handleIPAddr serves GET /ipAddr with the contents of the configured file
func (rt *Router) handleIPAddr(w http.ResponseWriter, r *http.Request) error {
	contents, err := rt.files.ReadFile(rt.ipFile)
	if err != nil {
		return models.NewInternal(err)
	}

	return writeJSON(w, http.StatusOK, map[string]string{"ip": strings.TrimSpace(contents)})
}

// handleCloseDB serves GET /closeDB. The plain-text GOOD/BAD response with no
// status-code distinction is preserved legacy behavior.
func (rt *Router) handleCloseDB(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := rt.db.Close(); err != nil {
		rt.log.WithError(err).Error("closeDB failed")
		fmt.Fprint(w, "BAD")
		return
	}
	fmt.Fprint(w, "GOOD")
}

// handleClearDB serves GET /clearDB, same legacy GOOD/BAD contract
func (rt *Router) handleClearDB(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := rt.db.ClearAll(); err != nil {
		rt.log.WithError(err).Error("clearDB failed")
		fmt.Fprint(w, "BAD")
		return
	}
	fmt.Fprint(w, "GOOD")
}

package models

// Metric table names. Each metric keeps its own append-only table.
const (
	MetricTemperature = "Temperature"
	MetricDistance    = "Distance"
	MetricSpeed       = "Speed"
)

// AllMetrics returns the known metric table names in a fixed order
func AllMetrics() []string {
	return []string{MetricTemperature, MetricDistance, MetricSpeed}
}

// Reading represents one sensor report. Values and sequence numbers are
// stored as opaque strings; the auto-increment ID is the insertion order
// used to resolve "latest".
type Reading struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SensorID    string `gorm:"not null;size:255;index" json:"sensorID"`
	SensorValue string `gorm:"not null" json:"sensorValue"`
	SeqNum      string `gorm:"not null" json:"seqNum"`
}

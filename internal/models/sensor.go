package models

// SensorReading is one thermal sensor. Temperature is nil when the sensor
// has no current value and serializes as null.
type SensorReading struct {
	Label       string   `json:"label"`
	Temperature *float32 `json:"temperature"`
}

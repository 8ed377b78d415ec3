package models

import (
	"time"

	"github.com/google/uuid"
)

// GeoPoint is the optional sensor location attached to a reading.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Reading is one normalized sensor sample. Gas and particulate values of
// exactly zero mean "not measured" and are skipped by the evaluator;
// temperature and humidity use plausibility ranges instead since zero is
// physically valid for them.
type Reading struct {
	SensorID    string    `json:"sensorId" bson:"sensorId"`
	Temperature float64   `json:"temperature" bson:"temperature"` // °C
	Humidity    float64   `json:"humidity" bson:"humidity"`       // %
	CO2         float64   `json:"co2" bson:"co2"`                 // ppm
	VOC         float64   `json:"voc" bson:"voc"`                 // mg/m³
	PM25        float64   `json:"pm25" bson:"pm25"`               // µg/m³
	PM10        float64   `json:"pm10" bson:"pm10"`               // µg/m³
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
	Location    *GeoPoint `json:"location,omitempty" bson:"location,omitempty"`
}

// CandidateAlert is what the threshold evaluator emits before persistence
// and dedup decide whether it becomes a real, notified alert.
type CandidateAlert struct {
	Type     string
	Severity Severity
	Message  string
	Metric   string
	Value    float64
}

// Alert is a single threshold-crossing event. Lifecycle is
// created (unresolved) → resolved, terminal once resolved.
type Alert struct {
	ID              string     `json:"id"`
	Type            string     `json:"type"`
	Severity        Severity   `json:"severity"`
	Message         string     `json:"message"`
	SensorID        string     `json:"sensorId"`
	Reading         *Reading   `json:"reading,omitempty"`
	TriggeredAt     time.Time  `json:"triggeredAt"`
	Resolved        bool       `json:"resolved"`
	ResolutionNotes string     `json:"resolutionNotes,omitempty"`
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`
}

// NewAlert promotes an evaluator candidate into an Alert carrying a
// snapshot of the triggering reading.
func NewAlert(c CandidateAlert, reading *Reading) *Alert {
	return &Alert{
		ID:          uuid.NewString(),
		Type:        c.Type,
		Severity:    c.Severity,
		Message:     c.Message,
		SensorID:    reading.SensorID,
		Reading:     reading,
		TriggeredAt: time.Now().UTC(),
	}
}

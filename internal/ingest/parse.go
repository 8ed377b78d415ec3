package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/airsenselabs/airsense-core/internal/models"
)

// wireReading accepts the timestamp as a raw string so firmware variants
// that send naive (no offset) timestamps still parse.
type wireReading struct {
	SensorID    string           `json:"sensorId"`
	Temperature float64          `json:"temperature"`
	Humidity    float64          `json:"humidity"`
	CO2         float64          `json:"co2"`
	VOC         float64          `json:"voc"`
	PM25        float64          `json:"pm25"`
	PM10        float64          `json:"pm10"`
	Timestamp   string           `json:"timestamp"`
	Location    *models.GeoPoint `json:"location"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func unmarshalTolerant(payload []byte, out *models.Reading) error {
	var w wireReading
	if err := json.Unmarshal(payload, &w); err != nil {
		return fmt.Errorf("decode reading: %w", err)
	}

	out.SensorID = w.SensorID
	out.Temperature = w.Temperature
	out.Humidity = w.Humidity
	out.CO2 = w.CO2
	out.VOC = w.VOC
	out.PM25 = w.PM25
	out.PM10 = w.PM10
	out.Location = w.Location
	out.Timestamp = parseTimestamp(w.Timestamp)
	return nil
}

// parseTimestamp tries the known layouts in order. Naive timestamps are
// taken as UTC. The zero time means "unparseable", callers substitute
// receipt time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

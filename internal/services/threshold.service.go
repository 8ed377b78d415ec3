package services

import (
	"fmt"

	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

// Threshold values derived from EPA AQI breakpoints, WHO air quality
// guidelines and OSHA/ASHRAE workplace limits.
const (
	pm25Moderate           = 35.4
	pm25UnhealthySensitive = 55.4
	pm25Unhealthy          = 150.4
	pm25VeryUnhealthy      = 250.4
	pm25Hazardous          = 500.0

	pm10Elevated  = 154.0
	pm10Unhealthy = 254.0

	co2Elevated  = 1000.0
	co2High      = 2000.0
	co2Dangerous = 5000.0

	vocElevated  = 0.5
	vocHigh      = 1.0
	vocDangerous = 3.0

	tempLow     = 10.0
	tempHigh    = 35.0
	tempExtreme = 40.0

	humidityLow  = 30.0
	humidityHigh = 70.0
)

type comparison int

const (
	atOrAbove comparison = iota
	atOrBelow
)

// thresholdRule is one breakpoint in a metric's tier table. Rules are
// listed highest tier first; the first rule the value satisfies wins.
type thresholdRule struct {
	compare   comparison
	bound     float64
	alertType string
	severity  models.Severity
	format    string
}

func (r thresholdRule) matches(value float64) bool {
	if r.compare == atOrBelow {
		return value <= r.bound
	}
	return value >= r.bound
}

// metricCheck binds a reading field to its plausibility filter and tier table.
type metricCheck struct {
	metric string
	value  func(*models.Reading) float64
	valid  func(float64) bool
	rules  []thresholdRule
}

// positiveOnly treats zero and negative gas/particulate values as "not
// measured" rather than as readings of zero.
func positiveOnly(v float64) bool { return v > 0 }

var thresholdCatalog = []metricCheck{
	{
		metric: "pm25",
		value:  func(r *models.Reading) float64 { return r.PM25 },
		valid:  positiveOnly,
		rules: []thresholdRule{
			{atOrAbove, pm25Hazardous, "PM25_HAZARDOUS", models.SeverityCritical,
				"🚨 HAZARDOUS: PM2.5 at %.1f µg/m³ - Serious health risk for everyone!"},
			{atOrAbove, pm25VeryUnhealthy, "PM25_VERY_UNHEALTHY", models.SeverityCritical,
				"⚠️ VERY UNHEALTHY: PM2.5 at %.1f µg/m³ - Health alert for all groups"},
			{atOrAbove, pm25Unhealthy, "PM25_UNHEALTHY", models.SeverityWarning,
				"⚠️ UNHEALTHY: PM2.5 at %.1f µg/m³ - Everyone may experience health effects"},
			{atOrAbove, pm25UnhealthySensitive, "PM25_UNHEALTHY_SENSITIVE", models.SeverityWarning,
				"PM2.5 at %.1f µg/m³ - Unhealthy for sensitive groups"},
			{atOrAbove, pm25Moderate, "PM25_MODERATE", models.SeverityInfo,
				"PM2.5 at %.1f µg/m³ - Moderate air quality"},
		},
	},
	{
		metric: "pm10",
		value:  func(r *models.Reading) float64 { return r.PM10 },
		valid:  positiveOnly,
		rules: []thresholdRule{
			{atOrAbove, pm10Unhealthy, "PM10_UNHEALTHY", models.SeverityWarning,
				"⚠️ PM10 at %.1f µg/m³ - Unhealthy levels"},
			{atOrAbove, pm10Elevated, "PM10_ELEVATED", models.SeverityInfo,
				"PM10 at %.1f µg/m³ - Elevated for sensitive groups"},
		},
	},
	{
		metric: "co2",
		value:  func(r *models.Reading) float64 { return r.CO2 },
		valid:  positiveOnly,
		rules: []thresholdRule{
			{atOrAbove, co2Dangerous, "CO2_DANGEROUS", models.SeverityCritical,
				"🚨 DANGER: CO2 at %.0f ppm - Immediately dangerous! Evacuate area!"},
			{atOrAbove, co2High, "CO2_HIGH", models.SeverityWarning,
				"⚠️ HIGH CO2: %.0f ppm - Poor ventilation, may cause drowsiness"},
			{atOrAbove, co2Elevated, "CO2_ELEVATED", models.SeverityInfo,
				"CO2 at %.0f ppm - Consider improving ventilation"},
		},
	},
	{
		metric: "voc",
		value:  func(r *models.Reading) float64 { return r.VOC },
		valid:  positiveOnly,
		rules: []thresholdRule{
			{atOrAbove, vocDangerous, "VOC_DANGEROUS", models.SeverityCritical,
				"🚨 DANGER: VOC at %.2f mg/m³ - Toxic levels detected!"},
			{atOrAbove, vocHigh, "VOC_HIGH", models.SeverityWarning,
				"⚠️ HIGH VOC: %.2f mg/m³ - May cause health effects"},
			{atOrAbove, vocElevated, "VOC_ELEVATED", models.SeverityInfo,
				"VOC at %.2f mg/m³ - Slightly elevated"},
		},
	},
	{
		metric: "temperature",
		value:  func(r *models.Reading) float64 { return r.Temperature },
		// Zero is a valid temperature; only implausible sensor values are skipped.
		valid: func(v float64) bool { return v >= -100 && v <= 100 },
		rules: []thresholdRule{
			{atOrAbove, tempExtreme, "TEMPERATURE_EXTREME", models.SeverityCritical,
				"🚨 EXTREME HEAT: %.1f°C - Heat stroke risk!"},
			{atOrAbove, tempHigh, "TEMPERATURE_HIGH", models.SeverityWarning,
				"⚠️ High temperature: %.1f°C"},
			{atOrBelow, tempLow, "TEMPERATURE_LOW", models.SeverityInfo,
				"Low temperature: %.1f°C"},
		},
	},
	{
		metric: "humidity",
		value:  func(r *models.Reading) float64 { return r.Humidity },
		valid:  func(v float64) bool { return v > 0 && v <= 100 },
		rules: []thresholdRule{
			{atOrAbove, humidityHigh, "HUMIDITY_HIGH", models.SeverityInfo,
				"High humidity: %.1f%% - May feel uncomfortable"},
			{atOrBelow, humidityLow, "HUMIDITY_LOW", models.SeverityInfo,
				"Low humidity: %.1f%% - Air is dry"},
		},
	},
}

// ThresholdService evaluates readings against the breakpoint catalog. It is
// pure: no storage or network calls, safe for concurrent use.
type ThresholdService struct {
	logger logger.Logger
}

func NewThresholdService(log logger.Logger) *ThresholdService {
	return &ThresholdService{logger: log}
}

// Evaluate returns at most one candidate alert per metric, carrying the
// single highest tier the value crossed.
func (s *ThresholdService) Evaluate(reading *models.Reading) []models.CandidateAlert {
	if reading == nil {
		return nil
	}

	var candidates []models.CandidateAlert
	for _, check := range thresholdCatalog {
		value := check.value(reading)
		if !check.valid(value) {
			continue
		}
		for _, rule := range check.rules {
			if rule.matches(value) {
				candidates = append(candidates, models.CandidateAlert{
					Type:     rule.alertType,
					Severity: rule.severity,
					Message:  fmt.Sprintf(rule.format, value),
					Metric:   check.metric,
					Value:    value,
				})
				break
			}
		}
	}

	if len(candidates) > 0 {
		s.logger.Debug("threshold evaluation produced candidates",
			"sensor", reading.SensorID, "count", len(candidates))
	}
	return candidates
}

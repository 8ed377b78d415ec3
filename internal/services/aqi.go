package services

// aqiBand maps one EPA PM2.5 concentration range onto its AQI output range.
type aqiBand struct {
	cLow, cHigh float64
	iLow, iHigh float64
}

// EPA breakpoints for PM2.5 (24-hour, µg/m³).
var aqiBands = []aqiBand{
	{0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 500.4, 301, 500},
}

// AQIFromPM25 converts a PM2.5 concentration to the EPA Air Quality Index
// via piecewise-linear interpolation. Values above the highest band clamp
// to 500 rather than extrapolating.
func AQIFromPM25(pm25 float64) int {
	if pm25 <= 0 {
		return 0
	}
	for _, band := range aqiBands {
		if pm25 <= band.cHigh {
			return int(linearScale(pm25, band.cLow, band.cHigh, band.iLow, band.iHigh))
		}
	}
	return 500
}

func linearScale(value, inMin, inMax, outMin, outMax float64) float64 {
	return (value-inMin)/(inMax-inMin)*(outMax-outMin) + outMin
}

// AQICategory names the EPA band an index value falls into.
func AQICategory(aqi int) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	case aqi <= 200:
		return "Unhealthy"
	case aqi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}

package entities

import (
	"math"
	"time"
)

// ForecastSample is a single 3-hourly point of the OpenWeather forecast.
type ForecastSample struct {
	Timestamp                time.Time `json:"timestamp"`
	TemperatureCelsius       float64   `json:"temperature_celsius"`
	ConditionLabel           string    `json:"condition_label"`
	IconCode                 string    `json:"icon_code"`
	HumidityPercent          int       `json:"humidity_percent"`
	WindSpeedMetersPerSecond float64   `json:"wind_speed_mps"`
}

// Normalized returns a copy with out-of-range readings replaced by zero.
// The timestamp is left untouched; callers decide what a zero time means.
func (s ForecastSample) Normalized() ForecastSample {
	if math.IsNaN(s.TemperatureCelsius) || math.IsInf(s.TemperatureCelsius, 0) {
		s.TemperatureCelsius = 0
	}
	if s.HumidityPercent < 0 || s.HumidityPercent > 100 {
		s.HumidityPercent = 0
	}
	if math.IsNaN(s.WindSpeedMetersPerSecond) || math.IsInf(s.WindSpeedMetersPerSecond, 0) || s.WindSpeedMetersPerSecond < 0 {
		s.WindSpeedMetersPerSecond = 0
	}
	return s
}

// DailyForecast is the representative sample for one calendar day.
type DailyForecast struct {
	Date                     time.Time `json:"date"`
	DateKey                  string    `json:"date_key"`
	Temperature              int       `json:"temperature"`
	ConditionLabel           string    `json:"condition_label"`
	IconCode                 string    `json:"icon_code"`
	HumidityPercent          int       `json:"humidity_percent"`
	WindSpeedMetersPerSecond float64   `json:"wind_speed_mps"`
}

// CurrentConditions is the "now" snapshot for a city.
type CurrentConditions struct {
	CityName                 string    `json:"city_name"`
	Country                  string    `json:"country"`
	TemperatureCelsius       float64   `json:"temperature_celsius"`
	MinTemperatureCelsius    float64   `json:"min_temperature_celsius"`
	MaxTemperatureCelsius    float64   `json:"max_temperature_celsius"`
	HumidityPercent          int       `json:"humidity_percent"`
	WindSpeedMetersPerSecond float64   `json:"wind_speed_mps"`
	Sunrise                  time.Time `json:"sunrise"`
	Sunset                   time.Time `json:"sunset"`
	ConditionLabel           string    `json:"condition_label"`
	IconCode                 string    `json:"icon_code"`
	ObservedAt               time.Time `json:"observed_at"`
	UTCOffsetSeconds         int       `json:"utc_offset_seconds"`
}

// Location returns the fixed zone OpenWeather reports for the city.
func (c CurrentConditions) Location() *time.Location {
	if c.UTCOffsetSeconds == 0 {
		return time.UTC
	}
	name := c.CityName
	if name == "" {
		name = "city"
	}
	return time.FixedZone(name, c.UTCOffsetSeconds)
}

// RoundHalfUp rounds .5 towards positive infinity, so -2.5 becomes -2.
// math.Round would give -3 there.
func RoundHalfUp(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v + 0.5))
}

// Package forecast reduces the 3-hourly OpenWeather forecast to one entry
// per calendar day.
package forecast

import (
	"time"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
)

// DateKeyLayout is the layout of DailyForecast.DateKey.
const DateKeyLayout = "2006-01-02"

// AggregateDaily groups samples by calendar day in loc and keeps the first
// sample seen for each day. Days come out in order of first appearance.
//
// Samples without a timestamp are skipped; other malformed readings are
// replaced by zero values (see ForecastSample.Normalized). The result is
// never nil.
func AggregateDaily(samples []entities.ForecastSample, loc *time.Location) []entities.DailyForecast {
	if loc == nil {
		loc = time.Local
	}

	days := make([]entities.DailyForecast, 0, 6)
	seen := make(map[string]struct{}, 6)

	for _, sample := range samples {
		if sample.Timestamp.IsZero() {
			continue
		}

		date := DayStart(sample.Timestamp, loc)
		key := date.Format(DateKeyLayout)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		s := sample.Normalized()
		days = append(days, entities.DailyForecast{
			Date:                     date,
			DateKey:                  key,
			Temperature:              entities.RoundHalfUp(s.TemperatureCelsius),
			ConditionLabel:           s.ConditionLabel,
			IconCode:                 s.IconCode,
			HumidityPercent:          s.HumidityPercent,
			WindSpeedMetersPerSecond: s.WindSpeedMetersPerSecond,
		})
	}

	return days
}

// DayStart returns midnight of t's calendar day in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

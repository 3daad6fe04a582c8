// Package presentation turns weather entities into the display-ready
// records returned by the weather endpoint.
package presentation

import (
	"strings"
	"time"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
)

// Display defaults. The layouts match the mobile client's 12-hour clock and
// short date.
const (
	DefaultIconBaseURL = "http://openweathermap.org/img/wn"
	DefaultTimeLayout  = "3:04:05 PM"
	DefaultDateLayout  = "Mon Jan 02 2006"

	// UnknownCondition and MissingTime stand in for absent readings.
	UnknownCondition = "Unknown"
	MissingTime      = "--"
)

// Mapper formats aggregated weather for display. It holds no state beyond
// its options and is safe for concurrent use.
type Mapper struct {
	iconBaseURL string
	timeLayout  string
	dateLayout  string
	now         func() time.Time
}

// Option configures a Mapper. Empty values keep the default.
type Option func(*Mapper)

// WithIconBaseURL sets the prefix of icon URLs; a trailing slash is dropped.
func WithIconBaseURL(base string) Option {
	return func(m *Mapper) {
		if base != "" {
			m.iconBaseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithTimeLayout sets the time.Format layout for sunrise and sunset.
func WithTimeLayout(layout string) Option {
	return func(m *Mapper) {
		if layout != "" {
			m.timeLayout = layout
		}
	}
}

// WithDateLayout sets the layout for daily forecast dates.
func WithDateLayout(layout string) Option {
	return func(m *Mapper) {
		if layout != "" {
			m.dateLayout = layout
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Mapper) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMapper returns a Mapper with the Default* settings and opts applied.
func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{
		iconBaseURL: DefaultIconBaseURL,
		timeLayout:  DefaultTimeLayout,
		dateLayout:  DefaultDateLayout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Map never fails: anything missing is replaced by a display default.
func (m *Mapper) Map(current entities.CurrentConditions, daily []entities.DailyForecast, loc *time.Location) entities.WeatherView {
	if loc == nil {
		loc = time.Local
	}

	now := m.now()
	view := entities.WeatherView{
		Current:     m.mapCurrent(current, loc, now),
		Daily:       make([]entities.DailyView, 0, len(daily)),
		GeneratedAt: now,
	}

	for _, day := range daily {
		view.Daily = append(view.Daily, m.mapDay(day, loc))
	}

	return view
}

func (m *Mapper) mapCurrent(c entities.CurrentConditions, loc *time.Location, now time.Time) entities.CurrentView {
	return entities.CurrentView{
		City:           c.CityName,
		Temperature:    entities.RoundHalfUp(c.TemperatureCelsius),
		MinTemperature: entities.RoundHalfUp(c.MinTemperatureCelsius),
		MaxTemperature: entities.RoundHalfUp(c.MaxTemperatureCelsius),
		Condition:      conditionOrDefault(c.ConditionLabel),
		IconURL:        m.IconURL(c.IconCode),
		Humidity:       c.HumidityPercent,
		WindSpeed:      c.WindSpeedMetersPerSecond,
		Sunrise:        m.formatTime(c.Sunrise, loc),
		Sunset:         m.formatTime(c.Sunset, loc),
		DateLabel:      "Today, " + now.In(loc).Format(m.dateLayout),
	}
}

func (m *Mapper) mapDay(d entities.DailyForecast, loc *time.Location) entities.DailyView {
	label := d.DateKey
	if !d.Date.IsZero() {
		label = d.Date.In(loc).Format(m.dateLayout)
	}

	return entities.DailyView{
		Date:        label,
		DateKey:     d.DateKey,
		Temperature: d.Temperature,
		Condition:   conditionOrDefault(d.ConditionLabel),
		IconURL:     m.IconURL(d.IconCode),
		Humidity:    d.HumidityPercent,
		WindSpeed:   d.WindSpeedMetersPerSecond,
	}
}

// IconURL builds {base}/{code}@2x.png, or "" when there is no icon code.
func (m *Mapper) IconURL(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	return m.iconBaseURL + "/" + code + "@2x.png"
}

func (m *Mapper) formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return MissingTime
	}
	return t.In(loc).Format(m.timeLayout)
}

func conditionOrDefault(label string) string {
	if strings.TrimSpace(label) == "" {
		return UnknownCondition
	}
	return label
}

package entities

import "time"

type WeatherView struct {
	Current     CurrentView `json:"current"`
	Daily       []DailyView `json:"daily"`
	GeneratedAt time.Time   `json:"generated_at"`
}

type CurrentView struct {
	City           string  `json:"city"`
	Temperature    int     `json:"temperature"`
	MinTemperature int     `json:"min_temperature"`
	MaxTemperature int     `json:"max_temperature"`
	Condition      string  `json:"condition"`
	IconURL        string  `json:"icon_url"`
	Humidity       int     `json:"humidity"`
	WindSpeed      float64 `json:"wind_speed"`
	Sunrise        string  `json:"sunrise"`
	Sunset         string  `json:"sunset"`
	DateLabel      string  `json:"date_label"`
}

type DailyView struct {
	Date        string  `json:"date"`
	DateKey     string  `json:"date_key"`
	Temperature int     `json:"temperature"`
	Condition   string  `json:"condition"`
	IconURL     string  `json:"icon_url"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

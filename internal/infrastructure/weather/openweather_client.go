package weather

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/infrastructure/transport"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

const (
	sourceCurrent  = "current weather"
	sourceForecast = "forecast"
)

type OpenWeatherClient struct {
	client     *transport.Client
	apiKey     string
	units      string
	lang       string
	healthCity string
	logger     logger.Logger
}

type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Units      string
	Lang       string
	HealthCity string
	Timeout    time.Duration
	Retry      transport.RetryPolicy
}

func NewOpenWeatherClient(cfg ClientConfig, log logger.Logger) *OpenWeatherClient {
	if cfg.Units == "" {
		cfg.Units = "metric"
	}
	if cfg.HealthCity == "" {
		cfg.HealthCity = "mumbai"
	}
	return &OpenWeatherClient{
		client:     transport.NewClient(cfg.BaseURL, cfg.Timeout, cfg.Retry, log),
		apiKey:     cfg.APIKey,
		units:      cfg.Units,
		lang:       cfg.Lang,
		healthCity: cfg.HealthCity,
		logger:     logger.Component(log, "openweather_client"),
	}
}

type currentResponse struct {
	Weather []conditionPayload `json:"weather"`
	Main    struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Dt  int64 `json:"dt"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int    `json:"timezone"`
	Name     string `json:"name"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Weather []conditionPayload `json:"weather"`
		Wind    struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

type conditionPayload struct {
	Main string `json:"main"`
	Icon string `json:"icon"`
}

func (c *OpenWeatherClient) CurrentConditions(ctx context.Context, city string) (entities.CurrentConditions, error) {
	c.logger.Debugf("Fetching current conditions for %s", city)

	var resp currentResponse
	if err := c.client.GetJSON(ctx, c.path("/weather", city), &resp); err != nil {
		return entities.CurrentConditions{}, entities.NewFetchError(sourceCurrent, err)
	}

	current := convertCurrent(&resp)
	c.logger.Debugf("Fetched current conditions for %s: %.1f°C %s", current.CityName, current.TemperatureCelsius, current.ConditionLabel)
	return current, nil
}

func (c *OpenWeatherClient) Forecast(ctx context.Context, city string) ([]entities.ForecastSample, error) {
	c.logger.Debugf("Fetching forecast for %s", city)

	var resp forecastResponse
	if err := c.client.GetJSON(ctx, c.path("/forecast", city), &resp); err != nil {
		return nil, entities.NewFetchError(sourceForecast, err)
	}

	samples := convertForecast(&resp)
	c.logger.Debugf("Fetched %d forecast samples for %s", len(samples), city)
	return samples, nil
}

func (c *OpenWeatherClient) HealthCheck(ctx context.Context) error {
	var resp currentResponse
	if err := c.client.GetJSON(ctx, c.path("/weather", c.healthCity), &resp); err != nil {
		return fmt.Errorf("OpenWeather health check failed: %w", err)
	}
	c.logger.Debug("OpenWeatherMap API health check passed")
	return nil
}

func (c *OpenWeatherClient) path(endpoint, city string) string {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", c.units)
	if c.lang != "" {
		q.Set("lang", c.lang)
	}
	return endpoint + "?" + q.Encode()
}

func convertCurrent(resp *currentResponse) entities.CurrentConditions {
	var cond conditionPayload
	if len(resp.Weather) > 0 {
		cond = resp.Weather[0]
	}

	return entities.CurrentConditions{
		CityName:                 resp.Name,
		Country:                  resp.Sys.Country,
		TemperatureCelsius:       resp.Main.Temp,
		MinTemperatureCelsius:    resp.Main.TempMin,
		MaxTemperatureCelsius:    resp.Main.TempMax,
		HumidityPercent:          resp.Main.Humidity,
		WindSpeedMetersPerSecond: resp.Wind.Speed,
		Sunrise:                  unixOrZero(resp.Sys.Sunrise),
		Sunset:                   unixOrZero(resp.Sys.Sunset),
		ConditionLabel:           cond.Main,
		IconCode:                 cond.Icon,
		ObservedAt:               unixOrZero(resp.Dt),
		UTCOffsetSeconds:         resp.Timezone,
	}
}

func convertForecast(resp *forecastResponse) []entities.ForecastSample {
	samples := make([]entities.ForecastSample, 0, len(resp.List))
	for _, item := range resp.List {
		var cond conditionPayload
		if len(item.Weather) > 0 {
			cond = item.Weather[0]
		}
		samples = append(samples, entities.ForecastSample{
			Timestamp:                unixOrZero(item.Dt),
			TemperatureCelsius:       item.Main.Temp,
			ConditionLabel:           cond.Main,
			IconCode:                 cond.Icon,
			HumidityPercent:          item.Main.Humidity,
			WindSpeedMetersPerSecond: item.Wind.Speed,
		})
	}
	return samples
}

func unixOrZero(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Uddesh-18/CropSmart/internal/config"
	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/domain/ports"
	"github.com/Uddesh-18/CropSmart/internal/forecast"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
	"github.com/Uddesh-18/CropSmart/internal/presentation"
)

// WeatherService builds the forecast screen: current conditions plus one
// entry per upcoming day.
type WeatherService struct {
	source      ports.WeatherSource
	mapper      *presentation.Mapper
	location    *time.Location
	useCityZone bool
	defaultCity string
	logger      logger.Logger
}

// NewWeatherService resolves timezone once. It accepts an IANA name,
// "Local", or config.TimezoneCity to follow the UTC offset of the
// requested city.
func NewWeatherService(
	source ports.WeatherSource,
	mapper *presentation.Mapper,
	timezone string,
	defaultCity string,
	log logger.Logger,
) (*WeatherService, error) {
	s := &WeatherService{
		source:      source,
		mapper:      mapper,
		defaultCity: defaultCity,
		logger:      logger.Component(log, "weather_service"),
	}

	switch timezone {
	case config.TimezoneCity:
		s.useCityZone = true
	case "", "Local":
		s.location = time.Local
	default:
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("failed to load display timezone %q: %w", timezone, err)
		}
		s.location = loc
	}

	if s.mapper == nil {
		s.mapper = presentation.NewMapper()
	}
	return s, nil
}

// Load fetches current conditions and the 3-hourly forecast concurrently.
// Both must succeed; the first failure cancels the other call and nothing
// is mapped.
func (s *WeatherService) Load(ctx context.Context, city string) (entities.WeatherView, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		city = s.defaultCity
	}
	if city == "" {
		return entities.WeatherView{}, entities.ValidationError{Field: "city", Reason: "is required"}
	}

	start := time.Now()
	var (
		current entities.CurrentConditions
		samples []entities.ForecastSample
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.source.CurrentConditions(gctx, city)
		if err != nil {
			return entities.NewFetchError("current weather", err)
		}
		current = c
		return nil
	})
	g.Go(func() error {
		f, err := s.source.Forecast(gctx, city)
		if err != nil {
			return entities.NewFetchError("forecast", err)
		}
		samples = f
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warnf("Failed to load weather for %s: %v", city, err)
		return entities.WeatherView{}, err
	}
	// A cancelled request produces no result even when both calls raced to completion.
	if err := ctx.Err(); err != nil {
		return entities.WeatherView{}, entities.NewFetchError("weather", err)
	}

	loc := s.displayLocation(current)
	daily := forecast.AggregateDaily(samples, loc)
	view := s.mapper.Map(current, daily, loc)

	s.logger.Debugf("Loaded weather for %s: %d samples, %d days in %v", city, len(samples), len(daily), time.Since(start))
	return view, nil
}

func (s *WeatherService) displayLocation(current entities.CurrentConditions) *time.Location {
	if s.useCityZone {
		return current.Location()
	}
	return s.location
}

func (s *WeatherService) HealthCheck(ctx context.Context) error {
	if err := s.source.HealthCheck(ctx); err != nil {
		return fmt.Errorf("weather source health check failed: %w", err)
	}
	return nil
}

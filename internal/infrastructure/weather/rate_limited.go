package weather

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/domain/ports"
)

// RateLimitedSource keeps the combined call rate of a WeatherSource under
// the upstream quota. Both fetches of a request share one limiter.
type RateLimitedSource struct {
	source  ports.WeatherSource
	limiter *rate.Limiter
}

// NewRateLimitedSource returns source unchanged when rps <= 0.
func NewRateLimitedSource(source ports.WeatherSource, rps float64, burst int) ports.WeatherSource {
	if rps <= 0 {
		return source
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedSource) CurrentConditions(ctx context.Context, city string) (entities.CurrentConditions, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return entities.CurrentConditions{}, entities.NewFetchError(sourceCurrent, fmt.Errorf("rate limit wait canceled: %w", err))
	}
	return r.source.CurrentConditions(ctx, city)
}

func (r *RateLimitedSource) Forecast(ctx context.Context, city string) ([]entities.ForecastSample, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, entities.NewFetchError(sourceForecast, fmt.Errorf("rate limit wait canceled: %w", err))
	}
	return r.source.Forecast(ctx, city)
}

// HealthCheck bypasses the limiter.
func (r *RateLimitedSource) HealthCheck(ctx context.Context) error {
	return r.source.HealthCheck(ctx)
}

var _ ports.WeatherSource = (*RateLimitedSource)(nil)

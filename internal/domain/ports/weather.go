package ports

import (
	"context"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
)

// WeatherSource supplies the two independent inputs of the forecast screen.
type WeatherSource interface {
	CurrentConditions(ctx context.Context, city string) (entities.CurrentConditions, error)
	Forecast(ctx context.Context, city string) ([]entities.ForecastSample, error)
	HealthCheck(ctx context.Context) error
}


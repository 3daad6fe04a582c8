package ports

import (
	"context"
	"time"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
)

type PredictionHistory interface {
	Save(ctx context.Context, prediction *entities.Prediction) error
	ListByUser(ctx context.Context, userID string, limit int) ([]entities.Prediction, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

type PredictionPublisher interface {
	Publish(ctx context.Context, prediction *entities.Prediction) error
	HealthCheck(ctx context.Context) error
	Close() error
}

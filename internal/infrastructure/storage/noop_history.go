package storage

import (
	"context"
	"time"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
)

// NoopHistory is used when no SQLite path is configured.
type NoopHistory struct{}

func NewNoopHistory() *NoopHistory { return &NoopHistory{} }

func (n *NoopHistory) Save(_ context.Context, _ *entities.Prediction) error { return nil }

func (n *NoopHistory) ListByUser(_ context.Context, _ string, _ int) ([]entities.Prediction, error) {
	return []entities.Prediction{}, nil
}

func (n *NoopHistory) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) { return 0, nil }
func (n *NoopHistory) HealthCheck(_ context.Context) error                           { return nil }
func (n *NoopHistory) Close() error                                                  { return nil }

package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Uddesh-18/CropSmart/internal/catalog"
	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/domain/ports"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

type RecommendationService struct {
	backend   ports.Backend
	catalog   *catalog.Catalog
	history   ports.PredictionHistory
	publisher ports.PredictionPublisher
	now       func() time.Time
	logger    logger.Logger
}

func NewRecommendationService(
	backend ports.Backend,
	cat *catalog.Catalog,
	history ports.PredictionHistory,
	publisher ports.PredictionPublisher,
	log logger.Logger,
) *RecommendationService {
	return &RecommendationService{
		backend:   backend,
		catalog:   cat,
		history:   history,
		publisher: publisher,
		now:       time.Now,
		logger:    logger.Component(log, "recommendation_service"),
	}
}

func (s *RecommendationService) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *RecommendationService) PredictCrop(ctx context.Context, session *entities.Session, form entities.CropForm) (*entities.Prediction, error) {
	input, err := form.Parse()
	if err != nil {
		return nil, err
	}

	result, err := s.backend.PredictCrop(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("crop prediction failed: %w", err)
	}

	return s.record(ctx, session, entities.PredictionKindCrop, input, result), nil
}

func (s *RecommendationService) PredictFertilizer(ctx context.Context, session *entities.Session, form entities.FertilizerForm) (*entities.Prediction, error) {
	input, err := form.Parse()
	if err != nil {
		return nil, err
	}
	if err := s.catalog.ResolveFertilizerInput(&input); err != nil {
		return nil, err
	}

	result, err := s.backend.PredictFertilizer(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("fertilizer prediction failed: %w", err)
	}

	return s.record(ctx, session, entities.PredictionKindFertilizer, input, result), nil
}

// History lists the caller's most recent predictions, newest first.
func (s *RecommendationService) History(ctx context.Context, session *entities.Session, limit int) ([]entities.Prediction, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	predictions, err := s.history.ListByUser(ctx, session.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	if predictions == nil {
		predictions = []entities.Prediction{}
	}
	return predictions, nil
}

// CleanupHistory removes predictions older than retention. Run by the scheduler.
func (s *RecommendationService) CleanupHistory(ctx context.Context, retention time.Duration) error {
	deleted, err := s.history.DeleteOlderThan(ctx, s.now().Add(-retention))
	if err != nil {
		return fmt.Errorf("failed to clean up prediction history: %w", err)
	}
	if deleted > 0 {
		s.logger.Infof("Removed %d old predictions", deleted)
	}
	return nil
}

// record stores and publishes a prediction. Neither failure is reported to
// the caller, who already has the result.
func (s *RecommendationService) record(ctx context.Context, session *entities.Session, kind entities.PredictionKind, input interface{}, result string) *entities.Prediction {
	prediction := &entities.Prediction{
		ID:        uuid.New().String(),
		UserID:    session.UserID,
		Kind:      kind,
		Input:     input,
		Result:    result,
		CreatedAt: s.now().UTC(),
	}

	log := s.logger.WithFields(map[string]interface{}{
		"prediction_id": prediction.ID,
		"kind":          kind,
		"user_id":       session.UserID,
	})

	if err := s.history.Save(ctx, prediction); err != nil {
		log.Errorf("Failed to save prediction: %v", err)
	}
	if err := s.publisher.Publish(ctx, prediction); err != nil {
		log.Errorf("Failed to publish prediction: %v", err)
	}

	log.Info("Prediction served")
	return prediction
}

func (s *RecommendationService) HealthCheck(ctx context.Context) error {
	if err := s.history.HealthCheck(ctx); err != nil {
		return fmt.Errorf("prediction history health check failed: %w", err)
	}
	if err := s.publisher.HealthCheck(ctx); err != nil {
		return fmt.Errorf("prediction publisher health check failed: %w", err)
	}
	return nil
}

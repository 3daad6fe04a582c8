package ports

import (
	"context"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
)

// Backend is the application server that owns users and runs the models.
type Backend interface {
	Register(ctx context.Context, reg entities.Registration) (string, error)
	Login(ctx context.Context, creds entities.Credentials) (entities.LoginResult, error)
	GetProfile(ctx context.Context, userID string) (entities.Profile, error)
	UpdateProfile(ctx context.Context, userID string, update entities.ProfileUpdate) (entities.Profile, error)
	PredictCrop(ctx context.Context, input entities.CropInput) (string, error)
	PredictFertilizer(ctx context.Context, input entities.FertilizerInput) (string, error)
	HealthCheck(ctx context.Context) error
}

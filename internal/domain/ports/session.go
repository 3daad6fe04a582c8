package ports

import (
	"context"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
)

type SessionStore interface {
	Save(ctx context.Context, session *entities.Session) error
	// Update overwrites a stored session and returns
	// entities.ErrSessionNotFound when the token is gone.
	Update(ctx context.Context, session *entities.Session) error
	Get(ctx context.Context, token string) (*entities.Session, error)
	Delete(ctx context.Context, token string) error
	CleanupExpired(ctx context.Context) (int, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

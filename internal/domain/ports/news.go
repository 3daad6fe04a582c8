package ports

import (
	"context"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
)

type NewsSource interface {
	Name() string
	Latest(ctx context.Context) ([]entities.Article, error)
}

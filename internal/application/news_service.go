package application

import (
	"context"
	"errors"
	"strings"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/domain/ports"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

// NewsError is returned when no news source could be read. Its message is
// shown to users as is.
type NewsError struct {
	Err error
}

func (e *NewsError) Error() string {
	return "Error fetching news data: " + describe(e.Err)
}

func (e *NewsError) Unwrap() error { return e.Err }

// describe prefers the message a remote service put in its error body.
func describe(err error) string {
	var upstream *entities.UpstreamError
	if errors.As(err, &upstream) && upstream.Message != "" {
		return upstream.Message
	}
	return err.Error()
}

type NewsService struct {
	sources []ports.NewsSource
	limit   int
	logger  logger.Logger
}

// NewNewsService asks sources in the given order. limit <= 0 keeps every
// article.
func NewNewsService(sources []ports.NewsSource, limit int, log logger.Logger) *NewsService {
	return &NewsService{
		sources: sources,
		limit:   limit,
		logger:  logger.Component(log, "news_service"),
	}
}

func (s *NewsService) Latest(ctx context.Context) ([]entities.Article, error) {
	if len(s.sources) == 0 {
		return nil, &NewsError{Err: entities.NewFetchError("news", errors.New("no news sources configured"))}
	}

	var lastErr error
	for _, source := range s.sources {
		if err := ctx.Err(); err != nil {
			return nil, &NewsError{Err: entities.NewFetchError(source.Name(), err)}
		}

		articles, err := source.Latest(ctx)
		if err != nil {
			s.logger.Warnf("News source %s failed: %v", source.Name(), err)
			lastErr = err
			continue
		}

		result := s.clean(articles)
		s.logger.Debugf("Got %d articles from %s", len(result), source.Name())
		return result, nil
	}

	return nil, &NewsError{Err: lastErr}
}

func (s *NewsService) clean(articles []entities.Article) []entities.Article {
	seen := make(map[string]struct{}, len(articles))
	result := make([]entities.Article, 0, len(articles))

	for _, a := range articles {
		url := strings.TrimSpace(a.URL)
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		a.URL = url
		result = append(result, a)

		if s.limit > 0 && len(result) == s.limit {
			break
		}
	}
	return result
}

package news

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

// RSSSource reads articles from RSS or Atom feeds. Feeds that fail are
// logged and skipped; the source fails only when every feed does.
type RSSSource struct {
	feeds  []string
	parser *gofeed.Parser
	logger logger.Logger
}

func NewRSSSource(feeds []string, timeout time.Duration, log logger.Logger) *RSSSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "cropsmart/1.0"

	return &RSSSource{
		feeds:  feeds,
		parser: parser,
		logger: logger.Component(log, "rss_source"),
	}
}

func (s *RSSSource) Name() string { return "rss" }

func (s *RSSSource) Latest(ctx context.Context) ([]entities.Article, error) {
	if len(s.feeds) == 0 {
		return nil, entities.NewFetchError("rss", fmt.Errorf("no feeds configured"))
	}

	var (
		articles []entities.Article
		lastErr  error
		ok       int
	)

	for _, feedURL := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			s.logger.Warnf("Failed to read feed %s: %v", feedURL, err)
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		ok++
		articles = append(articles, convertFeed(feed)...)
	}

	if ok == 0 {
		return nil, entities.NewFetchError("rss", lastErr)
	}
	return articles, nil
}

func convertFeed(feed *gofeed.Feed) []entities.Article {
	articles := make([]entities.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		article := entities.Article{
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(item.Description),
			URL:         item.Link,
			Source:      feed.Title,
		}
		if item.Image != nil {
			article.ImageURL = item.Image.URL
		}
		if item.PublishedParsed != nil {
			article.PublishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			article.PublishedAt = *item.UpdatedParsed
		}
		articles = append(articles, article)
	}
	return articles
}

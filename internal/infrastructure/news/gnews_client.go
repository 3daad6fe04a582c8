package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/infrastructure/transport"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

type GNewsConfig struct {
	BaseURL     string
	APIKey      string
	Query       string
	Country     string
	Lang        string
	MaxArticles int
	Timeout     time.Duration
	Retry       transport.RetryPolicy
}

type GNewsClient struct {
	client *transport.Client
	cfg    GNewsConfig
	logger logger.Logger
}

func NewGNewsClient(cfg GNewsConfig, log logger.Logger) *GNewsClient {
	if cfg.Query == "" {
		cfg.Query = "agriculture"
	}
	return &GNewsClient{
		client: transport.NewClient(cfg.BaseURL, cfg.Timeout, cfg.Retry, log),
		cfg:    cfg,
		logger: logger.Component(log, "gnews_client"),
	}
}

type gnewsResponse struct {
	TotalArticles int `json:"totalArticles"`
	Articles      []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Image       string `json:"image"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

type gnewsError struct {
	Errors  []string `json:"errors"`
	Message string   `json:"message"`
}

func (c *GNewsClient) Name() string { return "gnews" }

func (c *GNewsClient) Latest(ctx context.Context) ([]entities.Article, error) {
	var resp gnewsResponse
	if err := c.client.GetJSON(ctx, c.searchPath(), &resp); err != nil {
		return nil, entities.NewFetchError("gnews", upstreamError(err))
	}

	articles := make([]entities.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		articles = append(articles, entities.Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			ImageURL:    a.Image,
			Source:      a.Source.Name,
			PublishedAt: published,
		})
	}

	c.logger.Debugf("GNews returned %d articles for %q", len(articles), c.cfg.Query)
	return articles, nil
}

func (c *GNewsClient) searchPath() string {
	q := url.Values{}
	q.Set("q", c.cfg.Query)
	if c.cfg.Country != "" {
		q.Set("country", c.cfg.Country)
	}
	if c.cfg.Lang != "" {
		q.Set("lang", c.cfg.Lang)
	}
	if c.cfg.MaxArticles > 0 {
		q.Set("max", strconv.Itoa(c.cfg.MaxArticles))
	}
	q.Set("token", c.cfg.APIKey)
	return "/search?" + q.Encode()
}

// upstreamError lifts the message GNews puts in its error body into an
// UpstreamError. Other failures are returned unchanged.
func upstreamError(err error) error {
	var statusErr *transport.StatusError
	if !errors.As(err, &statusErr) {
		return err
	}

	message := fmt.Sprintf("status %d", statusErr.Code)
	var body gnewsError
	if json.Unmarshal([]byte(statusErr.Body), &body) == nil {
		if len(body.Errors) > 0 {
			message = strings.Join(body.Errors, "; ")
		} else if body.Message != "" {
			message = body.Message
		}
	}
	return &entities.UpstreamError{Service: "gnews", Status: statusErr.Code, Message: message}
}

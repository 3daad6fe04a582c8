package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Uddesh-18/CropSmart/internal/application"
	"github.com/Uddesh-18/CropSmart/internal/catalog"
	"github.com/Uddesh-18/CropSmart/internal/config"
	"github.com/Uddesh-18/CropSmart/internal/domain/ports"
	"github.com/Uddesh-18/CropSmart/internal/infrastructure/api"
	"github.com/Uddesh-18/CropSmart/internal/infrastructure/backend"
	"github.com/Uddesh-18/CropSmart/internal/infrastructure/cache"
	"github.com/Uddesh-18/CropSmart/internal/infrastructure/messaging"
	"github.com/Uddesh-18/CropSmart/internal/infrastructure/news"
	"github.com/Uddesh-18/CropSmart/internal/infrastructure/scheduler"
	"github.com/Uddesh-18/CropSmart/internal/infrastructure/storage"
	"github.com/Uddesh-18/CropSmart/internal/infrastructure/transport"
	"github.com/Uddesh-18/CropSmart/internal/infrastructure/weather"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
	"github.com/Uddesh-18/CropSmart/internal/presentation"
)

const (
	startupCheckAttempts = 3
	startupCheckInterval = 2 * time.Second
)

type App struct {
	config *config.Config
	logger logger.Logger

	weatherSource ports.WeatherSource
	backendClient *backend.Client
	sessions      ports.SessionStore
	history       ports.PredictionHistory
	publisher     ports.PredictionPublisher
	scheduler     ports.Scheduler

	weatherService        *application.WeatherService
	newsService           *application.NewsService
	accountService        *application.AccountService
	recommendationService *application.RecommendationService

	apiServer *api.APIServer

	cancel context.CancelFunc
}

func Bootstrap() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("error", "production").Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.Env).WithField("service", cfg.App.Name)

	app, err := New(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize components: %v", err)
	}

	if err := app.start(); err != nil {
		app.shutdownComponents(context.Background())
		log.Fatalf("Failed to start application: %v", err)
	}

	app.waitForShutdown()
}

// New builds every component without starting the HTTP listener or any
// background job.
func New(cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{
		config: cfg,
		logger: logger.Component(log, "bootstrap"),
	}
	if err := a.initComponents(log); err != nil {
		a.shutdownComponents(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) retryPolicy() transport.RetryPolicy {
	return transport.RetryPolicy{
		MaxAttempts:    a.config.Retry.MaxAttempts,
		InitialBackoff: a.config.Retry.InitialBackoff,
		MaxBackoff:     a.config.Retry.MaxBackoff,
		Multiplier:     a.config.Retry.Multiplier,
	}
}

func (a *App) initComponents(log logger.Logger) error {
	a.logger.Info("Initializing components...")
	retry := a.retryPolicy()

	a.logger.Info("Initializing weather source...")
	owm := weather.NewOpenWeatherClient(weather.ClientConfig{
		BaseURL:    a.config.OpenWeather.BaseURL,
		APIKey:     a.config.OpenWeather.APIKey,
		Units:      a.config.OpenWeather.Units,
		Lang:       a.config.OpenWeather.Lang,
		HealthCity: a.config.OpenWeather.DefaultCity,
		Timeout:    a.config.OpenWeather.Timeout,
		Retry:      retry,
	}, log)
	a.weatherSource = weather.NewRateLimitedSource(owm, a.config.OpenWeather.RateLimitRPS, a.config.OpenWeather.RateLimitBurst)

	mapper := presentation.NewMapper(
		presentation.WithIconBaseURL(a.config.OpenWeather.IconBaseURL),
		presentation.WithTimeLayout(a.config.Display.TimeLayout),
		presentation.WithDateLayout(a.config.Display.DateLayout),
	)

	weatherService, err := application.NewWeatherService(
		a.weatherSource,
		mapper,
		a.config.Display.Timezone,
		a.config.OpenWeather.DefaultCity,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create weather service: %w", err)
	}
	a.weatherService = weatherService

	a.logger.Info("Initializing news sources...")
	a.newsService = application.NewNewsService(a.newsSources(retry, log), a.config.News.MaxArticles, log)

	a.logger.Info("Initializing backend client...")
	a.backendClient = backend.NewClient(a.config.Backend.BaseURL, a.config.Backend.Timeout, retry, log)

	a.logger.Infof("Initializing %s session store...", a.config.Session.Store)
	if err := a.initSessionStore(log); err != nil {
		return err
	}
	a.accountService = application.NewAccountService(a.backendClient, a.sessions, a.config.Session.TTL, log)

	a.logger.Info("Initializing prediction history...")
	if a.config.History.SQLitePath != "" {
		history, err := storage.NewSQLiteHistory(a.config.History.SQLitePath, log)
		if err != nil {
			return fmt.Errorf("failed to create prediction history: %w", err)
		}
		a.history = history
	} else {
		a.logger.Warn("History path not set, predictions will not be recorded")
		a.history = storage.NewNoopHistory()
	}

	if a.config.Kafka.Enabled {
		a.logger.Info("Initializing Kafka publisher...")
		publisher, err := messaging.NewKafkaPublisher(messaging.KafkaConfig{
			Broker:       a.config.Kafka.Broker,
			Topic:        a.config.Kafka.Topic,
			RequiredAcks: a.config.Kafka.RequiredAcks,
			MaxRetries:   a.config.Kafka.MaxRetries,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create Kafka publisher: %w", err)
		}
		a.publisher = publisher
	} else {
		a.publisher = messaging.NewNoopPublisher()
	}

	cat, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	a.recommendationService = application.NewRecommendationService(
		a.backendClient,
		cat,
		a.history,
		a.publisher,
		log,
	)

	a.logger.Info("Initializing scheduler...")
	a.scheduler = scheduler.NewCronScheduler(scheduler.DefaultJobTimeout, log)

	a.logger.Info("Initializing API server...")
	handler := api.NewAPIHandler(api.Services{
		Weather:         a.weatherService,
		News:            a.newsService,
		Accounts:        a.accountService,
		Recommendations: a.recommendationService,
	}, a.healthChecks(), log)
	middleware := api.NewMiddleware(a.config.API.RateLimit, a.config.API.RateLimitWindow, a.accountService, log)
	a.apiServer = api.NewAPIServer(handler, middleware, a.config, log)

	a.logger.Info("All components initialized successfully")
	return nil
}

func (a *App) newsSources(retry transport.RetryPolicy, log logger.Logger) []ports.NewsSource {
	var sources []ports.NewsSource
	if a.config.News.APIKey != "" {
		sources = append(sources, news.NewGNewsClient(news.GNewsConfig{
			BaseURL:     a.config.News.BaseURL,
			APIKey:      a.config.News.APIKey,
			Query:       a.config.News.Query,
			Country:     a.config.News.Country,
			Lang:        a.config.News.Lang,
			MaxArticles: a.config.News.MaxArticles,
			Timeout:     a.config.News.Timeout,
			Retry:       retry,
		}, log))
	}
	if len(a.config.News.RSSFeeds) > 0 {
		sources = append(sources, news.NewRSSSource(a.config.News.RSSFeeds, a.config.News.Timeout, log))
	}
	if len(sources) == 0 {
		a.logger.Warn("No news source configured, /news will report an error")
	}
	return sources
}

func (a *App) initSessionStore(log logger.Logger) error {
	if a.config.Session.Store != config.SessionStoreRedis {
		a.sessions = cache.NewMemorySessionStore(log)
		return nil
	}

	store, err := cache.NewRedisSessionStore(cache.RedisConfig{
		Host:      a.config.Redis.Host,
		Port:      a.config.Redis.Port,
		Password:  a.config.Redis.Password,
		DB:        a.config.Redis.DB,
		KeyPrefix: a.config.Redis.KeyPrefix,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}
	a.sessions = store
	return nil
}

func (a *App) healthChecks() []api.HealthCheck {
	return []api.HealthCheck{
		{Name: "sessions", Check: a.sessions.HealthCheck},
		{Name: "history", Check: a.history.HealthCheck},
		{Name: "publisher", Check: a.publisher.HealthCheck},
		{Name: "scheduler", Check: a.scheduler.HealthCheck},
	}
}

func (a *App) start() error {
	a.logger.Info("Starting application...")

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.logger.Info("Setting up scheduler...")
	if err := a.setupScheduler(ctx); err != nil {
		return fmt.Errorf("failed to setup scheduler: %w", err)
	}

	a.logger.Info("Starting API server...")
	if err := a.apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	go func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(a.config.HealthCheck.StartupDelay):
		}
		checker := NewHealthChecker(a.upstreamChecks(), a.config.HealthCheck.Timeout, startupCheckInterval, startupCheckAttempts, a.logger)
		if err := checker.CheckAll(ctx); err != nil {
			a.logger.Warnf("Startup health checks failed: %v", err)
		}
		a.runHealthChecks(ctx)
	}()

	a.logger.Info("Application started successfully")
	return nil
}

func (a *App) setupScheduler(ctx context.Context) error {
	if err := a.scheduler.Schedule(ctx, "session_cleanup",
		a.config.Session.CleanupInterval,
		func(ctx context.Context) error {
			a.logger.Debug("Running scheduled session cleanup")
			return a.accountService.CleanupSessions(ctx)
		}); err != nil {
		return fmt.Errorf("failed to schedule session cleanup: %w", err)
	}

	if a.config.History.RetentionDays <= 0 {
		return nil
	}
	retention := time.Duration(a.config.History.RetentionDays) * 24 * time.Hour
	if err := a.scheduler.Schedule(ctx, "history_cleanup",
		a.config.History.CleanupInterval,
		func(ctx context.Context) error {
			a.logger.Debug("Running scheduled history cleanup")
			return a.recommendationService.CleanupHistory(ctx, retention)
		}); err != nil {
		return fmt.Errorf("failed to schedule history cleanup: %w", err)
	}

	return nil
}

// upstreamChecks are the remote services probed after startup. They are
// kept off the /health endpoint because each probe costs a real request.
func (a *App) upstreamChecks() []NamedCheck {
	return []NamedCheck{
		{Name: "OpenWeather API", Check: a.weatherService.HealthCheck},
		{Name: "backend", Check: a.backendClient.HealthCheck},
		{Name: "prediction history", Check: a.recommendationService.HealthCheck},
	}
}

func (a *App) runHealthChecks(ctx context.Context) {
	if a.config.HealthCheck.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(a.config.HealthCheck.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.performHealthChecks(ctx)
		}
	}
}

func (a *App) performHealthChecks(ctx context.Context) {
	a.logger.Debug("Running health checks...")

	for _, check := range a.healthChecks() {
		checkCtx, cancel := context.WithTimeout(ctx, a.config.HealthCheck.Timeout)
		if err := check.Check(checkCtx); err != nil {
			a.logger.Errorf("Health check failed for %s: %v", check.Name, err)
		} else {
			a.logger.Debugf("Health check passed for %s", check.Name)
		}
		cancel()
	}
}

func (a *App) waitForShutdown() {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-signalChan
	a.logger.Infof("Received signal: %v. Shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), a.config.App.ShutdownTimeout)
	defer cancel()

	a.shutdownComponents(ctx)

	a.logger.Info("Application shutdown completed")
}

func (a *App) shutdownComponents(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	if a.apiServer != nil {
		a.logger.Info("Stopping API server...")
		if err := a.apiServer.Stop(ctx); err != nil {
			a.logger.Errorf("Failed to stop API server: %v", err)
		}
	}

	if a.scheduler != nil {
		a.logger.Info("Stopping scheduler...")
		a.scheduler.Stop()
	}

	if a.publisher != nil {
		a.logger.Info("Closing prediction publisher...")
		if err := a.publisher.Close(); err != nil {
			a.logger.Errorf("Failed to close prediction publisher: %v", err)
		}
	}

	if a.history != nil {
		a.logger.Info("Closing prediction history...")
		if err := a.history.Close(); err != nil {
			a.logger.Errorf("Failed to close prediction history: %v", err)
		}
	}

	if a.sessions != nil {
		a.logger.Info("Closing session store...")
		if err := a.sessions.Close(); err != nil {
			a.logger.Errorf("Failed to close session store: %v", err)
		}
	}
}

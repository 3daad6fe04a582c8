package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	// TimezoneCity selects the fixed UTC offset reported by OpenWeather for
	// the requested city instead of an IANA zone.
	TimezoneCity = "city"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	API         APIConfig         `mapstructure:"api"`
	OpenWeather OpenWeatherConfig `mapstructure:"openweather"`
	Display     DisplayConfig     `mapstructure:"display"`
	News        NewsConfig        `mapstructure:"news"`
	Backend     BackendConfig     `mapstructure:"backend"`
	Retry       RetryConfig       `mapstructure:"retry"`
	Session     SessionConfig     `mapstructure:"session"`
	Redis       RedisConfig       `mapstructure:"redis"`
	History     HistoryConfig     `mapstructure:"history"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	HealthCheck HealthCheckConfig `mapstructure:"healthcheck"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Env             string        `mapstructure:"env"`
	LogLevel        string        `mapstructure:"log_level"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type APIConfig struct {
	BasePath        string        `mapstructure:"base_path"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateLimitWindow time.Duration `mapstructure:"rate_limit_window"`
}

type OpenWeatherConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	IconBaseURL    string        `mapstructure:"icon_base_url"`
	Units          string        `mapstructure:"units"`
	Lang           string        `mapstructure:"lang"`
	DefaultCity    string        `mapstructure:"default_city"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

type DisplayConfig struct {
	Timezone   string `mapstructure:"timezone"`
	TimeLayout string `mapstructure:"time_layout"`
	DateLayout string `mapstructure:"date_layout"`
}

type NewsConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Query       string        `mapstructure:"query"`
	Country     string        `mapstructure:"country"`
	Lang        string        `mapstructure:"lang"`
	MaxArticles int           `mapstructure:"max_articles"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RSSFeeds    []string      `mapstructure:"rss_feeds"`
}

type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	Multiplier     float64       `mapstructure:"multiplier"`
}

type SessionConfig struct {
	Store           string        `mapstructure:"store"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type HistoryConfig struct {
	SQLitePath      string        `mapstructure:"sqlite_path"`
	RetentionDays   int           `mapstructure:"retention_days"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type KafkaConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Broker       string `mapstructure:"broker"`
	Topic        string `mapstructure:"topic"`
	RequiredAcks int16  `mapstructure:"required_acks"`
	MaxRetries   int    `mapstructure:"max_retries"`
}

type HealthCheckConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
}

func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/cropsmart/")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	overrideFromEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "cropsmart")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.shutdown_timeout", 15*time.Second)

	v.SetDefault("api.base_path", "/api/v1")
	v.SetDefault("api.rate_limit", 100)
	v.SetDefault("api.rate_limit_window", time.Second)

	v.SetDefault("openweather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("openweather.icon_base_url", "http://openweathermap.org/img/wn")
	v.SetDefault("openweather.units", "metric")
	v.SetDefault("openweather.lang", "en")
	v.SetDefault("openweather.default_city", "mumbai")
	v.SetDefault("openweather.timeout", 10*time.Second)
	v.SetDefault("openweather.rate_limit_rps", 1.0)
	v.SetDefault("openweather.rate_limit_burst", 5)

	v.SetDefault("display.timezone", "Local")
	v.SetDefault("display.time_layout", "3:04:05 PM")
	v.SetDefault("display.date_layout", "Mon Jan 02 2006")

	v.SetDefault("news.base_url", "https://gnews.io/api/v4")
	v.SetDefault("news.query", "agriculture")
	v.SetDefault("news.country", "in")
	v.SetDefault("news.lang", "en")
	v.SetDefault("news.max_articles", 10)
	v.SetDefault("news.timeout", 10*time.Second)

	v.SetDefault("backend.base_url", "http://localhost:5000")
	v.SetDefault("backend.timeout", 15*time.Second)

	v.SetDefault("retry.max_attempts", 1)
	v.SetDefault("retry.initial_backoff", 200*time.Millisecond)
	v.SetDefault("retry.max_backoff", 2*time.Second)
	v.SetDefault("retry.multiplier", 2.0)

	v.SetDefault("session.store", SessionStoreMemory)
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cleanup_interval", 10*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "cropsmart:session:")

	v.SetDefault("history.retention_days", 90)
	v.SetDefault("history.cleanup_interval", time.Hour)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "cropsmart.predictions")
	v.SetDefault("kafka.required_acks", 1)
	v.SetDefault("kafka.max_retries", 3)

	v.SetDefault("healthcheck.interval", time.Minute)
	v.SetDefault("healthcheck.timeout", 5*time.Second)
	v.SetDefault("healthcheck.startup_delay", 5*time.Second)
}

func overrideFromEnv(v *viper.Viper) {
	if apiKey := os.Getenv("OPENWEATHER_API_KEY"); apiKey != "" {
		v.Set("openweather.api_key", apiKey)
	}

	if apiKey := os.Getenv("GNEWS_API_KEY"); apiKey != "" {
		v.Set("news.api_key", apiKey)
	}

	if baseURL := os.Getenv("BACKEND_BASE_URL"); baseURL != "" {
		v.Set("backend.base_url", baseURL)
	}

	if tz := os.Getenv("DISPLAY_TIMEZONE"); tz != "" {
		v.Set("display.timezone", tz)
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("app.port", p)
		}
	}

	if host := os.Getenv("REDIS_HOST"); host != "" {
		v.Set("redis.host", host)
	}

	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		v.Set("redis.password", password)
	}

	if broker := os.Getenv("KAFKA_BROKER"); broker != "" {
		v.Set("kafka.broker", broker)
	}

	if feeds := os.Getenv("NEWS_RSS_FEEDS"); feeds != "" {
		list := strings.Split(feeds, ",")
		for i, feed := range list {
			list[i] = strings.TrimSpace(feed)
		}
		v.Set("news.rss_feeds", list)
	}
}

func validateConfig(cfg *Config) error {
	if cfg.OpenWeather.APIKey == "" {
		return fmt.Errorf("OpenWeather API key must not be empty")
	}

	if cfg.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL must not be empty")
	}

	if cfg.App.Port <= 0 {
		return fmt.Errorf("app port must be positive")
	}

	if cfg.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be at least 1")
	}

	switch cfg.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}

	if cfg.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	if cfg.Kafka.Enabled && (cfg.Kafka.Broker == "" || cfg.Kafka.Topic == "") {
		return fmt.Errorf("kafka broker and topic are required when kafka is enabled")
	}

	if cfg.Display.Timezone != TimezoneCity {
		if _, err := time.LoadLocation(cfg.Display.Timezone); err != nil {
			return fmt.Errorf("unknown display timezone %q: %w", cfg.Display.Timezone, err)
		}
	}

	return nil
}

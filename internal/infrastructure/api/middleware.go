package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/Uddesh-18/CropSmart/internal/application"
	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	sessionKey      = "session"
)

type Middleware struct {
	logger      logger.Logger
	rateLimiter *rate.Limiter
	accounts    *application.AccountService
}

func NewMiddleware(rateLimit int, rateWindow time.Duration, accounts *application.AccountService, log logger.Logger) *Middleware {
	return &Middleware{
		logger:      logger.Component(log, "middleware"),
		rateLimiter: newRateLimiter(rateLimit, rateWindow),
		accounts:    accounts,
	}
}

// newRateLimiter allows rateLimit requests per rateWindow, with bursts of
// up to rateLimit.
func newRateLimiter(rateLimit int, rateWindow time.Duration) *rate.Limiter {
	if rateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if rateWindow <= 0 {
		rateWindow = time.Second
	}
	return rate.NewLimiter(rate.Limit(float64(rateLimit)/rateWindow.Seconds()), rateLimit)
}

func (m *Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func (m *Middleware) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (m *Middleware) Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log := m.logger.WithField(requestIDKey, c.GetString(requestIDKey))
		if len(c.Errors) > 0 {
			for _, e := range c.Errors.Errors() {
				log.Error(e)
			}
			return
		}

		log.Infof("HTTP | %3d | %13v | %15s | %-7s %s",
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
			c.Request.Method,
			path,
		)
	}
}

func (m *Middleware) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.rateLimiter.Allow() {
			m.logger.Warnf("Rate limit exceeded for IP: %s", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   http.StatusText(http.StatusTooManyRequests),
				Message: "Rate limit exceeded",
				Time:    time.Now(),
			})
			return
		}
		c.Next()
	}
}

func (m *Middleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				m.logger.Errorf("Panic recovered: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:   http.StatusText(http.StatusInternalServerError),
					Message: "An unexpected error occurred",
					Time:    time.Now(),
				})
			}
		}()
		c.Next()
	}
}

// RequireSession resolves the bearer token into a session and stores it on
// the gin context for sessionFrom.
func (m *Middleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))

		session, err := m.accounts.ResolveSession(c.Request.Context(), token)
		if err != nil {
			status, message := http.StatusUnauthorized, "Please log in to continue."
			if errors.Is(err, entities.ErrSessionExpired) {
				message = "Your session has expired. Please log in again."
			} else if !errors.Is(err, entities.ErrSessionNotFound) {
				m.logger.Errorf("Session lookup failed: %v", err)
				status, message = http.StatusServiceUnavailable, "Unable to verify session"
			}
			c.AbortWithStatusJSON(status, ErrorResponse{
				Error:   http.StatusText(status),
				Message: message,
				Time:    time.Now(),
			})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func sessionFrom(c *gin.Context) *entities.Session {
	session, _ := c.MustGet(sessionKey).(*entities.Session)
	return session
}

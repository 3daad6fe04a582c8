package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Uddesh-18/CropSmart/internal/application"
	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

const Version = "1.0.0"

const weatherUnavailable = "Unable to load weather data"

// HealthCheck is one named component probed by the health endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Services struct {
	Weather         *application.WeatherService
	News            *application.NewsService
	Accounts        *application.AccountService
	Recommendations *application.RecommendationService
}

type APIHandler struct {
	services     Services
	healthChecks []HealthCheck
	logger       logger.Logger
}

func NewAPIHandler(services Services, healthChecks []HealthCheck, log logger.Logger) *APIHandler {
	return &APIHandler{
		services:     services,
		healthChecks: healthChecks,
		logger:       logger.Component(log, "api_handler"),
	}
}

type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Time    time.Time `json:"time"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Time     time.Time         `json:"time"`
	Services map[string]string `json:"services"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type LoginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ProfileResponse struct {
	Message string           `json:"message"`
	User    entities.Profile `json:"user"`
}

type PredictionResponse struct {
	ID        string                  `json:"id"`
	Kind      entities.PredictionKind `json:"kind"`
	Result    string                  `json:"result"`
	CreatedAt time.Time               `json:"created_at"`
}

type HistoryResponse struct {
	Predictions []entities.Prediction `json:"predictions"`
}

type NewsResponse struct {
	Articles []entities.Article `json:"articles"`
}

func (h *APIHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	health := HealthResponse{
		Status:   "healthy",
		Version:  Version,
		Time:     time.Now(),
		Services: map[string]string{"api": "healthy"},
	}

	for _, check := range h.healthChecks {
		if err := check.Check(ctx); err != nil {
			health.Status = "degraded"
			health.Services[check.Name] = fmt.Sprintf("unhealthy: %v", err)
			continue
		}
		health.Services[check.Name] = "healthy"
	}

	c.JSON(http.StatusOK, health)
}

func (h *APIHandler) GetWeather(c *gin.Context) {
	view, err := h.services.Weather.Load(c.Request.Context(), c.Query("city"))
	if err != nil {
		if h.clientGone(c, err) {
			return
		}
		var ve entities.ValidationError
		if errors.As(err, &ve) {
			h.respondValidation(c, ve)
			return
		}
		h.logger.Warnf("Weather load failed: %v", err)
		h.respondError(c, http.StatusBadGateway, weatherUnavailable)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *APIHandler) GetNews(c *gin.Context) {
	articles, err := h.services.News.Latest(c.Request.Context())
	if err != nil {
		if h.clientGone(c, err) {
			return
		}
		h.respondError(c, http.StatusBadGateway, err.Error())
		return
	}

	c.JSON(http.StatusOK, NewsResponse{Articles: articles})
}

func (h *APIHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Recommendations.Catalog())
}

func (h *APIHandler) Register(c *gin.Context) {
	var reg entities.Registration
	if !h.bind(c, &reg) {
		return
	}

	userID, err := h.services.Accounts.Register(c.Request.Context(), reg)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{Message: "User registered successfully!", UserID: userID})
}

func (h *APIHandler) Login(c *gin.Context) {
	var creds entities.Credentials
	if !h.bind(c, &creds) {
		return
	}

	session, err := h.services.Accounts.Login(c.Request.Context(), creds)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Message:   "Login successful!",
		Token:     session.Token,
		UserID:    session.UserID,
		FullName:  session.FullName,
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *APIHandler) Logout(c *gin.Context) {
	if err := h.services.Accounts.Logout(c.Request.Context(), sessionFrom(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}

func (h *APIHandler) GetProfile(c *gin.Context) {
	profile, err := h.services.Accounts.Profile(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *APIHandler) UpdateProfile(c *gin.Context) {
	var update entities.ProfileUpdate
	if !h.bind(c, &update) {
		return
	}

	profile, err := h.services.Accounts.UpdateProfile(c.Request.Context(), sessionFrom(c), update)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{Message: "Profile updated successfully", User: profile})
}

func (h *APIHandler) PredictCrop(c *gin.Context) {
	var form entities.CropForm
	if !h.bind(c, &form) {
		return
	}

	prediction, err := h.services.Recommendations.PredictCrop(c.Request.Context(), sessionFrom(c), form)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPredictionResponse(prediction))
}

func (h *APIHandler) PredictFertilizer(c *gin.Context) {
	var form entities.FertilizerForm
	if !h.bind(c, &form) {
		return
	}

	prediction, err := h.services.Recommendations.PredictFertilizer(c.Request.Context(), sessionFrom(c), form)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPredictionResponse(prediction))
}

func (h *APIHandler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.respondValidation(c, entities.ValidationError{Field: "limit", Reason: "must be a non-negative integer"})
			return
		}
		limit = n
	}

	predictions, err := h.services.Recommendations.History(c.Request.Context(), sessionFrom(c), limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, HistoryResponse{Predictions: predictions})
}

func toPredictionResponse(p *entities.Prediction) PredictionResponse {
	return PredictionResponse{ID: p.ID, Kind: p.Kind, Result: p.Result, CreatedAt: p.CreatedAt}
}

// bind decodes a JSON body into target and answers 400 on failure.
func (h *APIHandler) bind(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// handleServiceError maps the error taxonomy onto HTTP statuses.
func (h *APIHandler) handleServiceError(c *gin.Context, err error) {
	if h.clientGone(c, err) {
		return
	}

	var (
		ve       entities.ValidationError
		upstream *entities.UpstreamError
	)
	switch {
	case errors.As(err, &ve):
		h.respondValidation(c, ve)
	case errors.Is(err, entities.ErrSessionNotFound), errors.Is(err, entities.ErrSessionExpired):
		h.respondError(c, http.StatusUnauthorized, "Please log in to continue.")
	case errors.As(err, &upstream):
		status := upstream.Status
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		h.respondError(c, status, upstream.Message)
	case errors.Is(err, entities.ErrFetchFailed), errors.Is(err, application.ErrMissingUserID):
		h.logger.Errorf("Upstream failure: %v", err)
		h.respondError(c, http.StatusBadGateway, "The service is temporarily unavailable. Please try again later.")
	default:
		h.logger.Errorf("Unhandled error: %v", err)
		h.respondError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// clientGone reports whether the request was abandoned; nothing is written then.
func (h *APIHandler) clientGone(c *gin.Context, err error) bool {
	if c.Request.Context().Err() == nil {
		return false
	}
	h.logger.Debugf("Request cancelled by client: %v", err)
	c.Abort()
	return true
}

func (h *APIHandler) respondValidation(c *gin.Context, ve entities.ValidationError) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   http.StatusText(http.StatusBadRequest),
		Message: ve.Reason,
		Field:   ve.Field,
		Time:    time.Now(),
	})
}

func (h *APIHandler) respondError(c *gin.Context, status int, message string) {
	if status >= http.StatusInternalServerError {
		h.logger.Errorf("HTTP %d: %s", status, message)
	} else {
		h.logger.Debugf("HTTP %d: %s", status, message)
	}
	c.JSON(status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	})
}

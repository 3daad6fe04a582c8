// Package backend talks to the CropSmart application server, which owns
// user accounts and serves the crop and fertilizer models.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/infrastructure/transport"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

const serviceName = "backend"

type Client struct {
	client *transport.Client
	logger logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, retry transport.RetryPolicy, log logger.Logger) *Client {
	return &Client{
		client: transport.NewClient(baseURL, timeout, retry, log),
		logger: logger.Component(log, "backend_client"),
	}
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type loginResponse struct {
	Message  string `json:"message"`
	FullName string `json:"full_name"`
	UserID   string `json:"user_id"`
}

type userIDRequest struct {
	UserID string `json:"user_id"`
}

type updateProfileRequest struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
}

type updateProfileResponse struct {
	Message string           `json:"message"`
	User    entities.Profile `json:"user"`
}

type predictionResponse struct {
	Result string `json:"result"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) Register(ctx context.Context, reg entities.Registration) (string, error) {
	var resp registerResponse
	err := c.client.SendJSON(ctx, http.MethodPost, "/register", registerRequest{
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
		Password:  reg.Password,
	}, &resp)
	if err != nil {
		return "", c.wrap("register", err)
	}

	c.logger.Infof("Registered user %s", resp.UserID)
	return resp.UserID, nil
}

func (c *Client) Login(ctx context.Context, creds entities.Credentials) (entities.LoginResult, error) {
	var resp loginResponse
	if err := c.client.SendJSON(ctx, http.MethodPost, "/login", creds, &resp); err != nil {
		return entities.LoginResult{}, c.wrap("login", err)
	}
	return entities.LoginResult{UserID: resp.UserID, FullName: resp.FullName}, nil
}

func (c *Client) GetProfile(ctx context.Context, userID string) (entities.Profile, error) {
	var profile entities.Profile
	if err := c.client.SendJSON(ctx, http.MethodPost, "/get-profile", userIDRequest{UserID: userID}, &profile); err != nil {
		return entities.Profile{}, c.wrap("get profile", err)
	}
	return profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, userID string, update entities.ProfileUpdate) (entities.Profile, error) {
	var resp updateProfileResponse
	err := c.client.SendJSON(ctx, http.MethodPut, "/update-profile", updateProfileRequest{
		UserID:    userID,
		FirstName: update.FirstName,
		LastName:  update.LastName,
		Email:     update.Email,
		Password:  update.Password,
	}, &resp)
	if err != nil {
		return entities.Profile{}, c.wrap("update profile", err)
	}

	profile := resp.User
	if profile.UserID == "" {
		profile = entities.Profile{UserID: userID, FirstName: update.FirstName, LastName: update.LastName, Email: update.Email}
	}
	return profile, nil
}

func (c *Client) PredictCrop(ctx context.Context, input entities.CropInput) (string, error) {
	var resp predictionResponse
	if err := c.client.SendJSON(ctx, http.MethodPost, "/predict-crop", input, &resp); err != nil {
		return "", c.wrap("predict crop", err)
	}
	return strings.TrimSpace(resp.Result), nil
}

func (c *Client) PredictFertilizer(ctx context.Context, input entities.FertilizerInput) (string, error) {
	var resp predictionResponse
	if err := c.client.SendJSON(ctx, http.MethodPost, "/predict-fertilizer", input, &resp); err != nil {
		return "", c.wrap("predict fertilizer", err)
	}
	return strings.TrimSpace(resp.Result), nil
}

// HealthCheck treats any HTTP answer as alive; only transport errors fail.
func (c *Client) HealthCheck(ctx context.Context) error {
	err := c.client.GetJSON(ctx, "/", nil)
	var statusErr *transport.StatusError
	if err == nil || errors.As(err, &statusErr) {
		return nil
	}
	return fmt.Errorf("backend health check failed: %w", err)
}

// wrap converts {"error": "..."} bodies into UpstreamError and everything
// else into a FetchError.
func (c *Client) wrap(op string, err error) error {
	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		message := http.StatusText(statusErr.Code)
		var body errorResponse
		if json.Unmarshal([]byte(statusErr.Body), &body) == nil {
			if body.Error != "" {
				message = body.Error
			} else if body.Message != "" {
				message = body.Message
			}
		}
		c.logger.Warnf("Backend %s failed with status %d: %s", op, statusErr.Code, message)
		return &entities.UpstreamError{Service: serviceName, Status: statusErr.Code, Message: message}
	}

	c.logger.Errorf("Backend %s failed: %v", op, err)
	return entities.NewFetchError(serviceName, fmt.Errorf("%s: %w", op, err))
}

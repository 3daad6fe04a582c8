package testutils

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/domain/ports"
)

type MockWeatherSource struct {
	mock.Mock
}

func (m *MockWeatherSource) CurrentConditions(ctx context.Context, city string) (entities.CurrentConditions, error) {
	args := m.Called(ctx, city)
	return args.Get(0).(entities.CurrentConditions), args.Error(1)
}

func (m *MockWeatherSource) Forecast(ctx context.Context, city string) ([]entities.ForecastSample, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ForecastSample), args.Error(1)
}

func (m *MockWeatherSource) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockNewsSource struct {
	mock.Mock
}

func (m *MockNewsSource) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockNewsSource) Latest(ctx context.Context) ([]entities.Article, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Article), args.Error(1)
}

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Register(ctx context.Context, reg entities.Registration) (string, error) {
	args := m.Called(ctx, reg)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) Login(ctx context.Context, creds entities.Credentials) (entities.LoginResult, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(entities.LoginResult), args.Error(1)
}

func (m *MockBackend) GetProfile(ctx context.Context, userID string) (entities.Profile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(entities.Profile), args.Error(1)
}

func (m *MockBackend) UpdateProfile(ctx context.Context, userID string, update entities.ProfileUpdate) (entities.Profile, error) {
	args := m.Called(ctx, userID, update)
	return args.Get(0).(entities.Profile), args.Error(1)
}

func (m *MockBackend) PredictCrop(ctx context.Context, input entities.CropInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) PredictFertilizer(ctx context.Context, input entities.FertilizerInput) (string, error) {
	args := m.Called(ctx, input)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Save(ctx context.Context, session *entities.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionStore) Update(ctx context.Context, session *entities.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, token string) (*entities.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessionStore) CleanupExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSessionStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSessionStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockPredictionHistory struct {
	mock.Mock
}

func (m *MockPredictionHistory) Save(ctx context.Context, prediction *entities.Prediction) error {
	args := m.Called(ctx, prediction)
	return args.Error(0)
}

func (m *MockPredictionHistory) ListByUser(ctx context.Context, userID string, limit int) ([]entities.Prediction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Prediction), args.Error(1)
}

func (m *MockPredictionHistory) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPredictionHistory) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPredictionHistory) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockPredictionPublisher struct {
	mock.Mock
}

func (m *MockPredictionPublisher) Publish(ctx context.Context, prediction *entities.Prediction) error {
	args := m.Called(ctx, prediction)
	return args.Error(0)
}

func (m *MockPredictionPublisher) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPredictionPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(ctx context.Context, name string, interval time.Duration, task ports.Task) error {
	args := m.Called(ctx, name, interval, task)
	return args.Error(0)
}

func (m *MockScheduler) Stop() {
	m.Called()
}

func (m *MockScheduler) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

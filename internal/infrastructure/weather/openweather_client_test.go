package weather

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/infrastructure/transport"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
	"github.com/Uddesh-18/CropSmart/internal/testutils"
)

func newTestClient(baseURL string) *OpenWeatherClient {
	return NewOpenWeatherClient(ClientConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Units:   "metric",
		Lang:    "en",
		Timeout: time.Second,
		Retry:   transport.SingleAttempt,
	}, logger.Discard())
}

func TestOpenWeatherClient_CurrentConditions(t *testing.T) {
	t.Run("successful fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/weather", r.URL.Path)
			assert.Equal(t, "mumbai", r.URL.Query().Get("q"))
			assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
			assert.Equal(t, "metric", r.URL.Query().Get("units"))
			assert.Equal(t, "en", r.URL.Query().Get("lang"))

			response := map[string]interface{}{
				"name":     "Mumbai",
				"timezone": 19800,
				"dt":       1718000000,
				"sys": map[string]interface{}{
					"country": "IN",
					"sunrise": 1717978325,
					"sunset":  1718026090,
				},
				"main": map[string]interface{}{
					"temp":     29.9,
					"temp_min": 28.1,
					"temp_max": 30.4,
					"humidity": 79,
				},
				"weather": []map[string]interface{}{
					{"main": "Haze", "description": "haze", "icon": "50d"},
				},
				"wind": map[string]interface{}{"speed": 4.63},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(response)
		}))
		defer server.Close()

		current, err := newTestClient(server.URL).CurrentConditions(context.Background(), "mumbai")

		require.NoError(t, err)
		assert.Equal(t, "Mumbai", current.CityName)
		assert.Equal(t, "IN", current.Country)
		assert.Equal(t, 29.9, current.TemperatureCelsius)
		assert.Equal(t, 28.1, current.MinTemperatureCelsius)
		assert.Equal(t, 30.4, current.MaxTemperatureCelsius)
		assert.Equal(t, 79, current.HumidityPercent)
		assert.Equal(t, 4.63, current.WindSpeedMetersPerSecond)
		assert.Equal(t, "Haze", current.ConditionLabel)
		assert.Equal(t, "50d", current.IconCode)
		assert.Equal(t, int64(1717978325), current.Sunrise.Unix())
		assert.Equal(t, int64(1718026090), current.Sunset.Unix())
		assert.Equal(t, 19800, current.UTCOffsetSeconds)
	})

	t.Run("API error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{"cod": "404", "message": "city not found"})
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).CurrentConditions(context.Background(), "atlantis")

		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrFetchFailed))
		assert.Contains(t, err.Error(), "API returned status 404")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("invalid json"))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).CurrentConditions(context.Background(), "mumbai")

		assert.True(t, errors.Is(err, entities.ErrFetchFailed))
		assert.Contains(t, err.Error(), "failed to decode response")
	})

	t.Run("missing weather array", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"name":"Pune","main":{"temp":25}}`))
		}))
		defer server.Close()

		current, err := newTestClient(server.URL).CurrentConditions(context.Background(), "pune")

		require.NoError(t, err)
		assert.Equal(t, "", current.ConditionLabel)
		assert.True(t, current.Sunrise.IsZero())
	})
}

func TestOpenWeatherClient_Forecast(t *testing.T) {
	t.Run("successful fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/forecast", r.URL.Path)
			w.Write([]byte(`{
				"cod": "200",
				"list": [
					{"dt": 1718010000, "main": {"temp": 30.2, "humidity": 70}, "weather": [{"main": "Clouds", "icon": "04d"}], "wind": {"speed": 5.1}},
					{"dt": 1718020800, "main": {"temp": 29.1, "humidity": 75}, "weather": [{"main": "Rain", "icon": "10d"}], "wind": {"speed": 6.0}},
					{"main": {"temp": 20}}
				],
				"city": {"name": "Mumbai", "timezone": 19800}
			}`))
		}))
		defer server.Close()

		samples, err := newTestClient(server.URL).Forecast(context.Background(), "mumbai")

		require.NoError(t, err)
		require.Len(t, samples, 3)
		assert.Equal(t, time.Unix(1718010000, 0), samples[0].Timestamp)
		assert.Equal(t, 30.2, samples[0].TemperatureCelsius)
		assert.Equal(t, "Clouds", samples[0].ConditionLabel)
		assert.Equal(t, "10d", samples[1].IconCode)
		assert.Equal(t, 75, samples[1].HumidityPercent)
		assert.Equal(t, 6.0, samples[1].WindSpeedMetersPerSecond)
		assert.True(t, samples[2].Timestamp.IsZero(), "missing dt is left for the aggregator to skip")
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		samples, err := newTestClient(server.URL).Forecast(context.Background(), "mumbai")

		assert.Nil(t, samples)
		assert.True(t, errors.Is(err, entities.ErrFetchFailed))
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"list":[]}`))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestClient(server.URL).Forecast(ctx, "mumbai")
		assert.True(t, errors.Is(err, entities.ErrFetchFailed))
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestOpenWeatherClient_HealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "mumbai", r.URL.Query().Get("q"))
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		assert.NoError(t, newTestClient(server.URL).HealthCheck(context.Background()))
	})

	t.Run("unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		err := newTestClient(server.URL).HealthCheck(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "health check failed")
	})
}

func TestRateLimitedSource(t *testing.T) {
	t.Run("disabled returns source", func(t *testing.T) {
		source := &testutils.MockWeatherSource{}
		assert.Same(t, source, NewRateLimitedSource(source, 0, 1))
	})

	t.Run("forwards calls", func(t *testing.T) {
		source := &testutils.MockWeatherSource{}
		source.On("CurrentConditions", mock.Anything, "pune").Return(entities.CurrentConditions{CityName: "Pune"}, nil)
		source.On("Forecast", mock.Anything, "pune").Return([]entities.ForecastSample{}, nil)

		limited := NewRateLimitedSource(source, 100, 2)

		current, err := limited.CurrentConditions(context.Background(), "pune")
		require.NoError(t, err)
		assert.Equal(t, "Pune", current.CityName)

		_, err = limited.Forecast(context.Background(), "pune")
		require.NoError(t, err)
		source.AssertExpectations(t)
	})

	t.Run("wait honours context", func(t *testing.T) {
		var calls int32
		source := &testutils.MockWeatherSource{}
		source.On("Forecast", mock.Anything, "pune").Run(func(mock.Arguments) { atomic.AddInt32(&calls, 1) }).Return([]entities.ForecastSample{}, nil)

		limited := NewRateLimitedSource(source, 0.001, 1)
		_, err := limited.Forecast(context.Background(), "pune")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = limited.Forecast(ctx, "pune")

		assert.True(t, errors.Is(err, entities.ErrFetchFailed))
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

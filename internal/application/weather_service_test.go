package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Uddesh-18/CropSmart/internal/config"
	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
	"github.com/Uddesh-18/CropSmart/internal/presentation"
	"github.com/Uddesh-18/CropSmart/internal/testutils"
)

var fixedNow = time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)

func newWeatherService(t *testing.T, source *testutils.MockWeatherSource, tz string) *WeatherService {
	t.Helper()
	mapper := presentation.NewMapper(presentation.WithClock(func() time.Time { return fixedNow }))
	svc, err := NewWeatherService(source, mapper, tz, "Pune", logger.Discard())
	require.NoError(t, err)
	return svc
}

func forecastSamples() []entities.ForecastSample {
	base := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	return []entities.ForecastSample{
		{Timestamp: base.Add(9 * time.Hour), TemperatureCelsius: 24.5, ConditionLabel: "Rain", IconCode: "10d", HumidityPercent: 80},
		{Timestamp: base.Add(12 * time.Hour), TemperatureCelsius: 27.9, ConditionLabel: "Clouds", IconCode: "03d"},
		{Timestamp: base.Add(33 * time.Hour), TemperatureCelsius: 22.4, ConditionLabel: "Clear", IconCode: "01d"},
	}
}

func TestNewWeatherService_Timezone(t *testing.T) {
	_, err := NewWeatherService(&testutils.MockWeatherSource{}, nil, "Mars/Olympus", "", logger.Discard())
	assert.ErrorContains(t, err, "failed to load display timezone")

	svc, err := NewWeatherService(&testutils.MockWeatherSource{}, nil, "Local", "", logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, time.Local, svc.location)
}

func TestWeatherService_Load(t *testing.T) {
	t.Run("combines current and daily", func(t *testing.T) {
		source := &testutils.MockWeatherSource{}
		source.On("CurrentConditions", mock.Anything, "Nashik").Return(entities.CurrentConditions{
			CityName: "Nashik", TemperatureCelsius: 26.5, ConditionLabel: "Rain", IconCode: "10d",
		}, nil)
		source.On("Forecast", mock.Anything, "Nashik").Return(forecastSamples(), nil)

		view, err := newWeatherService(t, source, "UTC").Load(context.Background(), " Nashik ")

		require.NoError(t, err)
		assert.Equal(t, "Nashik", view.Current.City)
		assert.Equal(t, 27, view.Current.Temperature)
		assert.Equal(t, "Today, Mon Jun 10 2024", view.Current.DateLabel)
		require.Len(t, view.Daily, 2)
		assert.Equal(t, "2024-06-10", view.Daily[0].DateKey)
		assert.Equal(t, 25, view.Daily[0].Temperature)
		assert.Equal(t, "Rain", view.Daily[0].Condition)
		assert.Equal(t, "http://openweathermap.org/img/wn/10d@2x.png", view.Daily[0].IconURL)
		assert.Equal(t, "2024-06-11", view.Daily[1].DateKey)
		source.AssertExpectations(t)
	})

	t.Run("default city", func(t *testing.T) {
		source := &testutils.MockWeatherSource{}
		source.On("CurrentConditions", mock.Anything, "Pune").Return(entities.CurrentConditions{CityName: "Pune"}, nil)
		source.On("Forecast", mock.Anything, "Pune").Return([]entities.ForecastSample{}, nil)

		view, err := newWeatherService(t, source, "UTC").Load(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, "Pune", view.Current.City)
		assert.NotNil(t, view.Daily)
		assert.Empty(t, view.Daily)
	})

	t.Run("no city at all", func(t *testing.T) {
		svc, err := NewWeatherService(&testutils.MockWeatherSource{}, nil, "UTC", "", logger.Discard())
		require.NoError(t, err)

		_, err = svc.Load(context.Background(), "  ")
		var ve entities.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("forecast failure fails the load", func(t *testing.T) {
		source := &testutils.MockWeatherSource{}
		source.On("CurrentConditions", mock.Anything, "Pune").Return(entities.CurrentConditions{CityName: "Pune"}, nil)
		source.On("Forecast", mock.Anything, "Pune").Return(nil, errors.New("connection reset"))

		view, err := newWeatherService(t, source, "UTC").Load(context.Background(), "Pune")

		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrFetchFailed))
		assert.Contains(t, err.Error(), "forecast fetch failed")
		assert.Empty(t, view.Current.City)
	})

	t.Run("current failure cancels forecast", func(t *testing.T) {
		source := &testutils.MockWeatherSource{}
		source.On("CurrentConditions", mock.Anything, "Pune").Return(entities.CurrentConditions{}, errors.New("status 401"))
		source.On("Forecast", mock.Anything, "Pune").Return(nil, context.Canceled).Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
				t.Error("forecast context was not cancelled")
			}
		})

		_, err := newWeatherService(t, source, "UTC").Load(context.Background(), "Pune")

		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrFetchFailed))
		assert.Contains(t, err.Error(), "current weather fetch failed")
	})

	t.Run("cancelled request", func(t *testing.T) {
		source := &testutils.MockWeatherSource{}
		source.On("CurrentConditions", mock.Anything, "Pune").Return(entities.CurrentConditions{CityName: "Pune"}, nil)
		source.On("Forecast", mock.Anything, "Pune").Return(forecastSamples(), nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newWeatherService(t, source, "UTC").Load(ctx, "Pune")

		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrFetchFailed))
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("city timezone", func(t *testing.T) {
		source := &testutils.MockWeatherSource{}
		source.On("CurrentConditions", mock.Anything, "Pune").Return(entities.CurrentConditions{
			CityName: "Pune", UTCOffsetSeconds: 19800,
			Sunrise: time.Date(2024, 6, 10, 0, 30, 0, 0, time.UTC),
		}, nil)
		// 20:00 UTC is already the next day at +05:30.
		source.On("Forecast", mock.Anything, "Pune").Return([]entities.ForecastSample{
			{Timestamp: time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC), TemperatureCelsius: 25},
		}, nil)

		view, err := newWeatherService(t, source, config.TimezoneCity).Load(context.Background(), "Pune")

		require.NoError(t, err)
		require.Len(t, view.Daily, 1)
		assert.Equal(t, "2024-06-11", view.Daily[0].DateKey)
		assert.Equal(t, "6:00:00 AM", view.Current.Sunrise)
	})
}

func TestWeatherService_HealthCheck(t *testing.T) {
	source := &testutils.MockWeatherSource{}
	source.On("HealthCheck", mock.Anything).Return(errors.New("down")).Once()
	source.On("HealthCheck", mock.Anything).Return(nil).Once()

	svc := newWeatherService(t, source, "UTC")

	err := svc.HealthCheck(context.Background())
	assert.ErrorContains(t, err, "weather source health check failed")
	assert.NoError(t, svc.HealthCheck(context.Background()))
}
